package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"jobdesk/internal/core/apperror"
	"jobdesk/internal/domain/profile"
)

// ProfileRepo reads user profiles for permission checks. Profile rows are
// owned by the surrounding application.
type ProfileRepo struct {
	txm *TxManager
}

// NewProfileRepo creates a profile repository.
func NewProfileRepo(txm *TxManager) *ProfileRepo {
	return &ProfileRepo{txm: txm}
}

// GetByUID returns the profile for a user, or apperror NOT_FOUND.
func (r *ProfileRepo) GetByUID(ctx context.Context, uid string) (*profile.Profile, error) {
	var p profile.Profile
	err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, `
        SELECT uid, display_name, role, department
        FROM user_profiles WHERE uid = $1
	`, uid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("user profile", uid)
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// Upsert writes a profile row. Used by the seed tool.
func (r *ProfileRepo) Upsert(ctx context.Context, p *profile.Profile) error {
	_, err := r.txm.GetQuerier(ctx).Exec(ctx, `
        INSERT INTO user_profiles (uid, display_name, role, department)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (uid) DO UPDATE SET
            display_name = EXCLUDED.display_name,
            role = EXCLUDED.role,
            department = EXCLUDED.department
	`, p.UID, p.DisplayName, string(p.Role), p.Department)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
