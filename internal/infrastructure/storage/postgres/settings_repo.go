package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"jobdesk/internal/core/apperror"
	"jobdesk/internal/core/entity"
)

// SettingsRepo reads the document numbering configuration. The settings
// rows are owned by the surrounding application; this engine only reads
// them, plus an upsert used by the seed tool.
type SettingsRepo struct {
	txm *TxManager
}

// NewSettingsRepo creates a settings repository.
func NewSettingsRepo(txm *TxManager) *SettingsRepo {
	return &SettingsRepo{txm: txm}
}

// GetPrefix returns the configured number prefix for a document type.
func (r *SettingsRepo) GetPrefix(ctx context.Context, docType entity.DocumentType) (string, error) {
	var prefix string
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, `
        SELECT prefix FROM document_settings WHERE doc_type = $1
	`, string(docType)).Scan(&prefix)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperror.NewConfigMissing(string(docType))
		}
		return "", fmt.Errorf("read prefix setting: %w", err)
	}
	if prefix == "" {
		return "", apperror.NewConfigMissing(string(docType))
	}
	return prefix, nil
}

// SetPrefix writes a prefix setting. Used by the seed tool.
func (r *SettingsRepo) SetPrefix(ctx context.Context, docType entity.DocumentType, prefix string) error {
	_, err := r.txm.GetQuerier(ctx).Exec(ctx, `
        INSERT INTO document_settings (doc_type, prefix, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (doc_type) DO UPDATE SET prefix = EXCLUDED.prefix, updated_at = NOW()
	`, string(docType), prefix)
	if err != nil {
		return fmt.Errorf("write prefix setting: %w", err)
	}
	return nil
}
