// Package profile exposes the user-profile lookup consumed by permission
// checks. Profiles and role assignments are owned by the surrounding
// application; this engine only reads them.
package profile

import (
	"context"
)

// Role enumerates the roles relevant to this engine's entry points.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleOffice     Role = "office"
	RoleTechnician Role = "technician"
)

// Profile is a user profile row from the external profile store.
type Profile struct {
	UID         string `db:"uid" json:"uid"`
	DisplayName string `db:"display_name" json:"displayName"`
	Role        Role   `db:"role" json:"role"`
	Department  string `db:"department" json:"department,omitempty"`
}

// CanCloseJobs reports whether the profile may invoke job closing/archival.
func (p *Profile) CanCloseJobs() bool {
	switch p.Role {
	case RoleAdmin, RoleManager, RoleOffice:
		return true
	}
	return false
}

// CanRunMigration reports whether the profile may invoke the bulk archive
// migration sweep.
func (p *Profile) CanRunMigration() bool {
	switch p.Role {
	case RoleAdmin, RoleManager:
		return true
	}
	return false
}

// Repo is the read-only profile lookup.
type Repo interface {
	// GetByUID returns the profile for a user, or apperror NOT_FOUND.
	GetByUID(ctx context.Context, uid string) (*Profile, error)
}
