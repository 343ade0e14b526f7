// Package settings exposes the document numbering configuration consumed by
// the number generator. The settings record itself is owned by the
// surrounding application; this engine only reads it.
package settings

import (
	"context"
	"time"

	"jobdesk/internal/core/entity"
)

// DocumentSetting maps one document type to its configured number prefix.
type DocumentSetting struct {
	DocType   entity.DocumentType `db:"doc_type" json:"docType"`
	Prefix    string              `db:"prefix" json:"prefix"`
	UpdatedAt time.Time           `db:"updated_at" json:"updatedAt"`
}

// Repo is the read-only settings lookup.
type Repo interface {
	// GetPrefix returns the configured prefix for a document type.
	// Returns apperror CONFIG_MISSING when no setting exists.
	GetPrefix(ctx context.Context, docType entity.DocumentType) (string, error)
}
