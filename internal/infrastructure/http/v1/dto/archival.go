package dto

import (
	"time"

	"jobdesk/internal/domain/archival"
)

// CloseJobRequest closes one job and moves it into the archive.
type CloseJobRequest struct {
	// ClosedDate selects the archive year. Defaults to now when omitted.
	ClosedDate *time.Time `json:"closedDate"`

	PaymentStatus string  `json:"paymentStatus"`
	SalesDocID    *string `json:"salesDocId"`
}

// CloseJobResponse reports where the job landed.
type CloseJobResponse struct {
	OK      bool   `json:"ok"`
	JobID   string `json:"jobId"`
	Archive string `json:"archive"`
}

// MigrateRequest starts one bulk archival sweep.
type MigrateRequest struct {
	Limit int `json:"limit"`
}

// MigrateResponse summarizes the sweep.
type MigrateResponse struct {
	TotalFound int                 `json:"totalFound"`
	Migrated   int                 `json:"migrated"`
	Skipped    int                 `json:"skipped"`
	Errors     []archival.ItemError `json:"errors,omitempty"`
}

// FromMigrationResult creates MigrateResponse from archival.MigrationResult.
func FromMigrationResult(r archival.MigrationResult) MigrateResponse {
	return MigrateResponse{
		TotalFound: r.TotalFound,
		Migrated:   r.Migrated,
		Skipped:    r.Skipped,
		Errors:     r.Errors,
	}
}
