package numbering

import (
	"context"

	"jobdesk/internal/core/entity"
	"jobdesk/internal/core/id"
)

// DocumentRepo persists numbered documents.
type DocumentRepo interface {
	Create(ctx context.Context, doc *entity.DocumentRecord) error

	// ExistsNumber reports whether any document of docType carries docNo,
	// including documents whose job has since been archived.
	ExistsNumber(ctx context.Context, docType entity.DocumentType, docNo string) (bool, error)

	// MaxIssuedSeq scans issued documents for the highest sequence number
	// under (docType, prefix, year). Returns 0 when none exist.
	MaxIssuedSeq(ctx context.Context, docType entity.DocumentType, prefix string, year int) (int64, error)
}

// CounterRepo owns DocumentCounter mutation. No other component may touch
// counters.
type CounterRepo interface {
	// Next atomically increments and returns the sequence for key.
	// Must be called inside a transaction.
	Next(ctx context.Context, key entity.CounterKey) (int64, error)

	// Raise lifts the stored sequence to at least floor, never lowering it.
	Raise(ctx context.Context, key entity.CounterKey, floor int64) error
}

// JobRepo is the job-side surface the generator needs when a document is
// linked to a job: a status update and an activity append, both inside the
// issuing transaction.
type JobRepo interface {
	GetByID(ctx context.Context, jobID id.ID) (*entity.Job, error)
	Update(ctx context.Context, job *entity.Job) error
	AppendActivity(ctx context.Context, activity *entity.JobActivity) error
}
