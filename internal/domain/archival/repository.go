package archival

import (
	"context"

	"jobdesk/internal/core/entity"
	"jobdesk/internal/core/id"
)

// JobStore is the live-side surface of the archival engine. The engine is
// the only component allowed to delete a job.
type JobStore interface {
	GetByID(ctx context.Context, jobID id.ID) (*entity.Job, error)
	Delete(ctx context.Context, jobID id.ID) error

	// ListClosed returns up to limit jobs with status closed still resident
	// in the live store, oldest first.
	ListClosed(ctx context.Context, limit int) ([]*entity.Job, error)

	// ListActivities returns up to limit of the oldest remaining activity
	// entries for a job.
	ListActivities(ctx context.Context, jobID id.ID, limit int) ([]*entity.JobActivity, error)
}

// ArchiveStore persists archived jobs and their relocated activity logs.
type ArchiveStore interface {
	// Upsert writes an archived job, merging on the original job identifier
	// so retried archival operations never produce a second record.
	Upsert(ctx context.Context, rec *entity.ArchivedJob) error

	// GetByOriginalID returns the archive record for a source job,
	// or apperror NOT_FOUND.
	GetByOriginalID(ctx context.Context, originalJobID id.ID) (*entity.ArchivedJob, error)

	// Get returns the archive record from a specific year partition,
	// or apperror NOT_FOUND.
	Get(ctx context.Context, year int, originalJobID id.ID) (*entity.ArchivedJob, error)

	// MoveActivities copies a batch of live activity entries into the
	// archive and deletes the originals, committed as one atomic batch.
	// The copy keeps original identifiers and ignores rows already present,
	// so a re-run after a partial failure resumes where it stopped.
	MoveActivities(ctx context.Context, year int, batch []*entity.JobActivity) error
}

// DocumentStore is the document-side surface: after archival the sales
// document's job link must resolve to the archived identifier.
type DocumentStore interface {
	GetByID(ctx context.Context, docID id.ID) (*entity.DocumentRecord, error)
	RelinkJob(ctx context.Context, docID, archivedJobID id.ID) error
}

// SnapshotCodec serializes the source job onto the archive record.
type SnapshotCodec interface {
	Encode(v any) ([]byte, entity.SnapshotAlgo, error)
}
