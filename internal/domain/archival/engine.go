// Package archival moves closed jobs and their activity logs out of the
// live working set into year-partitioned archive storage.
//
// The main-record move (archive write + live delete) is one transaction:
// a reader can never observe the job deleted without the archive record
// existing, or vice versa. The activity log is relocated afterwards in
// bounded batches, because a log can exceed what a single atomic batch may
// carry. A reader may therefore briefly see the archived job before all of
// its activities have arrived; the main record is the authoritative pointer
// and the copy is resumable, so re-invoking archival is always safe.
package archival

import (
	"context"
	"fmt"
	"time"

	"jobdesk/internal/core/apperror"
	"jobdesk/internal/core/calendar"
	"jobdesk/internal/core/entity"
	"jobdesk/internal/core/id"
	"jobdesk/internal/core/tx"
	"jobdesk/pkg/logger"
)

// chunkWriteBudget caps the writes committed per activity batch. Each moved
// entry costs two writes (copy + delete), so one batch carries at most
// chunkWriteBudget/2 entries.
const chunkWriteBudget = 400

// Engine archives jobs. It owns the Job -> ArchivedJob transition
// exclusively.
type Engine struct {
	jobs      JobStore
	archive   ArchiveStore
	docs      DocumentStore
	snapshots SnapshotCodec
	tx        tx.Retryable
}

// NewEngine creates an archival engine.
func NewEngine(jobs JobStore, archive ArchiveStore, docs DocumentStore, snapshots SnapshotCodec, txm tx.Retryable) *Engine {
	return &Engine{
		jobs:      jobs,
		archive:   archive,
		docs:      docs,
		snapshots: snapshots,
		tx:        txm,
	}
}

// CloseOptions carries the closure context supplied by the caller.
type CloseOptions struct {
	// PaymentStatus at the moment of closure, recorded as provenance.
	PaymentStatus string

	// SalesDocID overrides the job's own sales document link.
	SalesDocID *id.ID
}

// ArchiveAndClose moves one job into the archive partition for closedDate's
// year and returns the partition label.
//
// A job absent from the live store is an idempotent success: either it was
// never there or a previous invocation already moved it. In the latter case
// any activity entries left behind by an interrupted copy are relocated
// before returning.
func (e *Engine) ArchiveAndClose(ctx context.Context, jobID id.ID, closedDate time.Time, actor string, opts CloseOptions) (string, error) {
	year := calendar.GregorianYear(closedDate)

	var moved bool
	err := e.tx.RunSerializableWithRetry(ctx, func(ctx context.Context) error {
		moved = false
		job, err := e.jobs.GetByID(ctx, jobID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil
			}
			return fmt.Errorf("load job: %w", err)
		}

		closing, relink := e.resolveClosingDoc(ctx, job, opts)
		rec := entity.NewArchivedJob(job, year, actor, closing)

		snap, algo, err := e.snapshots.Encode(job)
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		rec.Snapshot = snap
		rec.SnapshotAlgo = algo

		if err := e.archive.Upsert(ctx, rec); err != nil {
			return fmt.Errorf("write archive record: %w", err)
		}
		if relink {
			if err := e.docs.RelinkJob(ctx, *closing.DocID, rec.ID); err != nil {
				return fmt.Errorf("relink sales document: %w", err)
			}
		}
		if err := e.jobs.Delete(ctx, job.ID); err != nil {
			return fmt.Errorf("delete live job: %w", err)
		}
		moved = true
		return nil
	})
	if err != nil {
		return "", err
	}

	if !moved {
		// Main record already gone. Resume a possibly interrupted activity
		// copy if an archive record exists; otherwise there is nothing to do.
		existing, err := e.archive.GetByOriginalID(ctx, jobID)
		if err != nil {
			if apperror.IsNotFound(err) {
				logger.Info(ctx, "job already absent, nothing to archive", "job_id", jobID)
				return entity.ArchiveLabel(year), nil
			}
			return "", fmt.Errorf("check archive record: %w", err)
		}
		year = existing.ArchiveYear
		logger.Info(ctx, "job already archived, resuming activity relocation",
			"job_id", jobID, "archive_year", year)
	} else {
		logger.Info(ctx, "job archived", "job_id", jobID, "archive_year", year, "actor", actor)
	}

	if err := e.relocateActivities(ctx, jobID, year); err != nil {
		// The main record is safely archived; leftover live activities are
		// unreachable without it and a re-run resumes the copy.
		logger.Error(ctx, "activity relocation incomplete",
			"job_id", jobID, "archive_year", year, "error", err)
		return "", apperror.NewPartialMigration(jobID.String(), err)
	}

	return entity.ArchiveLabel(year), nil
}

// relocateActivities copies the remaining live activity entries of jobID
// into the archive and deletes the originals, one bounded batch at a time.
// Each batch commits before the next is read, keeping every commit under the
// store's per-batch operation ceiling.
func (e *Engine) relocateActivities(ctx context.Context, jobID id.ID, year int) error {
	perBatch := chunkWriteBudget / 2
	for {
		batch, err := e.jobs.ListActivities(ctx, jobID, perBatch)
		if err != nil {
			return fmt.Errorf("list activities: %w", err)
		}
		if len(batch) == 0 {
			return nil
		}
		if err := e.archive.MoveActivities(ctx, year, batch); err != nil {
			return fmt.Errorf("move %d activities: %w", len(batch), err)
		}
		logger.Debug(ctx, "activity batch relocated", "job_id", jobID, "count", len(batch))
		if len(batch) < perBatch {
			return nil
		}
	}
}

// resolveClosingDoc resolves the sales document recorded as closure
// provenance. A dangling link degrades to the bare identifier rather than
// failing the close; the second return reports whether the document row
// actually exists and may be relinked.
func (e *Engine) resolveClosingDoc(ctx context.Context, job *entity.Job, opts CloseOptions) (entity.ClosingDocInfo, bool) {
	info := entity.ClosingDocInfo{PaymentStatus: opts.PaymentStatus}

	docID := opts.SalesDocID
	if docID == nil {
		docID = job.SalesDocID
	}
	if docID == nil {
		return info, false
	}
	info.DocID = docID

	doc, err := e.docs.GetByID(ctx, *docID)
	if err != nil {
		logger.Warn(ctx, "closing sales document not found",
			"job_id", job.ID, "doc_id", *docID)
		return info, false
	}
	info.DocType = doc.DocType
	info.DocNo = doc.DocNo
	return info, true
}
