package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"jobdesk/internal/core/apperror"
	"jobdesk/internal/core/entity"
	"jobdesk/internal/core/id"
)

var archivedJobCols = []string{
	"id", "job_no", "department", "status", "customer_name", "customer_phone",
	"description", "created_by", "created_at",
	"is_archived", "archive_year", "archived_at", "archived_by", "original_job_id",
	"closing_doc_id", "closing_doc_type", "closing_doc_no", "payment_status",
	"snapshot", "snapshot_algo",
}

// ArchiveRepo persists archived jobs and their relocated activity logs.
// Year partitioning is carried by the archive_year column; every read is
// keyed by it or by the original job identifier.
type ArchiveRepo struct {
	txm   *TxManager
	batch *BatchExecutor
}

// NewArchiveRepo creates an archive repository.
func NewArchiveRepo(txm *TxManager) *ArchiveRepo {
	return &ArchiveRepo{txm: txm, batch: NewBatchExecutor(txm)}
}

// Upsert writes an archived job, merging on original_job_id so a retried
// archival never produces a second record. The stored identifier wins on
// merge and is written back into rec, so callers always hold the identifier
// other rows (sales document links) must point at.
func (r *ArchiveRepo) Upsert(ctx context.Context, rec *entity.ArchivedJob) error {
	var storedID id.ID
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, `
        INSERT INTO archived_jobs (
            id, job_no, department, status, customer_name, customer_phone,
            description, created_by, created_at,
            is_archived, archive_year, archived_at, archived_by, original_job_id,
            closing_doc_id, closing_doc_type, closing_doc_no, payment_status,
            snapshot, snapshot_algo
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
        ON CONFLICT (original_job_id) DO UPDATE SET
            is_archived     = TRUE,
            archived_at     = EXCLUDED.archived_at,
            archived_by     = EXCLUDED.archived_by,
            closing_doc_id  = COALESCE(EXCLUDED.closing_doc_id, archived_jobs.closing_doc_id),
            closing_doc_type = CASE WHEN EXCLUDED.closing_doc_type <> '' THEN EXCLUDED.closing_doc_type ELSE archived_jobs.closing_doc_type END,
            closing_doc_no  = CASE WHEN EXCLUDED.closing_doc_no <> '' THEN EXCLUDED.closing_doc_no ELSE archived_jobs.closing_doc_no END,
            payment_status  = CASE WHEN EXCLUDED.payment_status <> '' THEN EXCLUDED.payment_status ELSE archived_jobs.payment_status END
        RETURNING id
	`,
		rec.ID, rec.JobNo, rec.Department, string(rec.Status), rec.CustomerName, rec.CustomerPhone,
		rec.Description, rec.CreatedBy, rec.CreatedAt,
		rec.IsArchived, rec.ArchiveYear, rec.ArchivedAt, rec.ArchivedBy, rec.OriginalJobID,
		rec.ClosingDocID, string(rec.ClosingDocType), rec.ClosingDocNo, rec.PaymentStatus,
		rec.Snapshot, string(rec.SnapshotAlgo),
	).Scan(&storedID)
	if err != nil {
		return fmt.Errorf("upsert archived job: %w", err)
	}

	rec.ID = storedID
	return nil
}

// GetByOriginalID returns the archive record for a source job,
// or apperror NOT_FOUND.
func (r *ArchiveRepo) GetByOriginalID(ctx context.Context, originalJobID id.ID) (*entity.ArchivedJob, error) {
	return r.get(ctx, squirrel.Eq{"original_job_id": originalJobID})
}

// Get returns the archive record from a specific year partition,
// or apperror NOT_FOUND.
func (r *ArchiveRepo) Get(ctx context.Context, year int, originalJobID id.ID) (*entity.ArchivedJob, error) {
	return r.get(ctx, squirrel.Eq{"archive_year": year, "original_job_id": originalJobID})
}

func (r *ArchiveRepo) get(ctx context.Context, where squirrel.Eq) (*entity.ArchivedJob, error) {
	sql, args, err := builder().
		Select(archivedJobCols...).
		From("archived_jobs").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var rec entity.ArchivedJob
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &rec, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("archived job", where)
		}
		return nil, fmt.Errorf("get archived job: %w", err)
	}
	return &rec, nil
}

// MoveActivities copies a batch of live activity entries into the archive
// and deletes the originals, all in one committed transaction. Copies keep
// the original identifiers and ignore rows already present, so a re-run
// after a partial failure resumes cleanly.
func (r *ArchiveRepo) MoveActivities(ctx context.Context, year int, batch []*entity.JobActivity) error {
	if len(batch) == 0 {
		return nil
	}

	queries := make([]BatchQuery, 0, len(batch)*2)
	for _, a := range batch {
		archived := entity.NewArchivedActivity(a, year)
		queries = append(queries, BatchQuery{
			SQL: `
                INSERT INTO archived_job_activities
                    (id, original_job_id, archive_year, note, author, photo_refs, created_at, archived_at)
                VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
                ON CONFLICT (id) DO NOTHING`,
			Args: []any{
				archived.ID, archived.OriginalJobID, archived.ArchiveYear,
				archived.Note, archived.Author, archived.PhotoRefs,
				archived.CreatedAt, archived.ArchivedAt,
			},
		})
		queries = append(queries, BatchQuery{
			SQL:  `DELETE FROM job_activities WHERE id = $1`,
			Args: []any{a.ID},
		})
	}

	return r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return r.batch.ExecuteBatch(ctx, queries)
	})
}

// ListActivities returns the archived activity log of a job, oldest first.
func (r *ArchiveRepo) ListActivities(ctx context.Context, year int, originalJobID id.ID) ([]*entity.ArchivedActivity, error) {
	sql, args, err := builder().
		Select("id", "original_job_id", "archive_year", "note", "author", "photo_refs", "created_at", "archived_at").
		From("archived_job_activities").
		Where(squirrel.Eq{"archive_year": year, "original_job_id": originalJobID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var activities []*entity.ArchivedActivity
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &activities, sql, args...); err != nil {
		return nil, fmt.Errorf("list archived activities: %w", err)
	}
	return activities, nil
}
