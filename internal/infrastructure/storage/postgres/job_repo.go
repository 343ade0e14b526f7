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

var jobCols = []string{
	"id", "job_no", "department", "status", "customer_name", "customer_phone",
	"description", "sales_doc_id", "created_by", "created_at", "updated_at", "version",
}

var activityCols = []string{
	"id", "job_id", "note", "author", "photo_refs", "created_at",
}

// JobRepo persists live jobs and their append-only activity logs.
type JobRepo struct {
	txm *TxManager
}

// NewJobRepo creates a job repository.
func NewJobRepo(txm *TxManager) *JobRepo {
	return &JobRepo{txm: txm}
}

// Create inserts a new job.
func (r *JobRepo) Create(ctx context.Context, job *entity.Job) error {
	sql, args, err := builder().
		Insert("jobs").
		Columns(jobCols...).
		Values(job.ID, job.JobNo, job.Department, string(job.Status),
			job.CustomerName, job.CustomerPhone, job.Description, job.SalesDocID,
			job.CreatedBy, job.CreatedAt, job.UpdatedAt, job.Version).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// GetByID returns a job or apperror NOT_FOUND.
func (r *JobRepo) GetByID(ctx context.Context, jobID id.ID) (*entity.Job, error) {
	sql, args, err := builder().
		Select(jobCols...).
		From("jobs").
		Where(squirrel.Eq{"id": jobID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var job entity.Job
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &job, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("job", jobID)
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &job, nil
}

// Update writes job fields with an optimistic version check. The version in
// the entity must match the stored row; a mismatch means a concurrent writer
// got there first.
func (r *JobRepo) Update(ctx context.Context, job *entity.Job) error {
	sql, args, err := builder().
		Update("jobs").
		Set("status", string(job.Status)).
		Set("customer_name", job.CustomerName).
		Set("customer_phone", job.CustomerPhone).
		Set("description", job.Description).
		Set("sales_doc_id", job.SalesDocID).
		Set("updated_at", job.UpdatedAt).
		Set("version", job.Version).
		Where(squirrel.Eq{"id": job.ID}).
		Where(squirrel.Eq{"version": job.Version - 1}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewTxContention("job").WithDetail("id", job.ID.String())
	}
	return nil
}

// Delete removes a job from the live store. Only the archival engine calls
// this, after the archive record is written in the same transaction.
func (r *JobRepo) Delete(ctx context.Context, jobID id.ID) error {
	sql, args, err := builder().
		Delete("jobs").
		Where(squirrel.Eq{"id": jobID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	return nil
}

// ListClosed returns up to limit closed jobs still in the live store,
// oldest first.
func (r *JobRepo) ListClosed(ctx context.Context, limit int) ([]*entity.Job, error) {
	sql, args, err := builder().
		Select(jobCols...).
		From("jobs").
		Where(squirrel.Eq{"status": string(entity.JobClosed)}).
		OrderBy("updated_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var jobs []*entity.Job
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &jobs, sql, args...); err != nil {
		return nil, fmt.Errorf("list closed jobs: %w", err)
	}
	return jobs, nil
}

// AppendActivity inserts one activity entry. Entries are append-only.
func (r *JobRepo) AppendActivity(ctx context.Context, a *entity.JobActivity) error {
	sql, args, err := builder().
		Insert("job_activities").
		Columns(activityCols...).
		Values(a.ID, a.JobID, a.Note, a.Author, a.PhotoRefs, a.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// ListActivities returns up to limit of the oldest remaining activity
// entries for a job.
func (r *JobRepo) ListActivities(ctx context.Context, jobID id.ID, limit int) ([]*entity.JobActivity, error) {
	sql, args, err := builder().
		Select(activityCols...).
		From("job_activities").
		Where(squirrel.Eq{"job_id": jobID}).
		OrderBy("created_at ASC", "id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var activities []*entity.JobActivity
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &activities, sql, args...); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}
