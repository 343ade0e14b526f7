package archival

import (
	"context"
	"fmt"

	"jobdesk/internal/core/apperror"
	"jobdesk/internal/core/entity"
	"jobdesk/pkg/logger"
)

// MaxMigrationBatch caps one migration sweep. The sweep runs synchronously
// inside a request, so larger backlogs are drained by repeated invocations.
const MaxMigrationBatch = 40

// ItemError records one failed job in a migration sweep.
type ItemError struct {
	JobID   string `json:"jobId"`
	Message string `json:"message"`
}

// MigrationResult summarizes one sweep.
type MigrationResult struct {
	TotalFound int         `json:"totalFound"`
	Migrated   int         `json:"migrated"`
	Skipped    int         `json:"skipped"`
	Errors     []ItemError `json:"errors"`
}

// MigrateClosedJobs archives up to limit jobs that are closed but still
// resident in the live store, a backlog that accumulates when a close
// only updated status without archiving.
//
// Each job is processed in isolation: a failure is recorded in the result
// and never aborts the remaining items.
func (e *Engine) MigrateClosedJobs(ctx context.Context, limit int, actor string) (MigrationResult, error) {
	if limit <= 0 || limit > MaxMigrationBatch {
		limit = MaxMigrationBatch
	}

	res := MigrationResult{Errors: []ItemError{}}

	backlog, err := e.jobs.ListClosed(ctx, limit)
	if err != nil {
		return res, fmt.Errorf("list closed jobs: %w", err)
	}
	res.TotalFound = len(backlog)

	for _, job := range backlog {
		outcome, err := e.migrateOne(ctx, job, actor)
		if err != nil {
			logger.Error(ctx, "migration item failed", "job_id", job.ID, "error", err)
			res.Errors = append(res.Errors, ItemError{
				JobID:   job.ID.String(),
				Message: err.Error(),
			})
			continue
		}
		switch outcome {
		case outcomeMigrated:
			res.Migrated++
		case outcomeSkipped:
			res.Skipped++
		}
	}

	logger.Info(ctx, "migration sweep complete",
		"total_found", res.TotalFound,
		"migrated", res.Migrated,
		"skipped", res.Skipped,
		"errors", len(res.Errors),
		"actor", actor,
	)
	return res, nil
}

type migrationOutcome int

const (
	outcomeMigrated migrationOutcome = iota
	outcomeSkipped
)

// migrateOne processes a single backlog job. A panic in one item must not
// abort the sweep, so it is converted to an item error here.
func (e *Engine) migrateOne(ctx context.Context, job *entity.Job, actor string) (outcome migrationOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	existing, lookupErr := e.archive.GetByOriginalID(ctx, job.ID)
	switch {
	case lookupErr == nil && existing.IsArchived:
		// Already migrated by an earlier run: drop the stale live copy.
		if err := e.relocateActivities(ctx, job.ID, existing.ArchiveYear); err != nil {
			return 0, fmt.Errorf("relocate leftover activities: %w", err)
		}
		if err := e.jobs.Delete(ctx, job.ID); err != nil {
			return 0, fmt.Errorf("delete stale live copy: %w", err)
		}
		logger.Info(ctx, "stale live copy removed", "job_id", job.ID)
		return outcomeSkipped, nil

	case lookupErr != nil && !apperror.IsNotFound(lookupErr):
		return 0, fmt.Errorf("check archive record: %w", lookupErr)
	}

	// Same path as a single-job close; the closure year comes from the
	// job's last update, which is when it was closed.
	if _, err := e.ArchiveAndClose(ctx, job.ID, job.UpdatedAt, actor, CloseOptions{}); err != nil {
		return 0, err
	}
	return outcomeMigrated, nil
}
