package archival

import (
	"context"
	"testing"
	"time"

	"jobdesk/internal/core/entity"
	"jobdesk/internal/core/id"
)

func TestMigrateClosedJobs_Sweep(t *testing.T) {
	engine, jobs, archive, _ := newTestEngine()
	for i := 0; i < 5; i++ {
		job := closedJob(jobs, "J-100"+string(rune('0'+i)))
		addActivities(jobs, job.ID, 2)
	}
	// A job still in progress must not be touched.
	open := &entity.Job{ID: id.New(), JobNo: "J-2000", Status: entity.JobInProgress, Version: 1}
	jobs.jobs[open.ID] = open

	res, err := engine.MigrateClosedJobs(context.Background(), 10, "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalFound != 5 {
		t.Errorf("expected 5 found, got %d", res.TotalFound)
	}
	if res.Migrated != 5 {
		t.Errorf("expected 5 migrated, got %d", res.Migrated)
	}
	if res.Skipped != 0 || len(res.Errors) != 0 {
		t.Errorf("unexpected skips/errors: %+v", res)
	}
	if len(archive.records) != 5 {
		t.Errorf("expected 5 archive records, got %d", len(archive.records))
	}
	if _, ok := jobs.jobs[open.ID]; !ok {
		t.Errorf("open job must survive the sweep")
	}
}

func TestMigrateClosedJobs_LimitClamp(t *testing.T) {
	engine, jobs, _, _ := newTestEngine()
	for i := 0; i < 60; i++ {
		closedJob(jobs, "J-3000")
	}

	res, err := engine.MigrateClosedJobs(context.Background(), 500, "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalFound != MaxMigrationBatch {
		t.Errorf("expected clamp to %d, got %d", MaxMigrationBatch, res.TotalFound)
	}

	// Zero means the default cap too.
	res, err = engine.MigrateClosedJobs(context.Background(), 0, "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalFound != 60-MaxMigrationBatch {
		t.Errorf("expected remaining %d, got %d", 60-MaxMigrationBatch, res.TotalFound)
	}
}

func TestMigrateClosedJobs_SkipsAlreadyArchived(t *testing.T) {
	engine, jobs, archive, _ := newTestEngine()
	job := closedJob(jobs, "J-1001")
	addActivities(jobs, job.ID, 2)

	// Archive record already exists from an earlier interrupted run.
	rec := entity.NewArchivedJob(job, 2024, "manager", entity.ClosingDocInfo{})
	if err := archive.Upsert(context.Background(), rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := engine.MigrateClosedJobs(context.Background(), 10, "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Skipped != 1 || res.Migrated != 0 {
		t.Errorf("expected one skip, got %+v", res)
	}
	if _, ok := jobs.jobs[job.ID]; ok {
		t.Errorf("stale live copy must be removed")
	}
	// Leftover activities land in the year of the existing record.
	if got := len(archive.activities[job.ID]); got != 2 {
		t.Errorf("expected 2 relocated activities, got %d", got)
	}
	if archive.records[job.ID].ArchiveYear != 2024 {
		t.Errorf("existing archive year must be kept")
	}
}

func TestMigrateClosedJobs_ItemIsolation(t *testing.T) {
	engine, jobs, archive, _ := newTestEngine()
	good1 := closedJob(jobs, "J-1001")
	bad := closedJob(jobs, "J-1002")
	good2 := closedJob(jobs, "J-1003")

	archive.failUpsertFor = bad.ID

	res, err := engine.MigrateClosedJobs(context.Background(), 10, "admin")
	if err != nil {
		t.Fatalf("sweep itself must not fail: %v", err)
	}
	if res.Migrated != 2 {
		t.Errorf("expected 2 migrated, got %d", res.Migrated)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("expected 1 item error, got %d", len(res.Errors))
	}
	if res.Errors[0].JobID != bad.ID.String() {
		t.Errorf("wrong job in item error: %s", res.Errors[0].JobID)
	}

	if archive.records[good1.ID] == nil || archive.records[good2.ID] == nil {
		t.Errorf("surviving items must be archived")
	}
	if _, ok := jobs.jobs[bad.ID]; !ok {
		t.Errorf("failed item must stay in the live store")
	}
}

func TestMigrateClosedJobs_PanicBecomesItemError(t *testing.T) {
	engine, jobs, archive, _ := newTestEngine()
	victim := closedJob(jobs, "J-1001")
	closedJob(jobs, "J-1002")

	archive.panicUpsertFor = victim.ID

	res, err := engine.MigrateClosedJobs(context.Background(), 10, "admin")
	if err != nil {
		t.Fatalf("a panic in one item must not abort the sweep: %v", err)
	}
	if res.Migrated != 1 {
		t.Errorf("expected 1 migrated, got %d", res.Migrated)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("expected 1 item error, got %d", len(res.Errors))
	}
	if res.Errors[0].JobID != victim.ID.String() {
		t.Errorf("wrong job in item error: %s", res.Errors[0].JobID)
	}
}

func TestMigrateClosedJobs_YearFromLastUpdate(t *testing.T) {
	engine, jobs, archive, _ := newTestEngine()
	job := closedJob(jobs, "J-1001")
	job.UpdatedAt = time.Date(2023, 11, 2, 0, 0, 0, 0, time.UTC)

	if _, err := engine.MigrateClosedJobs(context.Background(), 10, "admin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if archive.records[job.ID].ArchiveYear != 2023 {
		t.Errorf("archive year must come from the closure time, got %d", archive.records[job.ID].ArchiveYear)
	}
}
