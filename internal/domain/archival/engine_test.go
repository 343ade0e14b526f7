package archival

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"jobdesk/internal/core/apperror"
	"jobdesk/internal/core/entity"
	"jobdesk/internal/core/id"
)

// Fakes

type fakeTx struct{}

func (f *fakeTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeTx) RunSerializableWithRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeJobStore struct {
	mu         sync.Mutex
	jobs       map[id.ID]*entity.Job
	activities map[id.ID][]*entity.JobActivity
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{
		jobs:       make(map[id.ID]*entity.Job),
		activities: make(map[id.ID][]*entity.JobActivity),
	}
}

func (f *fakeJobStore) GetByID(ctx context.Context, jobID id.ID) (*entity.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, apperror.NewNotFound("job", jobID.String())
	}
	copied := *job
	return &copied, nil
}

func (f *fakeJobStore) Delete(ctx context.Context, jobID id.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.jobs, jobID)
	return nil
}

func (f *fakeJobStore) ListClosed(ctx context.Context, limit int) ([]*entity.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Job
	for _, job := range f.jobs {
		if job.Status == entity.JobClosed {
			copied := *job
			out = append(out, &copied)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeJobStore) ListActivities(ctx context.Context, jobID id.ID, limit int) ([]*entity.JobActivity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := f.activities[jobID]
	if len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]*entity.JobActivity, len(entries))
	copy(out, entries)
	return out, nil
}

type fakeArchiveStore struct {
	mu         sync.Mutex
	records    map[id.ID]*entity.ArchivedJob // keyed by original job ID
	activities map[id.ID][]*entity.ArchivedActivity
	jobs       *fakeJobStore

	// moveFailAfter, when > 0, fails MoveActivities after that many
	// successful batch calls.
	moveFailAfter int
	moveCalls     int

	failUpsertFor  id.ID
	panicUpsertFor id.ID
}

func newFakeArchiveStore(jobs *fakeJobStore) *fakeArchiveStore {
	return &fakeArchiveStore{
		records:    make(map[id.ID]*entity.ArchivedJob),
		activities: make(map[id.ID][]*entity.ArchivedActivity),
		jobs:       jobs,
	}
}

func (f *fakeArchiveStore) Upsert(ctx context.Context, rec *entity.ArchivedJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !id.IsNil(f.panicUpsertFor) && rec.OriginalJobID == f.panicUpsertFor {
		panic("archive store exploded")
	}
	if !id.IsNil(f.failUpsertFor) && rec.OriginalJobID == f.failUpsertFor {
		return errors.New("archive write refused")
	}
	if existing, ok := f.records[rec.OriginalJobID]; ok {
		rec.ID = existing.ID
	}
	copied := *rec
	f.records[rec.OriginalJobID] = &copied
	return nil
}

func (f *fakeArchiveStore) GetByOriginalID(ctx context.Context, originalJobID id.ID) (*entity.ArchivedJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[originalJobID]
	if !ok {
		return nil, apperror.NewNotFound("archived job", originalJobID.String())
	}
	copied := *rec
	return &copied, nil
}

func (f *fakeArchiveStore) Get(ctx context.Context, year int, originalJobID id.ID) (*entity.ArchivedJob, error) {
	rec, err := f.GetByOriginalID(ctx, originalJobID)
	if err != nil {
		return nil, err
	}
	if rec.ArchiveYear != year {
		return nil, apperror.NewNotFound("archived job", originalJobID.String())
	}
	return rec, nil
}

func (f *fakeArchiveStore) MoveActivities(ctx context.Context, year int, batch []*entity.JobActivity) error {
	f.mu.Lock()
	f.moveCalls++
	if f.moveFailAfter > 0 && f.moveCalls > f.moveFailAfter {
		f.mu.Unlock()
		return errors.New("batch commit failed")
	}
	for _, a := range batch {
		archived := entity.NewArchivedActivity(a, year)
		f.activities[a.JobID] = append(f.activities[a.JobID], archived)
	}
	f.mu.Unlock()

	// Delete the originals, mirroring the copy+delete batch.
	f.jobs.mu.Lock()
	defer f.jobs.mu.Unlock()
	moved := make(map[id.ID]bool, len(batch))
	for _, a := range batch {
		moved[a.ID] = true
	}
	for jobID, entries := range f.jobs.activities {
		var kept []*entity.JobActivity
		for _, a := range entries {
			if !moved[a.ID] {
				kept = append(kept, a)
			}
		}
		f.jobs.activities[jobID] = kept
	}
	return nil
}

type fakeDocStore struct {
	mu       sync.Mutex
	docs     map[id.ID]*entity.DocumentRecord
	relinked map[id.ID]id.ID // docID -> archived job ID
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{
		docs:     make(map[id.ID]*entity.DocumentRecord),
		relinked: make(map[id.ID]id.ID),
	}
}

func (f *fakeDocStore) GetByID(ctx context.Context, docID id.ID) (*entity.DocumentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("document", docID.String())
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeDocStore) RelinkJob(ctx context.Context, docID, archivedJobID id.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[docID]; !ok {
		return apperror.NewNotFound("document", docID.String())
	}
	f.relinked[docID] = archivedJobID
	return nil
}

type fakeCodec struct{}

func (fakeCodec) Encode(v any) ([]byte, entity.SnapshotAlgo, error) {
	return []byte(fmt.Sprintf("%v", v)), entity.SnapshotNone, nil
}

func newTestEngine() (*Engine, *fakeJobStore, *fakeArchiveStore, *fakeDocStore) {
	jobs := newFakeJobStore()
	archive := newFakeArchiveStore(jobs)
	docs := newFakeDocStore()
	return NewEngine(jobs, archive, docs, fakeCodec{}, &fakeTx{}), jobs, archive, docs
}

func closedJob(jobs *fakeJobStore, jobNo string) *entity.Job {
	job := &entity.Job{
		ID:           id.New(),
		JobNo:        jobNo,
		Status:       entity.JobClosed,
		CustomerName: "Customer",
		CreatedAt:    time.Now().UTC().Add(-48 * time.Hour),
		UpdatedAt:    time.Now().UTC(),
		Version:      1,
	}
	jobs.jobs[job.ID] = job
	return job
}

func addActivities(jobs *fakeJobStore, jobID id.ID, n int) {
	for i := 0; i < n; i++ {
		jobs.activities[jobID] = append(jobs.activities[jobID],
			entity.NewJobActivity(jobID, "tech", fmt.Sprintf("note %d", i)))
	}
}

// Tests

func TestArchiveAndClose_MovesJob(t *testing.T) {
	engine, jobs, archive, _ := newTestEngine()
	job := closedJob(jobs, "J-1001")
	addActivities(jobs, job.ID, 3)

	closedDate := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	label, err := engine.ArchiveAndClose(context.Background(), job.ID, closedDate, "manager", CloseOptions{PaymentStatus: "paid"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != "job_archive_2025" {
		t.Errorf("expected job_archive_2025, got %s", label)
	}

	if _, ok := jobs.jobs[job.ID]; ok {
		t.Errorf("live job should be deleted")
	}

	rec := archive.records[job.ID]
	if rec == nil {
		t.Fatalf("archive record missing")
	}
	if !rec.IsArchived || rec.ArchiveYear != 2025 {
		t.Errorf("bad provenance: archived=%v year=%d", rec.IsArchived, rec.ArchiveYear)
	}
	if rec.ArchivedBy != "manager" {
		t.Errorf("expected archiver recorded, got %q", rec.ArchivedBy)
	}
	if rec.Status != entity.JobClosed {
		t.Errorf("archived job must be closed, got %s", rec.Status)
	}
	if rec.PaymentStatus != "paid" {
		t.Errorf("payment status not recorded: %q", rec.PaymentStatus)
	}
	if len(rec.Snapshot) == 0 {
		t.Errorf("snapshot missing")
	}

	if len(jobs.activities[job.ID]) != 0 {
		t.Errorf("live activities should be relocated, %d left", len(jobs.activities[job.ID]))
	}
	if len(archive.activities[job.ID]) != 3 {
		t.Errorf("expected 3 archived activities, got %d", len(archive.activities[job.ID]))
	}
}

func TestArchiveAndClose_BuddhistEraClosedDate(t *testing.T) {
	engine, jobs, archive, _ := newTestEngine()
	job := closedJob(jobs, "J-1001")

	closedDate := time.Date(2568, 6, 15, 0, 0, 0, 0, time.UTC)
	label, err := engine.ArchiveAndClose(context.Background(), job.ID, closedDate, "manager", CloseOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != "job_archive_2025" {
		t.Errorf("expected normalized year partition, got %s", label)
	}
	if archive.records[job.ID].ArchiveYear != 2025 {
		t.Errorf("expected archive_year 2025, got %d", archive.records[job.ID].ArchiveYear)
	}
}

func TestArchiveAndClose_RelinksSalesDocument(t *testing.T) {
	engine, jobs, archive, docs := newTestEngine()
	job := closedJob(jobs, "J-1001")

	doc := entity.NewDocumentRecord(entity.DocTaxInvoice, time.Now(), "office")
	doc.MarkIssued("T2025-0042")
	doc.JobID = &job.ID
	docs.docs[doc.ID] = doc
	job.SalesDocID = &doc.ID

	if _, err := engine.ArchiveAndClose(context.Background(), job.ID, time.Now(), "manager", CloseOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := archive.records[job.ID]
	if rec.ClosingDocID == nil || *rec.ClosingDocID != doc.ID {
		t.Errorf("closing doc not recorded")
	}
	if rec.ClosingDocNo != "T2025-0042" {
		t.Errorf("closing doc number not recorded: %q", rec.ClosingDocNo)
	}

	archivedID, ok := docs.relinked[doc.ID]
	if !ok {
		t.Fatalf("sales document was not relinked")
	}
	if archivedID != rec.ID {
		t.Errorf("relink must point at the archived identifier")
	}
}

func TestArchiveAndClose_DanglingDocLink(t *testing.T) {
	engine, jobs, archive, docs := newTestEngine()
	job := closedJob(jobs, "J-1001")
	ghost := id.New()
	job.SalesDocID = &ghost

	if _, err := engine.ArchiveAndClose(context.Background(), job.ID, time.Now(), "manager", CloseOptions{}); err != nil {
		t.Fatalf("dangling doc link must not fail the close: %v", err)
	}

	rec := archive.records[job.ID]
	if rec.ClosingDocID == nil || *rec.ClosingDocID != ghost {
		t.Errorf("bare identifier should still be recorded")
	}
	if rec.ClosingDocNo != "" {
		t.Errorf("no number should be recorded for a dangling link")
	}
	if len(docs.relinked) != 0 {
		t.Errorf("no relink should be attempted for a missing document")
	}
	if _, ok := jobs.jobs[job.ID]; ok {
		t.Errorf("live job should still be deleted")
	}
}

func TestArchiveAndClose_MissingJobIsIdempotent(t *testing.T) {
	engine, _, _, _ := newTestEngine()

	label, err := engine.ArchiveAndClose(context.Background(), id.New(), time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), "manager", CloseOptions{})
	if err != nil {
		t.Fatalf("missing job must be an idempotent success: %v", err)
	}
	if label != "job_archive_2025" {
		t.Errorf("unexpected label %s", label)
	}
}

func TestArchiveAndClose_ResumesInterruptedCopy(t *testing.T) {
	engine, jobs, archive, _ := newTestEngine()
	job := closedJob(jobs, "J-1001")
	addActivities(jobs, job.ID, 450)

	// First batch lands, second fails mid-copy.
	archive.moveFailAfter = 1
	_, err := engine.ArchiveAndClose(context.Background(), job.ID, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "manager", CloseOptions{})
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodePartialMigration {
		t.Fatalf("expected PARTIAL_MIGRATION, got %v", err)
	}

	if archive.records[job.ID] == nil {
		t.Fatalf("main record must be archived despite the failed copy")
	}
	if len(archive.activities[job.ID]) != 200 {
		t.Errorf("expected 200 activities after first batch, got %d", len(archive.activities[job.ID]))
	}

	// Re-run resumes where the copy stopped.
	archive.moveFailAfter = 0
	label, err := engine.ArchiveAndClose(context.Background(), job.ID, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "manager", CloseOptions{})
	if err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if label != "job_archive_2025" {
		t.Errorf("unexpected label %s", label)
	}
	if got := len(archive.activities[job.ID]); got != 450 {
		t.Errorf("expected all 450 activities archived, got %d", got)
	}
	if left := len(jobs.activities[job.ID]); left != 0 {
		t.Errorf("no live activities should remain, got %d", left)
	}
}

func TestArchiveAndClose_ChunksLargeLogs(t *testing.T) {
	engine, jobs, archive, _ := newTestEngine()
	job := closedJob(jobs, "J-1001")
	addActivities(jobs, job.ID, 500)

	if _, err := engine.ArchiveAndClose(context.Background(), job.ID, time.Now(), "manager", CloseOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 500 entries at 200 per batch needs 3 batches.
	if archive.moveCalls != 3 {
		t.Errorf("expected 3 batches, got %d", archive.moveCalls)
	}
	if got := len(archive.activities[job.ID]); got != 500 {
		t.Errorf("expected 500 archived activities, got %d", got)
	}
}

func TestArchiveAndClose_ReArchiveKeepsOneRecord(t *testing.T) {
	engine, jobs, archive, _ := newTestEngine()
	job := closedJob(jobs, "J-1001")
	ctx := context.Background()
	closedDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	if _, err := engine.ArchiveAndClose(ctx, job.ID, closedDate, "manager", CloseOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	firstID := archive.records[job.ID].ID

	// Second close of the same job: no live record, same archive row.
	label, err := engine.ArchiveAndClose(ctx, job.ID, closedDate, "manager", CloseOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != "job_archive_2025" {
		t.Errorf("unexpected label %s", label)
	}
	if len(archive.records) != 1 {
		t.Errorf("expected a single archive record, got %d", len(archive.records))
	}
	if archive.records[job.ID].ID != firstID {
		t.Errorf("archive identifier must be stable across retries")
	}
}
