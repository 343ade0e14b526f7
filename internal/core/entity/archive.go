package entity

import (
	"fmt"
	"time"

	"jobdesk/internal/core/id"
)

// SnapshotAlgo tags the compression applied to an archived job snapshot.
type SnapshotAlgo string

const (
	SnapshotNone SnapshotAlgo = "none"
	SnapshotZstd SnapshotAlgo = "zstd"
)

// ClosingDocInfo identifies the sales document that triggered job closure
// and the payment state recorded at that moment.
type ClosingDocInfo struct {
	DocID         *id.ID       `json:"docId,omitempty"`
	DocType       DocumentType `json:"docType,omitempty"`
	DocNo         string       `json:"docNo,omitempty"`
	PaymentStatus string       `json:"paymentStatus,omitempty"`
}

// ArchivedJob is a job copied into a year-scoped archive partition.
// Created once by the archival engine and never mutated afterward, except by
// idempotent merge-retries of the same archival operation.
type ArchivedJob struct {
	ID         id.ID     `db:"id" json:"id"`
	JobNo      string    `db:"job_no" json:"jobNo"`
	Department string    `db:"department" json:"department"`
	Status     JobStatus `db:"status" json:"status"`

	CustomerName  string `db:"customer_name" json:"customerName"`
	CustomerPhone string `db:"customer_phone" json:"customerPhone,omitempty"`
	Description   string `db:"description" json:"description,omitempty"`

	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	// Provenance
	IsArchived    bool      `db:"is_archived" json:"isArchived"`
	ArchiveYear   int       `db:"archive_year" json:"archiveYear"`
	ArchivedAt    time.Time `db:"archived_at" json:"archivedAt"`
	ArchivedBy    string    `db:"archived_by" json:"archivedBy"`
	OriginalJobID id.ID     `db:"original_job_id" json:"originalJobId"`

	ClosingDocID   *id.ID       `db:"closing_doc_id" json:"closingDocId,omitempty"`
	ClosingDocType DocumentType `db:"closing_doc_type" json:"closingDocType,omitempty"`
	ClosingDocNo   string       `db:"closing_doc_no" json:"closingDocNo,omitempty"`
	PaymentStatus  string       `db:"payment_status" json:"paymentStatus,omitempty"`

	// Snapshot holds the full source job serialized at archival time,
	// compressed when it exceeds the codec threshold.
	Snapshot     []byte       `db:"snapshot" json:"-"`
	SnapshotAlgo SnapshotAlgo `db:"snapshot_algo" json:"-"`
}

// NewArchivedJob copies a live job into an archive record for the given year.
// Status is forced to closed regardless of the source status: a job reaching
// the archive is closed by definition.
func NewArchivedJob(job *Job, year int, actor string, closing ClosingDocInfo) *ArchivedJob {
	return &ArchivedJob{
		ID:             id.New(),
		JobNo:          job.JobNo,
		Department:     job.Department,
		Status:         JobClosed,
		CustomerName:   job.CustomerName,
		CustomerPhone:  job.CustomerPhone,
		Description:    job.Description,
		CreatedBy:      job.CreatedBy,
		CreatedAt:      job.CreatedAt,
		IsArchived:     true,
		ArchiveYear:    year,
		ArchivedAt:     time.Now().UTC(),
		ArchivedBy:     actor,
		OriginalJobID:  job.ID,
		ClosingDocID:   closing.DocID,
		ClosingDocType: closing.DocType,
		ClosingDocNo:   closing.DocNo,
		PaymentStatus:  closing.PaymentStatus,
	}
}

// ArchiveLabel names the archive partition for a year, e.g. "job_archive_2026".
func ArchiveLabel(year int) string {
	return fmt.Sprintf("job_archive_%d", year)
}

// ArchivedActivity is a job activity entry relocated into the archive.
// It keeps the original activity identifier so re-copies are idempotent.
type ArchivedActivity struct {
	ID            id.ID     `db:"id" json:"id"`
	OriginalJobID id.ID     `db:"original_job_id" json:"originalJobId"`
	ArchiveYear   int       `db:"archive_year" json:"archiveYear"`
	Note          string    `db:"note" json:"note"`
	Author        string    `db:"author" json:"author"`
	PhotoRefs     []string  `db:"photo_refs" json:"photoRefs,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	ArchivedAt    time.Time `db:"archived_at" json:"archivedAt"`
}

// NewArchivedActivity copies a live activity entry into the archive.
func NewArchivedActivity(a *JobActivity, year int) *ArchivedActivity {
	return &ArchivedActivity{
		ID:            a.ID,
		OriginalJobID: a.JobID,
		ArchiveYear:   year,
		Note:          a.Note,
		Author:        a.Author,
		PhotoRefs:     a.PhotoRefs,
		CreatedAt:     a.CreatedAt,
		ArchivedAt:    time.Now().UTC(),
	}
}
