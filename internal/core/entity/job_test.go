package entity

import (
	"context"
	"testing"
)

func TestJobStatusTransitions(t *testing.T) {
	tests := []struct {
		from JobStatus
		to   JobStatus
		ok   bool
	}{
		{JobReceived, JobInProgress, true},
		{JobInProgress, JobWaitingParts, true},
		{JobWaitingParts, JobInProgress, true},
		{JobInProgress, JobDone, true},
		{JobDone, JobWaitingCustomerPickup, true},
		{JobDone, JobClosed, true},
		{JobWaitingCustomerPickup, JobClosed, true},

		{JobReceived, JobDone, false},
		{JobReceived, JobClosed, false},
		{JobInProgress, JobClosed, false},
		{JobClosed, JobInProgress, false},
		{JobClosed, JobReceived, false},
		{JobWaitingParts, JobDone, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.ok {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.ok)
		}
	}
}

func TestJobTransition(t *testing.T) {
	job := NewJob("J-1001", "workshop", "Somchai P.")
	if job.Status != JobReceived {
		t.Fatalf("new job must start received, got %s", job.Status)
	}
	startVersion := job.Version

	if err := job.Transition(JobInProgress); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Version != startVersion+1 {
		t.Errorf("transition must bump version")
	}

	if err := job.Transition(JobClosed); err == nil {
		t.Errorf("in_progress -> closed must be rejected")
	}
	if job.Status != JobInProgress {
		t.Errorf("failed transition must not change status")
	}
}

func TestJobValidate(t *testing.T) {
	ctx := context.Background()

	job := NewJob("J-1001", "workshop", "Somchai P.")
	if err := job.Validate(ctx); err != nil {
		t.Errorf("valid job rejected: %v", err)
	}

	job.Department = ""
	if err := job.Validate(ctx); err == nil {
		t.Errorf("missing department must be rejected")
	}

	job.Department = "workshop"
	job.CustomerName = ""
	if err := job.Validate(ctx); err == nil {
		t.Errorf("missing customer name must be rejected")
	}
}

func TestNewArchivedJob(t *testing.T) {
	job := NewJob("J-1001", "workshop", "Somchai P.")
	job.Status = JobWaitingCustomerPickup

	rec := NewArchivedJob(job, 2025, "manager", ClosingDocInfo{PaymentStatus: "paid"})

	if rec.Status != JobClosed {
		t.Errorf("archived job must be forced closed, got %s", rec.Status)
	}
	if !rec.IsArchived {
		t.Errorf("archive marker must be set")
	}
	if rec.OriginalJobID != job.ID {
		t.Errorf("original identifier must be preserved")
	}
	if rec.ArchiveYear != 2025 || rec.ArchivedBy != "manager" {
		t.Errorf("provenance missing: %+v", rec)
	}
	if rec.PaymentStatus != "paid" {
		t.Errorf("payment status missing")
	}
	if rec.ArchivedAt.IsZero() {
		t.Errorf("archive timestamp missing")
	}
}

func TestFormatDocNo(t *testing.T) {
	tests := []struct {
		prefix string
		year   int
		seq    int64
		want   string
	}{
		{"QT", 2025, 1, "QT2025-0001"},
		{"QT", 2025, 42, "QT2025-0042"},
		{"T", 2026, 9999, "T2026-9999"},
		{"T", 2026, 10000, "T2026-10000"},
	}
	for _, tt := range tests {
		if got := FormatDocNo(tt.prefix, tt.year, tt.seq); got != tt.want {
			t.Errorf("FormatDocNo(%s, %d, %d) = %s, want %s", tt.prefix, tt.year, tt.seq, got, tt.want)
		}
	}
}

func TestArchiveLabel(t *testing.T) {
	if got := ArchiveLabel(2025); got != "job_archive_2025" {
		t.Errorf("unexpected label %s", got)
	}
}
