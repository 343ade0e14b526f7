package entity

import (
	"context"
	"time"

	"jobdesk/internal/core/apperror"
	"jobdesk/internal/core/id"
)

// JobStatus enumerates the job workflow state machine.
type JobStatus string

const (
	JobReceived              JobStatus = "received"
	JobInProgress            JobStatus = "in_progress"
	JobWaitingParts          JobStatus = "waiting_parts"
	JobDone                  JobStatus = "done"
	JobWaitingCustomerPickup JobStatus = "waiting_customer_pickup"
	JobClosed                JobStatus = "closed"
)

// jobTransitions maps each status to its allowed successors.
var jobTransitions = map[JobStatus][]JobStatus{
	JobReceived:              {JobInProgress},
	JobInProgress:            {JobWaitingParts, JobDone},
	JobWaitingParts:          {JobInProgress},
	JobDone:                  {JobWaitingCustomerPickup, JobClosed},
	JobWaitingCustomerPickup: {JobClosed},
	JobClosed:                {},
}

// CanTransition reports whether a job may move from its current status to next.
func (s JobStatus) CanTransition(next JobStatus) bool {
	for _, allowed := range jobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Job is a unit of repair work owned by a department workflow.
// Jobs are mutated by status-transition actions and removed from the live
// store only by the archival engine once closed.
type Job struct {
	ID         id.ID     `db:"id" json:"id"`
	JobNo      string    `db:"job_no" json:"jobNo"`
	Department string    `db:"department" json:"department"`
	Status     JobStatus `db:"status" json:"status"`

	// Customer snapshot taken at intake
	CustomerName  string `db:"customer_name" json:"customerName"`
	CustomerPhone string `db:"customer_phone" json:"customerPhone,omitempty"`

	Description string `db:"description" json:"description,omitempty"`

	// SalesDocID is the zero-or-one linked sales document
	SalesDocID *id.ID `db:"sales_doc_id" json:"salesDocId,omitempty"`

	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Version for optimistic locking
	Version int `db:"version" json:"version"`
}

// NewJob creates a job at intake.
func NewJob(jobNo, department, customerName string) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:           id.New(),
		JobNo:        jobNo,
		Department:   department,
		Status:       JobReceived,
		CustomerName: customerName,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      1,
	}
}

// Transition moves the job to the next status, enforcing the state machine.
func (j *Job) Transition(next JobStatus) error {
	if !j.Status.CanTransition(next) {
		return apperror.NewValidation("invalid job status transition").
			WithDetail("from", string(j.Status)).
			WithDetail("to", string(next))
	}
	j.Status = next
	j.Touch()
	return nil
}

// Touch updates the UpdatedAt timestamp and increments version.
func (j *Job) Touch() {
	j.UpdatedAt = time.Now().UTC()
	j.Version++
}

// Validate checks job invariants.
func (j *Job) Validate(ctx context.Context) error {
	if j.Department == "" {
		return apperror.NewValidation("department is required").
			WithDetail("field", "department")
	}
	if j.CustomerName == "" {
		return apperror.NewValidation("customer name is required").
			WithDetail("field", "customerName")
	}
	return nil
}

// JobActivity is one append-only log entry attached to a job.
// Entries are never updated or deleted individually; the archival engine
// relocates them en masse when the parent job is archived.
type JobActivity struct {
	ID        id.ID     `db:"id" json:"id"`
	JobID     id.ID     `db:"job_id" json:"jobId"`
	Note      string    `db:"note" json:"note"`
	Author    string    `db:"author" json:"author"`
	PhotoRefs []string  `db:"photo_refs" json:"photoRefs,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewJobActivity creates an activity entry for the given job.
func NewJobActivity(jobID id.ID, author, note string) *JobActivity {
	return &JobActivity{
		ID:        id.New(),
		JobID:     jobID,
		Note:      note,
		Author:    author,
		CreatedAt: time.Now().UTC(),
	}
}
