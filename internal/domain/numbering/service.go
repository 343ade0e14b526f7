// Package numbering mints unique, human-readable document numbers.
//
// Automatic numbers come from a per-year counter scoped to the
// (docType, prefix) pair and are issued inside a serializable transaction:
// two concurrent calls for the same key never receive the same sequence.
// Manually supplied numbers bypass the counter entirely and are rejected
// when the number is already in use for the document type.
package numbering

import (
	"context"
	"fmt"
	"time"

	"jobdesk/internal/core/apperror"
	"jobdesk/internal/core/calendar"
	"jobdesk/internal/core/entity"
	"jobdesk/internal/core/id"
	"jobdesk/internal/core/tx"
	"jobdesk/internal/core/types"
	"jobdesk/internal/domain/settings"
	"jobdesk/pkg/logger"
)

// Service issues document numbers.
type Service struct {
	docs     DocumentRepo
	counters CounterRepo
	jobs     JobRepo
	settings settings.Repo
	tx       tx.Retryable
}

// NewService creates a numbering service.
func NewService(docs DocumentRepo, counters CounterRepo, jobs JobRepo, cfg settings.Repo, txm tx.Retryable) *Service {
	return &Service{
		docs:     docs,
		counters: counters,
		jobs:     jobs,
		settings: cfg,
		tx:       txm,
	}
}

// IssueRequest describes one document to number.
type IssueRequest struct {
	DocType   entity.DocumentType
	IssueDate time.Time

	// ManualNumber, when set, is used verbatim instead of the counter.
	ManualNumber string

	// JobID links the document to a job; the job's status transition and
	// activity entry ride in the issuing transaction.
	JobID *id.ID

	Amount types.Money
	Actor  string
}

// IssueNumber mints a document number and creates the DocumentRecord.
func (s *Service) IssueNumber(ctx context.Context, req IssueRequest) (*entity.DocumentRecord, error) {
	if !req.DocType.Valid() {
		return nil, apperror.NewValidation("unknown document type").
			WithDetail("doc_type", string(req.DocType))
	}
	if req.IssueDate.IsZero() {
		return nil, apperror.NewValidation("issue date is required").
			WithDetail("field", "issueDate")
	}

	if req.ManualNumber != "" {
		return s.issueManual(ctx, req)
	}
	return s.issueAutomatic(ctx, req)
}

// issueManual creates a document with a caller-supplied number.
// The counter is not touched; the duplicate scan and the insert share one
// transaction so two concurrent manual issues of the same number cannot
// both pass the check.
func (s *Service) issueManual(ctx context.Context, req IssueRequest) (*entity.DocumentRecord, error) {
	// The record is built inside the closure so a serialization retry starts
	// from a fresh draft instead of re-marking a half-built one.
	var doc *entity.DocumentRecord
	err := s.tx.RunSerializableWithRetry(ctx, func(ctx context.Context) error {
		exists, err := s.docs.ExistsNumber(ctx, req.DocType, req.ManualNumber)
		if err != nil {
			return fmt.Errorf("scan existing numbers: %w", err)
		}
		if exists {
			return apperror.NewDuplicateNumber(string(req.DocType), req.ManualNumber)
		}

		doc = entity.NewDocumentRecord(req.DocType, req.IssueDate, req.Actor)
		doc.Amount = req.Amount
		doc.JobID = req.JobID
		doc.MarkIssued(req.ManualNumber)
		if err := s.docs.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		return s.linkJob(ctx, doc, req)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "document number issued",
		"mode", "manual", "doc_type", req.DocType, "doc_no", doc.DocNo, "id", doc.ID)
	return doc, nil
}

// issueAutomatic derives the number from the per-year counter.
func (s *Service) issueAutomatic(ctx context.Context, req IssueRequest) (*entity.DocumentRecord, error) {
	year := calendar.GregorianYear(req.IssueDate)

	prefix, err := s.settings.GetPrefix(ctx, req.DocType)
	if err != nil {
		return nil, err
	}
	key := entity.CounterKey{Year: year, DocType: req.DocType, Prefix: prefix}

	var doc *entity.DocumentRecord
	err = s.tx.RunSerializableWithRetry(ctx, func(ctx context.Context) error {
		seq, err := s.counters.Next(ctx, key)
		if err != nil {
			return fmt.Errorf("next sequence %s: %w", key, err)
		}

		doc = entity.NewDocumentRecord(req.DocType, req.IssueDate, req.Actor)
		doc.Amount = req.Amount
		doc.JobID = req.JobID
		doc.MarkIssued(entity.FormatDocNo(prefix, year, seq))
		if err := s.docs.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		return s.linkJob(ctx, doc, req)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "document number issued",
		"mode", "auto", "doc_type", req.DocType, "doc_no", doc.DocNo, "id", doc.ID)
	return doc, nil
}

// linkJob applies the job-side effects of issuing a document: a status
// transition where the workflow defines one and an activity entry.
// A missing job is reported as a warning, never a failure: the document
// itself is already valid.
func (s *Service) linkJob(ctx context.Context, doc *entity.DocumentRecord, req IssueRequest) error {
	if req.JobID == nil {
		return nil
	}

	job, err := s.jobs.GetByID(ctx, *req.JobID)
	if err != nil {
		if apperror.IsNotFound(err) {
			logger.Warn(ctx, "linked job not found, document created without job update",
				"job_id", *req.JobID, "doc_no", doc.DocNo)
			return nil
		}
		return fmt.Errorf("load linked job: %w", err)
	}

	changed := false
	if isSalesDoc(doc.DocType) {
		job.SalesDocID = &doc.ID
		changed = true
	}
	if next, ok := statusAfterIssue(doc.DocType); ok && job.Status.CanTransition(next) {
		job.Status = next
		changed = true
	}
	if changed {
		job.Touch()
		if err := s.jobs.Update(ctx, job); err != nil {
			return fmt.Errorf("update linked job: %w", err)
		}
	}

	note := fmt.Sprintf("issued %s %s", doc.DocType, doc.DocNo)
	if err := s.jobs.AppendActivity(ctx, entity.NewJobActivity(job.ID, req.Actor, note)); err != nil {
		return fmt.Errorf("append job activity: %w", err)
	}
	return nil
}

// isSalesDoc reports document types that become the job's linked sales doc.
func isSalesDoc(t entity.DocumentType) bool {
	switch t {
	case entity.DocTaxInvoice, entity.DocReceipt, entity.DocBillingNote:
		return true
	}
	return false
}

// statusAfterIssue maps a document type to the job status its issuance
// implies. Quotations and delivery notes leave the job where it is.
func statusAfterIssue(t entity.DocumentType) (entity.JobStatus, bool) {
	switch t {
	case entity.DocTaxInvoice, entity.DocReceipt, entity.DocBillingNote:
		return entity.JobWaitingCustomerPickup, true
	}
	return "", false
}

// ReconcileCounter lifts the counter for (docType, prefix, year) to the
// highest sequence found among issued documents. Needed once after a prefix
// is re-enabled when numbers were manually backfilled outside the counter.
// An empty prefix resolves to the configured prefix for docType.
//
// The baseline scan runs inside the same serializable transaction as the
// counter write, so two concurrent reconciliations cannot both compute a
// stale baseline.
func (s *Service) ReconcileCounter(ctx context.Context, docType entity.DocumentType, prefix string, year int) error {
	if !docType.Valid() {
		return apperror.NewValidation("unknown document type").
			WithDetail("doc_type", string(docType))
	}
	if prefix == "" {
		configured, err := s.settings.GetPrefix(ctx, docType)
		if err != nil {
			return err
		}
		prefix = configured
	}
	year = calendar.NormalizeYear(year)
	key := entity.CounterKey{Year: year, DocType: docType, Prefix: prefix}

	err := s.tx.RunSerializableWithRetry(ctx, func(ctx context.Context) error {
		floor, err := s.docs.MaxIssuedSeq(ctx, docType, prefix, year)
		if err != nil {
			return fmt.Errorf("scan issued sequences: %w", err)
		}
		if floor == 0 {
			return nil
		}
		return s.counters.Raise(ctx, key, floor)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "counter reconciled", "key", key.String())
	return nil
}
