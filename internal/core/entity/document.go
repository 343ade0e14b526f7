// Package entity defines the core business records of the engine:
// numbered documents, jobs with their activity logs, archived jobs, and
// the per-year document counters.
package entity

import (
	"context"
	"time"

	"jobdesk/internal/core/apperror"
	"jobdesk/internal/core/id"
	"jobdesk/internal/core/types"
)

// DocumentType enumerates the business document series.
type DocumentType string

const (
	DocQuotation       DocumentType = "quotation"
	DocDeliveryNote    DocumentType = "delivery_note"
	DocTaxInvoice      DocumentType = "tax_invoice"
	DocReceipt         DocumentType = "receipt"
	DocBillingNote     DocumentType = "billing_note"
	DocCreditNote      DocumentType = "credit_note"
	DocWithholdingCert DocumentType = "withholding_cert"
)

// AllDocumentTypes lists every known document type.
func AllDocumentTypes() []DocumentType {
	return []DocumentType{
		DocQuotation, DocDeliveryNote, DocTaxInvoice, DocReceipt,
		DocBillingNote, DocCreditNote, DocWithholdingCert,
	}
}

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	switch t {
	case DocQuotation, DocDeliveryNote, DocTaxInvoice, DocReceipt,
		DocBillingNote, DocCreditNote, DocWithholdingCert:
		return true
	}
	return false
}

// DocumentStatus enumerates the document lifecycle.
type DocumentStatus string

const (
	DocStatusDraft     DocumentStatus = "draft"
	DocStatusIssued    DocumentStatus = "issued"
	DocStatusPaid      DocumentStatus = "paid"
	DocStatusCancelled DocumentStatus = "cancelled"
)

// DocumentRecord is a numbered business document.
// Once numbered, (doc_type, doc_no) is unique across all time, including
// documents whose linked job has been archived.
type DocumentRecord struct {
	ID        id.ID          `db:"id" json:"id"`
	DocType   DocumentType   `db:"doc_type" json:"docType"`
	DocNo     string         `db:"doc_no" json:"docNo"`
	Status    DocumentStatus `db:"status" json:"status"`
	IssueDate time.Time      `db:"issue_date" json:"issueDate"`

	// JobID links the document to the job it was issued for.
	// After the job is archived the link points at the archived identifier.
	JobID *id.ID `db:"job_id" json:"jobId,omitempty"`

	Amount types.Money `db:"amount" json:"amount"`

	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`
}

// NewDocumentRecord creates a draft document with generated ID and timestamps.
func NewDocumentRecord(docType DocumentType, issueDate time.Time, createdBy string) *DocumentRecord {
	now := time.Now().UTC()
	return &DocumentRecord{
		ID:        id.New(),
		DocType:   docType,
		Status:    DocStatusDraft,
		IssueDate: issueDate,
		Amount:    types.Zero(),
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
}

// Validate implements self-validation of document invariants.
func (d *DocumentRecord) Validate(ctx context.Context) error {
	if !d.DocType.Valid() {
		return apperror.NewValidation("unknown document type").
			WithDetail("doc_type", string(d.DocType))
	}
	if d.IssueDate.IsZero() {
		return apperror.NewValidation("issue date is required").
			WithDetail("field", "issueDate")
	}
	return nil
}

// MarkIssued sets the number and moves the document out of draft.
func (d *DocumentRecord) MarkIssued(docNo string) {
	d.DocNo = docNo
	d.Status = DocStatusIssued
	d.UpdatedAt = time.Now().UTC()
	d.Version++
}
