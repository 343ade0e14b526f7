package dto

import (
	"time"

	"jobdesk/internal/core/entity"
)

// IssueDocumentRequest asks for a numbered document.
// IssueDate accepts either a Gregorian or a Buddhist-era calendar year;
// the service normalizes the year before choosing the counter.
type IssueDocumentRequest struct {
	DocType      string    `json:"docType" binding:"required"`
	IssueDate    time.Time `json:"issueDate" binding:"required"`
	ManualNumber string    `json:"manualNumber"`
	JobID        *string   `json:"jobId"`
	Amount       string    `json:"amount"`
}

// ReconcileCounterRequest asks for a counter to be lifted to the highest
// issued sequence. Prefix defaults to the configured prefix for the type;
// Year accepts Gregorian or Buddhist-era values.
type ReconcileCounterRequest struct {
	DocType string `json:"docType" binding:"required"`
	Prefix  string `json:"prefix"`
	Year    int    `json:"year" binding:"required"`
}

// ReconcileCounterResponse acknowledges a reconciliation.
type ReconcileCounterResponse struct {
	OK      bool   `json:"ok"`
	DocType string `json:"docType"`
	Year    int    `json:"year"`
}

// DocumentResponse is one numbered document.
type DocumentResponse struct {
	ID        string    `json:"id"`
	DocType   string    `json:"docType"`
	DocNo     string    `json:"docNo"`
	Status    string    `json:"status"`
	IssueDate time.Time `json:"issueDate"`
	JobID     *string   `json:"jobId,omitempty"`
	Amount    string    `json:"amount"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromDocumentRecord creates DocumentResponse from entity.DocumentRecord.
func FromDocumentRecord(d *entity.DocumentRecord) DocumentResponse {
	resp := DocumentResponse{
		ID:        d.ID.String(),
		DocType:   string(d.DocType),
		DocNo:     d.DocNo,
		Status:    string(d.Status),
		IssueDate: d.IssueDate,
		Amount:    d.Amount.String(),
		CreatedBy: d.CreatedBy,
		CreatedAt: d.CreatedAt,
	}
	if d.JobID != nil {
		s := d.JobID.String()
		resp.JobID = &s
	}
	return resp
}
