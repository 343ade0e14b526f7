package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobdesk/internal/core/apperror"
	"jobdesk/internal/core/calendar"
	"jobdesk/internal/core/entity"
	"jobdesk/internal/core/id"
	"jobdesk/internal/core/types"
	"jobdesk/internal/domain/numbering"
	"jobdesk/internal/infrastructure/http/v1/dto"
)

// DocumentHandler handles document numbering requests.
type DocumentHandler struct {
	*BaseHandler
	service *numbering.Service
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(service *numbering.Service) *DocumentHandler {
	return &DocumentHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Issue mints a number and creates the document record.
// POST /api/v1/documents/issue
func (h *DocumentHandler) Issue(c *gin.Context) {
	var req dto.IssueDocumentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	issue := numbering.IssueRequest{
		DocType:      entity.DocumentType(req.DocType),
		IssueDate:    req.IssueDate,
		ManualNumber: req.ManualNumber,
		Actor:        h.ActorName(c),
	}

	if req.JobID != nil && *req.JobID != "" {
		jobID, err := id.Parse(*req.JobID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid job id").WithDetail("jobId", *req.JobID))
			return
		}
		issue.JobID = &jobID
	}

	if req.Amount != "" {
		amount, err := types.NewMoneyFromString(req.Amount)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid amount").WithDetail("amount", req.Amount))
			return
		}
		issue.Amount = amount
	} else {
		issue.Amount = types.Zero()
	}

	doc, err := h.service.IssueNumber(c.Request.Context(), issue)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromDocumentRecord(doc))
}

// Reconcile lifts a counter to the highest issued sequence, recovering from
// manually backfilled numbers.
// POST /api/v1/admin/counters/reconcile
func (h *DocumentHandler) Reconcile(c *gin.Context) {
	var req dto.ReconcileCounterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	docType := entity.DocumentType(req.DocType)
	if err := h.service.ReconcileCounter(c.Request.Context(), docType, req.Prefix, req.Year); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ReconcileCounterResponse{
		OK:      true,
		DocType: req.DocType,
		Year:    calendar.NormalizeYear(req.Year),
	})
}
