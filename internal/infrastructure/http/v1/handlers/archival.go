package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"jobdesk/internal/core/apperror"
	"jobdesk/internal/core/id"
	"jobdesk/internal/domain/archival"
	"jobdesk/internal/infrastructure/http/v1/dto"
)

// ArchivalHandler handles job closure and bulk migration requests.
type ArchivalHandler struct {
	*BaseHandler
	engine *archival.Engine
}

// NewArchivalHandler creates a new archival handler.
func NewArchivalHandler(engine *archival.Engine) *ArchivalHandler {
	return &ArchivalHandler{
		BaseHandler: NewBaseHandler(),
		engine:      engine,
	}
}

// CloseJob closes a job and moves it into the archive partition.
// POST /api/v1/jobs/:id/close
func (h *ArchivalHandler) CloseJob(c *gin.Context) {
	jobID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid job id").WithDetail("id", c.Param("id")))
		return
	}

	var req dto.CloseJobRequest
	if !h.BindJSON(c, &req) {
		return
	}

	closedDate := time.Now().UTC()
	if req.ClosedDate != nil {
		closedDate = *req.ClosedDate
	}

	opts := archival.CloseOptions{PaymentStatus: req.PaymentStatus}
	if req.SalesDocID != nil && *req.SalesDocID != "" {
		docID, err := id.Parse(*req.SalesDocID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid sales document id").WithDetail("salesDocId", *req.SalesDocID))
			return
		}
		opts.SalesDocID = &docID
	}

	label, err := h.engine.ArchiveAndClose(c.Request.Context(), jobID, closedDate, h.ActorName(c), opts)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.CloseJobResponse{OK: true, JobID: jobID.String(), Archive: label})
}

// Migrate sweeps closed jobs still resident in the live store.
// POST /api/v1/admin/archive/migrate
func (h *ArchivalHandler) Migrate(c *gin.Context) {
	var req dto.MigrateRequest
	if c.Request.ContentLength > 0 {
		if !h.BindJSON(c, &req) {
			return
		}
	}

	result, err := h.engine.MigrateClosedJobs(c.Request.Context(), req.Limit, h.ActorName(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromMigrationResult(result))
}
