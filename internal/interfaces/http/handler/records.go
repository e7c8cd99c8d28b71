package handler

import (
	"github.com/gin-gonic/gin"
	recordsapp "github.com/ledgerbook/backend/internal/application/records"
	"github.com/ledgerbook/backend/internal/domain/workbook"
	"github.com/ledgerbook/backend/internal/interfaces/http/dto"
	"github.com/ledgerbook/backend/internal/interfaces/http/middleware"
)

// RecordHandler handles record table endpoints
type RecordHandler struct {
	BaseHandler
	service *recordsapp.Service
}

// NewRecordHandler creates a new RecordHandler
func NewRecordHandler(service *recordsapp.Service) *RecordHandler {
	return &RecordHandler{service: service}
}

// ReplaceBatchRequest carries a batch of records to upsert
type ReplaceBatchRequest struct {
	Records []recordsapp.RecordRequest `json:"records" binding:"required"`
}

// List returns every decodable record of the kind
func (h *RecordHandler) List(c *gin.Context) {
	var req dto.KindRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	kind := workbook.EntityKind(req.Kind)

	resp, err := h.service.List(c.Request.Context(), kind)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ReplaceBatch upserts a batch of records by ID
func (h *RecordHandler) ReplaceBatch(c *gin.Context) {
	var uri dto.KindRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	var req ReplaceBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	kind := workbook.EntityKind(uri.Kind)

	resp, err := h.service.ReplaceBatch(c.Request.Context(), kind, req.Records)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete clears the record with the given ID
func (h *RecordHandler) Delete(c *gin.Context) {
	var req dto.KindIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	kind := workbook.EntityKind(req.Kind)

	if err := h.service.Delete(c.Request.Context(), kind, req.ID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers record routes
func (h *RecordHandler) RegisterRoutes(rg *gin.RouterGroup) {
	records := rg.Group("/records")
	{
		records.GET(":kind", h.List)
		records.PUT(":kind", h.ReplaceBatch)
		records.DELETE(":kind/:id", h.Delete)
	}
}
