package handler

import (
	"github.com/gin-gonic/gin"
	integrityapp "github.com/ledgerbook/backend/internal/application/integrity"
	"github.com/ledgerbook/backend/internal/domain/workbook"
	"github.com/ledgerbook/backend/internal/interfaces/http/dto"
	"github.com/ledgerbook/backend/internal/interfaces/http/middleware"
)

// IntegrityHandler handles table health endpoints
type IntegrityHandler struct {
	BaseHandler
	service *integrityapp.Service
}

// NewIntegrityHandler creates a new IntegrityHandler
func NewIntegrityHandler(service *integrityapp.Service) *IntegrityHandler {
	return &IntegrityHandler{service: service}
}

// Scan reports the rows of a table that reads silently skip
func (h *IntegrityHandler) Scan(c *gin.Context) {
	var req dto.KindRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	kind := workbook.EntityKind(req.Kind)

	report, err := h.service.Scan(c.Request.Context(), kind)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Repair assigns fresh IDs to rows that lost their identifying cell
func (h *IntegrityHandler) Repair(c *gin.Context) {
	var req dto.KindRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	kind := workbook.EntityKind(req.Kind)

	resp, err := h.service.Repair(c.Request.Context(), kind)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RegisterRoutes registers integrity routes
func (h *IntegrityHandler) RegisterRoutes(rg *gin.RouterGroup) {
	integrity := rg.Group("/integrity")
	{
		integrity.GET(":kind", h.Scan)
		integrity.POST(":kind/repair", h.Repair)
	}
}
