package handler

import (
	"github.com/gin-gonic/gin"
	workbookapp "github.com/ledgerbook/backend/internal/application/workbook"
	"github.com/ledgerbook/backend/internal/interfaces/http/middleware"
)

// WorkbookHandler handles workbook lifecycle and timestamp endpoints
type WorkbookHandler struct {
	BaseHandler
	service *workbookapp.Service
}

// NewWorkbookHandler creates a new WorkbookHandler
func NewWorkbookHandler(service *workbookapp.Service) *WorkbookHandler {
	return &WorkbookHandler{service: service}
}

// ConnectRequest opens a workbook by name
type ConnectRequest struct {
	Name string `json:"name" binding:"required,min=1,max=128"`
}

// Connect opens (or creates) the named workbook and makes it the active
// session
func (h *WorkbookHandler) Connect(c *gin.Context) {
	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.service.Connect(c.Request.Context(), req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Status reports the current connection state
func (h *WorkbookHandler) Status(c *gin.Context) {
	h.Success(c, h.service.Status())
}

// Disconnect drops the active session without touching stored data
func (h *WorkbookHandler) Disconnect(c *gin.Context) {
	h.service.Disconnect()
	h.NoContent(c)
}

// Timestamps returns the last-modified marker of every dataset
func (h *WorkbookHandler) Timestamps(c *gin.Context) {
	stamps, err := h.service.Timestamps(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stamps)
}

// RegisterRoutes registers workbook routes
func (h *WorkbookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	workbook := rg.Group("/workbook")
	{
		workbook.POST("/connect", h.Connect)
		workbook.GET("/status", h.Status)
		workbook.POST("/disconnect", h.Disconnect)
	}

	rg.GET("/timestamps", h.Timestamps)
}
