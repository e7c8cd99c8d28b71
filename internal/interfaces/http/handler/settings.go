package handler

import (
	"github.com/gin-gonic/gin"
	settingsapp "github.com/ledgerbook/backend/internal/application/settings"
	"github.com/ledgerbook/backend/internal/interfaces/http/middleware"
)

// SettingsHandler handles the settings blob endpoints
type SettingsHandler struct {
	BaseHandler
	service *settingsapp.Service
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(service *settingsapp.Service) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// Get returns the settings blob, migrated to the current schema version
func (h *SettingsHandler) Get(c *gin.Context) {
	resp, err := h.service.Get(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update replaces the stored options wholesale
func (h *SettingsHandler) Update(c *gin.Context) {
	var req settingsapp.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.service.Update(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RegisterRoutes registers settings routes
func (h *SettingsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	settings := rg.Group("/settings")
	{
		settings.GET("", h.Get)
		settings.PUT("", h.Update)
	}
}
