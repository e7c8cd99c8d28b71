package handler

import (
	"github.com/gin-gonic/gin"
	licensingapp "github.com/ledgerbook/backend/internal/application/licensing"
	"github.com/ledgerbook/backend/internal/interfaces/http/middleware"
)

// LicenseHandler handles trial and license endpoints
type LicenseHandler struct {
	BaseHandler
	service *licensingapp.Service
}

// NewLicenseHandler creates a new LicenseHandler
func NewLicenseHandler(service *licensingapp.Service) *LicenseHandler {
	return &LicenseHandler{service: service}
}

// StatusQuery identifies whose entitlement to derive
type StatusQuery struct {
	Email string `form:"email" binding:"required,email"`
}

// Status derives the entitlement for an identifier without writing anything
func (h *LicenseHandler) Status(c *gin.Context) {
	var query StatusQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.service.Status(c.Request.Context(), query.Email)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Register starts or refreshes a trial for an identifier
func (h *LicenseHandler) Register(c *gin.Context) {
	var req licensingapp.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RegisterRoutes registers license routes
func (h *LicenseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	license := rg.Group("/license")
	{
		license.GET("/status", h.Status)
		license.POST("/register", h.Register)
	}
}
