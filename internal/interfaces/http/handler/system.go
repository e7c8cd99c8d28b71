package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether the grid database is reachable.
type Pinger interface {
	Ping() error
}

// SystemHandler handles health and liveness endpoints
type SystemHandler struct {
	BaseHandler
	db        Pinger
	startedAt time.Time
	version   string
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger, version string) *SystemHandler {
	return &SystemHandler{
		db:        db,
		startedAt: time.Now().UTC(),
		version:   version,
	}
}

// Healthz reports process and database health
func (h *SystemHandler) Healthz(c *gin.Context) {
	status := http.StatusOK
	overall := "healthy"
	database := "ok"
	if err := h.db.Ping(); err != nil {
		status = http.StatusServiceUnavailable
		overall = "unhealthy"
		database = "error"
	}

	c.JSON(status, gin.H{
		"status":   overall,
		"time":     time.Now().UTC().Format(time.RFC3339),
		"uptime":   time.Since(h.startedAt).Round(time.Second).String(),
		"version":  h.version,
		"database": database,
	})
}

// Ping is a trivial liveness check
func (h *SystemHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", h.Ping)
}
