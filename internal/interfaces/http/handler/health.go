package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acefarmer/backend/internal/infrastructure/persistence"
)

// HealthHandler reports process and database liveness
type HealthHandler struct {
	db *persistence.Database
}

// NewHealthHandler creates a health handler
func NewHealthHandler(db *persistence.Database) *HealthHandler {
	return &HealthHandler{db: db}
}

// Healthz answers readiness probes
// GET /healthz
func (h *HealthHandler) Healthz(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
