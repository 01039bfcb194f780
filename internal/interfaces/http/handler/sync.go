package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appsync "github.com/acefarmer/backend/internal/application/sync"
	"github.com/acefarmer/backend/internal/interfaces/http/dto"
)

// SyncHandler exposes member synchronization over HTTP
type SyncHandler struct {
	BaseHandler
	orchestrator *appsync.Orchestrator
	bulkWorkers  int
	logger       *zap.Logger
}

// NewSyncHandler creates a sync handler
func NewSyncHandler(orchestrator *appsync.Orchestrator, bulkWorkers int, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		orchestrator: orchestrator,
		bulkWorkers:  bulkWorkers,
		logger:       logger,
	}
}

// RegisterRoutes registers sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.POST("/members/:memberNo/refresh", h.Refresh)
		sync.POST("/bulk", h.Bulk)
	}
}

// Refresh runs one synchronization pass for a member
// POST /api/v1/sync/members/:memberNo/refresh
func (h *SyncHandler) Refresh(c *gin.Context) {
	memberNo := c.Param("memberNo")

	summary, err := h.orchestrator.SyncMember(c.Request.Context(), memberNo)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, summary)
}

// Bulk synchronizes a list of members with the configured worker pool
// POST /api/v1/sync/bulk
func (h *SyncHandler) Bulk(c *gin.Context) {
	var req dto.BulkImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid request body: "+err.Error())
		return
	}

	h.logger.Info("bulk import requested",
		zap.Int("members", len(req.MemberNos)),
		zap.String("request_id", getRequestID(c)))

	report := h.orchestrator.BulkImport(c.Request.Context(), req.MemberNos, h.bulkWorkers)
	h.Success(c, report)
}
