package handler

import (
	"github.com/gin-gonic/gin"

	appsync "github.com/acefarmer/backend/internal/application/sync"
	"github.com/acefarmer/backend/internal/interfaces/http/dto"
)

// CustomerHandler serves the stored member snapshots
type CustomerHandler struct {
	BaseHandler
	orchestrator *appsync.Orchestrator
}

// NewCustomerHandler creates a customer handler
func NewCustomerHandler(orchestrator *appsync.Orchestrator) *CustomerHandler {
	return &CustomerHandler{orchestrator: orchestrator}
}

// RegisterRoutes registers customer routes
func (h *CustomerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	customers := rg.Group("/customers")
	{
		customers.GET("/:memberNo", h.Get)
	}
}

// Get returns the stored snapshot of one member
// GET /api/v1/customers/:memberNo
func (h *CustomerHandler) Get(c *gin.Context) {
	snapshot, err := h.orchestrator.LoadSnapshot(c.Request.Context(), c.Param("memberNo"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, dto.FromMemberSnapshot(snapshot))
}
