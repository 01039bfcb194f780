package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/acefarmer/backend/internal/infrastructure/config"
	"github.com/acefarmer/backend/internal/infrastructure/logger"
	"github.com/acefarmer/backend/internal/interfaces/http/middleware"
)

// maxBulkBodyBytes bounds the bulk import request body
const maxBulkBodyBytes = 2 << 20

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
		registrars: make([]RouteRegistrar, 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes under the versioned API group
func (r *Router) Setup() {
	api := r.engine.Group("/api/"+r.apiVersion, middleware.BodyLimit(maxBulkBodyBytes))
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// NewEngine builds a gin engine with the standard middleware chain
func NewEngine(cfg *config.Config, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		logger.RequestIDMiddleware(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
	)
	return engine
}
