package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taxpayers/backend/internal/infrastructure/logger"
	"github.com/taxpayers/backend/internal/interfaces/http/handler"
	"github.com/taxpayers/backend/internal/interfaces/http/middleware"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	basePath   string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithBasePath mounts every registrar below a path prefix
func WithBasePath(prefix string) RouterOption {
	return func(r *Router) {
		r.basePath = prefix
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		basePath:   "/",
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

// Setup registers all routes with the engine
func (r *Router) Setup() {
	base := r.engine.Group(r.basePath)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(base)
	}
}

// DomainGroup creates a route group for a specific concern
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{
		name:       name,
		prefix:     prefix,
		routes:     make([]routeDefinition, 0),
		middleware: make([]gin.HandlerFunc, 0),
	}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: "GET", path: path, handlers: handlers})
	return dg
}

// HEAD registers a HEAD route
func (dg *DomainGroup) HEAD(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: "HEAD", path: path, handlers: handlers})
	return dg
}

// OPTIONS registers an OPTIONS route
func (dg *DomainGroup) OPTIONS(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: "OPTIONS", path: path, handlers: handlers})
	return dg
}

// RegisterRoutes implements RouteRegistrar interface
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)

	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}

	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

// NewPreviewEngine builds the engine of the local preview server: /healthz
// plus the data directory under /data
func NewPreviewEngine(dataDir string, log *zap.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log),
	)

	site := handler.NewSiteHandler(dataDir)

	system := NewDomainGroup("system", "/")
	system.GET("/healthz", site.Health)

	data := NewDomainGroup("data", "/data")
	data.Use(middleware.CORS())
	data.GET("/*filepath", site.ServeData)
	data.HEAD("/*filepath", site.ServeData)
	// answered by the CORS middleware
	data.OPTIONS("/*filepath", func(c *gin.Context) {})

	NewRouter(engine).Register(system).Register(data).Setup()
	return engine
}
