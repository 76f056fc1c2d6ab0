package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lumipallolabs/walletmap/internal/api/handlers"
	"github.com/lumipallolabs/walletmap/internal/api/middleware"
	"github.com/lumipallolabs/walletmap/internal/render"
	"github.com/lumipallolabs/walletmap/internal/store"
)

// Options configures the router
type Options struct {
	Chart   render.Options
	Size    handlers.Size // default canvas when width or height is omitted
	LogoDir string
}

// Router wraps the Gin router with handlers
type Router struct {
	engine        *gin.Engine
	renderHandler *handlers.RenderHandler
	treeHandler   *handlers.TreeHandler
}

// NewRouter creates a new Router with all handlers
func NewRouter(snapshots *store.SnapshotStore, opts Options) *Router {
	gin.SetMode(gin.ReleaseMode)

	charts := handlers.NewChartCache(snapshots, opts.Chart)
	r := &Router{
		engine:        gin.New(),
		renderHandler: handlers.NewRenderHandler(opts.Chart, opts.Size, opts.LogoDir),
		treeHandler:   handlers.NewTreeHandler(snapshots, charts, opts.Size, opts.LogoDir),
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// setupMiddleware configures middleware
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.Logger())
	r.engine.Use(middleware.Metrics())
	r.engine.Use(middleware.CORS())
}

// setupRoutes configures API routes
func (r *Router) setupRoutes() {
	// Health check
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.engine.GET("/trees/:name", r.treeHandler.Page)

	v1 := r.engine.Group("/api/v1")
	{
		v1.POST("/render", r.renderHandler.Render)

		trees := v1.Group("/trees")
		{
			trees.GET("", r.treeHandler.List)
			trees.GET("/:name", r.treeHandler.Get)
			trees.PUT("/:name", r.treeHandler.Put)
			trees.DELETE("/:name", r.treeHandler.Delete)
			trees.GET("/:name/svg", r.treeHandler.SVG)
			trees.GET("/:name/leaves", r.treeHandler.Leaves)
			trees.GET("/:name/diff/:base", r.treeHandler.Diff)
		}
	}
}

// Engine returns the underlying Gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
