package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/api/handlers"
	"storefront/internal/api/middleware"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/logger"
	"storefront/internal/services/scayle"

	"github.com/gin-gonic/gin"
)

// Dependencies are built once in main and shared by every request.
type Dependencies struct {
	Catalog   *scayle.Catalog
	Pipeline  *catalog.Pipeline
	Carts     *cart.Registry
	Syncer    handlers.SnapshotSyncer
	Publisher events.Publisher
}

type Server struct {
	config *config.Config
	logger *logger.Logger
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, deps Dependencies) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if deps.Pipeline == nil {
		deps.Pipeline = catalog.NewPipeline()
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger.Named("http")))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(cfg.CORSOrigins))

	// Initialize handlers
	productHandler := handlers.NewProductHandler(deps.Catalog, deps.Pipeline, logger)
	cartHandler := handlers.NewCartHandler(deps.Carts, deps.Catalog, deps.Publisher, cfg.CartEventsTopic, cfg.EventPublishTimeout, logger)
	syncHandler := handlers.NewSyncHandler(deps.Syncer, deps.Publisher, cfg.CatalogEventTopic, logger)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Routes
	v1 := router.Group("/api/v1")
	{
		// Products
		products := v1.Group("/products")
		{
			products.GET("", productHandler.ListAll)
			products.GET("/:category", productHandler.List)
			products.GET("/:category/brands", productHandler.Brands)
			products.GET("/:category/:id", productHandler.Get)
		}

		// Cart
		carts := v1.Group("/cart", middleware.Session())
		{
			carts.GET("", cartHandler.Get)
			carts.DELETE("", cartHandler.Clear)
			carts.POST("/toggle", cartHandler.Toggle)
			carts.POST("/items", cartHandler.AddItem)
			carts.PUT("/items/:id", cartHandler.UpdateItem)
			carts.DELETE("/items/:id", cartHandler.RemoveItem)
		}

		// Catalog snapshots
		catalogs := v1.Group("/catalog")
		{
			catalogs.GET("/syncs", syncHandler.Runs)
			catalogs.POST("/:category/sync", syncHandler.Sync)
			catalogs.GET("/:category/snapshot", syncHandler.Snapshot)
		}
	}

	return &Server{
		config: cfg,
		logger: logger,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.config.UpstreamTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on %s", addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
