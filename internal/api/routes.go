package api

import (
	"net/http"

	"github.com/Larkoefua/caseTrackerApi/internal/api/handlers"
	"github.com/Larkoefua/caseTrackerApi/internal/api/middleware"
	"github.com/Larkoefua/caseTrackerApi/internal/config"
	"github.com/Larkoefua/caseTrackerApi/internal/services"
	"github.com/Larkoefua/caseTrackerApi/pkg/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Router struct {
	engine             *gin.Engine
	logger             *zap.Logger
	metrics            *metrics.Collector
	caseHandler        *handlers.CaseHandler
	documentHandler    *handlers.DocumentHandler
	updateHandler      *handlers.UpdateHandler
	identityMiddleware *middleware.IdentityMiddleware
	reqMiddleware      *middleware.RequestMiddleware
}

func NewRouter(
	cfg *config.Configuration,
	logger *zap.Logger,
	collector *metrics.Collector,
	caseService *services.CaseService,
	documentService *services.DocumentService,
	updateService *services.UpdateService,
	db *gorm.DB,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	reqMiddleware := middleware.NewRequestMiddleware(logger)
	identityMiddleware := middleware.NewIdentityMiddleware(db, logger)

	engine.Use(reqMiddleware.ProcessRequest())
	engine.Use(reqMiddleware.RecoverPanic())
	engine.Use(cors.Default())

	return &Router{
		engine:             engine,
		logger:             logger,
		metrics:            collector,
		caseHandler:        handlers.NewCaseHandler(caseService, logger),
		documentHandler:    handlers.NewDocumentHandler(documentService, cfg.Upload, logger),
		updateHandler:      handlers.NewUpdateHandler(updateService, logger),
		identityMiddleware: identityMiddleware,
		reqMiddleware:      reqMiddleware,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "up", "name": "case-tracker"})
	})

	r.engine.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"counters":  r.metrics.Counters(),
			"latencies": r.metrics.Latencies(),
			"sizes":     r.metrics.Sizes(),
		})
	})

	apiRoutes := r.engine.Group("/api")
	apiRoutes.Use(r.identityMiddleware.RequireIdentity())

	cases := apiRoutes.Group("/cases")
	{
		cases.POST("", r.caseHandler.Create)
		cases.GET("", r.caseHandler.List)
		cases.GET("/:id", r.caseHandler.Get)
		cases.PUT("/:id", r.caseHandler.UpdateDetails)
		cases.PUT("/:id/status", r.caseHandler.UpdateStatus)
		cases.POST("/:id/documents", r.documentHandler.Upload)
		cases.GET("/:id/documents", r.documentHandler.ListForCase)
		cases.POST("/:id/updates", r.updateHandler.Create)
		cases.GET("/:id/updates", r.updateHandler.ListForCase)
	}

	documents := apiRoutes.Group("/documents")
	{
		documents.POST("", r.documentHandler.Upload)
		documents.GET("/case/:caseId", r.documentHandler.ListForCase)
		documents.GET("/:id", r.documentHandler.Get)
		documents.PUT("/:id", r.documentHandler.Update)
		documents.DELETE("/:id", r.documentHandler.Delete)
	}

	updates := apiRoutes.Group("/updates")
	{
		updates.POST("", r.updateHandler.Create)
		updates.GET("/case/:caseId", r.updateHandler.ListForCase)
		updates.DELETE("/:id", r.updateHandler.Delete)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) Run(addr string) error {
	r.logger.Info("Starting HTTP server", zap.String("address", addr))
	return r.engine.Run(addr)
}
