package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Larkoefua/caseTrackerApi/internal/api"
	"github.com/Larkoefua/caseTrackerApi/internal/config"
	"github.com/Larkoefua/caseTrackerApi/internal/db"
	"github.com/Larkoefua/caseTrackerApi/internal/db/models"
	"github.com/Larkoefua/caseTrackerApi/internal/services"
	"github.com/Larkoefua/caseTrackerApi/internal/storage"
	"github.com/Larkoefua/caseTrackerApi/internal/utils"
	"github.com/Larkoefua/caseTrackerApi/pkg/logger"
	"github.com/Larkoefua/caseTrackerApi/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	zapLogger, err := logger.New(cfg.Server.Environment, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)

	config.LogConfig(cfg, zapLogger)

	database, err := db.Initialize(cfg)
	if err != nil {
		zapLogger.Fatal("Failed to initialize database", zap.Error(err))
	}

	metricsCollector := metrics.NewCollector()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := seedDatabase(ctx, database, zapLogger); err != nil {
		zapLogger.Fatal("Failed to seed database", zap.Error(err))
	}

	blobStore, err := storage.NewLocalStore(cfg.Storage.BaseDir, cfg.Storage.BaseURL, cfg.Storage.MaxObjectBytes)
	if err != nil {
		zapLogger.Fatal("Failed to initialize blob store", zap.Error(err))
	}

	caseService := services.NewCaseService(database, zapLogger, metricsCollector)
	documentService := services.NewDocumentService(database, blobStore, cfg.Storage.Namespace, zapLogger, metricsCollector)
	updateService := services.NewUpdateService(database, zapLogger)

	if swept, err := documentService.ReconcileBlobs(ctx); err != nil {
		zapLogger.Warn("Blob reconciliation failed", zap.Error(err))
	} else if swept > 0 {
		zapLogger.Info("Reconciled orphaned blobs", zap.Int("count", swept))
	}

	router := api.NewRouter(cfg, zapLogger, metricsCollector, caseService, documentService, updateService, database)
	router.SetupRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}
	go func() {
		if err := router.Run(":" + port); err != nil {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()
	zapLogger.Info("Server started", zap.String("port", port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	sqlDB, err := database.DB()
	if err == nil {
		sqlDB.Close()
	}
	zapLogger.Info("Server gracefully stopped")
}

func seedDatabase(ctx context.Context, database *gorm.DB, logger *zap.Logger) error {
	var count int64
	database.WithContext(ctx).Model(&models.User{}).Count(&count)
	if count > 0 {
		logger.Info("Database already seeded, skipping")
		return nil
	}
	logger.Info("Seeding database with initial data")

	seeds := []struct {
		name     string
		email    string
		password string
		role     models.UserRole
	}{
		{"Ama Larbi", "ama.larbi@casetracker.dev", "changeme-admin", models.RoleAdmin},
		{"Kofi Mensah", "kofi.mensah@casetracker.dev", "changeme-user", models.RoleUser},
		{"Efua Owusu", "efua.owusu@casetracker.dev", "changeme-user", models.RoleUser},
	}

	users := make([]models.User, 0, len(seeds))
	for _, s := range seeds {
		hash, err := utils.HashPassword(s.password)
		if err != nil {
			return err
		}
		users = append(users, models.User{
			ID:           uuid.NewString(),
			Name:         s.name,
			Email:        s.email,
			PasswordHash: hash,
			Role:         s.role,
		})
	}

	if err := database.WithContext(ctx).Create(&users).Error; err != nil {
		return err
	}
	logger.Info("Created initial users", zap.Int("count", len(users)))
	return nil
}
