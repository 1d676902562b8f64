package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Configuration struct {
	Server   ServerConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Upload   UploadConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            string
	Username        string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int
}

type StorageConfig struct {
	// BaseDir is where the filesystem blob store keeps objects.
	BaseDir string
	// BaseURL is the public prefix secure retrieval URLs are built from.
	BaseURL string
	// Namespace prefixes every object written for this application.
	Namespace string
	// MaxObjectBytes caps a single stored object; 0 disables the cap.
	MaxObjectBytes int64
}

type UploadConfig struct {
	AllowedExtensions []string
	MaxFileBytes      int64
}

type LoggingConfig struct {
	Level string
}

// Load builds the configuration from defaults plus environment overrides.
// A .env file is honored when present, the way local setups ship one.
func Load() *Configuration {
	_ = godotenv.Load()

	cfg := defaults()

	overrideString(&cfg.Server.Port, "PORT")
	overrideString(&cfg.Server.Environment, "APP_ENV")
	overrideString(&cfg.Database.Host, "DB_HOST")
	overrideString(&cfg.Database.Port, "DB_PORT")
	overrideString(&cfg.Database.Username, "DB_USER")
	overrideString(&cfg.Database.Password, "DB_PASSWORD")
	overrideString(&cfg.Database.Name, "DB_NAME")
	overrideString(&cfg.Database.SSLMode, "DB_SSLMODE")
	overrideString(&cfg.Storage.BaseDir, "BLOB_DIR")
	overrideString(&cfg.Storage.BaseURL, "BLOB_BASE_URL")
	overrideString(&cfg.Logging.Level, "LOG_LEVEL")
	overrideInt64(&cfg.Upload.MaxFileBytes, "UPLOAD_MAX_BYTES")

	return cfg
}

func defaults() *Configuration {
	return &Configuration{
		Server: ServerConfig{
			Port:         "3009",
			Environment:  "development",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            "5432",
			Username:        "postgres",
			Password:        "password",
			Name:            "case_tracker",
			SSLMode:         "disable",
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: 300,
		},
		Storage: StorageConfig{
			BaseDir:        "blobs",
			BaseURL:        "https://localhost:3009/files",
			Namespace:      "case-tracker",
			MaxObjectBytes: 10 * 1024 * 1024,
		},
		Upload: UploadConfig{
			AllowedExtensions: []string{"jpg", "jpeg", "png", "pdf", "doc", "docx"},
			MaxFileBytes:      5 * 1024 * 1024,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LogConfig logs the effective configuration with secrets redacted.
func LogConfig(cfg *Configuration, logger *zap.Logger) {
	logger.Info("Application configuration",
		zap.String("port", cfg.Server.Port),
		zap.String("environment", cfg.Server.Environment),
		zap.String("database_host", cfg.Database.Host),
		zap.String("database_name", cfg.Database.Name),
		zap.String("blob_dir", cfg.Storage.BaseDir),
		zap.String("blob_base_url", cfg.Storage.BaseURL),
		zap.Int64("upload_max_bytes", cfg.Upload.MaxFileBytes),
		zap.String("log_level", cfg.Logging.Level),
	)
}

func overrideString(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func overrideInt64(target *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			*target = parsed
		}
	}
}
