package config

import (
	"pdf-extract-service/internal/domain"
	"pdf-extract-service/internal/service"
	"pdf-extract-service/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config    domain.Config
	Logger    domain.Logger
	Cache     *service.DocumentCache
	Extractor domain.Extractor
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	cfg := NewConfig()
	appLogger := logger.NewLogger(cfg.GetLogLevel())
	return newContainer(cfg, appLogger)
}

// NewContainerWithLogger wires the container around a caller-supplied
// logger. The MCP entrypoint uses this to keep log output off stdout.
func NewContainerWithLogger(appLogger domain.Logger) *Container {
	return newContainer(NewConfig(), appLogger)
}

func newContainer(cfg domain.Config, appLogger domain.Logger) *Container {
	cache := service.NewDocumentCache(cfg.GetCacheCapacity(), cfg.GetMaxFileSize(), appLogger)
	extractor := service.NewExtractionService(cache, appLogger, cfg.GetExtractConcurrency())

	return &Container{
		Config:    cfg,
		Logger:    appLogger,
		Cache:     cache,
		Extractor: extractor,
	}
}
