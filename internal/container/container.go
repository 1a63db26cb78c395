package container

import (
	"fmt"
	"net/http"

	"go-screenshot-optimizer/internal/config"
	"go-screenshot-optimizer/internal/factory"
	"go-screenshot-optimizer/internal/logger"
	"go-screenshot-optimizer/internal/observer"
	"go-screenshot-optimizer/internal/optimizer"
	"go-screenshot-optimizer/internal/repository"
	"go-screenshot-optimizer/internal/service"
	"go-screenshot-optimizer/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config    *config.Config
	optimizer *optimizer.Optimizer
	metrics   *observer.MetricsObserver
	service   service.OptimizationService
	handler   http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	// Build dependency graph
	opt, err := optimizer.New(cfg.Policy)
	if err != nil {
		return nil, fmt.Errorf("failed to create optimizer: %w", err)
	}

	uploader, err := factory.NewUploaderFactory().CreateUploader(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create uploader: %w", err)
	}

	results := repository.NewMemoryResultRepository(cfg.ResultHistorySize)

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	svc := service.NewOptimizationService(
		opt, uploader, results, events,
		cfg.CaptureDir, cfg.OutputDir, cfg.SweepWorkers,
	)
	handler := transport.NewHandler(svc, metrics, cfg)

	return &Container{
		config:    cfg,
		optimizer: opt,
		metrics:   metrics,
		service:   svc,
		handler:   handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Service returns the optimization service
func (c *Container) Service() service.OptimizationService {
	return c.service
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}
