package transport

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-screenshot-optimizer/internal/config"
	apperrors "go-screenshot-optimizer/internal/errors"
	"go-screenshot-optimizer/internal/logger"
	"go-screenshot-optimizer/internal/observer"
	"go-screenshot-optimizer/internal/optimizer"
	"go-screenshot-optimizer/internal/service"
	"go-screenshot-optimizer/pkg/models"
	"go-screenshot-optimizer/pkg/validation"
)

// NewHandler builds the local control API consumed by the tracker UI.
// The optimizer pipeline itself has no network surface; everything here
// is a thin shell over the service layer.
func NewHandler(svc service.OptimizationService, metrics *observer.MetricsObserver, cfg *config.Config) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	pathValidator := validation.NewPathValidator()

	// Configure routes
	r.GET("/health", healthCheck)
	r.POST("/optimize", optimizeBuffer(svc, pathValidator, cfg))
	r.POST("/sweep", sweepCaptures(svc, cfg))
	r.GET("/results", recentResults(svc))
	r.GET("/stats", statsReport(svc, metrics))
	r.GET("/options", getOptions(svc))
	r.PATCH("/options", patchOptions(svc))

	return r
}

func optimizeBuffer(svc service.OptimizationService, pathValidator *validation.PathValidator, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.OptimizeBufferRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.WithError(err).WithField("ip", c.ClientIP()).Error("Invalid request format")
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		if err := pathValidator.ValidateDestination(req.Destination); err != nil {
			respondError(c, apperrors.GetStatusCode(err), "invalid destination", err)
			return
		}

		data, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid base64 payload", err)
			return
		}

		start := time.Now()
		result := svc.ProcessBuffer(ctx, data, req.Destination)

		logger.WithFields(logrus.Fields{
			"destination":        req.Destination,
			"success":            result.Success,
			"saved_bytes":        result.SavedBytes,
			"processing_time_ms": time.Since(start).Milliseconds(),
		}).Info("Buffer optimization request completed")

		c.JSON(http.StatusOK, result)
	}
}

func sweepCaptures(svc service.OptimizationService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		results, stats := svc.SweepCaptureDirectory(ctx)

		logger.WithFields(logrus.Fields{
			"files":       stats.Files,
			"failures":    stats.Failures,
			"saved_bytes": stats.SavedBytes,
		}).Info("Capture sweep completed")

		c.JSON(http.StatusOK, models.SweepResponse{Results: results, Stats: stats})
	}
}

func recentResults(svc service.OptimizationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 50
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				respondError(c, http.StatusBadRequest, "invalid limit", err)
				return
			}
			limit = parsed
		}
		c.JSON(http.StatusOK, models.ResultsResponse{Results: svc.RecentResults(limit)})
	}
}

func statsReport(svc service.OptimizationService, metrics *observer.MetricsObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := models.StatsResponse{
			History:  sweepStats(svc),
			Counters: metrics.GetMetrics(),
		}
		c.JSON(http.StatusOK, response)
	}
}

// sweepStats aggregates the retained result history
func sweepStats(svc service.OptimizationService) (stats optimizer.Stats) {
	for _, result := range svc.RecentResults(0) {
		stats.Add(result)
	}
	return stats
}

func getOptions(svc service.OptimizationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Options())
	}
}

func patchOptions(svc service.OptimizationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch optimizer.PolicyPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}
		if err := svc.SetOptions(patch); err != nil {
			respondError(c, apperrors.GetStatusCode(err), "invalid policy update", err)
			return
		}
		c.JSON(http.StatusOK, svc.Options())
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
