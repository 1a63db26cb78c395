package service

import (
	"context"
	"path/filepath"
	"time"

	"go-screenshot-optimizer/internal/observer"
	"go-screenshot-optimizer/internal/optimizer"
	"go-screenshot-optimizer/internal/repository"
	"go-screenshot-optimizer/internal/storage"
)

// OptimizationService orchestrates the pipeline around a capture: optimize,
// record the result, ship the artifact, publish events
type OptimizationService interface {
	// ProcessScreenshot optimizes a single captured file
	ProcessScreenshot(ctx context.Context, sourcePath string) optimizer.Result

	// ProcessBuffer optimizes in-memory screenshot bytes
	ProcessBuffer(ctx context.Context, data []byte, destPath string) optimizer.Result

	// SweepCaptureDirectory optimizes everything waiting in the capture
	// directory and returns per-file results with aggregate totals
	SweepCaptureDirectory(ctx context.Context) ([]optimizer.Result, optimizer.Stats)

	// Options returns the live policy snapshot
	Options() optimizer.Policy

	// SetOptions applies a partial policy update
	SetOptions(patch optimizer.PolicyPatch) error

	// RecentResults returns up to limit recent results, newest first
	RecentResults(limit int) []optimizer.Result
}

// optimizationService implements OptimizationService
type optimizationService struct {
	optimizer    *optimizer.Optimizer
	uploader     storage.ArtifactUploader
	results      repository.ResultRepository
	events       observer.Subject
	captureDir   string
	outputDir    string
	sweepWorkers int
}

// NewOptimizationService creates a new optimization service
func NewOptimizationService(
	opt *optimizer.Optimizer,
	uploader storage.ArtifactUploader,
	results repository.ResultRepository,
	events observer.Subject,
	captureDir, outputDir string,
	sweepWorkers int,
) OptimizationService {
	return &optimizationService{
		optimizer:    opt,
		uploader:     uploader,
		results:      results,
		events:       events,
		captureDir:   captureDir,
		outputDir:    outputDir,
		sweepWorkers: sweepWorkers,
	}
}

// ProcessScreenshot optimizes a single captured file
func (s *optimizationService) ProcessScreenshot(ctx context.Context, sourcePath string) optimizer.Result {
	s.events.NotifyObservers(ctx, observer.OptimizationEvent{
		EventType: observer.OptimizeStarted,
		Timestamp: time.Now(),
		Source:    sourcePath,
	})

	result := s.optimizer.Optimize(sourcePath, s.destHint(sourcePath))
	s.finish(ctx, result)
	return result
}

// ProcessBuffer optimizes in-memory screenshot bytes
func (s *optimizationService) ProcessBuffer(ctx context.Context, data []byte, destPath string) optimizer.Result {
	s.events.NotifyObservers(ctx, observer.OptimizationEvent{
		EventType: observer.OptimizeStarted,
		Timestamp: time.Now(),
		Source:    optimizer.BufferSource,
	})

	result := s.optimizer.OptimizeBuffer(data, destPath)
	s.finish(ctx, result)
	return result
}

// SweepCaptureDirectory optimizes everything waiting in the capture directory
func (s *optimizationService) SweepCaptureDirectory(ctx context.Context) ([]optimizer.Result, optimizer.Stats) {
	var results []optimizer.Result
	if s.sweepWorkers > 1 {
		results = s.optimizer.OptimizeDirectoryConcurrent(s.captureDir, s.sweepWorkers)
	} else {
		results = s.optimizer.OptimizeDirectory(s.captureDir)
	}

	for _, result := range results {
		s.finish(ctx, result)
	}
	return results, optimizer.Summarize(results)
}

// Options returns the live policy snapshot
func (s *optimizationService) Options() optimizer.Policy {
	return s.optimizer.Options()
}

// SetOptions applies a partial policy update
func (s *optimizationService) SetOptions(patch optimizer.PolicyPatch) error {
	return s.optimizer.SetOptions(patch)
}

// RecentResults returns up to limit recent results, newest first
func (s *optimizationService) RecentResults(limit int) []optimizer.Result {
	return s.results.Recent(limit)
}

// finish records the result, publishes its event and, on success, ships
// the artifact. An upload failure never retracts a successful
// optimization: the artifact exists locally and is authoritative.
func (s *optimizationService) finish(ctx context.Context, result optimizer.Result) {
	s.results.Save(result)

	if !result.Success {
		s.events.NotifyObservers(ctx, observer.OptimizationEvent{
			EventType: observer.OptimizeFailed,
			Timestamp: time.Now(),
			Source:    result.Source,
			Error:     result.Error,
		})
		return
	}

	s.events.NotifyObservers(ctx, observer.OptimizationEvent{
		EventType:  observer.OptimizeCompleted,
		Timestamp:  time.Now(),
		Source:     result.Source,
		OutputPath: result.OutputPath,
		SavedBytes: result.SavedBytes,
		Success:    true,
		Metadata: map[string]interface{}{
			"format":        string(result.Format),
			"fallback_copy": result.FallbackCopy,
		},
	})

	location, err := s.uploader.Upload(ctx, result.OutputPath)
	if err != nil {
		s.events.NotifyObservers(ctx, observer.OptimizationEvent{
			EventType:  observer.UploadFailed,
			Timestamp:  time.Now(),
			Source:     result.Source,
			OutputPath: result.OutputPath,
			Error:      err.Error(),
		})
		return
	}

	s.events.NotifyObservers(ctx, observer.OptimizationEvent{
		EventType:  observer.UploadCompleted,
		Timestamp:  time.Now(),
		Source:     result.Source,
		OutputPath: result.OutputPath,
		Success:    true,
		Metadata:   map[string]interface{}{"location": location, "uploader": s.uploader.Name()},
	})
}

// destHint places single-file output in the configured output directory,
// or next to the source when none is configured
func (s *optimizationService) destHint(sourcePath string) string {
	if s.outputDir == "" {
		return ""
	}
	return filepath.Join(s.outputDir, filepath.Base(sourcePath))
}
