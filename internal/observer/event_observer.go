package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// OptimizationEvent represents one step in a screenshot's lifecycle
type OptimizationEvent struct {
	EventType  EventType              `json:"event_type"`
	Timestamp  time.Time              `json:"timestamp"`
	Source     string                 `json:"source"`
	OutputPath string                 `json:"output_path,omitempty"`
	SavedBytes int64                  `json:"saved_bytes,omitempty"`
	Success    bool                   `json:"success"`
	Error      string                 `json:"error,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of optimization event
type EventType string

const (
	// OptimizeStarted when the pipeline picks up a screenshot
	OptimizeStarted EventType = "optimize_started"
	// OptimizeCompleted when the pipeline produced an artifact
	OptimizeCompleted EventType = "optimize_completed"
	// OptimizeFailed when the pipeline gave up on a screenshot
	OptimizeFailed EventType = "optimize_failed"
	// UploadCompleted when an artifact reached the sync backend
	UploadCompleted EventType = "upload_completed"
	// UploadFailed when an artifact could not be shipped
	UploadFailed EventType = "upload_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event OptimizationEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event OptimizationEvent)
}

// LoggingObserver logs optimization events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles optimization events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event OptimizationEvent) {
	fields := logrus.Fields{
		"event_type": event.EventType,
		"source":     event.Source,
		"success":    event.Success,
	}

	if event.OutputPath != "" {
		fields["output"] = event.OutputPath
	}
	if event.SavedBytes > 0 {
		fields["saved_bytes"] = event.SavedBytes
	}
	if event.Error != "" {
		fields["error"] = event.Error
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	switch event.EventType {
	case OptimizeStarted:
		o.logger.WithFields(fields).Debug("Screenshot optimization started")
	case OptimizeCompleted:
		o.logger.WithFields(fields).Info("Screenshot optimization completed")
	case OptimizeFailed:
		o.logger.WithFields(fields).Error("Screenshot optimization failed")
	case UploadCompleted:
		o.logger.WithFields(fields).Info("Artifact upload completed")
	case UploadFailed:
		o.logger.WithFields(fields).Error("Artifact upload failed")
	default:
		o.logger.WithFields(fields).Info("Optimization event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects counters from optimization events
type MetricsObserver struct {
	mu              sync.RWMutex
	totalOptimized  int64
	totalFailed     int64
	totalUploads    int64
	failedUploads   int64
	totalBytesSaved int64
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles optimization events by collecting counters
func (o *MetricsObserver) OnEvent(ctx context.Context, event OptimizationEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case OptimizeCompleted:
		o.totalOptimized++
		o.totalBytesSaved += event.SavedBytes
	case OptimizeFailed:
		o.totalFailed++
	case UploadCompleted:
		o.totalUploads++
	case UploadFailed:
		o.failedUploads++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current counters
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return map[string]interface{}{
		"total_optimized":   o.totalOptimized,
		"total_failed":      o.totalFailed,
		"total_uploads":     o.totalUploads,
		"failed_uploads":    o.failedUploads,
		"total_bytes_saved": o.totalBytesSaved,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() Subject {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event
func (p *EventPublisher) NotifyObservers(ctx context.Context, event OptimizationEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}
