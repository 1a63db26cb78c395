package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go-screenshot-optimizer/internal/observer"
	"go-screenshot-optimizer/internal/optimizer"
	"go-screenshot-optimizer/internal/repository"
)

// recordingUploader captures upload calls and can be told to fail
type recordingUploader struct {
	mu       sync.Mutex
	uploaded []string
	fail     bool
}

func (u *recordingUploader) Upload(ctx context.Context, localPath string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.fail {
		return "", errors.New("backend unavailable")
	}
	u.uploaded = append(u.uploaded, localPath)
	return "remote/" + filepath.Base(localPath), nil
}

func (u *recordingUploader) Name() string {
	return "recording"
}

func (u *recordingUploader) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.uploaded)
}

func pngFixture(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 120, 90))
	for y := 0; y < 90; y++ {
		for x := 0; x < 120; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: uint8(x + y), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode fixture: %v", err)
	}
	return buf.Bytes()
}

func newTestService(t *testing.T, captureDir string, uploader *recordingUploader) (OptimizationService, *observer.MetricsObserver) {
	t.Helper()

	opt, err := optimizer.New(optimizer.DefaultPolicy())
	if err != nil {
		t.Fatalf("Failed to create optimizer: %v", err)
	}

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(metrics)

	results := repository.NewMemoryResultRepository(50)
	return NewOptimizationService(opt, uploader, results, events, captureDir, "", 1), metrics
}

func TestProcessScreenshotUploadsArtifact(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "shot.png")
	if err := os.WriteFile(source, pngFixture(t), 0o644); err != nil {
		t.Fatalf("Failed to write capture: %v", err)
	}

	uploader := &recordingUploader{}
	svc, metrics := newTestService(t, dir, uploader)

	result := svc.ProcessScreenshot(context.Background(), source)

	if !result.Success {
		t.Fatalf("Expected success, got error: %s", result.Error)
	}
	if uploader.count() != 1 {
		t.Errorf("Expected 1 upload, got %d", uploader.count())
	}

	counters := metrics.GetMetrics()
	if counters["total_optimized"].(int64) != 1 {
		t.Errorf("Expected total_optimized 1, got %v", counters["total_optimized"])
	}
	if counters["total_uploads"].(int64) != 1 {
		t.Errorf("Expected total_uploads 1, got %v", counters["total_uploads"])
	}
}

func TestProcessScreenshotUploadFailureKeepsResult(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "shot.png")
	if err := os.WriteFile(source, pngFixture(t), 0o644); err != nil {
		t.Fatalf("Failed to write capture: %v", err)
	}

	uploader := &recordingUploader{fail: true}
	svc, metrics := newTestService(t, dir, uploader)

	result := svc.ProcessScreenshot(context.Background(), source)

	// The optimized artifact exists locally and is authoritative
	if !result.Success {
		t.Fatalf("Upload failure must not retract the optimization result: %s", result.Error)
	}
	if _, err := os.Stat(result.OutputPath); err != nil {
		t.Errorf("Expected artifact to remain on disk: %v", err)
	}

	counters := metrics.GetMetrics()
	if counters["failed_uploads"].(int64) != 1 {
		t.Errorf("Expected failed_uploads 1, got %v", counters["failed_uploads"])
	}
}

func TestProcessBufferRecordsResult(t *testing.T) {
	dir := t.TempDir()
	uploader := &recordingUploader{}
	svc, _ := newTestService(t, dir, uploader)

	dest := filepath.Join(dir, "out", "shot.png")
	result := svc.ProcessBuffer(context.Background(), pngFixture(t), dest)

	if !result.Success {
		t.Fatalf("Expected success, got error: %s", result.Error)
	}
	recent := svc.RecentResults(10)
	if len(recent) != 1 {
		t.Fatalf("Expected 1 recorded result, got %d", len(recent))
	}
	if recent[0].Source != optimizer.BufferSource {
		t.Errorf("Expected buffer sentinel source, got %q", recent[0].Source)
	}
}

func TestSweepCaptureDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), pngFixture(t), 0o644); err != nil {
			t.Fatalf("Failed to write capture: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.png"), []byte("garbage"), 0o644); err != nil {
		t.Fatalf("Failed to write corrupt capture: %v", err)
	}

	uploader := &recordingUploader{}
	svc, _ := newTestService(t, dir, uploader)

	results, stats := svc.SweepCaptureDirectory(context.Background())

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if stats.Failures != 1 {
		t.Errorf("Expected 1 failure, got %d", stats.Failures)
	}
	// Only successful artifacts get shipped
	if uploader.count() != 2 {
		t.Errorf("Expected 2 uploads, got %d", uploader.count())
	}
	if len(svc.RecentResults(0)) != 3 {
		t.Errorf("Expected all sweep results recorded, got %d", len(svc.RecentResults(0)))
	}
}

func TestSweepMissingDirectoryIsEmpty(t *testing.T) {
	uploader := &recordingUploader{}
	svc, _ := newTestService(t, filepath.Join(t.TempDir(), "nope"), uploader)

	results, stats := svc.SweepCaptureDirectory(context.Background())
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
	if stats.Files != 0 {
		t.Errorf("Expected empty stats, got %+v", stats)
	}
}

func TestServiceOptionsPassthrough(t *testing.T) {
	uploader := &recordingUploader{}
	svc, _ := newTestService(t, t.TempDir(), uploader)

	quality := 42
	if err := svc.SetOptions(optimizer.PolicyPatch{Quality: &quality}); err != nil {
		t.Fatalf("SetOptions failed: %v", err)
	}
	if got := svc.Options().Quality; got != 42 {
		t.Errorf("Expected quality 42, got %d", got)
	}
}
