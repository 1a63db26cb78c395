package repository

import (
	"fmt"
	"testing"

	"go-screenshot-optimizer/internal/optimizer"
)

func sampleResult(source string, saved int64) optimizer.Result {
	return optimizer.Result{
		Success:       true,
		Source:        source,
		OriginalSize:  1000,
		OptimizedSize: 1000 - saved,
		SavedBytes:    saved,
		Format:        optimizer.FormatWEBP,
	}
}

func TestMemoryResultRepositoryRecentOrder(t *testing.T) {
	repo := NewMemoryResultRepository(10)
	repo.Save(sampleResult("a.png", 100))
	repo.Save(sampleResult("b.png", 200))
	repo.Save(sampleResult("c.png", 300))

	recent := repo.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(recent))
	}
	if recent[0].Source != "c.png" || recent[1].Source != "b.png" {
		t.Errorf("Expected newest first, got %q then %q", recent[0].Source, recent[1].Source)
	}

	all := repo.Recent(0)
	if len(all) != 3 {
		t.Errorf("Expected all 3 results for non-positive limit, got %d", len(all))
	}
}

func TestMemoryResultRepositoryEviction(t *testing.T) {
	repo := NewMemoryResultRepository(3)
	for i := 0; i < 5; i++ {
		repo.Save(sampleResult(fmt.Sprintf("%d.png", i), 10))
	}

	recent := repo.Recent(0)
	if len(recent) != 3 {
		t.Fatalf("Expected capacity of 3 to be enforced, got %d", len(recent))
	}
	if recent[0].Source != "4.png" {
		t.Errorf("Expected newest entry 4.png, got %q", recent[0].Source)
	}
	if recent[2].Source != "2.png" {
		t.Errorf("Expected oldest retained entry 2.png, got %q", recent[2].Source)
	}
}

func TestMemoryResultRepositoryStats(t *testing.T) {
	repo := NewMemoryResultRepository(10)
	repo.Save(sampleResult("a.png", 100))
	repo.Save(sampleResult("b.png", 200))
	repo.Save(optimizer.Result{Success: false, Source: "bad.png", Format: optimizer.FormatWEBP, Error: "decode: boom"})

	stats := repo.Stats()
	if stats.Files != 3 {
		t.Errorf("Expected 3 files, got %d", stats.Files)
	}
	if stats.Failures != 1 {
		t.Errorf("Expected 1 failure, got %d", stats.Failures)
	}
	if stats.SavedBytes != 300 {
		t.Errorf("Expected 300 saved bytes, got %d", stats.SavedBytes)
	}
}
