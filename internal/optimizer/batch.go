package optimizer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"go-screenshot-optimizer/internal/logger"
	"go-screenshot-optimizer/internal/worker"
)

// DefaultPatterns matches the raster formats the decoder understands
var DefaultPatterns = []string{"*.png", "*.jpg", "*.jpeg", "*.webp", "*.gif", "*.bmp"}

// OptimizeDirectory runs the pipeline over every matching file in a
// directory, returning one result per entry in directory-listing order.
// A missing directory yields an empty sequence rather than an error, and
// one file's failure never aborts the batch: the failed entry stays in
// place in the sequence and processing continues.
func (o *Optimizer) OptimizeDirectory(dirPath string, patterns ...string) []Result {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		logger.WithError(err).WithField("dir", dirPath).Warn("Screenshot directory unavailable, nothing to optimize")
		return []Result{}
	}

	results := make([]Result, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !matchesAny(entry.Name(), patterns) {
			continue
		}
		result := o.Optimize(filepath.Join(dirPath, entry.Name()), "")
		results = append(results, result)
		if !result.Success {
			logger.WithFields(logrus.Fields{
				"source": result.Source,
				"error":  result.Error,
			}).Warn("Skipping screenshot that failed to optimize")
		}
	}
	return results
}

// OptimizeDirectoryConcurrent behaves like OptimizeDirectory but spreads
// entries over a bounded worker pool. Results keep directory-listing
// order, and each file's source is still only deleted after its own
// destination write succeeded.
func (o *Optimizer) OptimizeDirectoryConcurrent(dirPath string, workers int, patterns ...string) []Result {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		logger.WithError(err).WithField("dir", dirPath).Warn("Screenshot directory unavailable, nothing to optimize")
		return []Result{}
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !matchesAny(entry.Name(), patterns) {
			continue
		}
		paths = append(paths, filepath.Join(dirPath, entry.Name()))
	}

	pool := worker.NewPool(workers)
	pool.Start()
	defer pool.Close()

	results := make([]Result, len(paths))
	for i, path := range paths {
		i, path := i, path
		pool.Submit(func() {
			results[i] = o.Optimize(path, "")
		})
	}
	pool.Wait()
	return results
}

// matchesAny reports whether the filename matches at least one glob
// pattern, case-insensitively
func matchesAny(name string, patterns []string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range patterns {
		if ok, err := filepath.Match(strings.ToLower(pattern), lower); err == nil && ok {
			return true
		}
	}
	return false
}
