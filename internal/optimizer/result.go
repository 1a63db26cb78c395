package optimizer

import "math"

// BufferSource is the sentinel Source value for in-memory inputs
const BufferSource = "<buffer>"

// Result describes the outcome of optimizing a single screenshot.
// It is a value object: created once at the end of a pipeline run and
// never mutated afterwards.
type Result struct {
	Success          bool    `json:"success"`
	Source           string  `json:"source"`
	OutputPath       string  `json:"output_path,omitempty"`
	OriginalSize     int64   `json:"original_size"`
	OptimizedSize    int64   `json:"optimized_size"`
	SavedBytes       int64   `json:"saved_bytes"`
	CompressionRatio float64 `json:"compression_ratio"`
	Format           Format  `json:"format"`
	FallbackCopy     bool    `json:"fallback_copy,omitempty"`
	Error            string  `json:"error,omitempty"`
}

// successResult builds a Result for a completed pipeline run. The saved
// byte count and compression ratio are derived here so the non-negative
// savings invariant holds in exactly one place.
func successResult(source, outputPath string, originalSize, optimizedSize int64, format Format, fallbackCopy bool) Result {
	saved := originalSize - optimizedSize
	if saved < 0 {
		// The size-regression guard upstream keeps this non-negative
		saved = 0
	}
	return Result{
		Success:          true,
		Source:           source,
		OutputPath:       outputPath,
		OriginalSize:     originalSize,
		OptimizedSize:    optimizedSize,
		SavedBytes:       saved,
		CompressionRatio: ratioPercent(saved, originalSize),
		Format:           format,
		FallbackCopy:     fallbackCopy,
	}
}

// failureResult builds a Result for a failed pipeline run. The target
// format is carried for diagnostics even though no output was produced.
func failureResult(source string, format Format, err error) Result {
	return Result{
		Success: false,
		Source:  source,
		Format:  format,
		Error:   err.Error(),
	}
}

// ratioPercent returns saved/original as a percentage rounded to two
// decimals, and 0 when the original size is 0
func ratioPercent(saved, original int64) float64 {
	if original <= 0 || saved <= 0 {
		return 0
	}
	return math.Round(float64(saved)/float64(original)*100*100) / 100
}

// Stats aggregates a sequence of results for summary reporting. It is
// derived data, not part of the per-image contract.
type Stats struct {
	Files          int   `json:"files"`
	Failures       int   `json:"failures"`
	OriginalBytes  int64 `json:"original_bytes"`
	OptimizedBytes int64 `json:"optimized_bytes"`
	SavedBytes     int64 `json:"saved_bytes"`
}

// Add folds one result into the running totals
func (s *Stats) Add(r Result) {
	s.Files++
	if !r.Success {
		s.Failures++
		return
	}
	s.OriginalBytes += r.OriginalSize
	s.OptimizedBytes += r.OptimizedSize
	s.SavedBytes += r.SavedBytes
}

// Summarize folds a result sequence into aggregate totals
func Summarize(results []Result) Stats {
	var s Stats
	for _, r := range results {
		s.Add(r)
	}
	return s
}
