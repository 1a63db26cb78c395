package optimizer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "go-screenshot-optimizer/internal/errors"
	"go-screenshot-optimizer/internal/logger"
)

// Optimizer applies a deterministic transform pipeline to captured
// screenshots: decode, conditional resize, format-specific re-encode,
// metadata strip, size-regression check, filesystem materialization.
//
// The Optimizer is stateless between calls. Its policy is an immutable
// snapshot replaced wholesale by SetOptions, so concurrent operations
// never observe a partially updated configuration.
type Optimizer struct {
	mu     sync.Mutex // serializes read-modify-write in SetOptions
	policy atomic.Pointer[Policy]
}

// New creates an Optimizer with the given policy
func New(policy Policy) (*Optimizer, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	o := &Optimizer{}
	o.policy.Store(&policy)
	return o, nil
}

// Options returns an immutable snapshot of the live policy
func (o *Optimizer) Options() Policy {
	return *o.policy.Load()
}

// SetOptions replaces only the supplied fields of the policy. The new
// snapshot becomes visible to operations started after the call returns;
// in-flight operations keep the snapshot they started with.
func (o *Optimizer) SetOptions(patch PolicyPatch) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	next := o.policy.Load().apply(patch)
	if err := next.Validate(); err != nil {
		return err
	}
	o.policy.Store(&next)
	return nil
}

// Optimize runs the pipeline on a screenshot file. When destHint is empty
// the destination is derived from the source path by replacing its image
// extension with the canonical extension for the target format; an explicit
// destHint has its extension normalized the same way.
//
// The operation is a destructive move: on success the source file is
// deleted unless the destination resolves to the same path, in which case
// the file is overwritten in place. A failed source deletion is logged but
// does not fail the result, since the optimized artifact already exists.
func (o *Optimizer) Optimize(sourcePath, destHint string) Result {
	policy := o.Options()

	info, err := os.Stat(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return failureResult(sourcePath, policy.Format,
				apperrors.NewNotFoundError(fmt.Sprintf("source does not exist: %s", sourcePath), err))
		}
		return failureResult(sourcePath, policy.Format,
			apperrors.NewIOError("failed to stat source", err))
	}
	originalSize := info.Size()

	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return failureResult(sourcePath, policy.Format,
			apperrors.NewIOError("failed to read source", err))
	}

	destPath := resolveDestination(sourcePath, destHint, policy.Format)
	result := o.run(sourcePath, data, destPath, originalSize, policy)
	if !result.Success {
		return result
	}

	if !samePath(sourcePath, destPath) {
		if err := os.Remove(sourcePath); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"source": sourcePath,
				"output": destPath,
			}).Warn("Failed to remove source after optimization")
		}
	}
	return result
}

// OptimizeBuffer runs the pipeline on in-memory screenshot bytes. The
// destination directory is created recursively before any write; there is
// no source file to check or delete.
func (o *Optimizer) OptimizeBuffer(data []byte, destPath string) Result {
	policy := o.Options()

	destPath = resolveDestination(destPath, "", policy.Format)
	if dir := filepath.Dir(destPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return failureResult(BufferSource, policy.Format,
				apperrors.NewIOError("failed to create destination directory", err))
		}
	}

	return o.run(BufferSource, data, destPath, int64(len(data)), policy)
}

// run is the shared pipeline tail: decode, resize, encode, size guard,
// staged materialization.
func (o *Optimizer) run(source string, data []byte, destPath string, originalSize int64, policy Policy) Result {
	img, err := decodeImage(data)
	if err != nil {
		return failureResult(source, policy.Format, err)
	}

	if policy.MaxWidth > 0 || policy.MaxHeight > 0 {
		img = fitWithin(img, policy.MaxWidth, policy.MaxHeight)
	}

	encoded, err := encodeImage(img, policy)
	if err != nil {
		return failureResult(source, policy.Format, err)
	}

	// Re-encoding drops container metadata; carry the EXIF block back over
	// for JPEG targets when the policy asks to preserve it
	if !policy.StripMetadata && policy.Format == FormatJPEG {
		if segment := exifSegment(data); segment != nil {
			encoded = spliceExif(encoded, segment)
		}
	}

	// Size-regression guard: a candidate that is not strictly smaller than
	// the original loses to the original bytes (copy, not re-encode)
	output := encoded
	fallbackCopy := false
	if int64(len(encoded)) >= originalSize {
		output = data
		fallbackCopy = true
	}

	if err := writeStaged(destPath, output); err != nil {
		return failureResult(source, policy.Format, err)
	}

	return successResult(source, destPath, originalSize, int64(len(output)), policy.Format, fallbackCopy)
}

// writeStaged writes to a temporary sibling file and renames it into
// place, so the destination only ever exists fully written
func writeStaged(destPath string, data []byte) error {
	tmpPath := fmt.Sprintf("%s.tmp-%s", destPath, uuid.NewString()[:8])
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return apperrors.NewIOError("failed to write staging file", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return apperrors.NewIOError("failed to finalize destination", err)
	}
	return nil
}

// imageExtensions are the suffixes treated as replaceable when deriving a
// destination path
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
}

// resolveDestination derives the final output path: the hint when given,
// otherwise the source, with any image extension replaced by the canonical
// extension for the target format
func resolveDestination(sourcePath, destHint string, format Format) string {
	target := destHint
	if target == "" {
		target = sourcePath
	}
	ext := strings.ToLower(filepath.Ext(target))
	if imageExtensions[ext] {
		target = strings.TrimSuffix(target, filepath.Ext(target))
	}
	return target + format.Extension()
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
