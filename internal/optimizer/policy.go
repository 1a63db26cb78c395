package optimizer

import (
	"fmt"
	"strings"

	apperrors "go-screenshot-optimizer/internal/errors"
)

// Format represents a target encoding for optimized screenshots
type Format string

const (
	// FormatJPEG for lossy photographic output
	FormatJPEG Format = "jpeg"
	// FormatWEBP for lossy output with better compression than JPEG
	FormatWEBP Format = "webp"
	// FormatPNG for lossless output
	FormatPNG Format = "png"
)

// ParseFormat normalizes a user supplied format name
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "webp":
		return FormatWEBP, nil
	case "png":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unsupported format: %q", s)
	}
}

// Valid reports whether the format is one of the supported encodings
func (f Format) Valid() bool {
	return f == FormatJPEG || f == FormatWEBP || f == FormatPNG
}

// Extension returns the canonical file extension for the format
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatWEBP:
		return ".webp"
	case FormatPNG:
		return ".png"
	default:
		return ""
	}
}

// MIMEType returns the MIME type for the format
func (f Format) MIMEType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatWEBP:
		return "image/webp"
	case FormatPNG:
		return "image/png"
	default:
		return ""
	}
}

// Policy is the immutable configuration governing one optimization pass.
// A zero MaxWidth or MaxHeight means no bound on that axis.
type Policy struct {
	Format        Format `json:"format" yaml:"format"`
	Quality       int    `json:"quality" yaml:"quality"`
	MaxWidth      int    `json:"max_width" yaml:"max_width"`
	MaxHeight     int    `json:"max_height" yaml:"max_height"`
	StripMetadata bool   `json:"strip_metadata" yaml:"strip_metadata"`
}

// DefaultPolicy returns the policy used for routine screenshot uploads
func DefaultPolicy() Policy {
	return Policy{
		Format:        FormatWEBP,
		Quality:       75,
		MaxWidth:      1920,
		MaxHeight:     1080,
		StripMetadata: true,
	}
}

// ArchivePolicy returns a lossless policy for screenshots kept for audit
func ArchivePolicy() Policy {
	return Policy{
		Format:        FormatPNG,
		Quality:       100,
		MaxWidth:      0,
		MaxHeight:     0,
		StripMetadata: false,
	}
}

// ThumbnailPolicy returns a policy for dashboard preview images
func ThumbnailPolicy() Policy {
	return Policy{
		Format:        FormatWEBP,
		Quality:       60,
		MaxWidth:      320,
		MaxHeight:     320,
		StripMetadata: true,
	}
}

// WithFormat returns a copy of the policy with the target format replaced
func (p Policy) WithFormat(f Format) Policy {
	p.Format = f
	return p
}

// WithQuality returns a copy of the policy with the quality replaced
func (p Policy) WithQuality(quality int) Policy {
	p.Quality = quality
	return p
}

// WithBounds returns a copy of the policy with the resize bounds replaced
func (p Policy) WithBounds(maxWidth, maxHeight int) Policy {
	p.MaxWidth = maxWidth
	p.MaxHeight = maxHeight
	return p
}

// WithMetadata returns a copy of the policy with metadata stripping toggled
func (p Policy) WithMetadata(strip bool) Policy {
	p.StripMetadata = strip
	return p
}

// Validate checks the policy for usable values
func (p Policy) Validate() error {
	if !p.Format.Valid() {
		return apperrors.NewValidationError(fmt.Sprintf("unsupported format: %q", p.Format), nil)
	}
	if p.Quality < 1 || p.Quality > 100 {
		return apperrors.NewValidationError(fmt.Sprintf("quality must be 1-100, got %d", p.Quality), nil)
	}
	if p.MaxWidth < 0 || p.MaxHeight < 0 {
		return apperrors.NewValidationError("resize bounds must not be negative", nil)
	}
	return nil
}

// PolicyPatch is a partial policy update. Nil fields leave the
// corresponding policy field untouched.
type PolicyPatch struct {
	Format        *Format `json:"format,omitempty"`
	Quality       *int    `json:"quality,omitempty"`
	MaxWidth      *int    `json:"max_width,omitempty"`
	MaxHeight     *int    `json:"max_height,omitempty"`
	StripMetadata *bool   `json:"strip_metadata,omitempty"`
}

func (p Policy) apply(patch PolicyPatch) Policy {
	if patch.Format != nil {
		p.Format = *patch.Format
	}
	if patch.Quality != nil {
		p.Quality = *patch.Quality
	}
	if patch.MaxWidth != nil {
		p.MaxWidth = *patch.MaxWidth
	}
	if patch.MaxHeight != nil {
		p.MaxHeight = *patch.MaxHeight
	}
	if patch.StripMetadata != nil {
		p.StripMetadata = *patch.StripMetadata
	}
	return p
}
