package validation

import (
	"path/filepath"
	"strings"

	apperrors "go-screenshot-optimizer/internal/errors"
)

// PathValidator handles destination path validation for the control API
type PathValidator struct {
	allowedRoots []string
}

// NewPathValidator creates a new path validator with no root restrictions
func NewPathValidator() *PathValidator {
	return &PathValidator{
		allowedRoots: []string{}, // empty means any destination allowed
	}
}

// NewPathValidatorWithRoots creates a path validator that confines
// destinations to the given directories
func NewPathValidatorWithRoots(roots []string) *PathValidator {
	return &PathValidator{
		allowedRoots: roots,
	}
}

// ValidateDestination validates a destination path supplied by a caller
func (v *PathValidator) ValidateDestination(path string) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return apperrors.NewValidationError("destination cannot be empty", nil)
	}
	if strings.ContainsRune(trimmed, '\x00') {
		return apperrors.NewValidationError("destination contains a NUL byte", nil)
	}
	for _, part := range strings.Split(filepath.ToSlash(trimmed), "/") {
		if part == ".." {
			return apperrors.NewValidationError("destination must not traverse upwards", nil)
		}
	}
	if len(v.allowedRoots) > 0 && !v.isUnderAllowedRoot(trimmed) {
		return apperrors.NewValidationError("destination outside the allowed directories", nil)
	}
	return nil
}

// isUnderAllowedRoot checks whether the path resolves under one of the
// configured roots
func (v *PathValidator) isUnderAllowedRoot(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, root := range v.allowedRoots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		if abs == absRoot || strings.HasPrefix(abs, absRoot+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
