package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalUploader copies artifacts into a spool directory, for installs
// that sync through a shared filesystem instead of blob storage
type LocalUploader struct {
	spoolDir string
}

// NewLocalUploader creates a spool-directory uploader
func NewLocalUploader(spoolDir string) *LocalUploader {
	return &LocalUploader{spoolDir: spoolDir}
}

// Upload copies the artifact into the spool directory
func (u *LocalUploader) Upload(ctx context.Context, localPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(u.spoolDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create spool directory: %w", err)
	}

	source, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact: %w", err)
	}
	defer source.Close()

	destPath := filepath.Join(u.spoolDir, filepath.Base(localPath))
	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create spool file: %w", err)
	}

	if _, err := io.Copy(dest, source); err != nil {
		dest.Close()
		os.Remove(destPath)
		return "", fmt.Errorf("failed to copy artifact: %w", err)
	}
	if err := dest.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize spool file: %w", err)
	}

	return destPath, nil
}

// Name identifies the uploader backend
func (u *LocalUploader) Name() string {
	return "local"
}
