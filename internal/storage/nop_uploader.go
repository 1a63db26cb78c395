package storage

import "context"

// NopUploader is used when uploading is disabled; optimized artifacts
// stay where the pipeline wrote them
type NopUploader struct{}

// NewNopUploader creates a no-op uploader
func NewNopUploader() *NopUploader {
	return &NopUploader{}
}

// Upload reports the local path unchanged
func (u *NopUploader) Upload(ctx context.Context, localPath string) (string, error) {
	return localPath, nil
}

// Name identifies the uploader backend
func (u *NopUploader) Name() string {
	return "none"
}
