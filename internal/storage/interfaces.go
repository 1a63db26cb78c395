package storage

import "context"

// ArtifactUploader ships optimized screenshot artifacts to the review
// backend. Implementations must be safe for concurrent use.
type ArtifactUploader interface {
	// Upload ships the file at localPath and returns the remote location
	Upload(ctx context.Context, localPath string) (string, error)

	// Name identifies the uploader backend for logging
	Name() string
}
