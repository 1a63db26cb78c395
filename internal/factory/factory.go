package factory

import (
	"fmt"

	"go-screenshot-optimizer/internal/config"
	"go-screenshot-optimizer/internal/optimizer"
	"go-screenshot-optimizer/internal/storage"
)

// UploaderType represents the available artifact uploader backends
type UploaderType string

const (
	// AzureUploader ships artifacts to Azure blob storage
	AzureUploader UploaderType = "azure"
	// LocalUploader copies artifacts into a spool directory
	LocalUploader UploaderType = "local"
	// NopUploader leaves artifacts where the pipeline wrote them
	NopUploader UploaderType = "none"
)

// UploaderFactory creates artifact uploaders
type UploaderFactory interface {
	CreateUploader(cfg *config.Config) (storage.ArtifactUploader, error)
}

// uploaderFactory implements UploaderFactory
type uploaderFactory struct{}

// NewUploaderFactory creates a new uploader factory
func NewUploaderFactory() UploaderFactory {
	return &uploaderFactory{}
}

// CreateUploader creates the uploader selected by the configuration
func (f *uploaderFactory) CreateUploader(cfg *config.Config) (storage.ArtifactUploader, error) {
	switch UploaderType(cfg.Uploader) {
	case AzureUploader:
		return storage.NewAzureUploader(cfg.AzureAccount, cfg.AzureKey, cfg.AzureContainer)
	case LocalUploader:
		return storage.NewLocalUploader(cfg.SpoolDir), nil
	case NopUploader:
		return storage.NewNopUploader(), nil
	default:
		return nil, fmt.Errorf("unsupported uploader type: %s", cfg.Uploader)
	}
}

// PolicyPreset names a predefined optimization policy
type PolicyPreset string

const (
	// DefaultPreset for routine screenshot uploads
	DefaultPreset PolicyPreset = "default"
	// ArchivePreset for lossless screenshots kept for audit
	ArchivePreset PolicyPreset = "archive"
	// ThumbnailPreset for dashboard preview images
	ThumbnailPreset PolicyPreset = "thumbnail"
)

// CreatePolicy returns the policy for a named preset
func CreatePolicy(preset PolicyPreset) (optimizer.Policy, error) {
	switch preset {
	case DefaultPreset:
		return optimizer.DefaultPolicy(), nil
	case ArchivePreset:
		return optimizer.ArchivePolicy(), nil
	case ThumbnailPreset:
		return optimizer.ThumbnailPolicy(), nil
	default:
		return optimizer.Policy{}, fmt.Errorf("unsupported policy preset: %s", preset)
	}
}
