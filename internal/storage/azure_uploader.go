package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureUploader ships artifacts to an Azure blob container
type AzureUploader struct {
	client    *azblob.Client
	container string
}

// NewAzureUploader creates an uploader backed by shared key credentials
func NewAzureUploader(accountName, accountKey, container string) (*AzureUploader, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure client: %w", err)
	}

	return &AzureUploader{client: client, container: container}, nil
}

// Upload streams the artifact into the configured container under its
// base filename
func (u *AzureUploader) Upload(ctx context.Context, localPath string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact: %w", err)
	}
	defer file.Close()

	blobName := filepath.Base(localPath)
	if _, err := u.client.UploadFile(ctx, u.container, blobName, file, nil); err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}

	return fmt.Sprintf("%s/%s", u.container, blobName), nil
}

// Name identifies the uploader backend
func (u *AzureUploader) Name() string {
	return "azure"
}
