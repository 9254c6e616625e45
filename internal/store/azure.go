package store

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/sm2x/neos-backups/internal/config"
	"github.com/sm2x/neos-backups/internal/domain"
)

func init() {
	Register("azure", func(cfg config.StoreConfig) (domain.RemoteStore, error) {
		return NewAzure(cfg.Azure)
	})
}

// Azure stores archives as blobs in an Azure Storage container.
// Authentication, in priority order: SAS token, service principal,
// DefaultAzureCredential.
type Azure struct {
	client    *azblob.Client
	container string
}

// NewAzure creates an Azure store from configuration.
func NewAzure(cfg config.AzureStoreConfig) (*Azure, error) {
	if cfg.Account == "" || cfg.Container == "" {
		return nil, fmt.Errorf("azure store: account and container are required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.Account)
	}

	var (
		client *azblob.Client
		err    error
	)
	switch {
	case cfg.SASToken != "":
		sas := strings.TrimPrefix(strings.TrimSpace(cfg.SASToken), "?")
		client, err = azblob.NewClientWithNoCredential(endpoint+"?"+sas, nil)

	case cfg.TenantID != "" && cfg.ClientID != "" && cfg.ClientSecret != "":
		var cred *azidentity.ClientSecretCredential
		cred, err = azidentity.NewClientSecretCredential(cfg.TenantID, cfg.ClientID, cfg.ClientSecret, nil)
		if err == nil {
			client, err = azblob.NewClient(endpoint, cred, nil)
		}

	default:
		var cred *azidentity.DefaultAzureCredential
		cred, err = azidentity.NewDefaultAzureCredential(nil)
		if err == nil {
			client, err = azblob.NewClient(endpoint, cred, nil)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("azure store: build client: %w", err)
	}

	return &Azure{client: client, container: cfg.Container}, nil
}

// Name returns "azure".
func (s *Azure) Name() string { return "azure" }

// Has reports whether a blob exists under key.
func (s *Azure) Has(ctx context.Context, key string) (bool, error) {
	blob := s.client.ServiceClient().NewContainerClient(s.container).NewBlobClient(key)
	if _, err := blob.GetProperties(ctx, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("head blob %s: %w", key, err)
	}
	return true, nil
}

// Write streams source into the blob under key, creating the container on
// first use.
func (s *Azure) Write(ctx context.Context, key string, source io.Reader) error {
	if err := s.ensureContainer(ctx); err != nil {
		return err
	}
	if _, err := s.client.UploadStream(ctx, s.container, key, source, nil); err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}
	return nil
}

// Read streams the blob under key.
func (s *Azure) Read(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("%s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("download blob %s: %w", key, err)
	}
	return resp.Body, nil
}

// Delete removes the blob under key.
func (s *Azure) Delete(ctx context.Context, key string) error {
	if _, err := s.client.DeleteBlob(ctx, s.container, key, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return fmt.Errorf("%s: %w", key, domain.ErrNotFound)
		}
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

func (s *Azure) ensureContainer(ctx context.Context) error {
	_, err := s.client.CreateContainer(ctx, s.container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("ensure container %s: %w", s.container, err)
	}
	return nil
}
