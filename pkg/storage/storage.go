// Package storage uploads candidate documents to object storage.
package storage

import (
	"context"
	"fmt"

	"cv-screening-backend/config"
	"cv-screening-backend/internal/domain"
)

const (
	ProviderS3     = "s3"
	ProviderGDrive = "gdrive"
	ProviderNone   = "none"
)

// New returns the store selected by STORAGE_PROVIDER. "none" and "" return
// (nil, nil); submissions are then stored without a link.
func New(ctx context.Context, cfg *config.Config) (domain.DocumentStore, error) {
	switch cfg.StorageProvider {
	case ProviderS3:
		store, err := NewS3Store(ctx, S3Config{
			Provider:        S3Provider(cfg.S3.Provider),
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			WasabiEndpoint:  cfg.S3.WasabiEndpoint,
			Folder:          cfg.S3.Folder,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case ProviderGDrive:
		store, err := NewDriveStore(ctx, DriveConfig{
			CredentialsJSON: cfg.GoogleDrive.CredentialsJSON,
			FolderID:        cfg.GoogleDrive.FolderID,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case ProviderNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.StorageProvider)
	}
}
