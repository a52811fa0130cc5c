package storage

import (
	"bytes"
	"context"
	"fmt"

	"cv-screening-backend/internal/domain"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveConfig configures uploads to a Drive folder with a service account.
type DriveConfig struct {
	CredentialsJSON string
	FolderID        string
}

// DriveStore keeps CV documents in Google Drive. Uploaded files are shared
// read-only with anyone holding the link.
type DriveStore struct {
	service  *drive.Service
	folderID string
}

func NewDriveStore(ctx context.Context, cfg DriveConfig) (*DriveStore, error) {
	if cfg.CredentialsJSON == "" {
		return nil, fmt.Errorf("gdrive: credentials are required")
	}
	srv, err := drive.NewService(ctx,
		option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)),
		option.WithScopes(drive.DriveFileScope),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create Drive client: %w", err)
	}
	return &DriveStore{service: srv, folderID: cfg.FolderID}, nil
}

func (s *DriveStore) Upload(ctx context.Context, doc *domain.Document) (*domain.StoredObject, error) {
	meta := &drive.File{Name: doc.FileName, MimeType: doc.MimeType}
	if s.folderID != "" {
		meta.Parents = []string{s.folderID}
	}

	created, err := s.service.Files.Create(meta).
		Media(bytes.NewReader(doc.Data)).
		Fields("id", "name", "webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("drive upload %s: %w", doc.FileName, err)
	}

	_, err = s.service.Permissions.Create(created.Id, &drive.Permission{Role: "reader", Type: "anyone"}).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("drive share %s: %w", created.Id, err)
	}

	link := created.WebViewLink
	if link == "" {
		link = "https://drive.google.com/uc?export=view&id=" + created.Id
	}
	return &domain.StoredObject{Key: created.Id, URL: link}, nil
}

func (s *DriveStore) Delete(ctx context.Context, key string) error {
	if err := s.service.Files.Delete(key).Context(ctx).Do(); err != nil {
		return fmt.Errorf("drive delete %s: %w", key, err)
	}
	return nil
}
