package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/penguinmail/penguinmail/internal/common"
	"github.com/penguinmail/penguinmail/internal/server/models"
	"github.com/penguinmail/penguinmail/internal/server/repositories/repomanager"
	"github.com/penguinmail/penguinmail/internal/server/storage"
)

// AttachmentService stores attachment bytes in object storage and their
// metadata in the database. Uploads are staged until an email links them.
type AttachmentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.ContentStore
}

func NewAttachmentService(db *sql.DB, m repomanager.RepositoryManager, store storage.ContentStore) *AttachmentService {
	return &AttachmentService{db: db, repomanager: m, store: store}
}

// Upload persists the content under a generated key and records metadata.
func (s *AttachmentService) Upload(ctx context.Context, name, mimeType string, size int64, body io.Reader) (*models.Attachment, error) {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	key := storage.RandomStorageKey()

	if err := s.store.Put(ctx, key, mimeType, body, size); err != nil {
		return nil, fmt.Errorf("error storing attachment content: %w", err)
	}

	att := &models.Attachment{
		Name:       name,
		Size:       size,
		MimeType:   mimeType,
		StorageKey: key,
	}
	if _, err := s.repomanager.Attachments(s.db).Create(ctx, att); err != nil {
		return nil, err
	}
	return att, nil
}

func (s *AttachmentService) Get(ctx context.Context, userID, id string) (*models.Attachment, error) {
	return s.repomanager.Attachments(s.db).Get(ctx, userID, id)
}

// DownloadURL returns a short-lived presigned URL for the attachment's
// content, subject to the same ownership check as Get.
func (s *AttachmentService) DownloadURL(ctx context.Context, userID, id string) (string, error) {
	att, err := s.repomanager.Attachments(s.db).Get(ctx, userID, id)
	if err != nil {
		return "", err
	}
	url, err := s.store.PresignGet(ctx, att.StorageKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", err
		}
		return "", fmt.Errorf("error presigning attachment url: %w", err)
	}
	return url, nil
}
