// Package storage holds attachment content in S3-compatible object storage.
// Metadata stays in PostgreSQL; only the raw bytes live here.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	sc "github.com/penguinmail/penguinmail/internal/server/config"
)

// ContentStore uploads attachment bytes and hands out short-lived download
// URLs for them.
type ContentStore interface {
	Put(ctx context.Context, key, mimeType string, body io.Reader, size int64) error
	PresignGet(ctx context.Context, key string) (string, error)
}

type S3ContentStore struct {
	config *sc.Config
}

func NewS3ContentStore(config *sc.Config) *S3ContentStore {
	return &S3ContentStore{config: config}
}

// RandomStorageKey generates a date-prefixed object key for a new upload.
func RandomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("attachments/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *S3ContentStore) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, nil
}

func (s *S3ContentStore) Put(ctx context.Context, key, mimeType string, body io.Reader, size int64) error {
	client, err := s.getClient(ctx)
	if err != nil {
		return err
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &s.config.S3Bucket,
		Key:           &key,
		Body:          body,
		ContentType:   &mimeType,
		ContentLength: &size,
	})
	return err
}

func (s *S3ContentStore) PresignGet(ctx context.Context, key string) (string, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return "", err
	}

	req, err := s3.NewPresignClient(client).PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.config.S3Bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
