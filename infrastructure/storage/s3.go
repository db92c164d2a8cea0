package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"quoteme-backend/application/ports"
	apperrors "quoteme-backend/pkg/errors"
)

// ImageStore implements ports.ImageStore on an S3 bucket. Generated images
// never change once written, so they carry a long immutable cache policy.
type ImageStore struct {
	client *s3.Client
	bucket string
	logger *zap.Logger
}

// NewImageStore creates a new S3-backed image store
func NewImageStore(client *s3.Client, bucket string, logger *zap.Logger) ports.ImageStore {
	return &ImageStore{
		client: client,
		bucket: bucket,
		logger: logger,
	}
}

// Put stores image bytes and returns the public URL
func (s *ImageStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		s.logger.Error("Failed to store image",
			zap.Error(err),
			zap.String("key", key),
			zap.Int("size", len(data)),
		)
		return "", apperrors.NewExternalError("s3", err)
	}

	url := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
	s.logger.Info("Image stored",
		zap.String("key", key),
		zap.Int("size", len(data)),
	)
	return url, nil
}

// ExportStore implements ports.ExportStore on an S3 bucket. Export archives
// are private; downloads go through short-lived presigned URLs.
type ExportStore struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	logger  *zap.Logger
}

// NewExportStore creates a new S3-backed export store
func NewExportStore(client *s3.Client, bucket string, logger *zap.Logger) ports.ExportStore {
	return &ExportStore{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
		logger:  logger,
	}
}

// Put stores an export document
func (s *ExportStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.Error("Failed to store export",
			zap.Error(err),
			zap.String("key", key),
		)
		return apperrors.NewExternalError("s3", err)
	}
	return nil
}

// PresignGet returns a time-limited download URL
func (s *ExportStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", apperrors.NewExternalError("s3", err)
	}
	return req.URL, nil
}
