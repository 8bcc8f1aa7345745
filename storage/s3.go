// Package storage issues presigned S3 URLs for post and comment media and
// removes keys orphaned by edits and deletes. All methods are nil-receiver
// safe so the service degrades cleanly when S3 is not configured.
package storage

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const presignTTL = 15 * time.Minute

type S3 struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	log       *zap.Logger
}

// New builds the S3 client from the default AWS config chain. Returns nil
// (not an error) when no bucket is configured, so callers can treat media as
// optional.
func New(ctx context.Context, region, bucket string, log *zap.Logger) (*S3, error) {
	if bucket == "" {
		return nil, nil
	}
	if log == nil {
		log = zap.NewNop()
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return &S3{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
		log:       log,
	}, nil
}

// NewMediaKey generates a unique storage key for an upload.
func NewMediaKey(userID, filename string) string {
	ext := path.Ext(filename)
	if ext == "" {
		ext = ".jpg"
	}
	now := time.Now()
	return fmt.Sprintf("media/%d/%02d/%s/%s%s", now.Year(), now.Month(), userID, uuid.New().String(), ext)
}

// PresignGet returns a time-limited download URL for the key.
func (s *S3) PresignGet(ctx context.Context, key string) (string, error) {
	if s == nil || key == "" {
		return "", nil
	}
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// PresignPut returns a time-limited upload URL for the key.
func (s *S3) PresignPut(ctx context.Context, key, contentType string) (string, error) {
	if s == nil {
		return "", nil
	}
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// DeleteMedia removes orphaned keys. Best-effort: failures are logged, never
// returned, because the mutation that orphaned the media already succeeded.
func (s *S3) DeleteMedia(ctx context.Context, keys []string) {
	if s == nil || len(keys) == 0 {
		return
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			s.log.Warn("media delete failed", zap.String("key", key), zap.Error(err))
		}
	}
}
