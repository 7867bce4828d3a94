// Package storage keeps profile images in a MinIO (S3 compatible) bucket.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/keystone-labs/rbac-core/internal/core/ports"
)

const (
	defaultBucket = "profile-images"
	objectPrefix  = "profile/"
)

// Config holds MinIO connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ImageStore is a ports.ImageStore backed by MinIO. The reference returned
// by Save is the image name; objects live under objectPrefix.
type ImageStore struct {
	mc     *minio.Client
	bucket string
	log    zerolog.Logger
}

func NewImageStore(cfg Config, log zerolog.Logger) (*ImageStore, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("minio access key and secret key are required")
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	bucket := cfg.Bucket
	if bucket == "" {
		bucket = defaultBucket
	}
	return &ImageStore{mc: mc, bucket: bucket, log: log}, nil
}

// EnsureBucket creates the bucket if it does not exist.
func (s *ImageStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.mc.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := s.mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		s.log.Info().Str("bucket", s.bucket).Msg("created image bucket")
	}
	return nil
}

func (s *ImageStore) Save(ctx context.Context, img ports.Image) (string, error) {
	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.mc.PutObject(ctx, s.bucket, objectKey(img.Name), img.Body, img.Size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", img.Name, err)
	}
	return img.Name, nil
}

// Delete removes the object for ref. Missing objects are not an error.
func (s *ImageStore) Delete(ctx context.Context, ref string) error {
	if err := s.mc.RemoveObject(ctx, s.bucket, objectKey(ref), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete %s: %w", ref, err)
	}
	return nil
}

// Ping reports whether the bucket is reachable.
func (s *ImageStore) Ping(ctx context.Context) error {
	_, err := s.mc.BucketExists(ctx, s.bucket)
	return err
}

func objectKey(name string) string {
	return objectPrefix + name
}
