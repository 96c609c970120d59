package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"content-backend/internal/config"
	"content-backend/pkg/logger"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// anonymous read on objects only; listing stays private
const publicReadPolicy = `{
	"Version": "2012-10-17",
	"Statement": [{
		"Effect": "Allow",
		"Principal": {"AWS": ["*"]},
		"Action": ["s3:GetObject"],
		"Resource": ["arn:aws:s3:::%s/*"]
	}]
}`

// MinIOStorage uploads media to a MinIO/S3 bucket and hands back public URLs.
type MinIOStorage struct {
	client  *minio.Client
	bucket  string
	baseURL string // <scheme>://<host>/<bucket>
}

// NewMinIOStorage khởi tạo MinIO client and makes sure the bucket exists.
func NewMinIOStorage(ctx context.Context, cfg config.MinIOConfig) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		if err := client.SetBucketPolicy(ctx, cfg.Bucket, fmt.Sprintf(publicReadPolicy, cfg.Bucket)); err != nil {
			return nil, fmt.Errorf("failed to set bucket policy: %w", err)
		}
		logger.Info("[MINIO] Bucket created", map[string]interface{}{"bucket": cfg.Bucket})
	}

	return &MinIOStorage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: publicBaseURL(cfg, client.EndpointURL()),
	}, nil
}

func publicBaseURL(cfg config.MinIOConfig, endpoint *url.URL) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/") + "/" + cfg.Bucket
	}
	return fmt.Sprintf("%s://%s/%s", endpoint.Scheme, endpoint.Host, cfg.Bucket)
}

// Upload stores data under <folder>/<uuid>.<ext> and returns its public URL.
func (s *MinIOStorage) Upload(ctx context.Context, data []byte, folder string) (string, error) {
	mtype := mimetype.Detect(data)
	key := objectKey(folder, uuid.NewString(), mtype.Extension())

	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{
			ContentType: mtype.String(),
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to upload to minio: %w", err)
	}

	return s.baseURL + "/" + key, nil
}

// Remove deletes an object previously returned by Upload.
func (s *MinIOStorage) Remove(ctx context.Context, objectURL string) error {
	key, ok := s.keyFromURL(objectURL)
	if !ok {
		return fmt.Errorf("url %q does not belong to bucket %s", objectURL, s.bucket)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (s *MinIOStorage) keyFromURL(objectURL string) (string, bool) {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(objectURL, prefix) {
		return "", false
	}
	return strings.TrimPrefix(objectURL, prefix), true
}

// Ping checks the bucket is reachable.
func (s *MinIOStorage) Ping(ctx context.Context) error {
	if _, err := s.client.BucketExists(ctx, s.bucket); err != nil {
		return fmt.Errorf("minio ping failed: %w", err)
	}
	return nil
}

func objectKey(folder, name, ext string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name + ext
	}
	return path.Join(folder, name+ext)
}
