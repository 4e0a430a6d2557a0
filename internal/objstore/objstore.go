// Package objstore provides the object-store layer the data lake and the
// report artifacts live on.
//
// All artifacts are written under four logical prefixes inside one bucket:
// landing/<tenant>/ for browser exports, raw/<tenant>/ and
// cleaned/<tenant>/ for the columnar data stages, and reports/<tenant>/ for
// the final PDF reports.
package objstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/fieldscope/portal/config"
)

// Logical prefixes inside the bucket
const (
	PrefixLanding = "landing"
	PrefixRaw     = "raw"
	PrefixCleaned = "cleaned"
	PrefixReports = "reports"
)

// Store wraps the object-store client with the portal's bucket layout
type Store struct {
	client *minio.Client
	bucket string
	tenant string
}

// New creates a store from the given configuration
func New(cfg config.ObjStore) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}
	return &Store{
		client: client,
		bucket: cfg.Bucket,
		tenant: cfg.Tenant,
	}, nil
}

// Bucket returns the configured bucket name
func (s *Store) Bucket() string {
	return s.bucket
}

// EnsureBucket creates the bucket if it does not exist
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// LandingKey returns the object key for a landing-stage artifact
func (s *Store) LandingKey(name string) string {
	return path.Join(PrefixLanding, s.tenant, name)
}

// RawKey returns the object key for a raw-stage artifact
func (s *Store) RawKey(name string) string {
	return path.Join(PrefixRaw, s.tenant, name)
}

// CleanedKey returns the object key for a cleaned-stage artifact
func (s *Store) CleanedKey(name string) string {
	return path.Join(PrefixCleaned, s.tenant, name)
}

// ReportKey returns the object key for a final report artifact
func (s *Store) ReportKey(name string) string {
	return path.Join(PrefixReports, s.tenant, name)
}

// S3Path returns the s3:// path for a key, as understood by the SQL engine
func (s *Store) S3Path(key string) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, key)
}

// LandingGlob returns the s3:// glob matching every landing-stage CSV
func (s *Store) LandingGlob() string {
	return s.S3Path(s.LandingKey("*.csv"))
}

// Upload writes the given bytes to a key
func (s *Store) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// UploadFile writes a local file to a key
func (s *Store) UploadFile(ctx context.Context, key, filePath, contentType string) error {
	_, err := s.client.FPutObject(ctx, s.bucket, key, filePath,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to upload %s from %s: %w", key, filePath, err)
	}
	return nil
}

// Download reads an object fully into memory
func (s *Store) Download(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer func() { _ = obj.Close() }()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Exists reports whether an object with the given key exists
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", key, err)
	}
	return true, nil
}
