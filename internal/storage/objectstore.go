package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/printforge/server/internal/infra"
)

// ObjectStore writes and reads binary objects in S3-compatible storage.
// Buckets are a fixed external contract: they are provisioned out of
// band and this service only reads and writes within them.
type ObjectStore struct {
	client     *s3.Client
	endpoint   string
	publicBase string
}

// NewObjectStore builds an S3 client from the service configuration.
func NewObjectStore(cfg *infra.Config) (*ObjectStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
	})
	return &ObjectStore{
		client:     client,
		endpoint:   strings.TrimRight(cfg.S3Endpoint, "/"),
		publicBase: strings.TrimRight(cfg.PublicMediaURL, "/"),
	}, nil
}

// Upload writes data under bucket/key with the given content type.
func (s *ObjectStore) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	uploader := manager.NewUploader(s.client)
	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("storage: upload %s/%s: %w", bucket, key, err)
	}
	return nil
}

// Download reads a whole object into memory.
func (s *ObjectStore) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	downloader := manager.NewDownloader(s.client)
	buf := manager.NewWriteAtBuffer([]byte{})
	if _, err := downloader.Download(ctx, buf, &s3.GetObjectInput{Bucket: &bucket, Key: &key}); err != nil {
		return nil, fmt.Errorf("storage: download %s/%s: %w", bucket, key, err)
	}
	return buf.Bytes(), nil
}

// PublicURL returns the publicly reachable URL for bucket/key. A CDN
// base takes precedence over the raw endpoint when configured.
func (s *ObjectStore) PublicURL(bucket, key string) string {
	if s.publicBase != "" {
		return fmt.Sprintf("%s/%s/%s", s.publicBase, bucket, escapeKey(key))
	}
	if s.endpoint == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s", s.endpoint, bucket, escapeKey(key))
}

// ParseOwnedURL reports whether rawURL points into this store and, when
// it does, splits it into bucket and key. It lets callers read owned
// objects directly instead of refetching them over their public URL.
func (s *ObjectStore) ParseOwnedURL(rawURL string) (bucket, key string, ok bool) {
	for _, base := range []string{s.publicBase, s.endpoint} {
		if base == "" || !strings.HasPrefix(rawURL, base+"/") {
			continue
		}
		rest := strings.TrimPrefix(rawURL, base+"/")
		b, k, found := strings.Cut(rest, "/")
		if !found || b == "" || k == "" {
			continue
		}
		if unescaped, err := url.PathUnescape(k); err == nil {
			k = unescaped
		}
		return b, k, true
	}
	return "", "", false
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
