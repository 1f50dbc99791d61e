package s3

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"tradeboard/internal/app/policies"
)

// MediaStore removes announcement media from an S3-compatible bucket.
type MediaStore struct {
	bucket string
	client *minio.Client
	logger *slog.Logger
}

// NewMediaStore configures a client using the provided endpoint and credentials.
func NewMediaStore(endpoint string, useSSL bool, accessKey, secretKey, bucket string, logger *slog.Logger) (*MediaStore, error) {
	cleanEndpoint := strings.TrimSpace(endpoint)
	if cleanEndpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	if bucket = strings.TrimSpace(bucket); bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}

	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(accessKey), strings.TrimSpace(secretKey), ""),
		Secure: useSSL,
	}
	client, err := minio.New(parseEndpoint(cleanEndpoint), opts)
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MediaStore{bucket: bucket, client: client, logger: logger}, nil
}

// DeleteObjects removes every key; keys may also be public object URLs.
// Missing objects are not errors.
func (s *MediaStore) DeleteObjects(ctx context.Context, keys []string) error {
	objects := make(chan minio.ObjectInfo, len(keys))
	for _, raw := range keys {
		if key := objectKey(s.bucket, raw); key != "" {
			objects <- minio.ObjectInfo{Key: key}
		}
	}
	close(objects)

	var errs []error
	for rerr := range s.client.RemoveObjects(ctx, s.bucket, objects, minio.RemoveObjectsOptions{}) {
		if minio.ToErrorResponse(rerr.Err).Code == "NoSuchKey" {
			continue
		}
		errs = append(errs, fmt.Errorf("s3: remove %s: %w", rerr.ObjectName, rerr.Err))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	s.logger.InfoContext(ctx, "s3 objects removed", "bucket", s.bucket, "count", len(keys))
	return nil
}

// objectKey turns "http://host/bucket/a/b.jpg" or "/a/b.jpg" into "a/b.jpg".
func objectKey(bucket, raw string) string {
	key := strings.TrimSpace(raw)
	if parsed, err := url.Parse(key); err == nil && parsed.Host != "" {
		key = parsed.Path
	}
	key = strings.Trim(key, "/")
	key = strings.TrimPrefix(key, bucket+"/")
	return key
}

func parseEndpoint(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

var _ policies.MediaStore = (*MediaStore)(nil)
