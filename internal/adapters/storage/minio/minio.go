package minio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/config"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/port"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Adapter is an adapter for minio
type Adapter struct {
	client *minio.Client
	config config.MinioConfig
	logger *slog.Logger
	now    func() time.Time
}

var _ port.ObjectStorage = (*Adapter)(nil)

// NewAdapter returns Adapter, creating the bucket when it does not exist
func NewAdapter(ctx context.Context, cfg config.MinioConfig, logger *slog.Logger) (*Adapter, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &Adapter{client: client, config: cfg, logger: logger, now: time.Now}, nil
}

// PresignDuration returns the lifetime of write urls
func (a *Adapter) PresignDuration() time.Duration {
	return a.config.PresignedDuration
}

// PresignPut generates a write-scoped url for a single PUT of storageKey.
// The returned headers must be sent with the request.
func (a *Adapter) PresignPut(ctx context.Context, storageKey, contentType string, size int64) (string, map[string]string, time.Time, error) {
	requestHeaders := make(http.Header)
	requestHeaders.Set("Content-Type", contentType)

	presignedURL, err := a.client.PresignHeader(ctx, http.MethodPut, a.config.BucketName, storageKey, a.config.PresignedDuration, nil, requestHeaders)
	if err != nil {
		return "", nil, time.Time{}, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	expiresAt := a.now().Add(a.config.PresignedDuration)

	a.logger.Debug("pre-signed put issued",
		slog.String("storageKey", storageKey),
		slog.Int64("size", size),
		slog.Time("expiresAt", expiresAt))

	return presignedURL.String(), headerToMap(requestHeaders), expiresAt, nil
}

// PresignGet generates a read url that downloads the object as filename
func (a *Adapter) PresignGet(ctx context.Context, storageKey, filename string) (string, time.Time, error) {
	params := make(url.Values)
	if filename != "" {
		params.Set("response-content-disposition", contentDisposition(filename))
	}

	presignedURL, err := a.client.PresignedGetObject(ctx, a.config.BucketName, storageKey, a.config.DownloadSignedURLDuration, params)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate presigned download URL: %w", err)
	}

	return presignedURL.String(), a.now().Add(a.config.DownloadSignedURLDuration), nil
}

// StatObject returns object info or domain.ErrObjectNotFound
func (a *Adapter) StatObject(ctx context.Context, storageKey string) (*domain.ObjectInfo, error) {
	info, err := a.client.StatObject(ctx, a.config.BucketName, storageKey, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", storageKey, domain.ErrObjectNotFound)
		}
		return nil, fmt.Errorf("failed to get object info: %w", errors.Join(err, domain.ErrTransient))
	}
	return &domain.ObjectInfo{
		Key:          info.Key,
		Size:         info.Size,
		ContentType:  info.ContentType,
		LastModified: info.LastModified,
	}, nil
}

// DeleteObject deletes an object from storage
func (a *Adapter) DeleteObject(ctx context.Context, storageKey string) error {
	err := a.client.RemoveObject(ctx, a.config.BucketName, storageKey, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	a.logger.Info("object deleted",
		slog.String("storageKey", storageKey),
		slog.String("bucket", a.config.BucketName))

	return nil
}

// WalkObjects calls fn for every object under prefix; it stops at the first error
func (a *Adapter) WalkObjects(ctx context.Context, prefix string, fn func(domain.ObjectInfo) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for object := range a.client.ListObjects(ctx, a.config.BucketName, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if object.Err != nil {
			return fmt.Errorf("failed to list objects: %w", object.Err)
		}
		if err := fn(domain.ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			ContentType:  object.ContentType,
			LastModified: object.LastModified,
		}); err != nil {
			return err
		}
	}
	return nil
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}

func contentDisposition(filename string) string {
	escaped := strings.NewReplacer(`"`, "", "\\", "").Replace(filename)
	return fmt.Sprintf(`attachment; filename="%s"`, escaped)
}

func headerToMap(headers http.Header) map[string]string {
	result := make(map[string]string, len(headers))
	for key, values := range headers {
		if len(values) > 0 {
			result[key] = values[0]
		}
	}
	return result
}
