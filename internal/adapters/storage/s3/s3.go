package s3

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/config"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/port"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Adapter stores objects in an S3 compatible bucket through aws-sdk-go-v2
type Adapter struct {
	client  *s3.Client
	presign *s3.PresignClient
	config  config.S3Config
	logger  *slog.Logger
	now     func() time.Time
}

var _ port.ObjectStorage = (*Adapter)(nil)

// NewAdapter returns Adapter, creating the bucket when it does not exist
func NewAdapter(ctx context.Context, cfg config.S3Config, logger *slog.Logger) (*Adapter, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	a := &Adapter{
		client:  client,
		presign: s3.NewPresignClient(client),
		config:  cfg,
		logger:  logger,
		now:     time.Now,
	}
	if err := a.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Adapter) ensureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.config.Bucket)})
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(a.config.Bucket)}
	if a.config.Region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(a.config.Region),
		}
	}
	if _, err := a.client.CreateBucket(ctx, input); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "BucketAlreadyOwnedByYou" || apiErr.ErrorCode() == "BucketAlreadyExists") {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// PresignDuration returns the lifetime of write urls
func (a *Adapter) PresignDuration() time.Duration {
	return a.config.PresignedDuration
}

// PresignPut generates a write-scoped url bound to the content type and length
func (a *Adapter) PresignPut(ctx context.Context, storageKey, contentType string, size int64) (string, map[string]string, time.Time, error) {
	result, err := a.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.config.Bucket),
		Key:           aws.String(storageKey),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}, s3.WithPresignExpires(a.config.PresignedDuration))
	if err != nil {
		return "", nil, time.Time{}, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	headers := make(map[string]string, len(result.SignedHeader))
	for key, values := range result.SignedHeader {
		// the client sets Host and Content-Length itself
		if strings.EqualFold(key, "Host") || strings.EqualFold(key, "Content-Length") || len(values) == 0 {
			continue
		}
		headers[http.CanonicalHeaderKey(key)] = values[0]
	}
	headers["Content-Type"] = contentType

	return result.URL, headers, a.now().Add(a.config.PresignedDuration), nil
}

// PresignGet generates a read url that downloads the object as filename
func (a *Adapter) PresignGet(ctx context.Context, storageKey, filename string) (string, time.Time, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(a.config.Bucket),
		Key:    aws.String(storageKey),
	}
	if filename != "" {
		input.ResponseContentDisposition = aws.String(fmt.Sprintf("attachment; filename=%q", filename))
	}

	result, err := a.presign.PresignGetObject(ctx, input, s3.WithPresignExpires(a.config.DownloadSignedURLDuration))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate presigned download URL: %w", err)
	}
	return result.URL, a.now().Add(a.config.DownloadSignedURLDuration), nil
}

// StatObject returns object info or domain.ErrObjectNotFound
func (a *Adapter) StatObject(ctx context.Context, storageKey string) (*domain.ObjectInfo, error) {
	result, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.config.Bucket),
		Key:    aws.String(storageKey),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", storageKey, domain.ErrObjectNotFound)
		}
		return nil, fmt.Errorf("failed to get object metadata: %w", errors.Join(err, domain.ErrTransient))
	}

	info := &domain.ObjectInfo{
		Key:         storageKey,
		Size:        aws.ToInt64(result.ContentLength),
		ContentType: aws.ToString(result.ContentType),
	}
	if result.LastModified != nil {
		info.LastModified = *result.LastModified
	}
	return info, nil
}

// DeleteObject deletes an object from the bucket
func (a *Adapter) DeleteObject(ctx context.Context, storageKey string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.config.Bucket),
		Key:    aws.String(storageKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	a.logger.Info("object deleted",
		slog.String("storageKey", storageKey),
		slog.String("bucket", a.config.Bucket))
	return nil
}

// WalkObjects calls fn for every object under prefix, page by page
func (a *Adapter) WalkObjects(ctx context.Context, prefix string, fn func(domain.ObjectInfo) error) error {
	paginator := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.config.Bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to list objects: %w", err)
		}
		for _, object := range page.Contents {
			info := domain.ObjectInfo{
				Key:  aws.ToString(object.Key),
				Size: aws.ToInt64(object.Size),
			}
			if object.LastModified != nil {
				info.LastModified = *object.LastModified
			}
			if err := fn(info); err != nil {
				return err
			}
		}
	}
	return nil
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) || errors.As(err, &noSuchBucket) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return true
		}
	}
	return false
}
