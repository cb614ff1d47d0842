package port

import (
	"context"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"
)

// ObjectStorage is an interface to define object storage interactions
type ObjectStorage interface {
	PresignPut(ctx context.Context, storageKey, contentType string, size int64) (string, map[string]string, time.Time, error)
	PresignGet(ctx context.Context, storageKey, filename string) (string, time.Time, error)
	StatObject(ctx context.Context, storageKey string) (*domain.ObjectInfo, error)
	DeleteObject(ctx context.Context, storageKey string) error
	WalkObjects(ctx context.Context, prefix string, fn func(domain.ObjectInfo) error) error
	PresignDuration() time.Duration
}
