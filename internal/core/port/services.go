package port

import (
	"context"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/google/uuid"
)

// BrokerService issues pre-signed write targets without touching the database
type BrokerService interface {
	RequestUploadURLs(ctx context.Context, ownerID uuid.UUID, files []domain.FileDescriptor) (*domain.PresignedBatch, error)
	ExtendBatch(ctx context.Context, ownerID uuid.UUID, sessionID uuid.UUID, files []domain.FileDescriptor) (*domain.PresignedBatch, error)
	RetryUpload(ctx context.Context, ownerID uuid.UUID, req domain.RetryRequest) (*domain.PresignedFile, error)
}

// ResourceService commits submissions and serves read urls
type ResourceService interface {
	CreateResource(ctx context.Context, ownerID uuid.UUID, in domain.CreateResourceInput) (*domain.CreateResourceResult, error)
	GetDownloadURL(ctx context.Context, ownerID uuid.UUID, uploadID uuid.UUID) (string, *time.Time, error)
}

// VerifierService reconciles persisted uploads against storage
type VerifierService interface {
	MessageService
	CompleteResource(ctx context.Context, ownerID uuid.UUID, resourceID uuid.UUID) (*domain.CompletionReport, error)
	ReconcileStale(ctx context.Context, now time.Time) error
	CollectOrphans(ctx context.Context, now time.Time) (int, error)
}

// TagService represents a tag service implementation
type TagService interface {
	CreateTags(ctx context.Context, name []string) error
	GetTagByName(ctx context.Context, name string) (*domain.Tag, error)
	ListTags(ctx context.Context, limit int, marker *string) ([]domain.Tag, *string, error)
}

// LookupService exposes selectable values for folder metadata
type LookupService interface {
	ListClassifications(ctx context.Context) ([]domain.ClassificationLevel, error)
	ListFolders(ctx context.Context, ownerID uuid.UUID) ([]domain.Folder, error)
}
