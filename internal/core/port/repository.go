package port

import (
	"context"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/google/uuid"
)

// ResourceRepository is an interface to define resource repository interactions
type ResourceRepository interface {
	Create(ctx context.Context, resource domain.Resource) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Resource, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ResourceStatus) error
}

// UploadRepository is an interface to define upload repository interactions
type UploadRepository interface {
	CreateMany(ctx context.Context, uploads []domain.Upload) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Upload, error)
	FindByResourceID(ctx context.Context, resourceID uuid.UUID) ([]domain.Upload, error)
	FindByStorageKey(ctx context.Context, storageKey string) (*domain.Upload, error)
	FindPendingBefore(ctx context.Context, before time.Time, limit int) ([]domain.Upload, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UploadStatus) error
	ReplaceStorageKey(ctx context.Context, id uuid.UUID, storageKey string) error
	ExistingStorageKeys(ctx context.Context, keys []string) (map[string]bool, error)
}

// FolderRepository is an interface to define folder repository interactions
type FolderRepository interface {
	Create(ctx context.Context, folder domain.Folder) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Folder, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Folder, error)
}

// FolderTagRepository is an interface to define folder-tag associations
type FolderTagRepository interface {
	CreateMany(ctx context.Context, folderID uuid.UUID, tagIDs []uuid.UUID) (int, error)
	FindByFolderID(ctx context.Context, folderID uuid.UUID) ([]uuid.UUID, error)
}

// TagRepository represents a tag repository implementation
type TagRepository interface {
	CreateMany(ctx context.Context, tags []string) (int, error)
	FindByName(ctx context.Context, name string) (*domain.Tag, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Tag, error)
	List(ctx context.Context, limit int, marker *string) ([]domain.Tag, *string, error)
}

// ClassificationRepository is an interface to read classification levels
type ClassificationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ClassificationLevel, error)
	List(ctx context.Context) ([]domain.ClassificationLevel, error)
}
