package resource

import (
	"context"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/google/uuid"
)

// GetDownloadURL returns a short-lived read url for a completed upload.
// Uploads of others are readable only when both the upload and its resource are public.
func (r *resourceService) GetDownloadURL(ctx context.Context, ownerID uuid.UUID, uploadID uuid.UUID) (string, *time.Time, error) {
	upload, err := r.uow.UploadRepo().FindByID(ctx, uploadID)
	if err != nil {
		return "", nil, err
	}

	if upload.OwnerID != ownerID {
		if upload.Visibility != domain.VisibilityPublic {
			return "", nil, domain.ErrUploadNotFound
		}
		resource, err := r.uow.ResourceRepo().FindByID(ctx, upload.ResourceID)
		if err != nil {
			return "", nil, err
		}
		if resource.Visibility != domain.VisibilityPublic {
			return "", nil, domain.ErrUploadNotFound
		}
	}

	switch upload.Status {
	case domain.UploadStatusPending:
		return "", nil, domain.ErrFileNotReady
	case domain.UploadStatusMissing:
		return "", nil, domain.ErrFileUploadFailed
	}

	url, expiresAt, err := r.storage.PresignGet(ctx, upload.StorageKey, upload.FileName)
	if err != nil {
		return "", nil, err
	}
	return url, &expiresAt, nil
}
