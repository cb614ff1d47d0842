package verifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/port"

	"github.com/google/uuid"
)

// CompleteResource reconciles every upload of a resource against storage. Calling it again is harmless.
func (v *verifierService) CompleteResource(ctx context.Context, ownerID uuid.UUID, resourceID uuid.UUID) (*domain.CompletionReport, error) {
	resource, err := v.uow.ResourceRepo().FindByID(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if resource.OwnerID != ownerID {
		return nil, domain.ErrResourceNotFound
	}
	return v.reconcileResource(ctx, resource, v.now())
}

// reconcileResource stats the uploads outside of any transaction then writes status changes together
func (v *verifierService) reconcileResource(ctx context.Context, resource *domain.Resource, now time.Time) (*domain.CompletionReport, error) {
	uploads, err := v.uow.UploadRepo().FindByResourceID(ctx, resource.ID)
	if err != nil {
		return nil, err
	}

	report := &domain.CompletionReport{ResourceID: resource.ID, Status: resource.Status}
	changed := make(map[uuid.UUID]domain.UploadStatus)
	for _, upload := range uploads {
		status, err := v.observe(ctx, upload, now)
		if err != nil {
			return nil, err
		}
		if status != upload.Status {
			changed[upload.ID] = status
		}
		switch status {
		case domain.UploadStatusCompleted:
			report.Completed++
		case domain.UploadStatusMissing:
			report.Missing++
		default:
			report.Pending++
		}
	}

	activate := len(uploads) > 0 && report.Completed == len(uploads) && resource.Status != domain.ResourceStatusActive
	if len(changed) == 0 && !activate {
		return report, nil
	}

	err = v.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		for id, status := range changed {
			if err := uow.UploadRepo().UpdateStatus(ctx, id, status); err != nil {
				return err
			}
		}
		if activate {
			return uow.ResourceRepo().UpdateStatus(ctx, resource.ID, domain.ResourceStatusActive)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not record completion of resource %s: %w", resource.ID, err)
	}

	if activate {
		report.Status = domain.ResourceStatusActive
	}
	v.logger.Info("resource reconciled",
		"resource", resource.ID.String(),
		"status", report.Status,
		"completed", report.Completed,
		"pending", report.Pending,
		"missing", report.Missing)
	return report, nil
}

// observe returns the status storage currently implies for upload
func (v *verifierService) observe(ctx context.Context, upload domain.Upload, now time.Time) (domain.UploadStatus, error) {
	if upload.Status == domain.UploadStatusCompleted {
		return upload.Status, nil
	}

	info, err := v.storage.StatObject(ctx, upload.StorageKey)
	switch {
	case err == nil && info.Size == upload.SizeBytes:
		return domain.UploadStatusCompleted, nil
	case err == nil:
		v.logger.Warn("stored object size differs from upload",
			"upload", upload.ID.String(),
			"expected", upload.SizeBytes,
			"actual", info.Size)
	case !errors.Is(err, domain.ErrObjectNotFound):
		return "", err
	}

	if now.Sub(upload.UpdatedAt) > v.cfg.PendingGrace {
		return domain.UploadStatusMissing, nil
	}
	return upload.Status, nil
}
