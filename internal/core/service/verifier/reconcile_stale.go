package verifier

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReconcileStale revisits resources holding uploads still pending past the grace period
func (v *verifierService) ReconcileStale(ctx context.Context, now time.Time) error {
	uploads, err := v.uow.UploadRepo().FindPendingBefore(ctx, now.Add(-v.cfg.PendingGrace), v.cfg.ReconcileBatch)
	if err != nil {
		return err
	}

	seen := make(map[uuid.UUID]struct{})
	var errs []error
	for _, upload := range uploads {
		if _, ok := seen[upload.ResourceID]; ok {
			continue
		}
		seen[upload.ResourceID] = struct{}{}

		resource, err := v.uow.ResourceRepo().FindByID(ctx, upload.ResourceID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, err := v.reconcileResource(ctx, resource, now); err != nil {
			v.logger.Error("failed to reconcile resource", "resource", resource.ID.String(), "error", err)
			errs = append(errs, err)
		}
	}

	v.logger.Info("stale uploads reconciled", "uploads", len(uploads), "resources", len(seen))
	return errors.Join(errs...)
}
