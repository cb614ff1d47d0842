package verifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"
)

// HandleMessage reconciles the resource owning an object announced by a bucket notification.
// Objects no upload references yet are acknowledged; the transaction or the periodic sweep picks them up.
func (v *verifierService) HandleMessage(ctx context.Context, data []byte) error {
	var event domain.BucketEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("%w: could not unmarshal bucket event: %v", domain.ErrMissingField, err)
	}
	objects, err := event.CreatedObjects()
	if err != nil {
		return err
	}

	var errs []error
	for _, object := range objects {
		if err := v.handleObjectCreated(ctx, object.Key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (v *verifierService) handleObjectCreated(ctx context.Context, key string) error {
	upload, err := v.uow.UploadRepo().FindByStorageKey(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrUploadNotFound) {
			v.logger.Debug("object not attached to an upload yet", "key", key)
			return nil
		}
		return err
	}
	if upload.Status == domain.UploadStatusCompleted {
		return nil
	}

	resource, err := v.uow.ResourceRepo().FindByID(ctx, upload.ResourceID)
	if err != nil {
		return err
	}

	v.logger.Info("handling object created", "key", key, "upload", upload.ID.String())
	_, err = v.reconcileResource(ctx, resource, v.now())
	return err
}
