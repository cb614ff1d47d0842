package verifier

import (
	"context"
	"strings"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"
)

const orphanPageSize = 500

// CollectOrphans finds stored objects older than the retention window that no upload references.
// Depending on the policy they are reported or deleted. It returns how many were found.
func (v *verifierService) CollectOrphans(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-v.cfg.OrphanRetention)
	prefix := strings.TrimSuffix(v.cfg.KeyPrefix, "/") + "/"

	var candidates []domain.ObjectInfo
	orphans := 0
	flush := func() error {
		if len(candidates) == 0 {
			return nil
		}
		keys := make([]string, len(candidates))
		for i, object := range candidates {
			keys[i] = object.Key
		}
		referenced, err := v.uow.UploadRepo().ExistingStorageKeys(ctx, keys)
		if err != nil {
			return err
		}
		for _, object := range candidates {
			if referenced[object.Key] {
				continue
			}
			orphans++
			if err := v.handleOrphan(ctx, object); err != nil {
				return err
			}
		}
		candidates = candidates[:0]
		return nil
	}

	err := v.storage.WalkObjects(ctx, prefix, func(object domain.ObjectInfo) error {
		if !object.LastModified.Before(cutoff) {
			return nil
		}
		candidates = append(candidates, object)
		if len(candidates) >= orphanPageSize {
			return flush()
		}
		return nil
	})
	if err == nil {
		err = flush()
	}
	if err != nil {
		return orphans, err
	}

	v.logger.Info("orphan sweep finished", "orphans", orphans, "policy", v.cfg.OrphanPolicy)
	return orphans, nil
}

func (v *verifierService) handleOrphan(ctx context.Context, object domain.ObjectInfo) error {
	if OrphanPolicy(v.cfg.OrphanPolicy) != OrphanPolicyDelete {
		v.logger.Warn("orphaned object",
			"key", object.Key,
			"size", object.Size,
			"lastModified", object.LastModified)
		return nil
	}
	return v.storage.DeleteObject(ctx, object.Key)
}
