package tag

import (
	"context"
	"errors"
	"fmt"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"
)

// CreateTags creates tags by batch. Names are trimmed and lower-cased, existing ones are skipped.
func (t *tagService) CreateTags(ctx context.Context, tags []string) error {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		name := domain.NormalizeTagName(tag)
		if name == "" {
			continue
		}
		if len(name) > maxTagLength {
			return fmt.Errorf("%w: tag %q is longer than %d characters", domain.ErrMissingField, name, maxTagLength)
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return domain.ErrMissingField
	}

	created, err := t.repo.CreateMany(ctx, names)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			t.logger.Debug("tags already exist", "tags", names)
		}
		return err
	}

	t.logger.Info("tags created", "count", created)
	return nil
}
