package tag

import (
	"context"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"
)

// ListTags returns one page of tags sorted by name, plus the marker of the next page if any
func (t *tagService) ListTags(ctx context.Context, limit int, marker *string) ([]domain.Tag, *string, error) {
	switch {
	case limit <= 0:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}
	if marker != nil && *marker == "" {
		marker = nil
	}

	list, nextMarker, err := t.repo.List(ctx, limit, marker)
	if err != nil {
		return nil, nil, err
	}

	return list, nextMarker, nil
}
