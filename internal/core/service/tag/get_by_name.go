package tag

import (
	"context"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"
)

// GetTagByName finds a tag whatever the case of name
func (t *tagService) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	name = domain.NormalizeTagName(name)
	if name == "" {
		return nil, domain.ErrMissingField
	}
	return t.repo.FindByName(ctx, name)
}
