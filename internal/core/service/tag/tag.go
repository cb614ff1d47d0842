package tag

import (
	"log/slog"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/port"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxTagLength    = 64
)

type tagService struct {
	repo   port.TagRepository
	logger *slog.Logger
}

// NewTagService creates the service behind the folder tag picker
func NewTagService(repo port.TagRepository, logger *slog.Logger) port.TagService {
	return &tagService{repo: repo, logger: logger}
}
