package resource

import (
	"log/slog"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/port"
)

type resourceService struct {
	uow      port.UnitOfWork
	sessions port.SessionStore
	storage  port.ObjectStorage
	logger   *slog.Logger
	now      func() time.Time
}

// NewResourceService creates a new resource service
func NewResourceService(uow port.UnitOfWork, sessions port.SessionStore, storage port.ObjectStorage, logger *slog.Logger) port.ResourceService {
	return &resourceService{
		uow:      uow,
		sessions: sessions,
		storage:  storage,
		logger:   logger,
		now:      time.Now,
	}
}
