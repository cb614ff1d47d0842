package lookup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/port"

	"github.com/google/uuid"
)

type lookupService struct {
	uow    port.UnitOfWork
	logger *slog.Logger
}

// NewLookupService creates the service listing values the metadata step can pick from
func NewLookupService(uow port.UnitOfWork, logger *slog.Logger) port.LookupService {
	return &lookupService{uow: uow, logger: logger}
}

// ListClassifications returns every classification level ordered by rank
func (l *lookupService) ListClassifications(ctx context.Context) ([]domain.ClassificationLevel, error) {
	levels, err := l.uow.ClassificationRepo().List(ctx)
	if err != nil {
		return nil, err
	}
	if levels == nil {
		levels = []domain.ClassificationLevel{}
	}
	return levels, nil
}

// ListFolders returns the caller's folders with their tag ids
func (l *lookupService) ListFolders(ctx context.Context, ownerID uuid.UUID) ([]domain.Folder, error) {
	if ownerID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}

	folders, err := l.uow.FolderRepo().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	for i := range folders {
		tagIDs, err := l.uow.FolderTagRepo().FindByFolderID(ctx, folders[i].ID)
		if err != nil {
			return nil, fmt.Errorf("could not load tags of folder %s: %w", folders[i].ID, err)
		}
		folders[i].TagIDs = tagIDs
	}

	l.logger.Debug("folders listed", "owner", ownerID.String(), "count", len(folders))
	if folders == nil {
		folders = []domain.Folder{}
	}
	return folders, nil
}
