package resource

import (
	"context"
	"fmt"
	"strings"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/port"

	"github.com/google/uuid"
)

// CreateResource commits a submission: the folder (when new), the resource and one upload per file
// are written in a single transaction, all or nothing.
func (r *resourceService) CreateResource(ctx context.Context, ownerID uuid.UUID, in domain.CreateResourceInput) (*domain.CreateResourceResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	issued, err := r.verifyKeys(ctx, ownerID, in)
	if err != nil {
		return nil, err
	}

	category := in.Category
	if category == "" {
		category = in.Files[0].Category
	}
	resource := domain.Resource{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Visibility:  in.Visibility,
		Category:    category,
		Status:      domain.ResourceStatusProcessing,
	}

	uploads := make([]domain.Upload, 0, len(in.Files))
	for _, file := range in.Files {
		key := issued[file.StorageKey]
		uploads = append(uploads, domain.Upload{
			ID:          uuid.New(),
			OwnerID:     ownerID,
			ResourceID:  resource.ID,
			FileName:    file.OriginalFilename,
			Title:       file.Title,
			Description: file.Description,
			Category:    file.Category,
			Visibility:  file.Visibility,
			MimeType:    key.MimeType,
			SizeBytes:   key.SizeBytes,
			StorageKey:  file.StorageKey,
			Status:      domain.UploadStatusPending,
		})
	}

	var folder *domain.Folder
	txErr := r.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		var err error
		folder, err = r.resolveFolder(ctx, uow, ownerID, in.FolderManagement)
		if err != nil {
			return err
		}
		resource.FolderID = &folder.ID

		if err := uow.ResourceRepo().Create(ctx, resource); err != nil {
			return err
		}
		return uow.UploadRepo().CreateMany(ctx, uploads)
	})
	if txErr != nil {
		switch domain.KindOf(txErr) {
		case domain.KindValidation, domain.KindConflict:
			return nil, txErr
		default:
			return nil, fmt.Errorf("%w: %w", domain.ErrTransactionFailed, txErr)
		}
	}

	keys := make([]string, len(uploads))
	for i, upload := range uploads {
		keys[i] = upload.StorageKey
	}
	if err := r.sessions.MarkConsumed(ctx, in.SessionID, keys); err != nil {
		r.logger.Warn("could not mark storage keys consumed", "session", in.SessionID.String(), "error", err)
	}

	r.logger.Info("resource created",
		"resource", resource.ID.String(),
		"owner", ownerID.String(),
		"uploads", len(uploads))

	result := &domain.CreateResourceResult{Resource: resource, Uploads: uploads}
	if in.FolderManagement.NewFolder != nil {
		result.Folder = folder
	}
	return result, nil
}

// verifyKeys checks every submitted key against the keys issued to the owner's session
func (r *resourceService) verifyKeys(ctx context.Context, ownerID uuid.UUID, in domain.CreateResourceInput) (map[string]domain.IssuedKey, error) {
	session, err := r.sessions.Find(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if session.OwnerID != ownerID {
		return nil, domain.ErrSessionNotFound
	}

	issued := make(map[string]domain.IssuedKey, len(in.Files))
	for _, file := range in.Files {
		key, ok := session.Key(file.StorageKey)
		if !ok {
			return nil, fmt.Errorf("%s: %w", file.StorageKey, domain.ErrForeignStorageKey)
		}
		switch key.State {
		case domain.IssuedKeyStateAbandoned:
			return nil, fmt.Errorf("%s: %w", file.StorageKey, domain.ErrStorageKeyAbandoned)
		case domain.IssuedKeyStateConsumed:
			return nil, fmt.Errorf("%s: %w", file.StorageKey, domain.ErrStorageKeyConsumed)
		}
		if key.SizeBytes != file.Size || !strings.EqualFold(key.MimeType, file.MimeType) {
			return nil, fmt.Errorf("%s: %w", file.StorageKey, domain.ErrMetadataMismatch)
		}
		issued[file.StorageKey] = key
	}
	return issued, nil
}

// resolveFolder creates the requested folder or checks that the selected one belongs to the owner
func (r *resourceService) resolveFolder(ctx context.Context, uow port.UnitOfWork, ownerID uuid.UUID, directive domain.FolderManagement) (*domain.Folder, error) {
	if directive.SelectedFolderID != nil {
		folder, err := uow.FolderRepo().FindByID(ctx, *directive.SelectedFolderID)
		if err != nil {
			return nil, err
		}
		if folder.OwnerID != ownerID {
			return nil, domain.ErrFolderNotFound
		}
		return folder, nil
	}

	data := directive.NewFolder
	if _, err := uow.ClassificationRepo().FindByID(ctx, data.ClassificationID); err != nil {
		return nil, err
	}

	tagIDs := uniqueIDs(data.TagIDs)
	if len(tagIDs) > 0 {
		tags, err := uow.TagRepo().FindByIDs(ctx, tagIDs)
		if err != nil {
			return nil, err
		}
		if len(tags) != len(tagIDs) {
			return nil, fmt.Errorf("%w: %d of %d tags exist", domain.ErrTagNotFound, len(tags), len(tagIDs))
		}
	}

	folder := &domain.Folder{
		ID:               uuid.New(),
		OwnerID:          ownerID,
		Name:             strings.TrimSpace(data.Name),
		Description:      data.Description,
		ClassificationID: data.ClassificationID,
		TagIDs:           tagIDs,
		CreatedAt:        r.now(),
	}
	if err := uow.FolderRepo().Create(ctx, *folder); err != nil {
		return nil, err
	}
	if len(tagIDs) > 0 {
		if _, err := uow.FolderTagRepo().CreateMany(ctx, folder.ID, tagIDs); err != nil {
			return nil, err
		}
	}
	return folder, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
