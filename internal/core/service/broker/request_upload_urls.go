package broker

import (
	"context"
	"fmt"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/google/uuid"
)

// RequestUploadURLs validates a batch and issues one write url per file.
// Nothing is persisted in the database; the issued keys live in a session with a bounded lifetime.
func (b *brokerService) RequestUploadURLs(ctx context.Context, ownerID uuid.UUID, files []domain.FileDescriptor) (*domain.PresignedBatch, error) {
	mimeTypes, err := b.validateBatch(ctx, ownerID, files)
	if err != nil {
		return nil, err
	}

	now := b.now()
	session := domain.UploadSession{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		CreatedAt: now,
		ExpiresAt: now.Add(b.cfg.SessionTTL),
		Keys:      make(map[string]domain.IssuedKey, len(files)),
	}

	issued, presigned, err := b.issue(ctx, ownerID, session.ID, files, mimeTypes)
	if err != nil {
		return nil, err
	}
	for _, key := range issued {
		session.Keys[key.StorageKey] = key
	}

	if err := b.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("could not save upload session: %w", err)
	}

	b.logger.Info("upload urls issued",
		"owner", ownerID.String(),
		"session", session.ID.String(),
		"files", len(presigned))

	return &domain.PresignedBatch{
		SessionID: session.ID,
		Files:     presigned,
		ExpiresIn: b.storage.PresignDuration(),
	}, nil
}

// ExtendBatch issues urls for more files in an existing session, so that files added
// to the wizard later can be submitted together with the first ones.
func (b *brokerService) ExtendBatch(ctx context.Context, ownerID uuid.UUID, sessionID uuid.UUID, files []domain.FileDescriptor) (*domain.PresignedBatch, error) {
	mimeTypes, err := b.validateBatch(ctx, ownerID, files)
	if err != nil {
		return nil, err
	}

	session, err := b.sessions.Find(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.OwnerID != ownerID {
		return nil, domain.ErrSessionNotFound
	}

	issued, presigned, err := b.issue(ctx, ownerID, sessionID, files, mimeTypes)
	if err != nil {
		return nil, err
	}
	if err := b.sessions.AddKeys(ctx, sessionID, issued); err != nil {
		return nil, fmt.Errorf("could not extend upload session: %w", err)
	}

	b.logger.Info("upload session extended",
		"owner", ownerID.String(),
		"session", sessionID.String(),
		"files", len(presigned))

	return &domain.PresignedBatch{
		SessionID: sessionID,
		Files:     presigned,
		ExpiresIn: b.storage.PresignDuration(),
	}, nil
}

// validateBatch rejects the whole batch on the first invalid file and returns the normalized mime types
func (b *brokerService) validateBatch(ctx context.Context, ownerID uuid.UUID, files []domain.FileDescriptor) ([]string, error) {
	if len(files) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	if b.cfg.MaxBatchFiles > 0 && len(files) > b.cfg.MaxBatchFiles {
		return nil, fmt.Errorf("%w: %d files, at most %d", domain.ErrBatchTooLarge, len(files), b.cfg.MaxBatchFiles)
	}

	mimeTypes := make([]string, len(files))
	for i, file := range files {
		mimeType, err := b.validateDescriptor(file)
		if err != nil {
			return nil, fmt.Errorf("file %d (%s): %w", i, file.Filename, err)
		}
		mimeTypes[i] = mimeType
	}

	if err := b.checkFolders(ctx, ownerID, files); err != nil {
		return nil, err
	}
	return mimeTypes, nil
}

// issue reserves one key per file and presigns it, in the order of files
func (b *brokerService) issue(ctx context.Context, ownerID, sessionID uuid.UUID, files []domain.FileDescriptor, mimeTypes []string) ([]domain.IssuedKey, []domain.PresignedFile, error) {
	now := b.now()
	issued := make([]domain.IssuedKey, 0, len(files))
	presigned := make([]domain.PresignedFile, 0, len(files))
	for i, file := range files {
		key := b.storageKey(ownerID, sessionID, file.Filename)

		url, headers, expiresAt, err := b.storage.PresignPut(ctx, key, mimeTypes[i], file.Size)
		if err != nil {
			return nil, nil, fmt.Errorf("could not issue upload url for %s: %w", file.Filename, err)
		}

		issued = append(issued, domain.IssuedKey{
			StorageKey: key,
			Filename:   file.Filename,
			MimeType:   mimeTypes[i],
			SizeBytes:  file.Size,
			FolderID:   file.FolderID,
			Attempt:    1,
			State:      domain.IssuedKeyStateIssued,
			IssuedAt:   now,
		})
		presigned = append(presigned, domain.PresignedFile{
			StorageKey:   key,
			PresignedURL: url,
			Headers:      headers,
			Filename:     file.Filename,
			Size:         file.Size,
			MimeType:     mimeTypes[i],
			ExpiresAt:    expiresAt,
		})
	}
	return issued, presigned, nil
}

// checkFolders verifies every referenced folder exists and belongs to the owner
func (b *brokerService) checkFolders(ctx context.Context, ownerID uuid.UUID, files []domain.FileDescriptor) error {
	checked := make(map[uuid.UUID]struct{})
	for _, file := range files {
		if file.FolderID == nil {
			continue
		}
		if _, ok := checked[*file.FolderID]; ok {
			continue
		}
		folder, err := b.uow.FolderRepo().FindByID(ctx, *file.FolderID)
		if err != nil {
			return fmt.Errorf("folder %s: %w", file.FolderID, err)
		}
		if folder.OwnerID != ownerID {
			return fmt.Errorf("folder %s: %w", file.FolderID, domain.ErrFolderNotFound)
		}
		checked[*file.FolderID] = struct{}{}
	}
	return nil
}
