package broker

import (
	"context"
	"errors"
	"fmt"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/port"

	"github.com/google/uuid"
)

// RetryUpload issues a fresh key and url for one file. The previous key is never reissued.
func (b *brokerService) RetryUpload(ctx context.Context, ownerID uuid.UUID, req domain.RetryRequest) (*domain.PresignedFile, error) {
	switch {
	case req.UploadID != nil:
		return b.retryPersisted(ctx, ownerID, *req.UploadID)
	case req.SessionID != nil && req.StorageKey != "":
		return b.retryIssued(ctx, ownerID, *req.SessionID, req.StorageKey)
	default:
		return nil, fmt.Errorf("uploadId or sessionId and storageKey: %w", domain.ErrMissingField)
	}
}

// retryIssued replaces a key that was issued but never submitted
func (b *brokerService) retryIssued(ctx context.Context, ownerID, sessionID uuid.UUID, oldKey string) (*domain.PresignedFile, error) {
	session, err := b.sessions.Find(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.OwnerID != ownerID {
		return nil, domain.ErrSessionNotFound
	}

	issued, ok := session.Key(oldKey)
	if !ok {
		return nil, domain.ErrForeignStorageKey
	}
	switch issued.State {
	case domain.IssuedKeyStateAbandoned:
		return nil, domain.ErrStorageKeyAbandoned
	case domain.IssuedKeyStateConsumed:
		return nil, fmt.Errorf("%w: key is attached to an upload, retry by uploadId", domain.ErrUploadNotRetryable)
	}
	if issued.Attempt > b.cfg.MaxRetries {
		return nil, domain.ErrRetryLimitExceeded
	}

	newKey := siblingKey(oldKey, issued.Filename)
	url, headers, expiresAt, err := b.storage.PresignPut(ctx, newKey, issued.MimeType, issued.SizeBytes)
	if err != nil {
		return nil, fmt.Errorf("could not issue upload url for %s: %w", issued.Filename, err)
	}

	next := issued
	next.StorageKey = newKey
	next.Attempt = issued.Attempt + 1
	next.State = domain.IssuedKeyStateIssued
	next.ReplacedBy = ""
	next.IssuedAt = b.now()

	if err := b.sessions.Replace(ctx, sessionID, oldKey, next); err != nil {
		return nil, err
	}

	b.logger.Info("upload url reissued",
		"session", sessionID.String(),
		"oldKey", oldKey,
		"newKey", newKey,
		"attempt", next.Attempt)

	return &domain.PresignedFile{
		StorageKey:   newKey,
		PresignedURL: url,
		Headers:      headers,
		Filename:     issued.Filename,
		Size:         issued.SizeBytes,
		MimeType:     issued.MimeType,
		ExpiresAt:    expiresAt,
	}, nil
}

// retryPersisted points a pending or missing upload at a fresh key
func (b *brokerService) retryPersisted(ctx context.Context, ownerID, uploadID uuid.UUID) (*domain.PresignedFile, error) {
	upload, err := b.uow.UploadRepo().FindByID(ctx, uploadID)
	if err != nil {
		return nil, err
	}
	if upload.OwnerID != ownerID {
		return nil, domain.ErrUploadNotFound
	}
	if upload.Status == domain.UploadStatusCompleted {
		return nil, domain.ErrUploadNotRetryable
	}
	if upload.Attempts >= b.cfg.MaxRetries {
		return nil, domain.ErrRetryLimitExceeded
	}

	newKey := siblingKey(upload.StorageKey, upload.FileName)
	url, headers, expiresAt, err := b.storage.PresignPut(ctx, newKey, upload.MimeType, upload.SizeBytes)
	if err != nil {
		return nil, fmt.Errorf("could not issue upload url for %s: %w", upload.FileName, err)
	}

	err = b.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		return uow.UploadRepo().ReplaceStorageKey(ctx, upload.ID, newKey)
	})
	if err != nil {
		if errors.Is(err, domain.ErrUploadNotFound) || errors.Is(err, domain.ErrStorageKeyConsumed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrTransactionFailed, err)
	}

	b.logger.Info("upload url reissued",
		"upload", upload.ID.String(),
		"oldKey", upload.StorageKey,
		"newKey", newKey,
		"attempt", upload.Attempts+1)

	return &domain.PresignedFile{
		StorageKey:   newKey,
		PresignedURL: url,
		Headers:      headers,
		Filename:     upload.FileName,
		Size:         upload.SizeBytes,
		MimeType:     upload.MimeType,
		ExpiresAt:    expiresAt,
	}, nil
}
