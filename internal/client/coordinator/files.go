package coordinator

import (
	"context"
	"errors"
	"fmt"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/client/transfer"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// AddFile selects a file for upload. The file starts Pending.
func (c *Coordinator) AddFile(f File) (uuid.UUID, error) {
	if f.Name == "" || f.MimeType == "" || f.Open == nil {
		return uuid.Nil, domain.ErrMissingField
	}
	if f.Size <= 0 {
		return uuid.Nil, domain.ErrFileSizeTooSmall
	}

	e := &entry{
		id:     uuid.New(),
		order:  c.counter.Add(1),
		file:   f,
		status: Pending{},
	}
	c.files.Store(e.id, e)

	e.mu.Lock()
	c.publish(Event{FileID: e.id, Status: e.status})
	e.mu.Unlock()
	return e.id, nil
}

// RemoveFile drops a file from the wizard, aborting its transfer if any
func (c *Coordinator) RemoveFile(id uuid.UUID) error {
	e, err := c.entry(id)
	if err != nil {
		return err
	}
	c.files.Delete(id)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
	c.publish(Event{FileID: id, Status: e.status, Removed: true})
	return nil
}

// Cancel aborts an in-flight transfer. The file goes back to Pending and keeps its url.
func (c *Coordinator) Cancel(id uuid.UUID) error {
	e, err := c.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.status.(Uploading); !ok || e.cancel == nil {
		return fmt.Errorf("cannot cancel a %s file: %w", e.status.State(), ErrInvalidTransition)
	}
	e.cancel()
	return nil
}

// Start requests urls for every Pending file lacking a usable one, then transfers all Pending files
// with bounded parallelism. It returns once every transfer ended. A failed url request puts the
// files back to Pending and is returned; transfer failures stay on their file.
func (c *Coordinator) Start(ctx context.Context) error {
	var needURL, ready []*entry
	for _, e := range c.entries() {
		e.mu.Lock()
		if _, ok := e.status.(Pending); ok {
			if e.url != "" && c.now().Before(e.expiresAt) {
				ready = append(ready, e)
			} else if c.setStatus(e, Requesting{}) {
				needURL = append(needURL, e)
			}
		}
		e.mu.Unlock()
	}

	if len(needURL) > 0 {
		if err := c.requestURLs(ctx, needURL); err != nil {
			return err
		}
	}

	g := new(errgroup.Group)
	g.SetLimit(c.parallelism)
	for _, e := range append(ready, needURL...) {
		g.Go(func() error {
			c.transfer(ctx, e)
			return nil
		})
	}
	return g.Wait()
}

func (c *Coordinator) requestURLs(ctx context.Context, batch []*entry) error {
	undo := func() {
		for _, e := range batch {
			e.mu.Lock()
			c.setStatus(e, Pending{})
			e.mu.Unlock()
		}
	}

	files := make([]domain.FileDescriptor, len(batch))
	for i, e := range batch {
		files[i] = domain.FileDescriptor{
			Filename: e.file.Name,
			MimeType: e.file.MimeType,
			Size:     e.file.Size,
			FolderID: e.file.FolderID,
		}
	}

	c.requestMu.Lock()
	defer c.requestMu.Unlock()

	result, err := c.api.RequestUploadURLs(ctx, c.SessionID(), files)
	if err != nil {
		undo()
		return fmt.Errorf("could not request upload urls: %w", err)
	}
	if len(result.Files) != len(batch) {
		undo()
		return fmt.Errorf("got %d urls for %d files: %w", len(result.Files), len(batch), domain.ErrTransient)
	}

	c.sessionMu.Lock()
	if c.sessionID == nil {
		id := result.SessionID
		c.sessionID = &id
	}
	c.sessionMu.Unlock()

	for i, e := range batch {
		e.mu.Lock()
		e.assign(result.Files[i])
		e.mu.Unlock()
	}
	return nil
}

// assign must be called with e.mu held
func (e *entry) assign(f domain.PresignedFile) {
	e.storageKey = f.StorageKey
	e.url = f.PresignedURL
	e.headers = f.Headers
	e.expiresAt = f.ExpiresAt
}

// transfer runs one attempt for a file that is Pending with a url or Requesting
func (c *Coordinator) transfer(ctx context.Context, e *entry) {
	fileCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.mu.Lock()
	switch e.status.(type) {
	case Pending, Requesting:
	default:
		// another attempt owns the file
		e.mu.Unlock()
		return
	}
	if e.url == "" || !c.setStatus(e, Uploading{}) {
		e.mu.Unlock()
		return
	}
	e.cancel = cancel
	e.attempts++
	target := transfer.Target{
		URL:         e.url,
		Headers:     e.headers,
		ContentType: e.file.MimeType,
		Size:        e.file.Size,
		ExpiresAt:   e.expiresAt,
	}
	open := e.file.Open
	e.mu.Unlock()

	err := c.upload(fileCtx, target, open, func(percent int) {
		e.mu.Lock()
		if _, ok := e.status.(Uploading); ok {
			c.setStatus(e, Uploading{Progress: percent})
		}
		e.mu.Unlock()
	})

	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancel = nil
	switch {
	case err == nil:
		c.setStatus(e, Completed{})
	case errors.Is(err, transfer.ErrCanceled):
		c.setStatus(e, Pending{})
	default:
		kind := domain.KindOf(err)
		c.logger.Warn("file transfer failed", "file", e.file.Name, "storage_key", e.storageKey, "kind", kind, "error", err)
		c.setStatus(e, Failed{Kind: kind, Message: failureMessage(kind, err)})
	}
}

func (c *Coordinator) upload(ctx context.Context, target transfer.Target, open Opener, progress transfer.ProgressFunc) error {
	body, err := open()
	if err != nil {
		return fmt.Errorf("could not open file: %w", errors.Join(err, transfer.ErrTransferFailed))
	}
	defer body.Close()
	return c.uploader.Upload(ctx, target, body, progress)
}

func failureMessage(kind domain.ErrorKind, err error) string {
	switch kind {
	case domain.KindAuthExpired:
		return "upload url expired, retry the file to get a fresh url"
	case domain.KindNetworkTransient:
		return "connection to storage failed, retry the file"
	default:
		return err.Error()
	}
}

// Retry gives a Failed file a fresh storage key and transfers it again. The previous key is abandoned
// server side. Only this file is touched. When the API refuses, the file stays Failed and the error is returned.
func (c *Coordinator) Retry(ctx context.Context, id uuid.UUID) error {
	e, err := c.entry(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	previous, ok := e.status.(Failed)
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("cannot retry a %s file: %w", e.status.State(), ErrInvalidTransition)
	}
	c.setStatus(e, Pending{})
	c.setStatus(e, Requesting{})
	storageKey := e.storageKey
	e.mu.Unlock()

	undo := func() {
		e.mu.Lock()
		c.setStatus(e, previous)
		e.mu.Unlock()
	}

	sessionID := c.SessionID()
	if sessionID == nil || storageKey == "" {
		undo()
		return fmt.Errorf("file was never issued a url: %w", ErrInvalidTransition)
	}

	issued, err := c.api.RetryUpload(ctx, domain.RetryRequest{SessionID: sessionID, StorageKey: storageKey})
	if err != nil {
		undo()
		return fmt.Errorf("could not retry %s: %w", storageKey, err)
	}

	e.mu.Lock()
	e.assign(*issued)
	e.mu.Unlock()

	c.transfer(ctx, e)
	return nil
}
