package coordinator_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/client/transfer"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/google/uuid"
)

// fakeAPI issues keys like the broker does and records every call
type fakeAPI struct {
	mu        sync.Mutex
	sessionID uuid.UUID
	issued    map[string]domain.FileDescriptor
	seq       int
	expiresAt func() time.Time

	batchCalls  [][]domain.FileDescriptor
	batchErr    error
	retryErr    error
	retryCalls  []domain.RetryRequest
	submitCalls []domain.CreateResourceInput
	submitErr   func(in domain.CreateResourceInput) error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		sessionID: uuid.New(),
		issued:    make(map[string]domain.FileDescriptor),
		expiresAt: func() time.Time { return time.Now().Add(15 * time.Minute) },
	}
}

// issue must be called with mu held
func (f *fakeAPI) issue(d domain.FileDescriptor) domain.PresignedFile {
	f.seq++
	key := fmt.Sprintf("uploads/owner/%s/%d-%s", f.sessionID, f.seq, d.Filename)
	f.issued[key] = d
	return domain.PresignedFile{
		StorageKey:   key,
		PresignedURL: fmt.Sprintf("http://storage/%s/%d", d.Filename, f.seq),
		Filename:     d.Filename,
		Size:         d.Size,
		MimeType:     d.MimeType,
		ExpiresAt:    f.expiresAt(),
	}
}

func (f *fakeAPI) RequestUploadURLs(_ context.Context, sessionID *uuid.UUID, files []domain.FileDescriptor) (*domain.PresignedBatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls = append(f.batchCalls, files)
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	if sessionID != nil && *sessionID != f.sessionID {
		return nil, domain.ErrSessionNotFound
	}
	batch := &domain.PresignedBatch{SessionID: f.sessionID, ExpiresIn: 15 * time.Minute}
	for _, d := range files {
		batch.Files = append(batch.Files, f.issue(d))
	}
	return batch, nil
}

func (f *fakeAPI) RetryUpload(_ context.Context, req domain.RetryRequest) (*domain.PresignedFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retryCalls = append(f.retryCalls, req)
	if f.retryErr != nil {
		return nil, f.retryErr
	}
	d, ok := f.issued[req.StorageKey]
	if !ok {
		return nil, domain.ErrForeignStorageKey
	}
	file := f.issue(d)
	return &file, nil
}

func (f *fakeAPI) CreateResource(_ context.Context, in domain.CreateResourceInput) (*domain.CreateResourceResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitCalls = append(f.submitCalls, in)
	if f.submitErr != nil {
		if err := f.submitErr(in); err != nil {
			return nil, err
		}
	}
	result := &domain.CreateResourceResult{
		Resource: domain.Resource{ID: uuid.New(), Title: in.Title, Status: domain.ResourceStatusProcessing},
	}
	for _, file := range in.Files {
		result.Uploads = append(result.Uploads, domain.Upload{
			ID:         uuid.New(),
			ResourceID: result.Resource.ID,
			StorageKey: file.StorageKey,
			Status:     domain.UploadStatusPending,
		})
	}
	return result, nil
}

func (f *fakeAPI) counts() (batches, retries, submits int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batchCalls), len(f.retryCalls), len(f.submitCalls)
}

// fakeUploader succeeds unless fail returns an error for the file name
type fakeUploader struct {
	mu    sync.Mutex
	calls map[string]int
	fail  func(name string, attempt int) error
	block bool
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{calls: make(map[string]int)}
}

func nameOf(url string) string {
	return strings.Split(strings.TrimPrefix(url, "http://storage/"), "/")[0]
}

func (u *fakeUploader) Upload(ctx context.Context, target transfer.Target, body io.Reader, progress transfer.ProgressFunc) error {
	_, _ = io.Copy(io.Discard, body)
	name := nameOf(target.URL)

	u.mu.Lock()
	u.calls[name]++
	attempt := u.calls[name]
	fail := u.fail
	block := u.block
	u.mu.Unlock()

	if progress != nil {
		progress(50)
	}
	if block {
		<-ctx.Done()
		return fmt.Errorf("%w: %w", transfer.ErrCanceled, ctx.Err())
	}
	if fail != nil {
		if err := fail(name, attempt); err != nil {
			return err
		}
	}
	if progress != nil {
		progress(100)
	}
	return nil
}

func (u *fakeUploader) count(name string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls[name]
}

func (u *fakeUploader) setBlock(block bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.block = block
}
