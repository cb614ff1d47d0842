package broker_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/repository"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/sessionstore"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/storage"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/config"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/port"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/service/broker"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var defaultCfg = config.FileUploadConfig{
	MaxFileSize:   10 * 1024 * 1024,
	MinFileSize:   1,
	MaxBatchFiles: 3,
	MaxRetries:    2,
	KeyPrefix:     "uploads",
	SessionTTL:    time.Hour,
}

type fixture struct {
	uow      *repository.MockUnitOfWork
	storage  *storage.MockStorage
	sessions *sessionstore.MockSessionStore
	service  port.BrokerService
}

func newFixture() *fixture {
	f := &fixture{
		uow:      repository.NewMockUnitOfWork(),
		storage:  storage.NewMockStorage(),
		sessions: sessionstore.NewMockSessionStore(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.service = broker.NewBrokerService(f.storage, f.sessions, f.uow, defaultCfg, logger)
	return f
}

func (f *fixture) presignAny() {
	f.storage.On("PresignPut", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("https://storage.example.com/put", map[string]string{"Content-Type": "application/pdf"}, time.Now().Add(15*time.Minute), nil)
	f.storage.On("PresignDuration").Return(15 * time.Minute).Maybe()
}

func TestBrokerService_RequestUploadURLs_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newFixture()
	f.presignAny()
	ownerID := uuid.New()
	files := []domain.FileDescriptor{
		{Filename: "lecture.pdf", MimeType: "application/pdf", Size: 1024},
		{Filename: "Slides.PPTX", MimeType: "application/vnd.openxmlformats-officedocument.presentationml.presentation", Size: 2048},
	}

	var saved domain.UploadSession
	f.sessions.On("Save", ctx, mock.AnythingOfType("domain.UploadSession")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.UploadSession) }).
		Return(nil)

	// Act
	batch, err := f.service.RequestUploadURLs(ctx, ownerID, files)

	// Assert
	require.NoError(t, err)
	require.Len(t, batch.Files, 2)
	assert.Equal(t, 15*time.Minute, batch.ExpiresIn)
	assert.Equal(t, saved.ID, batch.SessionID)
	assert.Equal(t, ownerID, saved.OwnerID)
	assert.Len(t, saved.Keys, 2)

	prefix := "uploads/" + ownerID.String() + "/" + batch.SessionID.String() + "/"
	for i, file := range batch.Files {
		assert.True(t, strings.HasPrefix(file.StorageKey, prefix), file.StorageKey)
		assert.Equal(t, files[i].Filename, file.Filename)
		issued, ok := saved.Key(file.StorageKey)
		require.True(t, ok)
		assert.Equal(t, domain.IssuedKeyStateIssued, issued.State)
		assert.Equal(t, 1, issued.Attempt)
		assert.Equal(t, files[i].Size, issued.SizeBytes)
	}
	assert.True(t, strings.HasSuffix(batch.Files[1].StorageKey, ".pptx"))
	assert.NotEqual(t, batch.Files[0].StorageKey, batch.Files[1].StorageKey)
	f.sessions.AssertExpectations(t)
}

func TestBrokerService_RequestUploadURLs_RejectsWholeBatch(t *testing.T) {
	valid := domain.FileDescriptor{Filename: "notes.txt", MimeType: "text/plain", Size: 10}

	cases := []struct {
		name    string
		files   []domain.FileDescriptor
		wantErr error
	}{
		{"empty batch", nil, domain.ErrEmptyBatch},
		{"too many files", []domain.FileDescriptor{valid, valid, valid, valid}, domain.ErrBatchTooLarge},
		{"missing filename", []domain.FileDescriptor{valid, {MimeType: "text/plain", Size: 10}}, domain.ErrMissingField},
		{"empty file", []domain.FileDescriptor{valid, {Filename: "a.txt", MimeType: "text/plain", Size: 0}}, domain.ErrFileSizeTooSmall},
		{"file too big", []domain.FileDescriptor{{Filename: "a.pdf", MimeType: "application/pdf", Size: defaultCfg.MaxFileSize + 1}}, domain.ErrFileSizeTooBig},
		{"unsupported mime", []domain.FileDescriptor{valid, {Filename: "a.exe", MimeType: "application/x-msdownload", Size: 10}}, domain.ErrInvalidFileType},
		{"extension mismatch", []domain.FileDescriptor{{Filename: "a.png", MimeType: "application/pdf", Size: 10}}, domain.ErrInvalidFileType},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			f := newFixture()

			// Act
			batch, err := f.service.RequestUploadURLs(context.Background(), uuid.New(), tc.files)

			// Assert
			require.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
			assert.Nil(t, batch)
			f.storage.AssertNotCalled(t, "PresignPut", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			f.sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestBrokerService_RequestUploadURLs_ForeignFolder(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newFixture()
	folderID := uuid.New()
	f.uow.GetFolderRepoMock().On("FindByID", ctx, folderID).
		Return(&domain.Folder{ID: folderID, OwnerID: uuid.New()}, nil)

	// Act
	_, err := f.service.RequestUploadURLs(ctx, uuid.New(), []domain.FileDescriptor{
		{Filename: "a.pdf", MimeType: "application/pdf", Size: 1, FolderID: &folderID},
	})

	// Assert
	require.ErrorIs(t, err, domain.ErrFolderNotFound)
	f.sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func issuedSession(ownerID uuid.UUID, key string, attempt int, state domain.IssuedKeyState) *domain.UploadSession {
	return &domain.UploadSession{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Keys: map[string]domain.IssuedKey{
			key: {
				StorageKey: key,
				Filename:   "a.pdf",
				MimeType:   "application/pdf",
				SizeBytes:  100,
				Attempt:    attempt,
				State:      state,
			},
		},
	}
}

func TestBrokerService_RetryUpload_IssuedKey(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newFixture()
	f.presignAny()
	ownerID := uuid.New()
	oldKey := "uploads/" + ownerID.String() + "/s/old.pdf"
	session := issuedSession(ownerID, oldKey, 1, domain.IssuedKeyStateIssued)

	f.sessions.On("Find", ctx, session.ID).Return(session, nil)
	f.sessions.On("Replace", ctx, session.ID, oldKey, mock.MatchedBy(func(next domain.IssuedKey) bool {
		return next.StorageKey != oldKey && next.Attempt == 2 && next.State == domain.IssuedKeyStateIssued
	})).Return(nil)

	// Act
	file, err := f.service.RetryUpload(ctx, ownerID, domain.RetryRequest{SessionID: &session.ID, StorageKey: oldKey})

	// Assert
	require.NoError(t, err)
	assert.NotEqual(t, oldKey, file.StorageKey)
	assert.True(t, strings.HasPrefix(file.StorageKey, "uploads/"+ownerID.String()+"/s/"))
	assert.Equal(t, int64(100), file.Size)
	f.sessions.AssertExpectations(t)
}

func TestBrokerService_RetryUpload_IssuedKeyErrors(t *testing.T) {
	ownerID := uuid.New()
	cases := []struct {
		name    string
		owner   uuid.UUID
		key     string
		attempt int
		state   domain.IssuedKeyState
		wantErr error
	}{
		{"abandoned key", ownerID, "k", 1, domain.IssuedKeyStateAbandoned, domain.ErrStorageKeyAbandoned},
		{"foreign key", ownerID, "other", 1, domain.IssuedKeyStateIssued, domain.ErrForeignStorageKey},
		{"limit reached", ownerID, "k", defaultCfg.MaxRetries + 1, domain.IssuedKeyStateIssued, domain.ErrRetryLimitExceeded},
		{"another owner", uuid.New(), "k", 1, domain.IssuedKeyStateIssued, domain.ErrSessionNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			ctx := context.Background()
			f := newFixture()
			session := issuedSession(tc.owner, "k", tc.attempt, tc.state)
			f.sessions.On("Find", ctx, session.ID).Return(session, nil)

			// Act
			_, err := f.service.RetryUpload(ctx, ownerID, domain.RetryRequest{SessionID: &session.ID, StorageKey: tc.key})

			// Assert
			require.ErrorIs(t, err, tc.wantErr)
			f.sessions.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestBrokerService_RetryUpload_PersistedUpload(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newFixture()
	f.presignAny()
	ownerID := uuid.New()
	upload := &domain.Upload{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		FileName:   "a.pdf",
		MimeType:   "application/pdf",
		SizeBytes:  100,
		StorageKey: "uploads/" + ownerID.String() + "/s/old.pdf",
		Status:     domain.UploadStatusMissing,
	}
	f.uow.GetUploadRepoMock().On("FindByID", ctx, upload.ID).Return(upload, nil)
	f.uow.GetUploadRepoMock().On("ReplaceStorageKey", ctx, upload.ID, mock.MatchedBy(func(key string) bool {
		return key != upload.StorageKey && strings.HasPrefix(key, "uploads/"+ownerID.String()+"/s/")
	})).Return(nil)
	f.uow.On("Execute", ctx, mock.Anything).Return(nil)

	// Act
	file, err := f.service.RetryUpload(ctx, ownerID, domain.RetryRequest{UploadID: &upload.ID})

	// Assert
	require.NoError(t, err)
	assert.NotEqual(t, upload.StorageKey, file.StorageKey)
	f.uow.AssertExpectations(t)
	f.uow.GetUploadRepoMock().AssertExpectations(t)
}

func TestBrokerService_RetryUpload_PersistedUploadErrors(t *testing.T) {
	ownerID := uuid.New()
	cases := []struct {
		name    string
		upload  domain.Upload
		wantErr error
	}{
		{"completed", domain.Upload{OwnerID: ownerID, Status: domain.UploadStatusCompleted}, domain.ErrUploadNotRetryable},
		{"limit reached", domain.Upload{OwnerID: ownerID, Status: domain.UploadStatusPending, Attempts: defaultCfg.MaxRetries}, domain.ErrRetryLimitExceeded},
		{"another owner", domain.Upload{OwnerID: uuid.New(), Status: domain.UploadStatusPending}, domain.ErrUploadNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			ctx := context.Background()
			f := newFixture()
			upload := tc.upload
			upload.ID = uuid.New()
			f.uow.GetUploadRepoMock().On("FindByID", ctx, upload.ID).Return(&upload, nil)

			// Act
			_, err := f.service.RetryUpload(ctx, ownerID, domain.RetryRequest{UploadID: &upload.ID})

			// Assert
			require.ErrorIs(t, err, tc.wantErr)
			f.uow.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
		})
	}
}

func TestBrokerService_RetryUpload_MissingTarget(t *testing.T) {
	f := newFixture()

	_, err := f.service.RetryUpload(context.Background(), uuid.New(), domain.RetryRequest{})

	require.ErrorIs(t, err, domain.ErrMissingField)
}

func TestBrokerService_ExtendBatch(t *testing.T) {
	t.Run("adds keys to the session", func(t *testing.T) {
		// Arrange
		ctx := context.Background()
		f := newFixture()
		f.presignAny()
		ownerID := uuid.New()
		session := &domain.UploadSession{ID: uuid.New(), OwnerID: ownerID, Keys: map[string]domain.IssuedKey{}}
		f.sessions.On("Find", ctx, session.ID).Return(session, nil)

		var added []domain.IssuedKey
		f.sessions.On("AddKeys", ctx, session.ID, mock.Anything).
			Run(func(args mock.Arguments) { added = args.Get(2).([]domain.IssuedKey) }).
			Return(nil)

		// Act
		batch, err := f.service.ExtendBatch(ctx, ownerID, session.ID, []domain.FileDescriptor{
			{Filename: "late.pdf", MimeType: "application/pdf", Size: 10},
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, session.ID, batch.SessionID)
		require.Len(t, added, 1)
		assert.Equal(t, batch.Files[0].StorageKey, added[0].StorageKey)
		assert.True(t, strings.Contains(added[0].StorageKey, session.ID.String()))
		f.sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("session of another owner", func(t *testing.T) {
		ctx := context.Background()
		f := newFixture()
		session := &domain.UploadSession{ID: uuid.New(), OwnerID: uuid.New()}
		f.sessions.On("Find", ctx, session.ID).Return(session, nil)

		_, err := f.service.ExtendBatch(ctx, uuid.New(), session.ID, []domain.FileDescriptor{
			{Filename: "late.pdf", MimeType: "application/pdf", Size: 10},
		})

		require.ErrorIs(t, err, domain.ErrSessionNotFound)
		f.storage.AssertNotCalled(t, "PresignPut", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid file rejects before loading the session", func(t *testing.T) {
		f := newFixture()

		_, err := f.service.ExtendBatch(context.Background(), uuid.New(), uuid.New(), []domain.FileDescriptor{
			{Filename: "virus.exe", MimeType: "application/x-msdownload", Size: 10},
		})

		require.ErrorIs(t, err, domain.ErrInvalidFileType)
		f.sessions.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
	})
}
