package upload_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi/auth"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi/respond"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi/v1/upload"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/service/broker"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/service/resource"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/service/verifier"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var secret = []byte("handler-secret")

type fixture struct {
	router   http.Handler
	broker   *broker.MockBrokerService
	resource *resource.MockResourceService
	verifier *verifier.MockVerifierService
	ownerID  uuid.UUID
	token    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		broker:   broker.NewMockBrokerService(),
		resource: resource.NewMockResourceService(),
		verifier: verifier.NewMockVerifierService(),
		ownerID:  uuid.New(),
	}
	handler := upload.NewUploadHandlerV1(f.broker, f.resource, f.verifier, discard)
	f.router = chi.NewRouter(discard, chi.Handlers{Upload: handler}, secret, "")

	token, err := auth.IssueToken(f.ownerID, secret, time.Hour)
	require.NoError(t, err)
	f.token = token
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) respond.ErrorResponse {
	t.Helper()
	var body respond.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestRequestURLsV1(t *testing.T) {
	t.Run("nominal", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		expiresAt := time.Now().Add(15 * time.Minute).UTC().Truncate(time.Second)
		files := []domain.FileDescriptor{{Filename: "a.pdf", MimeType: "application/pdf", Size: 10}}
		batch := &domain.PresignedBatch{
			SessionID: uuid.New(),
			ExpiresIn: 15 * time.Minute,
			Files: []domain.PresignedFile{{
				StorageKey:   "uploads/o/s/k.pdf",
				PresignedURL: "http://storage/k",
				Filename:     "a.pdf",
				Size:         10,
				MimeType:     "application/pdf",
				ExpiresAt:    expiresAt,
			}},
		}
		f.broker.On("RequestUploadURLs", mock.Anything, f.ownerID, files).Return(batch, nil)

		// Act
		w := f.do(t, http.MethodPost, "/api/v1/uploads/request-urls", upload.V1RequestURLsRequest{
			Files: []upload.V1FileDescriptor{{Filename: "a.pdf", MimeType: "application/pdf", Size: 10}},
		})

		// Assert
		require.Equal(t, http.StatusCreated, w.Code)
		var resp upload.V1RequestURLsResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, batch.SessionID, resp.SessionID)
		assert.Equal(t, int64(900), resp.ExpiresIn)
		require.Len(t, resp.PreSignedData, 1)
		assert.Equal(t, "http://storage/k", resp.PreSignedData[0].PreSignedURL)
		assert.Equal(t, "uploads/o/s/k.pdf", resp.PreSignedData[0].StorageKey)
	})

	t.Run("validation error", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.broker.On("RequestUploadURLs", mock.Anything, f.ownerID, mock.Anything).
			Return(nil, fmt.Errorf("file 0: %w", domain.ErrInvalidFileType))

		// Act
		w := f.do(t, http.MethodPost, "/api/v1/uploads/request-urls", upload.V1RequestURLsRequest{
			Files: []upload.V1FileDescriptor{{Filename: "a.exe", MimeType: "application/x-msdownload", Size: 10}},
		})

		// Assert
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation", decodeError(t, w).Code)
	})

	t.Run("existing session", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		sessionID := uuid.New()
		f.broker.On("ExtendBatch", mock.Anything, f.ownerID, sessionID, mock.Anything).
			Return(&domain.PresignedBatch{SessionID: sessionID, Files: []domain.PresignedFile{{StorageKey: "k"}}}, nil)

		// Act
		w := f.do(t, http.MethodPost, "/api/v1/uploads/request-urls", upload.V1RequestURLsRequest{
			SessionID: &sessionID,
			Files:     []upload.V1FileDescriptor{{Filename: "b.pdf", MimeType: "application/pdf", Size: 10}},
		})

		// Assert
		require.Equal(t, http.StatusCreated, w.Code)
		f.broker.AssertNotCalled(t, "RequestUploadURLs", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing body", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(t, http.MethodPost, "/api/v1/uploads/request-urls", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		f.broker.AssertNotCalled(t, "RequestUploadURLs", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCreateResourceV1(t *testing.T) {
	folderID := uuid.New()
	body := upload.V1CreateResourceRequest{
		SessionID:        uuid.New(),
		Title:            "Linear algebra",
		Visibility:       "public",
		FolderManagement: upload.V1FolderManagement{SelectedFolderID: &folderID},
		Files: []upload.V1FileSubmission{{
			StorageKey:       "uploads/o/s/k.pdf",
			OriginalFilename: "a.pdf",
			MimeType:         "application/pdf",
			Size:             10,
			Title:            "Chapter 1",
			Category:         "lecture",
			Visibility:       "public",
		}},
	}

	t.Run("nominal", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		res := domain.Resource{ID: uuid.New(), OwnerID: f.ownerID, FolderID: &folderID, Title: "Linear algebra", Status: domain.ResourceStatusProcessing}
		result := &domain.CreateResourceResult{
			Resource: res,
			Uploads:  []domain.Upload{{ID: uuid.New(), ResourceID: res.ID, StorageKey: "uploads/o/s/k.pdf", Status: domain.UploadStatusPending}},
		}
		f.resource.On("CreateResource", mock.Anything, f.ownerID, mock.MatchedBy(func(in domain.CreateResourceInput) bool {
			return in.SessionID == body.SessionID &&
				*in.FolderManagement.SelectedFolderID == folderID &&
				in.FolderManagement.NewFolder == nil &&
				len(in.Files) == 1 && in.Files[0].Visibility == domain.VisibilityPublic
		})).Return(result, nil)

		// Act
		w := f.do(t, http.MethodPost, "/api/v1/uploads/create-resource", body)

		// Assert
		require.Equal(t, http.StatusCreated, w.Code)
		var resp upload.V1CreateResourceResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, res.ID, resp.Resource.ID)
		assert.Equal(t, "processing", resp.Resource.Status)
		assert.Nil(t, resp.Folder)
		require.Len(t, resp.Uploads, 1)
		assert.Equal(t, "pending", resp.Uploads[0].Status)
	})

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"folder name taken", domain.ErrFolderNameTaken, http.StatusConflict, "conflict"},
		{"session expired", domain.ErrSessionNotFound, http.StatusUnauthorized, "auth_expired"},
		{"transaction failed", fmt.Errorf("%w: commit", domain.ErrTransactionFailed), http.StatusInternalServerError, "transaction_failure"},
		{"unknown tag", domain.ErrTagNotFound, http.StatusBadRequest, "validation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t)
			f.resource.On("CreateResource", mock.Anything, f.ownerID, mock.Anything).Return(nil, tt.err)

			// Act
			w := f.do(t, http.MethodPost, "/api/v1/uploads/create-resource", body)

			// Assert
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestCompleteV1(t *testing.T) {
	t.Run("nominal", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		resourceID := uuid.New()
		f.verifier.On("CompleteResource", mock.Anything, f.ownerID, resourceID).Return(&domain.CompletionReport{
			ResourceID: resourceID,
			Status:     domain.ResourceStatusActive,
			Completed:  2,
		}, nil)

		// Act
		w := f.do(t, http.MethodPost, "/api/v1/uploads/complete/"+resourceID.String(), nil)

		// Assert
		require.Equal(t, http.StatusOK, w.Code)
		var resp upload.V1CompleteResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "active", resp.Status)
		assert.Equal(t, 2, resp.Completed)
	})

	t.Run("invalid id", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(t, http.MethodPost, "/api/v1/uploads/complete/nope", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)
		f.verifier.On("CompleteResource", mock.Anything, f.ownerID, mock.Anything).Return(nil, domain.ErrResourceNotFound)

		w := f.do(t, http.MethodPost, "/api/v1/uploads/complete/"+uuid.NewString(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRetryV1(t *testing.T) {
	t.Run("persisted upload", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		uploadID := uuid.New()
		f.broker.On("RetryUpload", mock.Anything, f.ownerID, domain.RetryRequest{UploadID: &uploadID}).
			Return(&domain.PresignedFile{StorageKey: "uploads/o/s/new.pdf", PresignedURL: "http://storage/new"}, nil)

		// Act
		w := f.do(t, http.MethodPost, "/api/v1/uploads/retry", upload.V1RetryRequest{UploadID: &uploadID})

		// Assert
		require.Equal(t, http.StatusCreated, w.Code)
		var resp upload.V1PresignedFile
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "uploads/o/s/new.pdf", resp.StorageKey)
		assert.Equal(t, "http://storage/new", resp.PreSignedURL)
	})

	t.Run("limit exceeded", func(t *testing.T) {
		f := newFixture(t)
		sessionID := uuid.New()
		f.broker.On("RetryUpload", mock.Anything, f.ownerID, mock.Anything).Return(nil, domain.ErrRetryLimitExceeded)

		w := f.do(t, http.MethodPost, "/api/v1/uploads/retry", upload.V1RetryRequest{SessionID: &sessionID, StorageKey: "k"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation", decodeError(t, w).Code)
	})
}

func TestDownloadV1(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"ready", nil, http.StatusOK},
		{"not ready", domain.ErrFileNotReady, http.StatusConflict},
		{"missing object", domain.ErrFileUploadFailed, http.StatusConflict},
		{"not found", domain.ErrUploadNotFound, http.StatusNotFound},
		{"storage down", fmt.Errorf("presign: %w", domain.ErrTransient), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t)
			uploadID := uuid.New()
			expiresAt := time.Now().Add(time.Minute)
			if tt.err == nil {
				f.resource.On("GetDownloadURL", mock.Anything, f.ownerID, uploadID).Return("http://storage/get", &expiresAt, nil)
			} else {
				f.resource.On("GetDownloadURL", mock.Anything, f.ownerID, uploadID).Return("", nil, tt.err)
			}

			// Act
			w := f.do(t, http.MethodGet, "/api/v1/uploads/download/"+uploadID.String(), nil)

			// Assert
			assert.Equal(t, tt.status, w.Code)
			if tt.err == nil {
				var resp upload.V1DownloadResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, "http://storage/get", resp.DownloadURL)
			}
		})
	}
}
