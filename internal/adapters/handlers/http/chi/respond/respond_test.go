package respond_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi/respond"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrInvalidFileType, http.StatusBadRequest, "validation"},
		{domain.ErrSessionNotFound, http.StatusUnauthorized, "auth_expired"},
		{fmt.Errorf("stat: %w", domain.ErrTransient), http.StatusServiceUnavailable, "network_transient"},
		{domain.ErrFolderNameTaken, http.StatusConflict, "conflict"},
		{fmt.Errorf("%w: boom", domain.ErrTransactionFailed), http.StatusInternalServerError, "transaction_failure"},
		{domain.ErrUploadNotFound, http.StatusNotFound, "not_found"},
		{assert.AnError, http.StatusInternalServerError, "internal"},
	}

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			// Arrange
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			// Act
			respond.Error(w, r, discard, tt.err)

			// Assert
			assert.Equal(t, tt.status, w.Code)
			var body respond.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestError_HidesInternalMessage(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	respond.Error(w, r, slog.New(slog.NewTextHandler(io.Discard, nil)), fmt.Errorf("pq: password authentication failed"))

	assert.NotContains(t, w.Body.String(), "password")
}

func TestError_HidesDriverErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{"transaction failure", fmt.Errorf("%w: pq: could not serialize access on host db-1", domain.ErrTransactionFailed), "transaction failed"},
		{"transient", fmt.Errorf("stat object: dial tcp db-1:9000: %w", domain.ErrTransient), "service temporarily unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/", nil)

			// Act
			respond.Error(w, r, slog.New(slog.NewTextHandler(io.Discard, nil)), tt.err)

			// Assert
			var body respond.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.message, body.Error)
			assert.NotContains(t, w.Body.String(), "db-1")
		})
	}
}
