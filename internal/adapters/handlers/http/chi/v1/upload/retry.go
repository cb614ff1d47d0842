package upload

import (
	"net/http"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi/auth"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi/respond"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/go-chi/render"
	"github.com/google/uuid"
)

// V1RetryRequest names either a persisted upload or a key issued in a session
type V1RetryRequest struct {
	UploadID   *uuid.UUID `json:"uploadId,omitempty"`
	SessionID  *uuid.UUID `json:"sessionId,omitempty"`
	StorageKey string     `json:"storageKey,omitempty"`
}

// RetryV1 issues a fresh write url for a single file
func (h *HandlerV1) RetryV1(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.OwnerFromContext(r.Context())
	if err != nil {
		respond.Error(w, r, h.logger, domain.ErrUnauthorized)
		return
	}

	var req V1RetryRequest
	if err := respond.Decode(r, &req); err != nil {
		h.logger.Error("error decoding retry request", "error", err)
		respond.BadRequest(w, r, "invalid request")
		return
	}

	file, err := h.broker.RetryUpload(r.Context(), ownerID, domain.RetryRequest{
		UploadID:   req.UploadID,
		SessionID:  req.SessionID,
		StorageKey: req.StorageKey,
	})
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toPresignedFile(*file))
}
