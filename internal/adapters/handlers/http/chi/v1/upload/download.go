package upload

import (
	"net/http"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi/auth"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi/respond"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

// V1DownloadResponse is the response to download
type V1DownloadResponse struct {
	DownloadURL string     `json:"downloadUrl"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// DownloadV1 returns a short-lived read url for a completed upload
func (h *HandlerV1) DownloadV1(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.OwnerFromContext(r.Context())
	if err != nil {
		respond.Error(w, r, h.logger, domain.ErrUnauthorized)
		return
	}

	uploadID, err := uuid.Parse(chi.URLParam(r, "uploadID"))
	if err != nil {
		respond.BadRequest(w, r, "invalid upload id")
		return
	}

	url, expiresAt, err := h.resource.GetDownloadURL(r.Context(), ownerID, uploadID)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	render.JSON(w, r, V1DownloadResponse{DownloadURL: url, ExpiresAt: expiresAt})
}
