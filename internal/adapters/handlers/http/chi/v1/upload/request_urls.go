package upload

import (
	"net/http"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi/auth"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi/respond"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/go-chi/render"
	"github.com/google/uuid"
)

// V1RequestURLsRequest is the body of request-urls. A sessionId adds the files to that session.
type V1RequestURLsRequest struct {
	SessionID *uuid.UUID         `json:"sessionId,omitempty"`
	Files     []V1FileDescriptor `json:"files"`
}

// V1FileDescriptor describes one file of the batch
type V1FileDescriptor struct {
	Filename string     `json:"filename"`
	MimeType string     `json:"mimetype"`
	Size     int64      `json:"size"`
	FolderID *uuid.UUID `json:"folderId,omitempty"`
}

// V1RequestURLsResponse is the response of request-urls
type V1RequestURLsResponse struct {
	SessionID     uuid.UUID         `json:"sessionId"`
	PreSignedData []V1PresignedFile `json:"preSignedData"`
	ExpiresIn     int64             `json:"expiresIn"`
}

// RequestURLsV1 issues one write url per file of the batch
func (h *HandlerV1) RequestURLsV1(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.OwnerFromContext(r.Context())
	if err != nil {
		respond.Error(w, r, h.logger, domain.ErrUnauthorized)
		return
	}

	var req V1RequestURLsRequest
	if err := respond.Decode(r, &req); err != nil {
		h.logger.Error("error decoding request urls request", "error", err)
		respond.BadRequest(w, r, "invalid request")
		return
	}

	files := make([]domain.FileDescriptor, len(req.Files))
	for i, f := range req.Files {
		files[i] = domain.FileDescriptor{
			Filename: f.Filename,
			MimeType: f.MimeType,
			Size:     f.Size,
			FolderID: f.FolderID,
		}
	}

	var batch *domain.PresignedBatch
	if req.SessionID != nil {
		batch, err = h.broker.ExtendBatch(r.Context(), ownerID, *req.SessionID, files)
	} else {
		batch, err = h.broker.RequestUploadURLs(r.Context(), ownerID, files)
	}
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	resp := V1RequestURLsResponse{
		SessionID:     batch.SessionID,
		PreSignedData: make([]V1PresignedFile, len(batch.Files)),
		ExpiresIn:     int64(batch.ExpiresIn.Seconds()),
	}
	for i, f := range batch.Files {
		resp.PreSignedData[i] = toPresignedFile(f)
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp)
}
