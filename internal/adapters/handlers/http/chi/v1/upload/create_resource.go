package upload

import (
	"net/http"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi/auth"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi/respond"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/go-chi/render"
	"github.com/google/uuid"
)

// V1CreateResourceRequest is the body of create-resource
type V1CreateResourceRequest struct {
	SessionID        uuid.UUID          `json:"sessionId"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	Visibility       string             `json:"visibility"`
	Category         string             `json:"category,omitempty"`
	FolderManagement V1FolderManagement `json:"folderManagement"`
	Files            []V1FileSubmission `json:"files"`
}

// V1FolderManagement holds exactly one of selectedFolderId or newFolderData
type V1FolderManagement struct {
	SelectedFolderID *uuid.UUID       `json:"selectedFolderId,omitempty"`
	NewFolderData    *V1NewFolderData `json:"newFolderData,omitempty"`
}

// V1NewFolderData describes a folder to create with the resource
type V1NewFolderData struct {
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	ClassificationID uuid.UUID   `json:"classificationId"`
	TagIDs           []uuid.UUID `json:"tagIds,omitempty"`
}

// V1FileSubmission is the metadata of one completed file
type V1FileSubmission struct {
	StorageKey       string `json:"storageKey"`
	OriginalFilename string `json:"originalFilename"`
	MimeType         string `json:"mimetype"`
	Size             int64  `json:"size"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Category         string `json:"category"`
	Visibility       string `json:"visibility"`
}

// V1CreateResourceResponse is the response of create-resource
type V1CreateResourceResponse struct {
	Resource V1Resource `json:"resource"`
	Folder   *V1Folder  `json:"folder,omitempty"`
	Uploads  []V1Upload `json:"uploads"`
}

func (req V1CreateResourceRequest) toInput() domain.CreateResourceInput {
	in := domain.CreateResourceInput{
		SessionID:   req.SessionID,
		Title:       req.Title,
		Description: req.Description,
		Visibility:  domain.Visibility(req.Visibility),
		Category:    req.Category,
		FolderManagement: domain.FolderManagement{
			SelectedFolderID: req.FolderManagement.SelectedFolderID,
		},
		Files: make([]domain.FileMetadataInput, len(req.Files)),
	}
	if nf := req.FolderManagement.NewFolderData; nf != nil {
		in.FolderManagement.NewFolder = &domain.NewFolderData{
			Name:             nf.Name,
			Description:      nf.Description,
			ClassificationID: nf.ClassificationID,
			TagIDs:           nf.TagIDs,
		}
	}
	for i, f := range req.Files {
		in.Files[i] = domain.FileMetadataInput{
			StorageKey:       f.StorageKey,
			OriginalFilename: f.OriginalFilename,
			MimeType:         f.MimeType,
			Size:             f.Size,
			Title:            f.Title,
			Description:      f.Description,
			Category:         f.Category,
			Visibility:       domain.Visibility(f.Visibility),
		}
	}
	return in
}

// CreateResourceV1 commits a resource, its optional new folder and one upload per file in a single transaction
func (h *HandlerV1) CreateResourceV1(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.OwnerFromContext(r.Context())
	if err != nil {
		respond.Error(w, r, h.logger, domain.ErrUnauthorized)
		return
	}

	var req V1CreateResourceRequest
	if err := respond.Decode(r, &req); err != nil {
		h.logger.Error("error decoding create resource request", "error", err)
		respond.BadRequest(w, r, "invalid request")
		return
	}

	result, err := h.resource.CreateResource(r.Context(), ownerID, req.toInput())
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	resp := V1CreateResourceResponse{
		Resource: toResource(result.Resource),
		Uploads:  make([]V1Upload, len(result.Uploads)),
	}
	for i, u := range result.Uploads {
		resp.Uploads[i] = toUpload(u)
	}
	if f := result.Folder; f != nil {
		resp.Folder = &V1Folder{
			ID:               f.ID,
			Name:             f.Name,
			Description:      f.Description,
			ClassificationID: f.ClassificationID,
			TagIDs:           f.TagIDs,
		}
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp)
}
