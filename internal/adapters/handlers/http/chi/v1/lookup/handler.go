package lookup

import (
	"log/slog"
	"net/http"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi/auth"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi/respond"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/port"

	"github.com/go-chi/render"
	"github.com/google/uuid"
)

// HandlerV1 serves the values the metadata step of the wizard picks from
type HandlerV1 struct {
	lookupService port.LookupService
	logger        *slog.Logger
}

// NewLookupHandlerV1 creates HandlerV1
func NewLookupHandlerV1(service port.LookupService, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		lookupService: service,
		logger:        logger,
	}
}

type V1Classification struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Rank int       `json:"rank"`
}

type V1Folder struct {
	ID               uuid.UUID   `json:"id"`
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	ClassificationID uuid.UUID   `json:"classificationId"`
	TagIDs           []uuid.UUID `json:"tagIds"`
}

// ListClassificationsV1 lists classification levels ordered by rank
func (h *HandlerV1) ListClassificationsV1(w http.ResponseWriter, r *http.Request) {
	levels, err := h.lookupService.ListClassifications(r.Context())
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	resp := make([]V1Classification, len(levels))
	for i, l := range levels {
		resp[i] = V1Classification{ID: l.ID, Name: l.Name, Rank: l.Rank}
	}
	render.JSON(w, r, resp)
}

// ListFoldersV1 lists the caller's folders
func (h *HandlerV1) ListFoldersV1(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.OwnerFromContext(r.Context())
	if err != nil {
		respond.Error(w, r, h.logger, domain.ErrUnauthorized)
		return
	}

	folders, err := h.lookupService.ListFolders(r.Context(), ownerID)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	resp := make([]V1Folder, len(folders))
	for i, f := range folders {
		tagIDs := f.TagIDs
		if tagIDs == nil {
			tagIDs = []uuid.UUID{}
		}
		resp[i] = V1Folder{
			ID:               f.ID,
			Name:             f.Name,
			Description:      f.Description,
			ClassificationID: f.ClassificationID,
			TagIDs:           tagIDs,
		}
	}
	render.JSON(w, r, resp)
}
