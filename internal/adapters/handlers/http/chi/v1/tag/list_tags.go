package tag

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi/respond"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

// V1Tag is one tag of the listing
type V1Tag struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type V1ListTagsResponse struct {
	Tags       []V1Tag `json:"tags"`
	NextMarker *string `json:"nextMarker,omitempty"`
}

func toTag(t domain.Tag) V1Tag {
	return V1Tag{ID: t.ID, Name: t.Name}
}

func (h *HandlerV1) ListTagsV1(w http.ResponseWriter, r *http.Request) {
	limitInt := 0
	if limit := r.URL.Query().Get("limit"); limit != "" {
		var err error
		limitInt, err = strconv.Atoi(limit)
		if err != nil {
			respond.BadRequest(w, r, "limit must be a number")
			return
		}
		if limitInt <= 0 {
			respond.BadRequest(w, r, "limit must be greater than zero")
			return
		}
	}

	var markerPtr *string
	if marker := r.URL.Query().Get("marker"); marker != "" {
		markerPtr = &marker
	}

	tags, nextMarker, err := h.tagService.ListTags(r.Context(), limitInt, markerPtr)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	resp := V1ListTagsResponse{
		Tags:       make([]V1Tag, len(tags)),
		NextMarker: nextMarker,
	}
	for i, t := range tags {
		resp.Tags[i] = toTag(t)
	}
	render.JSON(w, r, resp)
}

// GetTagV1 returns a tag by its name
func (h *HandlerV1) GetTagV1(w http.ResponseWriter, r *http.Request) {
	tag, err := h.tagService.GetTagByName(r.Context(), chi.URLParam(r, "name"))
	if errors.Is(err, domain.ErrTagNotFound) {
		respond.NotFound(w, r, "tag not found")
		return
	}
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	render.JSON(w, r, toTag(*tag))
}
