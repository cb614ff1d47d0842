package tag

import (
	"fmt"
	"net/http"
	"unicode"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi/respond"
)

// V1CreateTagsRequest is the body request for Create Tags
type V1CreateTagsRequest struct {
	Tags []string `json:"tags"`
}

// CreateTagsV1 is the handler for create tags v1
func (h *HandlerV1) CreateTagsV1(w http.ResponseWriter, r *http.Request) {
	var req V1CreateTagsRequest
	if err := respond.Decode(r, &req); err != nil {
		h.logger.Error("error decoding create tags request", "error", err)
		respond.BadRequest(w, r, "invalid request")
		return
	}

	if len(req.Tags) == 0 {
		respond.BadRequest(w, r, "tags required")
		return
	}

	for _, tag := range req.Tags {
		if tag == "" {
			respond.BadRequest(w, r, "tag cannot be empty")
			return
		}
		for _, char := range tag {
			if !unicode.IsLetter(char) && !unicode.IsDigit(char) && char != '-' {
				respond.BadRequest(w, r, fmt.Sprintf("tag %q contains invalid characters", tag))
				return
			}
		}
	}

	if err := h.tagService.CreateTags(r.Context(), req.Tags); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
