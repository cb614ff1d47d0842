package upload

import (
	"net/http"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi/auth"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi/respond"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

// V1CompleteResponse reports the state of a resource after reconciliation
type V1CompleteResponse struct {
	ResourceID uuid.UUID `json:"resourceId"`
	Status     string    `json:"status"`
	Completed  int       `json:"completed"`
	Pending    int       `json:"pending"`
	Missing    int       `json:"missing"`
}

// CompleteV1 reconciles a resource against storage. It may be called any number of times.
func (h *HandlerV1) CompleteV1(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.OwnerFromContext(r.Context())
	if err != nil {
		respond.Error(w, r, h.logger, domain.ErrUnauthorized)
		return
	}

	resourceID, err := uuid.Parse(chi.URLParam(r, "resourceID"))
	if err != nil {
		respond.BadRequest(w, r, "invalid resource id")
		return
	}

	report, err := h.verifier.CompleteResource(r.Context(), ownerID, resourceID)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	render.JSON(w, r, V1CompleteResponse{
		ResourceID: report.ResourceID,
		Status:     string(report.Status),
		Completed:  report.Completed,
		Pending:    report.Pending,
		Missing:    report.Missing,
	})
}
