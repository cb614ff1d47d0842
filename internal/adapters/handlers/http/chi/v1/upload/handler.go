package upload

import (
	"log/slog"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/port"

	"github.com/go-chi/chi/v5"
)

// HandlerV1 is the handler for v1 uploads routes
type HandlerV1 struct {
	broker   port.BrokerService
	resource port.ResourceService
	verifier port.VerifierService
	logger   *slog.Logger
}

// NewUploadHandlerV1 creates HandlerV1
func NewUploadHandlerV1(broker port.BrokerService, resource port.ResourceService, verifier port.VerifierService, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		broker:   broker,
		resource: resource,
		verifier: verifier,
		logger:   logger,
	}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/request-urls", h.RequestURLsV1)
	router.Post("/create-resource", h.CreateResourceV1)
	router.Post("/complete/{resourceID}", h.CompleteV1)
	router.Post("/retry", h.RetryV1)
	router.Get("/download/{uploadID}", h.DownloadV1)

	return router
}
