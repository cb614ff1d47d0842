package respond

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var statusByKind = map[domain.ErrorKind]int{
	domain.KindValidation:         http.StatusBadRequest,
	domain.KindAuthExpired:        http.StatusUnauthorized,
	domain.KindNetworkTransient:   http.StatusServiceUnavailable,
	domain.KindConflict:           http.StatusConflict,
	domain.KindTransactionFailure: http.StatusInternalServerError,
	domain.KindNotFound:           http.StatusNotFound,
	domain.KindInternal:           http.StatusInternalServerError,
}

// Status returns the http status for kind
func Status(kind domain.ErrorKind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error writes err as an ErrorResponse. Server side failures are logged and their text hidden.
func Error(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	kind := domain.KindOf(err)
	message := err.Error()

	switch kind {
	case domain.KindInternal, domain.KindTransactionFailure, domain.KindNetworkTransient:
		logger.Error("request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"code", kind,
			"error", err)
		switch kind {
		case domain.KindInternal:
			message = "internal server error"
		case domain.KindTransactionFailure:
			message = domain.ErrTransactionFailed.Error()
		case domain.KindNetworkTransient:
			message = "service temporarily unavailable"
		}
	default:
		logger.Debug("request rejected", "code", kind, "error", err)
	}

	render.Status(r, Status(kind))
	render.JSON(w, r, ErrorResponse{Error: message, Code: string(kind)})
}

// BadRequest writes a validation error with a custom message
func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ErrorResponse{Error: message, Code: string(domain.KindValidation)})
}

// Decode reads a JSON body into v
func Decode(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errors.New("empty body")
	}
	return render.DecodeJSON(r.Body, v)
}

// NotFound writes a not_found error with a custom message
func NotFound(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, ErrorResponse{Error: message, Code: string(domain.KindNotFound)})
}
