package chi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi/auth"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi/v1/lookup"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi/v1/tag"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi/v1/upload"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// Handlers groups the v1 handlers. A nil handler leaves its routes unmounted.
type Handlers struct {
	Tag    *tag.HandlerV1
	Upload *upload.HandlerV1
	Lookup *lookup.HandlerV1
}

// NewRouter builds http.Handler with chi. Every /api/v1 route requires a bearer token signed with jwtSecret.
func NewRouter(logger *slog.Logger, handlers Handlers, jwtSecret []byte, env string) http.Handler {
	r := chi.NewRouter()

	//handle requestID to facilitate debug (X-Request-ID)
	//It fetches from request if exists, or creates it
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.RequestSize(5 << 20)) //5mb, bodies only carry metadata

	if env != "prod" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(jwtSecret, logger))

		if handlers.Tag != nil {
			r.Mount("/tag", handlers.Tag.Routes())
		}
		if handlers.Upload != nil {
			r.Mount("/uploads", handlers.Upload.Routes())
		}
		if handlers.Lookup != nil {
			r.Get("/classifications", handlers.Lookup.ListClassificationsV1)
			r.Get("/folders", handlers.Lookup.ListFoldersV1)
		}
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
		})
	})

	return r
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
