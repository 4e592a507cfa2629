package http

import (
	"net/http"

	"github.com/glam-looks-api/internal/config"
	"github.com/glam-looks-api/internal/domain"
	"github.com/glam-looks-api/internal/transport/http/handler"
	appmiddleware "github.com/glam-looks-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	optionalAuth := func(next http.Handler) http.Handler { return next }
	if deps.JWTProvider != nil {
		optionalAuth = appmiddleware.OptionalAuth(deps.JWTProvider)
	}

	// Upload credentials and pipeline runs cost external calls.
	expensiveRL := appmiddleware.NewRateLimiter(rate.Limit(2), 5)

	healthH := handler.NewHealthHandler()
	uploadH := handler.NewUploadHandler(deps.Uploads)
	pipelineH := handler.NewPipelineHandler(deps.Pipeline)
	lookH := handler.NewLookHandler(deps.Looks)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)

			r.With(expensiveRL.Limit).Post("/upload-url", uploadH.Issue)
			r.With(expensiveRL.Limit).Post("/analyze", pipelineH.Analyze)
			r.Get("/runs/{uploadId}", pipelineH.RunStatus)
			r.Get("/looks", lookH.List)
			r.Get("/looks/{uploadId}", lookH.Get)
		})

		if deps.JWTProvider != nil {
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.Auth(deps.JWTProvider))
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Post("/looks/save", lookH.Save)
			})
		}
	})

	return r
}
