package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/usecase"
	"github.com/secmon-lab/shelfcheck/pkg/utils/logging"
)

type Server struct {
	router              *chi.Mux
	uc                  *usecase.UseCases
	slackWebhookHandler *SlackWebhookHandler
	slackSigningSecret  string
}

type Options func(*Server)

func WithSlackWebhook(handler *SlackWebhookHandler, signingSecret string) Options {
	return func(s *Server) {
		s.slackWebhookHandler = handler
		s.slackSigningSecret = signingSecret
	}
}

func New(uc *usecase.UseCases, opts ...Options) (*Server, error) {
	if uc == nil {
		return nil, goerr.New("use cases are required")
	}

	r := chi.NewRouter()
	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.slackWebhookHandler != nil && s.slackSigningSecret == "" {
		return nil, goerr.New("slack signing secret is required for the webhook")
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authLoginHandler(uc.Auth))
		r.Post("/auth/logout", authLogoutHandler(uc.Auth))
		r.Get("/auth/me", authMeHandler(uc.Auth))

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(uc.Auth))

			r.Post("/sync", syncHandler(uc.Sync))

			r.Get("/photos", listPhotosHandler(uc.Triage))
			r.Delete("/photos", clearPhotosHandler(uc.Triage))
			r.Route("/photos/{photoID}", func(r chi.Router) {
				r.Get("/", getPhotoHandler(uc.Triage))
				r.Delete("/", deletePhotoHandler(uc.Triage))
				r.Post("/approve", approvePhotoHandler(uc.Triage))
				r.Post("/reject", rejectPhotoHandler(uc.Triage))
				r.Post("/redundant", redundantPhotoHandler(uc.Triage))
				r.Get("/store-suggestion", storeSuggestionHandler(uc.Triage))
			})
			r.Get("/rejection-reasons", rejectionReasonsHandler(uc.Triage))

			r.Get("/stores", listStoresHandler(uc.Catalog))
			r.Post("/stores", createStoreHandler(uc.Catalog))

			r.Get("/contests", listContestsHandler(uc.Catalog))
			r.Post("/contests", saveContestHandler(uc.Catalog))
			r.Put("/contests/{brandID}", saveContestHandler(uc.Catalog))
			r.Delete("/contests/{brandID}", deleteContestHandler(uc.Catalog))

			r.Get("/dashboard", dashboardHandler(uc.Dashboard))
			r.Get("/dashboard/export.csv", dashboardExportHandler(uc.Dashboard))
		})
	})

	// Slack webhook endpoint (if configured) - No auth required, uses signature verification
	if s.slackWebhookHandler != nil {
		r.Route("/hooks/slack", func(r chi.Router) {
			r.Use(SlackSignatureMiddleware(s.slackSigningSecret))
			r.Post("/event", s.slackWebhookHandler.ServeHTTP)
		})
	}

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
