// Package http exposes the tracker over a JSON API.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"lootledger/internal/config"
	"lootledger/internal/identity"
	"lootledger/internal/log"
	"lootledger/internal/middleware"
	"lootledger/internal/remote"
	"lootledger/internal/storage"
	"lootledger/internal/sync"
	"lootledger/internal/tracker"
)

type Server struct {
	router   chi.Router
	cfg      *config.Config
	identity *identity.Service
	tracker  *tracker.Service
	sync     *sync.Service
	repo     *storage.Repository
	remote   remote.Store
	logger   *log.Logger
}

// NewServer wires the middleware stack and routes. remoteStore may be nil.
func NewServer(
	cfg *config.Config,
	identitySvc *identity.Service,
	trackerSvc *tracker.Service,
	syncSvc *sync.Service,
	repo *storage.Repository,
	remoteStore remote.Store,
	logger *log.Logger,
) *Server {
	s := &Server{
		cfg:      cfg,
		identity: identitySvc,
		tracker:  trackerSvc,
		sync:     syncSvc,
		repo:     repo,
		remote:   remoteStore,
		logger:   logger.WithComponent(log.ComponentHTTP),
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Admin-Password"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Trace(logger))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeaders()))
	r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	r.Use(log.Middleware(logger))

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", s.handleHealth)

		api.Post("/auth/signup", s.handleSignup)
		api.Post("/auth/login", s.handleLogin)
		api.Get("/auth/availability", s.handleAvailability)

		api.Group(func(authed chi.Router) {
			authed.Use(middleware.JWTAuth(cfg.JWTSecret))

			authed.Get("/record", s.handleGetRecord)
			authed.Get("/record/days/{day}", s.handleGetDay)
			authed.Put("/record/days/{day}", s.handleSaveDay)
			authed.Post("/record/days/{day}/copy-previous", s.handleCopyPrevious)
			authed.Get("/record/days/{day}/delta", s.handleDelta)
			authed.Get("/record/summary", s.handleSummary)
			authed.Get("/record/notes", s.handleNotes)

			authed.Get("/export", s.handleExport)
			authed.Post("/import", s.handleImport)

			authed.Post("/sync/push", s.handleSyncPush)
			authed.Post("/sync/pull", s.handleSyncPull)
			authed.Get("/sync/status", s.handleSyncStatus)
		})

		api.Get("/admin/stats", s.handleAdminStats)
	})

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if s.remote != nil {
		if err := s.remote.Ping(r.Context()); err != nil {
			status["remote"] = "unreachable"
		} else {
			status["remote"] = "ok"
		}
	}
	respondJSON(w, http.StatusOK, status)
}
