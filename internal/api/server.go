// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api serves the aihub HTTP surface: ranked and per-source search,
// repository details, chat, accounts, bookmarks and the upload moderation
// queue.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/pdiddy/aihub/internal/aggregate"
	"github.com/pdiddy/aihub/internal/metrics"
	"github.com/pdiddy/aihub/internal/source"
	"github.com/pdiddy/aihub/internal/store"
	"github.com/pdiddy/aihub/pkg/types"
)

// Defaults for ServerConfig fields left zero.
const (
	DefaultAddr              = ":8000"
	DefaultRateLimitRequests = 120
	DefaultRateLimitWindow   = time.Minute
	DefaultSessionTTL        = 7 * 24 * time.Hour
)

// RepoDetailer looks up the expanded view of one repository.
type RepoDetailer interface {
	Details(ctx context.Context, owner, repo string) (source.RepoDetails, error)
}

// Chatter relays chat messages.
type Chatter interface {
	Enabled() bool
	Reply(ctx context.Context, msg string) (string, error)
}

// Server holds the handler dependencies.
type Server struct {
	Pipeline *aggregate.Pipeline
	Repos    RepoDetailer
	Store    *store.Store
	Chat     Chatter
	Log      zerolog.Logger

	cfg      types.ServerConfig
	validate *validator.Validate
}

// New builds a Server, filling config defaults.
func New(cfg types.ServerConfig, p *aggregate.Pipeline, repos RepoDetailer, st *store.Store, chat Chatter, log zerolog.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	if cfg.RateLimitRequests <= 0 {
		cfg.RateLimitRequests = DefaultRateLimitRequests
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = DefaultRateLimitWindow
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	return &Server{
		Pipeline: p,
		Repos:    repos,
		Store:    st,
		Chat:     chat,
		Log:      log,
		cfg:      cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Router wires every route onto a chi mux.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.accessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.corsHandler())

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.rateLimit())

		r.Get("/v2-get-resources", s.handleRanked)
		r.Get("/get-filtered-resources", s.handleFiltered)
		r.Get("/get-resources", s.handleGrouped)
		r.Get("/search-ai-repos", s.handleSingle(source.GitHub, "repos"))
		r.Get("/search-arxiv-papers", s.handleSingle(source.Arxiv, "papers"))
		r.Get("/search-courses", s.handleSingle(source.Courses, "courses"))
		r.Get("/search-blogs", s.handleSingle(source.Blogs, "blogs"))
		r.Get("/repo-details", s.handleRepoDetails)
		r.Post("/chat", s.handleChat)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.handleSignup)
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.With(s.requireUser).Get("/me", s.handleMe)
		})

		r.Route("/bookmarks", func(r chi.Router) {
			r.Use(s.requireUser)
			r.Get("/", s.handleListBookmarks)
			r.Post("/", s.handleAddBookmark)
			r.Delete("/{id}", s.handleDeleteBookmark)
		})

		r.Get("/uploads", s.handleListApproved)
		r.With(s.requireUser).Post("/uploads", s.handleSubmitUpload)

		r.Route("/admin/uploads", func(r chi.Router) {
			r.Use(s.requireUser, s.requireAdmin)
			r.Get("/", s.handleListUploads)
			r.Post("/{id}/approve", s.handleReview(types.UploadApproved))
			r.Post("/{id}/reject", s.handleReview(types.UploadRejected))
		})
	})
	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Log.Info().Str("addr", s.cfg.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.Log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]string{"status": "ok"}
	if s.Store != nil {
		if err := s.Store.Ping(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["store"] = err.Error()
		}
	}
	respondJSON(w, status, body)
}
