// Copyright (c) 2026 Backalley. All rights reserved.

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/backalley/backalley/internal/authors/auth"
	"github.com/backalley/backalley/internal/forum/image"
	"github.com/backalley/backalley/internal/forum/post"
	"github.com/backalley/backalley/internal/forum/room"
	"github.com/backalley/backalley/internal/platform/config"
	"github.com/backalley/backalley/internal/platform/constants"
	"github.com/backalley/backalley/internal/platform/middleware"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here; no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler. Always returns 200 if the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. Returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles author identity routes (register, login, invites).
	Auth *auth.Handler

	// Room handles room listing and creation.
	Room *room.Handler

	// Post handles posts, replies, and the content throttle surface.
	Post *post.Handler

	// Image handles pre-signed upload slot issuance.
	Image *image.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
//
// Two rate limit tiers apply: a generous general limiter over the whole API,
// and a strict per-IP limiter in front of the author identity surface where
// credential and invite abuse concentrates.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, resolver middleware.SessionResolver, h Handlers) *Server {
	r := chi.NewRouter()

	generalLimiter := middleware.NewIPRateLimiter(ctx, constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst)
	credentialLimiter := middleware.NewIPRateLimiter(ctx, constants.CredentialRateLimitRPS, constants.CredentialRateLimitBurst)

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(generalLimiter.Middleware())
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.SessionAuth(resolver))
	r.Use(middleware.CORS(cfg, cfg.ExtraOrigins))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.With(credentialLimiter.Middleware()).Mount("/author", h.Auth.Routes())
		api.Mount("/rooms", h.Room.Routes())
		api.Mount("/posts", h.Post.Routes())
		api.Mount("/image", h.Image.Routes())
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
