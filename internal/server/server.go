// Package server wires handlers, middleware and routes into an HTTP server.
//
// This is the composition root: main.go loads configuration, and everything
// else (store, token service, verifier, services, handlers) is constructed
// here in one place. Optional dependencies stay nil when unconfigured and
// the affected routes degrade at request time instead of blocking startup.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/family-tree/internal/auth"
	"github.com/sakif/family-tree/internal/config"
	"github.com/sakif/family-tree/internal/handler"
	"github.com/sakif/family-tree/internal/middleware"
	"github.com/sakif/family-tree/internal/repository"
	"github.com/sakif/family-tree/internal/repository/sqlite"
	"github.com/sakif/family-tree/internal/service"
)

// Server owns the router and every long-lived dependency behind it.
type Server struct {
	config *config.Config
	logger *slog.Logger
	router *chi.Mux
	store  repository.Store

	// storeReady reports whether a real database backs the store, for /healthz.
	storeReady bool
}

// New builds the server from configuration. Missing DATABASE_PATH or
// JWT_SECRET is logged and tolerated; the server still serves requests.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s := &Server{
		config: cfg,
		logger: logger,
		router: chi.NewRouter(),
	}

	if cfg.DatabasePath != "" {
		db, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		s.store = db
		s.storeReady = true
	} else {
		logger.Warn("DATABASE_PATH not set, data routes will return errors")
		s.store = repository.Unavailable{}
	}

	var tokens *auth.TokenService
	if cfg.JWTSecret != "" {
		var err error
		tokens, err = auth.NewTokenService(cfg.JWTSecret)
		if err != nil {
			return nil, fmt.Errorf("token service: %w", err)
		}
	} else {
		logger.Warn("JWT_SECRET not set, session issuance and validation will return errors")
	}

	var verifier auth.IdentityVerifier
	if cfg.GoogleClientID != "" {
		verifier = auth.NewGoogleVerifier(cfg.GoogleClientID)
	} else {
		logger.Warn("GOOGLE_CLIENT_ID not set, Google sign-in will return errors")
	}

	var google *auth.GoogleProvider
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		google = auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
	}

	s.setupRoutes(tokens, verifier, google)
	return s, nil
}

func (s *Server) setupRoutes(tokens *auth.TokenService, verifier auth.IdentityVerifier, google *auth.GoogleProvider) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	authService := service.NewAuthService(s.store.Users(), tokens, verifier, s.logger)
	treeService := service.NewTreeService(s.store.Trees(), s.logger)
	memberService := service.NewMemberService(s.store.Members(), treeService, s.logger)

	authHandler := handler.NewAuthHandler(authService, google, s.logger)
	treeHandler := handler.NewTreeHandler(treeService, s.logger)
	memberHandler := handler.NewMemberHandler(memberService, s.logger)

	s.router.Get("/healthz", s.handleHealth)

	// Server-side OAuth redirect flow. Only useful when a client secret is
	// configured; the handler reports the gap otherwise.
	s.router.Get("/auth/google/login", authHandler.HandleGoogleRedirect)
	s.router.Get("/auth/google/callback", authHandler.HandleGoogleCallback)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/google", authHandler.HandleGoogleLogin)
		r.Get("/auth/verify", authHandler.HandleVerify)
		r.Post("/auth/logout", authHandler.HandleLogout)

		// Everything below requires a valid session token.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/trees", treeHandler.HandleList)
			r.Post("/trees", treeHandler.HandleCreate)
			r.Get("/trees/{id}", treeHandler.HandleGet)
			r.Put("/trees/{id}", treeHandler.HandleUpdate)
			r.Delete("/trees/{id}", treeHandler.HandleDelete)

			r.Get("/trees/{id}/members", memberHandler.HandleListByTree)
			r.Post("/trees/{id}/members", memberHandler.HandleCreate)
			r.Get("/members/{id}", memberHandler.HandleGet)
			r.Put("/members/{id}", memberHandler.HandleUpdate)
			r.Delete("/members/{id}", memberHandler.HandleDelete)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","database":%t}`, s.storeReady)
}

// Router exposes the configured mux, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests for up
// to 30 seconds, close the store.
func (s *Server) Start() error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.Bool("database", s.storeReady),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
