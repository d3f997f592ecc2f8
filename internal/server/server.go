// Package server is the composition root: it wires the database, catalog,
// services, handlers, and middleware into a chi router and runs the HTTP
// server with graceful shutdown. main.go stays minimal — load config,
// build a Server, Start it.
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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/tanvir/cardforge/internal/auth"
	"github.com/tanvir/cardforge/internal/catalog"
	"github.com/tanvir/cardforge/internal/config"
	"github.com/tanvir/cardforge/internal/handler"
	"github.com/tanvir/cardforge/internal/middleware"
	"github.com/tanvir/cardforge/internal/payment"
	sqliteRepo "github.com/tanvir/cardforge/internal/repository/sqlite"
	"github.com/tanvir/cardforge/internal/service"
)

// Server owns the router and the resources that must be released on
// shutdown (the database connection).
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain. Each layer receives only what
// it needs: services get repository interfaces, handlers get services —
// the handler never touches the database.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	cat, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	logger.Info("catalog loaded",
		slog.Int("combinations", cat.Size()),
		slog.Int("apis", len(cat.APIs())),
	)

	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(cat); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// setupRoutes wires middleware, services, handlers, and routes.
func (s *Server) setupRoutes(cat *catalog.Catalog) error {
	tokens, err := auth.NewTokenService(s.config.Auth.JWTSecret)
	if err != nil {
		return err
	}
	passwords := auth.NewPasswordService()

	var github *auth.GitHubProvider
	if s.config.GitHubEnabled() {
		github = auth.NewGitHubProvider(
			s.config.Auth.GitHubClientID,
			s.config.Auth.GitHubClientSecret,
			s.config.Auth.GitHubCallbackURL,
		)
		s.logger.Info("GitHub OAuth enabled")
	}

	// Services. The sqlite DB implements every repository interface.
	authSvc := service.NewAuthService(s.db, passwords, s.logger)
	generationSvc := service.NewGenerationService(cat, s.db, s.db, s.db, s.db, s.logger)
	cardSvc := service.NewCardService(s.db, s.logger)
	prefSvc := service.NewPreferenceService(cat, s.db, s.logger)
	walletSvc := service.NewWalletService(s.db, s.db, s.db, payment.DevProvider{}, s.logger)
	adminSvc := service.NewAdminService(s.db, s.db)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc, tokens, github, s.logger)
	cardHandler := handler.NewCardHandler(generationSvc, cardSvc, s.logger)
	prefHandler := handler.NewPreferenceHandler(prefSvc)
	walletHandler := handler.NewWalletHandler(walletSvc)
	adminHandler := handler.NewAdminHandler(adminSvc)

	// Global middleware, in order: request ID, real IP (must precede the
	// IP-keyed rate limiters), logging, panic recovery.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	// Operational endpoints, unauthenticated.
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	loginLimiter := middleware.NewLoginLimiter(
		rate.Limit(s.config.RateLimit.LoginPerMinute/60),
		s.config.RateLimit.LoginBurst,
	)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.With(loginLimiter.Middleware).Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
		r.Get("/github/login", authHandler.HandleGitHubLogin)
		r.Get("/github/callback", authHandler.HandleGitHubCallback)
	})

	generationLimit := middleware.RateLimit(
		middleware.NewMemoryCounterStore(),
		s.config.RateLimit.GenerationPerMinute,
		time.Minute,
		s.logger,
	)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/me", authHandler.HandleMe)

		r.With(generationLimit).Post("/cards/generate", cardHandler.HandleGenerate)
		r.Get("/cards", cardHandler.HandleList)
		r.Get("/cards/{id}", cardHandler.HandleGet)
		r.Patch("/cards/{id}/flags", cardHandler.HandleUpdateFlags)
		r.Delete("/cards/{id}", cardHandler.HandleDelete)

		r.Get("/preferences", prefHandler.HandleList)
		r.Put("/preferences/{api}", prefHandler.HandleSet)
		r.Delete("/preferences/{api}", prefHandler.HandleClear)
		r.Delete("/preferences", prefHandler.HandleReset)

		r.Get("/wallet", walletHandler.HandleBalance)
		r.Get("/wallet/ledger", walletHandler.HandleLedger)
		r.Post("/wallet/daily", walletHandler.HandleClaimDaily)

		r.Get("/shop/packs", walletHandler.HandlePacks)
		r.Post("/shop/checkout", walletHandler.HandleCheckout)

		r.Get("/admin/stats", adminHandler.HandleStats)
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests (30s
// cap), close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
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
			slog.Int("port", s.config.Server.Port),
			slog.String("database", s.config.Database.Path),
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
