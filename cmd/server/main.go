package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"gatehouse/internal/auth"
	"gatehouse/internal/config"
	transporthttp "gatehouse/internal/http"
	"gatehouse/internal/platform/database"
	"gatehouse/internal/platform/logging"
	"gatehouse/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	repo, cleanup, err := buildRepository(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize user store", "error", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	google, err := auth.NewGoogleAuthenticator(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL())
	if err != nil {
		logger.Error("failed to initialize Google authenticator", "error", err)
		os.Exit(1)
	}

	sessions, err := session.NewManager(cfg.CookieKeys, cfg.Environment == "production")
	if err != nil {
		logger.Error("failed to initialize session manager", "error", err)
		os.Exit(1)
	}

	users := auth.NewService(repo)
	router := transporthttp.NewRouter(cfg, google, users, sessions, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}

	go func() {
		logger.Info("Gatehouse listening", "addr", srv.Addr, "store", cfg.DataStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildRepository(ctx context.Context, cfg config.Config, logger *slog.Logger) (auth.Repository, func(), error) {
	if cfg.UseInMemoryStore() {
		logger.Info("using in-memory user store")
		return auth.NewInMemoryRepository(), nil, nil
	}

	db, cleanup, err := database.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, nil, err
	}

	repo, err := auth.NewMongoRepository(db)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	logger.Info("connected to mongodb")
	return repo, cleanup, nil
}
