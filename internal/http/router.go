package http

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gatehouse/internal/auth"
	"gatehouse/internal/config"
	"gatehouse/internal/session"
)

// NewRouter wires application routes and middleware using chi.
func NewRouter(cfg config.Config, google googleAuthenticator, users *auth.Service, sessions *session.Manager, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(newSlogMiddleware(logger))
	r.Use(newSessionMiddleware(sessions, users, logger))

	pages := NewPageHandler(logger)
	authHandler := NewAuthHandler(google, users, sessions, cfg.Environment, logger)

	r.Get("/", pages.Home)

	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", authHandler.LoginPage)
		r.Get("/google", authHandler.InitiateGoogle)
		r.Get("/google/redirect", authHandler.CallbackGoogle)
		r.Get("/logout", authHandler.Logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/profile", pages.Profile)
	})

	return r
}
