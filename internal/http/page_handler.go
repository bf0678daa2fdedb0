package http

import (
	"log/slog"
	"net/http"

	"gatehouse/internal/auth"
)

// PageHandler serves the server-rendered pages.
type PageHandler struct {
	logger *slog.Logger
}

// NewPageHandler creates a handler.
func NewPageHandler(logger *slog.Logger) *PageHandler {
	return &PageHandler{logger: logger}
}

// Home handles GET /. The landing page shows the current user when a session
// is present.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := struct{ User *auth.User }{User: UserFromContext(r.Context())}
	if err := renderPage(w, http.StatusOK, "home.html", data); err != nil {
		h.logger.Error("render home page", "error", err)
	}
}

// Profile handles GET /profile. The route is gated, so a user is always
// present on the context here.
func (h *PageHandler) Profile(w http.ResponseWriter, r *http.Request) {
	data := struct{ User *auth.User }{User: UserFromContext(r.Context())}
	if err := renderPage(w, http.StatusOK, "profile.html", data); err != nil {
		h.logger.Error("render profile page", "error", err)
	}
}
