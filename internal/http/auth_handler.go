package http

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gatehouse/internal/auth"
	"gatehouse/internal/session"
)

const (
	oauthStateCookieName = "gatehouse_oauth_state"
	oauthStateCookieTTL  = 10 * time.Minute
)

type googleAuthenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GoogleClaims, error)
}

// AuthHandler drives the delegated-login flow: login page, consent redirect,
// provider callback and logout.
type AuthHandler struct {
	google       googleAuthenticator
	users        *auth.Service
	sessions     *session.Manager
	logger       *slog.Logger
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(google googleAuthenticator, users *auth.Service, sessions *session.Manager, env string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		google:       google,
		users:        users,
		sessions:     sessions,
		logger:       logger,
		secureCookie: !strings.EqualFold(env, "development"),
	}
}

// LoginPage handles GET /auth/login. An already authenticated visitor is
// sent straight to their profile instead of seeing the login prompt again.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if UserFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/profile", http.StatusFound)
		return
	}

	data := struct{ Error string }{Error: r.URL.Query().Get("error")}
	if err := renderPage(w, http.StatusOK, "login.html", data); err != nil {
		h.logger.Error("render login page", "error", err)
	}
}

// InitiateGoogle handles GET /auth/google.
// Redirects the user to Google's OAuth consent screen.
func (h *AuthHandler) InitiateGoogle(w http.ResponseWriter, r *http.Request) {
	state, err := auth.GenerateState()
	if err != nil {
		h.logger.Error("failed to generate state", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Path:     "/auth",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(oauthStateCookieTTL.Seconds()),
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusFound)
}

// CallbackGoogle handles GET /auth/google/redirect.
// Exchanges the authorization code for claims, resolves the local user and
// establishes the session cookie.
func (h *AuthHandler) CallbackGoogle(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(oauthStateCookieName)
	if err != nil {
		h.logger.Warn("oauth callback: missing state cookie")
		h.redirectWithError(w, r, "invalid_request")
		return
	}

	h.clearStateCookie(w)

	stateParam := r.URL.Query().Get("state")
	if subtle.ConstantTimeCompare([]byte(stateParam), []byte(stateCookie.Value)) != 1 {
		h.logger.Warn("oauth callback: state mismatch")
		h.redirectWithError(w, r, "invalid_request")
		return
	}

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Warn("oauth callback: provider error", "error", errParam)
		h.redirectWithError(w, r, errParam)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectWithError(w, r, "invalid_request")
		return
	}

	claims, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: exchange failed", "error", err)
		h.redirectWithError(w, r, "exchange_error")
		return
	}

	user, err := h.users.ResolveIdentity(r.Context(), claims)
	if err != nil {
		h.logger.Error("oauth callback: identity resolution failed", "error", err)
		http.Error(w, "failed to complete sign-in", http.StatusInternalServerError)
		return
	}

	cookie, err := h.sessions.Issue(user)
	if err != nil {
		h.logger.Error("oauth callback: session issue failed", "error", err)
		http.Error(w, "failed to complete sign-in", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, cookie)

	h.logger.Info("login successful", "user_id", user.ID)
	http.Redirect(w, r, "/profile", http.StatusFound)
}

// Logout handles GET /auth/logout. Clears the session cookie and sends the
// visitor home.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessions.Clear())
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *AuthHandler) clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
	})
}

func (h *AuthHandler) redirectWithError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, "/auth/login?error="+url.QueryEscape(code), http.StatusFound)
}
