package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"gatehouse/internal/auth"
	"gatehouse/internal/config"
	"gatehouse/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSessions(t *testing.T) *session.Manager {
	t.Helper()
	manager, err := session.NewManager([]string{"test-signing-key"}, false)
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}
	return manager
}

type fakeGoogleAuthenticator struct {
	authURLBase    string
	lastState      string
	exchangeClaims *auth.GoogleClaims
	exchangeErr    error
}

func (f *fakeGoogleAuthenticator) AuthURL(state string) string {
	f.lastState = state
	if f.authURLBase == "" {
		f.authURLBase = "https://accounts.google.com/auth?state="
	}
	return f.authURLBase + state
}

func (f *fakeGoogleAuthenticator) Exchange(ctx context.Context, code string) (*auth.GoogleClaims, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.exchangeClaims, nil
}

func newTestRouter(t *testing.T, google googleAuthenticator, repo auth.Repository) (http.Handler, *session.Manager) {
	t.Helper()
	cfg := config.Config{Environment: "development"}
	sessions := testSessions(t)
	users := auth.NewService(repo)
	return NewRouter(cfg, google, users, sessions, testLogger()), sessions
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}
