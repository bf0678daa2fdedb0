package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"gatehouse/internal/auth"
)

// CookieName is the name of the session cookie.
const CookieName = "gatehouse_session"

// maxAge bounds how long an issued session stays valid.
const maxAge = 24 * time.Hour

// ErrInvalidSession marks a cookie that failed signature or age checks. It is
// a control-flow signal, not a failure: callers treat the request as
// anonymous.
var ErrInvalidSession = errors.New("invalid session")

// nowFunc returns the current time. It can be overridden in tests.
var nowFunc = time.Now

// Manager serializes an authenticated identity into a signed, client-held
// cookie and back. All session state lives in the cookie; no server-side
// session table exists, so any instance can verify any cookie given the keys.
type Manager struct {
	keys   [][]byte
	secure bool
}

// NewManager builds a Manager from an ordered key list, newest first. The
// newest key signs new sessions; every key is accepted during verification so
// cookies signed before a rotation stay valid until they expire.
func NewManager(keys []string, secure bool) (*Manager, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("session: at least one signing key is required")
	}

	keyBytes := make([][]byte, len(keys))
	for i, key := range keys {
		if key == "" {
			return nil, fmt.Errorf("session: signing key %d is empty", i)
		}
		keyBytes[i] = []byte(key)
	}

	return &Manager{keys: keyBytes, secure: secure}, nil
}

// Issue signs the user's identity into a session cookie valid for 24 hours.
func (m *Manager) Issue(user *auth.User) (*http.Cookie, error) {
	now := nowFunc()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(maxAge)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.keys[0])
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}

	return m.cookie(signed, maxAge), nil
}

// Verify checks the cookie value's signature and age and returns the user
// identifier it carries. Any tampered, expired or malformed value yields
// ErrInvalidSession.
func (m *Manager) Verify(value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, ErrInvalidSession
	}

	for _, key := range m.keys {
		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(value, claims, func(*jwt.Token) (any, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(nowFunc), jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			continue
		}

		id, err := uuid.Parse(claims.Subject)
		if err != nil {
			return uuid.Nil, ErrInvalidSession
		}
		return id, nil
	}

	return uuid.Nil, ErrInvalidSession
}

// Clear produces the cookie-clearing directive used on logout.
func (m *Manager) Clear() *http.Cookie {
	cookie := m.cookie("", 0)
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	return cookie
}

func (m *Manager) cookie(value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	}
}
