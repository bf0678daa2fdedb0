package session

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"gatehouse/internal/auth"
)

func newTestManager(t *testing.T, keys ...string) *Manager {
	t.Helper()
	if len(keys) == 0 {
		keys = []string{"test-signing-key"}
	}
	manager, err := NewManager(keys, false)
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}
	return manager
}

func TestNewManagerRequiresKeys(t *testing.T) {
	if _, err := NewManager(nil, false); err == nil {
		t.Fatal("expected error for empty key list")
	}
	if _, err := NewManager([]string{""}, false); err == nil {
		t.Fatal("expected error for blank key")
	}
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	manager := newTestManager(t)
	user := &auth.User{ID: uuid.New()}

	cookie, err := manager.Issue(user)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if cookie.Name != CookieName || !cookie.HttpOnly {
		t.Fatalf("unexpected cookie %+v", cookie)
	}
	if cookie.MaxAge != int((24 * time.Hour).Seconds()) {
		t.Fatalf("expected 24h max age, got %d", cookie.MaxAge)
	}

	id, err := manager.Verify(cookie.Value)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if id != user.ID {
		t.Fatalf("expected %s, got %s", user.ID, id)
	}
}

func TestVerifyRejectsTamperedCookie(t *testing.T) {
	manager := newTestManager(t)
	cookie, err := manager.Issue(&auth.User{ID: uuid.New()})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	raw := []byte(cookie.Value)
	for i := range raw {
		flipped := make([]byte, len(raw))
		copy(flipped, raw)
		flipped[i] ^= 0x01

		if _, err := manager.Verify(string(flipped)); !errors.Is(err, ErrInvalidSession) {
			t.Fatalf("expected ErrInvalidSession after flipping byte %d, got %v", i, err)
		}
	}
}

func TestVerifyRejectsExpiredSession(t *testing.T) {
	manager := newTestManager(t)

	// Issue in the past, verify in the present.
	nowFunc = func() time.Time { return time.Now().Add(-25 * time.Hour) }
	cookie, err := manager.Issue(&auth.User{ID: uuid.New()})
	nowFunc = time.Now
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := manager.Verify(cookie.Value); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for expired cookie, got %v", err)
	}
}

func TestVerifyRejectsMissingValue(t *testing.T) {
	manager := newTestManager(t)
	if _, err := manager.Verify(""); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
	if _, err := manager.Verify("not-a-token"); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestVerifyAcceptsRotatedKeys(t *testing.T) {
	oldManager := newTestManager(t, "old-key")
	cookie, err := oldManager.Issue(&auth.User{ID: uuid.New()})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	// After rotation the old key is still in the verification list.
	rotated := newTestManager(t, "new-key", "old-key")
	if _, err := rotated.Verify(cookie.Value); err != nil {
		t.Fatalf("expected rotated manager to accept old cookie, got %v", err)
	}

	// A manager that dropped the old key rejects it.
	dropped := newTestManager(t, "new-key")
	if _, err := dropped.Verify(cookie.Value); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession once the key is dropped, got %v", err)
	}
}

func TestNewestKeySignsNewSessions(t *testing.T) {
	manager := newTestManager(t, "newest", "older")
	cookie, err := manager.Issue(&auth.User{ID: uuid.New()})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	newestOnly := newTestManager(t, "newest")
	if _, err := newestOnly.Verify(cookie.Value); err != nil {
		t.Fatalf("expected cookie to be signed with the newest key, got %v", err)
	}
}

func TestClearProducesExpiredCookie(t *testing.T) {
	manager := newTestManager(t)
	cookie := manager.Clear()

	if cookie.Name != CookieName {
		t.Fatalf("unexpected cookie name %q", cookie.Name)
	}
	if cookie.Value != "" || cookie.MaxAge != -1 {
		t.Fatalf("expected clearing directive, got %+v", cookie)
	}

	if _, err := manager.Verify(cookie.Value); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected cleared cookie to resolve as anonymous, got %v", err)
	}
}
