package resources

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/backend"
	"github.com/spigell/talentmatch/internal/session"
)

func newTestSession(t *testing.T, fake *fakeBackend, token string) (*Session, *session.MemoryStore) {
	t.Helper()

	store := session.NewMemoryStore(token)
	s, err := NewSession(context.Background(), fake.client(), store, zap.NewNop())
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	return s, store
}

func TestSessionLoginPersistsToken(t *testing.T) {
	fake := newFakeBackend(t)
	fake.reply(http.MethodPost, "/api/auth/login", http.StatusOK,
		`{"message":"Login successful!","token":"jwt-1","user":{"id":3,"username":"ann","email":"ann@example.com","role":"talent"}}`)

	s, store := newTestSession(t, fake, "")

	if err := s.Login(context.Background(), "ann@example.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if s.Token() != "jwt-1" {
		t.Fatalf("expected token jwt-1, got %q", s.Token())
	}
	if user := s.User(); user == nil || user.Role != RoleTalent || user.ID != 3 {
		t.Fatalf("unexpected user: %+v", user)
	}

	persisted, _ := store.Get(context.Background())
	if persisted != "jwt-1" {
		t.Fatalf("expected persisted token, got %q", persisted)
	}

	reqs := fake.requests()
	if reqs[0].Body["email"] != "ann@example.com" || reqs[0].Body["password"] != "secret" {
		t.Fatalf("unexpected login body: %v", reqs[0].Body)
	}
	if reqs[0].Authorization != "" {
		t.Fatalf("login must not carry a token, got %q", reqs[0].Authorization)
	}
}

func TestSessionLoginFailure(t *testing.T) {
	fake := newFakeBackend(t)
	fake.reply(http.MethodPost, "/api/auth/login", http.StatusUnauthorized, `{"message":"Invalid email or password!"}`)

	s, store := newTestSession(t, fake, "old")

	err := s.Login(context.Background(), "ann@example.com", "wrong")
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Invalid email or password!" {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.LastError() != "Invalid email or password!" {
		t.Fatalf("unexpected stored error: %q", s.LastError())
	}

	persisted, _ := store.Get(context.Background())
	if persisted != "old" {
		t.Fatalf("expected stored token untouched, got %q", persisted)
	}
}

func TestSessionRegisterWithoutToken(t *testing.T) {
	fake := newFakeBackend(t)
	fake.reply(http.MethodPost, "/api/auth/register", http.StatusCreated, `{"message":"User registered successfully!"}`)

	s, store := newTestSession(t, fake, "")

	err := s.Register(context.Background(), "acme", "hr@acme.io", "pw", RoleCompany)
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}

	if persisted, _ := store.Get(context.Background()); persisted != "" {
		t.Fatalf("expected nothing persisted, got %q", persisted)
	}

	if body := fake.requests()[0].Body; body["role"] != RoleCompany || body["username"] != "acme" {
		t.Fatalf("unexpected register body: %v", body)
	}
}

func TestSessionMe(t *testing.T) {
	t.Run("no token sends nothing", func(t *testing.T) {
		fake := newFakeBackend(t)
		s, _ := newTestSession(t, fake, "")

		user, err := s.Me(context.Background())
		if err != nil || user != nil {
			t.Fatalf("expected no-op, got %+v, %v", user, err)
		}
		if len(fake.requests()) != 0 {
			t.Fatalf("expected no requests, got %d", len(fake.requests()))
		}
	})

	t.Run("success", func(t *testing.T) {
		fake := newFakeBackend(t)
		fake.reply(http.MethodGet, "/api/auth/me", http.StatusOK, `{"id":3,"username":"ann","email":"ann@example.com","role":"talent"}`)
		s, _ := newTestSession(t, fake, "jwt-1")

		user, err := s.Me(context.Background())
		if err != nil {
			t.Fatalf("me: %v", err)
		}
		if user.Username != "ann" || s.User().Username != "ann" {
			t.Fatalf("unexpected user: %+v", user)
		}
		if auth := fake.requests()[0].Authorization; auth != "Bearer jwt-1" {
			t.Fatalf("unexpected authorization: %q", auth)
		}
	})

	t.Run("unauthenticated destroys session", func(t *testing.T) {
		fake := newFakeBackend(t)
		fake.reply(http.MethodGet, "/api/auth/me", http.StatusUnauthorized, `{"message":"Token expired. Please log in again."}`)
		s, store := newTestSession(t, fake, "jwt-1")

		if _, err := s.Me(context.Background()); err == nil {
			t.Fatalf("expected error")
		}

		if s.Token() != "" {
			t.Fatalf("expected token to be dropped, got %q", s.Token())
		}
		if persisted, _ := store.Get(context.Background()); persisted != "" {
			t.Fatalf("expected token removed from store, got %q", persisted)
		}
	})

	t.Run("other failures keep the session", func(t *testing.T) {
		fake := newFakeBackend(t)
		fake.reply(http.MethodGet, "/api/auth/me", http.StatusInternalServerError, `{}`)
		s, store := newTestSession(t, fake, "jwt-1")

		if _, err := s.Me(context.Background()); err == nil {
			t.Fatalf("expected error")
		}
		if persisted, _ := store.Get(context.Background()); persisted != "jwt-1" {
			t.Fatalf("expected token kept, got %q", persisted)
		}
	})
}

func TestSessionLogout(t *testing.T) {
	fake := newFakeBackend(t)
	s, store := newTestSession(t, fake, "jwt-1")
	s.SetUser(&User{ID: 1})

	if err := s.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if s.Token() != "" || s.User() != nil {
		t.Fatalf("expected empty session")
	}
	if persisted, _ := store.Get(context.Background()); persisted != "" {
		t.Fatalf("expected token removed, got %q", persisted)
	}
}
