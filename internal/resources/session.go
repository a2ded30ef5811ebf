package resources

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/backend"
	"github.com/spigell/talentmatch/internal/session"
)

const (
	loginPath    = "/api/auth/login"
	registerPath = "/api/auth/register"
	mePath       = "/api/auth/me"
)

const (
	RoleTalent  = "talent"
	RoleCompany = "company"
)

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type authResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Session holds the authenticated user and its token. It is the only resource
// with a durable side effect: the token is written to the store on login and
// register and removed on logout.
type Session struct {
	state
	caller

	store session.Store
	user  *User
}

// NewSession builds a session around the token currently kept in store.
func NewSession(ctx context.Context, client *backend.Client, store session.Store, log *zap.Logger) (*Session, error) {
	token, err := store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading token: %w", err)
	}

	return &Session{
		caller: newCaller(client, token, log, "session"),
		store:  store,
	}, nil
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) SetUser(user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}

func (s *Session) Login(ctx context.Context, email, password string) error {
	return s.authenticate(ctx, loginPath, loginRequest{Email: email, Password: password})
}

func (s *Session) Register(ctx context.Context, username, email, password, role string) error {
	return s.authenticate(ctx, registerPath, registerRequest{
		Username: username,
		Email:    email,
		Password: password,
		Role:     role,
	})
}

func (s *Session) authenticate(ctx context.Context, path string, body any) error {
	s.begin()

	resp, err := s.check(s.client.Post(ctx, path, body, backend.Options{}))
	if err != nil {
		return s.settle(err, nil)
	}

	var auth authResponse
	if err := resp.Decode(&auth); err != nil {
		return s.settle(invalid(err), nil)
	}

	if auth.Token == "" {
		return s.settle(ErrInvalidResponse, nil)
	}

	if err := s.store.Set(ctx, auth.Token); err != nil {
		return s.settle(fmt.Errorf("persisting token: %w", err), nil)
	}

	s.logger.Debug("session established", zap.String("path", path))

	return s.settle(nil, func() {
		s.token = auth.Token
		s.user = auth.User
	})
}

// Me probes the backend for the current user. Without a token nothing is sent.
// An unauthenticated answer destroys the session.
func (s *Session) Me(ctx context.Context) (*User, error) {
	token := s.Token()
	if token == "" {
		return nil, nil
	}

	s.begin()

	resp, err := s.check(s.client.Get(ctx, mePath, backend.Options{Token: token}))
	if err != nil {
		if resp != nil && resp.Status == http.StatusUnauthorized {
			s.logger.Info("stored token rejected, dropping session", zap.String("reason", resp.Error))
			if rmErr := s.store.Remove(ctx); rmErr != nil {
				s.logger.Warn("removing rejected token", zap.Error(rmErr))
			}
			return nil, s.settle(err, func() {
				s.token = ""
				s.user = nil
			})
		}
		return nil, s.settle(err, nil)
	}

	var user User
	if err := resp.Decode(&user); err != nil {
		return nil, s.settle(invalid(err), nil)
	}

	return &user, s.settle(nil, func() {
		s.user = &user
	})
}

// Logout forgets the user and removes the persisted token.
func (s *Session) Logout(ctx context.Context) error {
	err := s.store.Remove(ctx)

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("removing token: %w", err)
	}

	return nil
}
