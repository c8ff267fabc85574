// Package session owns the signed in visitor and gates checkout on a complete profile.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/remote"
	"github.com/fjod/go_cart/storefront/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotStored   = errors.New("authentication successful but error storing session")
)

// Authenticator is the remote login authority, satisfied by *remote.Client.
type Authenticator interface {
	CheckLogin(ctx context.Context, creds remote.Credentials) (remote.LoginResult, error)
	Register(ctx context.Context, req remote.RegisterRequest) (remote.RegisterResult, error)
}

type Store struct {
	mu      sync.Mutex
	storage storage.Store
	auth    Authenticator
	bypass  *AdminBypass // nil when disabled
	log     *slog.Logger
	current *domain.UserSession
}

func NewStore(s storage.Store, auth Authenticator, bypass *AdminBypass, log *slog.Logger) *Store {
	return &Store{
		storage: s,
		auth:    auth,
		bypass:  bypass,
		log:     logger.OrDiscard(log).With("component", "session"),
	}
}

// Load restores the persisted session. A record that cannot be decoded or fails
// validation is discarded, never repaired.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var u domain.UserSession
	err := storage.LoadJSON(ctx, s.storage, storage.KeyUser, &u)
	if errors.Is(err, storage.ErrNotFound) {
		s.current = nil
		return
	}
	if err != nil || !valid(u) {
		s.log.WarnContext(ctx, "discarding stored session", "error", err)
		s.current = nil
		if rmErr := s.storage.Remove(ctx, storage.KeyUser); rmErr != nil {
			s.log.ErrorContext(ctx, "session remove failed", "error", rmErr)
		}
		return
	}
	s.current = &u
}

// valid accepts complete customer profiles and admin sessions, which only carry an email.
// A role other than customer or admin marks the record as corrupt.
func valid(u domain.UserSession) bool {
	if !u.EffectiveRole().Known() {
		return false
	}
	if u.IsAdmin() {
		return strings.TrimSpace(u.Email) != ""
	}
	return u.IsComplete()
}

// Current returns the signed in user, if any.
func (s *Store) Current() (domain.UserSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return domain.UserSession{}, false
	}
	return *s.current, true
}

// CheckoutUser returns the user only when every field an order needs is present.
func (s *Store) CheckoutUser() (domain.UserSession, bool) {
	u, ok := s.Current()
	if !ok || !u.IsComplete() {
		return domain.UserSession{}, false
	}
	return u, true
}

// Authenticate signs the visitor in. The admin bypass is checked first and never reaches
// the service.
func (s *Store) Authenticate(ctx context.Context, form LoginForm) (domain.UserSession, error) {
	if err := form.Validate(); err != nil {
		return domain.UserSession{}, err
	}
	email := strings.TrimSpace(form.Email)

	if s.bypass.Matches(email, form.Password) {
		s.log.WarnContext(ctx, "admin bypass login", "email", email)
		return s.establish(ctx, domain.UserSession{Email: email, Role: domain.RoleAdmin})
	}

	res, err := s.auth.CheckLogin(ctx, remote.Credentials{Email: email, Password: form.Password})
	if err != nil {
		s.log.WarnContext(ctx, "login request failed", "error", err)
		return domain.UserSession{}, fmt.Errorf("login failed: %w", err)
	}
	if !res.Success || res.User == nil {
		return domain.UserSession{}, ErrInvalidCredentials
	}

	u := *res.User
	if !u.Role.Known() {
		if u.Role != "" {
			s.log.WarnContext(ctx, "unknown role from login, treating as customer", "role", u.Role)
		}
		u.Role = domain.RoleCustomer
	}
	return s.establish(ctx, u)
}

func (s *Store) establish(ctx context.Context, u domain.UserSession) (domain.UserSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := storage.SaveJSON(ctx, s.storage, storage.KeyUser, u); err != nil {
		s.log.ErrorContext(ctx, "session persist failed", "error", err)
		return domain.UserSession{}, ErrSessionNotStored
	}
	s.current = &u
	return u, nil
}

// Register creates an account with the service and returns the email to prefill the login.
func (s *Store) Register(ctx context.Context, form RegisterForm) (string, error) {
	if err := form.Validate(); err != nil {
		return "", err
	}
	req := remote.RegisterRequest{
		Name:            strings.TrimSpace(form.Name),
		Email:           strings.TrimSpace(form.Email),
		Phone:           form.Phone,
		Address:         strings.TrimSpace(form.Address),
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
	}

	res, err := s.auth.Register(ctx, req)
	if err != nil {
		return "", fmt.Errorf("registration failed: %w", err)
	}
	if !res.Success {
		// the service rejected the form, e.g. an email already in use
		msg := res.Message
		if msg == "" {
			msg = "Registration failed. Please try again."
		}
		return "", invalid("", msg)
	}
	return req.Email, nil
}

// Logout drops the session from memory and storage together.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{storage.KeyUser, storage.KeyToken} {
		if err := s.storage.Remove(ctx, key); err != nil {
			s.log.ErrorContext(ctx, "session remove failed", "key", key, "error", err)
		}
	}
	s.current = nil
}
