// Package session keeps the admin credential and its verified state.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/mcoot/minibeans/internal/ledger"
	"github.com/mcoot/minibeans/internal/model"
	"github.com/mcoot/minibeans/internal/storage"
)

// State is the admin session state
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Authenticator is the slice of the ledger client the session needs
type Authenticator interface {
	AdminLogin(ctx context.Context, password string) (string, error)
	VerifyAdmin(ctx context.Context, token string) (bool, error)
}

// Store holds the admin token. Anonymous --login--> Authenticated
// --verify false--> Anonymous. There is no local expiry.
type Store struct {
	store  storage.Store
	auth   Authenticator
	logger *slog.Logger

	mu    sync.RWMutex
	token string
	state State
}

// New creates a session store in the Anonymous state
func New(store storage.Store, auth Authenticator, logger *slog.Logger) *Store {
	return &Store{
		store:  store,
		auth:   auth,
		logger: logger,
	}
}

// Restore verifies a previously stored token. A token the server rejects,
// with valid:false or a 401, is purged. A transport failure leaves the session anonymous for this run but
// keeps the stored token, since it was never shown to be invalid.
func (s *Store) Restore(ctx context.Context) (State, error) {
	token, err := s.store.Load(ctx, storage.KeyAdminToken)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return Anonymous, nil
		}
		return Anonymous, err
	}

	valid, err := s.auth.VerifyAdmin(ctx, token)
	if ledger.IsUnauthorized(err) {
		valid, err = false, nil
	}
	if err != nil {
		s.logger.Warn("could not verify stored admin token", slog.String("error", err.Error()))
		return Anonymous, err
	}

	if !valid {
		s.logger.Info("stored admin token rejected, clearing")
		return Anonymous, s.Clear(ctx)
	}

	s.set(token, Authenticated)
	return Authenticated, nil
}

// Login exchanges a password for a token and persists it. Nothing is stored
// when the server rejects the password.
func (s *Store) Login(ctx context.Context, password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", model.NewValidationError("password", "enter the admin password")
	}

	token, err := s.auth.AdminLogin(ctx, password)
	if err != nil {
		return "", err
	}

	if err := s.store.Save(ctx, storage.KeyAdminToken, token); err != nil {
		// The token still works for this run
		s.logger.Warn("could not persist admin token", slog.String("error", err.Error()))
	}

	s.set(token, Authenticated)
	s.logger.Info("admin logged in")
	return token, nil
}

// Verify re-checks the current token. A rejected token collapses the session
// to Anonymous and is purged.
func (s *Store) Verify(ctx context.Context) (bool, error) {
	token := s.Token()
	if token == "" {
		return false, nil
	}

	valid, err := s.auth.VerifyAdmin(ctx, token)
	if ledger.IsUnauthorized(err) {
		valid, err = false, nil
	}
	if err != nil {
		return false, err
	}
	if !valid {
		return false, s.Clear(ctx)
	}
	return true, nil
}

// Clear drops the token from memory and durable storage
func (s *Store) Clear(ctx context.Context) error {
	s.set("", Anonymous)
	return s.store.Clear(ctx, storage.KeyAdminToken)
}

// Token returns the current token, empty when anonymous
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// State returns the current session state
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsAdmin reports whether the session is authenticated
func (s *Store) IsAdmin() bool {
	return s.State() == Authenticated
}

func (s *Store) set(token string, state State) {
	s.mu.Lock()
	s.token = token
	s.state = state
	s.mu.Unlock()
}
