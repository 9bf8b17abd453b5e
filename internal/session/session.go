package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Status is the authentication lifecycle state.
type Status int

const (
	StatusUninitialized Status = iota
	StatusInitializing
	StatusUnauthenticated
	// StatusLoggingIn is a transient substate of unauthenticated, entered by
	// Login and exited on success or failure.
	StatusLoggingIn
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusInitializing:
		return "initializing"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusLoggingIn:
		return "logging-in"
	case StatusAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

var (
	// ErrNotReady reports an operation attempted before the session resolved.
	ErrNotReady = errors.New("session not ready")

	ErrLoginInProgress = errors.New("login already in progress")
)

// Session tracks the authentication lifecycle and holds the current identity.
// Exactly one Session exists per running client.
type Session struct {
	mu       sync.Mutex
	status   Status
	identity Identity

	provider Provider
	store    CredentialStore
	log      *slog.Logger
	now      func() time.Time

	watchers []func(Identity)
}

func New(provider Provider, store CredentialStore, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		provider: provider,
		store:    store,
		log:      logger,
		now:      time.Now,
	}
}

// Init performs the one-time startup check for a previously persisted
// session. It resolves the session to authenticated or unauthenticated;
// subsequent calls are no-ops.
func (s *Session) Init(ctx context.Context) error {
	s.mu.Lock()
	if s.status != StatusUninitialized {
		s.mu.Unlock()
		return nil
	}
	s.status = StatusInitializing
	s.mu.Unlock()

	id, found, err := s.store.Load()
	s.mu.Lock()
	if err != nil || !found || id.Expired(s.now()) {
		s.status = StatusUnauthenticated
		s.mu.Unlock()
		if err != nil {
			s.log.Warn("stored session unusable", "error", err)
			return err
		}
		return nil
	}
	s.identity = id
	s.status = StatusAuthenticated
	s.mu.Unlock()

	s.log.Info("session restored", "principal", id.Principal)
	s.notify(id)
	return nil
}

// Login negotiates with the identity provider. On success the identity is set
// and persisted; on failure the session returns to unauthenticated with no
// identity.
func (s *Session) Login(ctx context.Context) error {
	s.mu.Lock()
	switch s.status {
	case StatusUninitialized, StatusInitializing:
		s.mu.Unlock()
		return ErrNotReady
	case StatusLoggingIn:
		s.mu.Unlock()
		return ErrLoginInProgress
	}
	s.status = StatusLoggingIn
	s.mu.Unlock()

	id, err := s.provider.Login(ctx)
	s.mu.Lock()
	if err != nil {
		s.status = StatusUnauthenticated
		s.identity = Identity{}
		s.mu.Unlock()
		s.log.Warn("login failed", "error", err)
		return err
	}
	s.identity = id
	s.status = StatusAuthenticated
	s.mu.Unlock()

	if err := s.store.Save(id); err != nil {
		s.log.Warn("persist credentials failed", "error", err)
	}
	s.log.Info("logged in", "principal", id.Principal)
	s.notify(id)
	return nil
}

// Logout clears the identity synchronously.
func (s *Session) Logout() {
	s.mu.Lock()
	had := !s.identity.IsZero()
	s.identity = Identity{}
	s.status = StatusUnauthenticated
	s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		s.log.Warn("clear credentials failed", "error", err)
	}
	if had {
		s.log.Info("logged out")
		s.notify(Identity{})
	}
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) IsInitializing() bool {
	st := s.Status()
	return st == StatusUninitialized || st == StatusInitializing
}

// Identity returns the current identity and whether one is present.
func (s *Session) Identity() (Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity.IsZero() {
		return Identity{}, false
	}
	return s.identity, true
}

// OnIdentityChange registers a callback invoked after login, restore and
// logout. Logout delivers a zero Identity.
func (s *Session) OnIdentityChange(fn func(Identity)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

func (s *Session) notify(id Identity) {
	s.mu.Lock()
	watchers := make([]func(Identity), len(s.watchers))
	copy(watchers, s.watchers)
	s.mu.Unlock()
	for _, fn := range watchers {
		fn(id)
	}
}
