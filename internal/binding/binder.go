package binding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"hrportal/internal/remote"
	"hrportal/internal/session"
)

// ErrNotReady reports a read or write issued while no connection handle
// exists or while one is still being established. Callers defer the operation
// until establishment finishes instead of blocking on it.
var ErrNotReady = errors.New("connection not ready")

// Dialer establishes an identity-scoped connection handle.
type Dialer func(ctx context.Context, id session.Identity) (*remote.Client, error)

// Binder lazily establishes and memoizes the connection handle for the
// current identity. At most one non-stale handle exists per identity; any
// identity change invalidates the handle before a new one can be created.
type Binder struct {
	mu           sync.Mutex
	sess         *session.Session
	dial         Dialer
	log          *slog.Logger
	handle       *remote.Client
	token        string
	establishing bool
	done         chan struct{}
	lastErr      error
}

func New(sess *session.Session, dial Dialer, logger *slog.Logger) *Binder {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Binder{sess: sess, dial: dial, log: logger}
	sess.OnIdentityChange(func(session.Identity) {
		b.invalidate()
	})
	return b
}

// Get returns the memoized handle for the current identity. The first demand
// for a new identity kicks off establishment in the background and fails fast
// with ErrNotReady; demands made while establishing also fail fast.
func (b *Binder) Get(ctx context.Context) (*remote.Client, error) {
	id, ok := b.sess.Identity()
	if !ok {
		return nil, session.ErrNotReady
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handle != nil && b.token == id.Token {
		return b.handle, nil
	}
	if !b.establishing {
		b.establishing = true
		b.lastErr = nil
		b.done = make(chan struct{})
		go b.establish(id)
	}
	return nil, fmt.Errorf("%w: establishing", ErrNotReady)
}

func (b *Binder) establish(id session.Identity) {
	handle, err := b.dial(context.Background(), id)

	b.mu.Lock()
	b.establishing = false
	b.lastErr = err
	if err == nil {
		// The identity may have changed while dialing; a handle for a stale
		// identity is discarded.
		if cur, ok := b.sess.Identity(); ok && cur.Token == id.Token {
			b.handle = handle
			b.token = id.Token
		} else {
			b.lastErr = fmt.Errorf("%w: identity changed during establishment", ErrNotReady)
		}
	}
	done := b.done
	b.mu.Unlock()

	if err != nil {
		b.log.Warn("connection establishment failed", "error", err)
	} else {
		b.log.Debug("connection established", "principal", id.Principal)
	}
	close(done)
}

// Await blocks until a handle is ready, establishment fails, or the context
// is done. Intended for collaborators that would otherwise poll Get.
func (b *Binder) Await(ctx context.Context) (*remote.Client, error) {
	for {
		handle, err := b.Get(ctx)
		if err == nil {
			return handle, nil
		}
		if !errors.Is(err, ErrNotReady) {
			return nil, err
		}

		b.mu.Lock()
		done := b.done
		b.mu.Unlock()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-done:
		}

		b.mu.Lock()
		lastErr := b.lastErr
		b.mu.Unlock()
		if lastErr != nil {
			return nil, lastErr
		}
	}
}

func (b *Binder) IsEstablishing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.establishing
}

// Ready reports whether a handle exists for the current identity.
func (b *Binder) Ready() bool {
	id, ok := b.sess.Identity()
	if !ok {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handle != nil && b.token == id.Token
}

func (b *Binder) invalidate() {
	b.mu.Lock()
	b.handle = nil
	b.token = ""
	b.mu.Unlock()
}
