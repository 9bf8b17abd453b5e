// Package client wires the session, connection binding, query cache,
// mutation dispatcher and authorization gate into the surface the portal UI
// calls. The UI issues explicit demand-driven reads and writes here; nothing
// is fetched implicitly.
package client

import (
	"context"
	"log/slog"

	"hrportal/internal/authz"
	"hrportal/internal/binding"
	"hrportal/internal/dispatch"
	"hrportal/internal/platform/config"
	"hrportal/internal/query"
	"hrportal/internal/remote"
	"hrportal/internal/session"
)

type Client struct {
	cfg    config.Config
	log    *slog.Logger
	sess   *session.Session
	binder *binding.Binder
	cache  *query.Store
	disp   *dispatch.Dispatcher
	gate   *authz.Gate
}

func New(cfg config.Config, provider session.Provider, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	sess := session.New(provider, session.NewFileStore(cfg.CredentialsFile), logger)
	cache := query.NewStore(logger)

	dial := func(ctx context.Context, id session.Identity) (*remote.Client, error) {
		ctx, cancel := context.WithTimeout(ctx, cfg.EstablishTimeout)
		defer cancel()
		handle := remote.NewClient(cfg.APIBaseURL, id.Token, cfg.RequestTimeout)
		if err := handle.Ping(ctx); err != nil {
			return nil, err
		}
		return handle, nil
	}
	binder := binding.New(sess, dial, logger)

	// A new identity must never observe the previous caller's snapshots.
	sess.OnIdentityChange(func(session.Identity) {
		cache.Clear()
	})

	c := &Client{
		cfg:    cfg,
		log:    logger,
		sess:   sess,
		binder: binder,
		cache:  cache,
		disp:   dispatch.New(binder, cache, logger),
	}
	c.gate = authz.NewGate(
		func() query.Result { return cache.Peek(KeyCurrentUserProfile()) },
		func() query.Result { return cache.Peek(KeyIsAdmin()) },
	)
	return c
}

// Init resolves the one-time startup check for a persisted session.
func (c *Client) Init(ctx context.Context) error {
	return c.sess.Init(ctx)
}

func (c *Client) Login(ctx context.Context) error {
	return c.sess.Login(ctx)
}

func (c *Client) Logout() {
	c.sess.Logout()
}

// Connect blocks until the connection binding is established for the current
// identity. Reads and writes issued before that fail fast instead.
func (c *Client) Connect(ctx context.Context) error {
	_, err := c.binder.Await(ctx)
	return err
}

func (c *Client) Session() *session.Session {
	return c.sess
}

func (c *Client) Binder() *binding.Binder {
	return c.binder
}

func (c *Client) Cache() *query.Store {
	return c.cache
}

// CanPerform resolves a capability from cached state. Unknown means the
// backing read has not resolved; the UI renders a pending affordance, never a
// denial.
func (c *Client) CanPerform(capability authz.Capability) authz.Decision {
	return c.gate.CanPerform(capability)
}

// Observe marks a query key as watched by a live reader, so invalidations
// refetch it in the background. The returned func releases the observation.
func (c *Client) Observe(key query.Key) func() {
	return c.cache.Subscribe(key)
}
