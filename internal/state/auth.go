package state

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pilotdeck/pilotdeck/internal/api"
)

// Auth tracks the current authenticated user. Load runs the who-am-I call at
// most once per process; until it resolves, Loading reports true and User is
// nil. A nil user after loading means unauthenticated.
type Auth struct {
	notifier
	client *api.Client

	mu      sync.Mutex
	once    sync.Once
	user    *api.User
	loading bool
}

// NewAuth returns an Auth store bound to client.
func NewAuth(client *api.Client) *Auth {
	return &Auth{client: client, loading: true}
}

// Load issues the who-am-I call exactly once. Subsequent calls are no-ops;
// use Refresh to force a re-check.
func (a *Auth) Load(ctx context.Context) {
	a.once.Do(func() { a.Refresh(ctx) })
}

// Refresh re-runs the who-am-I call unconditionally.
func (a *Auth) Refresh(ctx context.Context) {
	user, err := a.client.Me(ctx)
	a.mu.Lock()
	if err != nil {
		slog.Debug("auth check failed", "error", err)
		a.user = nil
	} else {
		a.user = user
	}
	a.loading = false
	a.mu.Unlock()
	a.notify()
}

// User returns the authenticated user, or nil.
func (a *Auth) User() *api.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user
}

// Loading reports whether the initial who-am-I call is still pending.
func (a *Auth) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

// Logout ends the server session, then clears the local user regardless of
// whether the server call succeeded.
func (a *Auth) Logout(ctx context.Context) error {
	err := a.client.Logout(ctx)
	if err != nil {
		slog.Warn("server logout failed, clearing local session anyway", "error", err)
	}
	a.mu.Lock()
	a.user = nil
	a.mu.Unlock()
	a.notify()
	return err
}
