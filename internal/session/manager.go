package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/emporia-game/peddler/internal/emporia"
)

// API is the slice of the Emporia client the manager needs. *emporia.Client
// satisfies it.
type API interface {
	Register(ctx context.Context, req emporia.RegisterRequest) error
	Login(ctx context.Context, req emporia.LoginRequest) (*emporia.TokenBundle, error)
	RefreshToken(ctx context.Context) (*emporia.TokenBundle, error)
	Logout(ctx context.Context, token string) error
}

var _ API = (*emporia.Client)(nil)

// Manager holds the session state for one application instance. All methods
// are safe for concurrent use.
type Manager struct {
	api API
	log *zap.Logger

	mu            sync.RWMutex
	accessToken   string
	userName      string
	bootstrapping bool
	bootstrapped  bool

	group singleflight.Group

	// onLogout hooks run after the session is cleared, e.g. to flush the
	// image cache so a later login never sees another user's pictures.
	onLogout []func()
}

// NewManager builds a Manager around the given API client.
func NewManager(api API, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{api: api, log: log, bootstrapping: true}
}

// OnLogout registers a hook invoked whenever the session is cleared.
func (m *Manager) OnLogout(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLogout = append(m.onLogout, fn)
}

// Register forwards to the registration endpoint. No session side effects.
func (m *Manager) Register(ctx context.Context, req emporia.RegisterRequest) error {
	return m.api.Register(ctx, req)
}

// Login authenticates and stores the resulting token. The display name comes
// from the token claims, falling back to the submitted username when the
// claim is absent.
func (m *Manager) Login(ctx context.Context, req emporia.LoginRequest) error {
	bundle, err := m.api.Login(ctx, req)
	if err != nil {
		return err
	}

	name := userNameFromToken(bundle.AccessToken)
	if name == "" {
		name = req.Username
	}

	m.mu.Lock()
	m.accessToken = bundle.AccessToken
	m.userName = name
	m.mu.Unlock()

	m.log.Info("logged in", zap.String("user", name))
	return nil
}

// Logout clears the session immediately, then makes a best-effort call to
// invalidate the refresh credential server-side. The caller navigates to the
// login surface regardless of the server outcome.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	token := m.accessToken
	m.accessToken = ""
	m.userName = ""
	hooks := append([]func(){}, m.onLogout...)
	m.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	if err := m.api.Logout(ctx, token); err != nil {
		m.log.Warn("server logout failed", zap.Error(err))
	}
}

// Refresh exchanges the refresh cookie for a new access token. Concurrent
// callers collapse into a single network call and all observe its outcome:
// a burst of near-simultaneous 401s must not stampede the refresh endpoint.
// Returns true when the session was renewed; false clears the session.
func (m *Manager) Refresh(ctx context.Context) bool {
	result, _, _ := m.group.Do("refresh", func() (any, error) {
		bundle, err := m.api.RefreshToken(ctx)
		if err != nil {
			m.mu.Lock()
			m.accessToken = ""
			m.userName = ""
			m.mu.Unlock()
			m.log.Debug("refresh failed", zap.Error(err))
			return false, nil
		}

		name := userNameFromToken(bundle.AccessToken)
		m.mu.Lock()
		m.accessToken = bundle.AccessToken
		if name != "" {
			m.userName = name
		}
		m.mu.Unlock()
		return true, nil
	})
	ok, _ := result.(bool)
	return ok
}

// Bootstrap performs the once-per-process startup refresh. Views must not
// render protected content until Bootstrapping reports false; a failed
// bootstrap simply leaves the user logged out.
func (m *Manager) Bootstrap(ctx context.Context) {
	m.mu.Lock()
	if m.bootstrapped {
		m.mu.Unlock()
		return
	}
	m.bootstrapped = true
	m.mu.Unlock()

	m.Refresh(ctx)

	m.mu.Lock()
	m.bootstrapping = false
	m.mu.Unlock()
}

// Bootstrapping reports whether the startup refresh is still in flight.
func (m *Manager) Bootstrapping() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bootstrapping
}

// IsLoggedIn is a pure predicate over in-memory token presence; it never
// touches the network.
func (m *Manager) IsLoggedIn() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accessToken != ""
}

// Token returns the current access token. Callers must read it at call time
// rather than capturing it, so a refresh by one in-flight operation is
// visible to the next one issued.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accessToken
}

// UserName returns the display identity for the current session.
func (m *Manager) UserName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userName
}

// Do runs fn with the current token. When fn fails with a 401, Do refreshes
// the session and, if that succeeds, retries fn exactly once with the new
// token. A failed refresh returns the original 401 unchanged; a second 401
// after the retry is never retried again.
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context, token string) error) error {
	err := fn(ctx, m.Token())
	if err == nil {
		return nil
	}

	var problem *emporia.Problem
	if !errors.As(err, &problem) || !problem.IsUnauthorized() {
		return err
	}

	if !m.Refresh(ctx) {
		return err
	}
	return fn(ctx, m.Token())
}
