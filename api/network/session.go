package network

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/unifi-mcp/internal/middleware"
	"github.com/lexfrei/unifi-mcp/internal/response"
	"github.com/lexfrei/unifi-mcp/observability"
)

// SessionState is the lifecycle state of a SessionManager.
type SessionState int32

const (
	// StateUnauthenticated means no session is held. This is the initial state.
	StateUnauthenticated SessionState = iota
	// StateAuthenticated means a session from a successful login is held.
	StateAuthenticated
	// StateFailed means the last login attempt was rejected or could not
	// reach the controller. The next Ensure tries again.
	StateFailed
)

func (s SessionState) String() string {
	switch s {
	case StateUnauthenticated:
		return "UNAUTHENTICATED"
	case StateAuthenticated:
		return "AUTHENTICATED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Flavor identifies the controller deployment a session was obtained from.
type Flavor string

const (
	// FlavorStandard is a self-hosted Network application.
	FlavorStandard Flavor = "standard"
	// FlavorOS is a UniFi OS console (UDM, UDR, Cloud Key Gen2+, UCG).
	FlavorOS Flavor = "os"
)

func flavorOf(isOSDevice bool) Flavor {
	if isOSDevice {
		return FlavorOS
	}

	return FlavorStandard
}

// Session is the authenticated context returned by a successful login.
// A Session is never modified after creation.
type Session struct {
	Cookies   []*http.Cookie
	CSRFToken string
	CreatedAt time.Time
	Flavor    Flavor
}

func (s *Session) credentials() *middleware.Credentials {
	return &middleware.Credentials{
		Cookies:   s.Cookies,
		CSRFToken: s.CSRFToken,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// SessionManager owns the credentials and the single live session for one
// controller. It is safe for concurrent use: concurrent Ensure calls share
// one login, and requests in flight read the current session without locking.
type SessionManager struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
	isOSDevice bool

	logger  observability.Logger
	metrics observability.MetricsRecorder
	now     func() time.Time

	// mu serialises state transitions (login, invalidate, logout).
	mu      sync.Mutex
	current atomic.Pointer[Session]
	state   atomic.Int32
}

func newSessionManager(
	httpClient *http.Client,
	baseURL, username, password string,
	isOSDevice bool,
	logger observability.Logger,
	metrics observability.MetricsRecorder,
) *SessionManager {
	return &SessionManager{
		httpClient: httpClient,
		baseURL:    baseURL,
		username:   username,
		password:   password,
		isOSDevice: isOSDevice,
		logger:     logger.With(observability.F("flavor", string(flavorOf(isOSDevice)))),
		metrics:    metrics,
		now:        time.Now,
	}
}

// State returns the current lifecycle state.
func (m *SessionManager) State() SessionState {
	return SessionState(m.state.Load())
}

// Current returns the live session, or nil when unauthenticated.
func (m *SessionManager) Current() *Session {
	return m.current.Load()
}

// Ensure returns the live session, logging in first if there is none.
// While authenticated it issues no request.
//
// Errors match ErrAuthentication when the controller rejects the credentials
// and ErrConnection when it cannot be reached.
func (m *SessionManager) Ensure(ctx context.Context) (*Session, error) {
	if s := m.current.Load(); s != nil {
		return s, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another caller may have logged in while we waited for the lock.
	if s := m.current.Load(); s != nil {
		return s, nil
	}

	s, err := m.login(ctx)
	if err != nil {
		m.state.Store(int32(StateFailed))
		return nil, err
	}

	m.current.Store(s)
	m.state.Store(int32(StateAuthenticated))

	return s, nil
}

// Invalidate discards the live session. The next Ensure logs in again.
func (m *SessionManager) Invalidate() {
	m.invalidate(nil)
}

// invalidate discards the live session. When stale is non-nil the session is
// only discarded if it is still the current one, so a request that failed
// with an old session cannot throw away a fresh one. It reports whether a
// session was discarded.
func (m *SessionManager) invalidate(stale *Session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.current.Load()
	if cur == nil || (stale != nil && cur != stale) {
		return false
	}

	m.current.Store(nil)
	m.state.Store(int32(StateUnauthenticated))
	m.logger.Info("controller session invalidated")

	return true
}

// Logout ends the session on the controller, best effort, and discards it
// locally. Failures to reach the logout endpoint are logged, never returned.
func (m *SessionManager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.current.Load()
	m.current.Store(nil)
	m.state.Store(int32(StateUnauthenticated))

	if s == nil {
		return
	}

	path := LogoutPath(m.isOSDevice)
	if err := m.logout(ctx, s, path); err != nil {
		m.logger.Debug("controller logout failed",
			observability.F("path", path),
			observability.F("error", err),
		)
		return
	}

	m.logger.Info("logged out of controller")
}

func (m *SessionManager) logout(ctx context.Context, s *Session, path string) error {
	ctx = middleware.ContextWithCredentials(ctx, s.credentials())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, http.NoBody)
	if err != nil {
		return errors.Wrap(err, "failed to build logout request")
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return connectionError(err, http.MethodPost, path)
	}

	if _, err := response.ReadBody(resp); err != nil {
		return err
	}

	if !response.Success(resp.StatusCode) {
		return errors.Newf("logout returned status %d", resp.StatusCode)
	}

	return nil
}

// login performs one login request. It must be called with mu held.
func (m *SessionManager) login(ctx context.Context) (*Session, error) {
	path := LoginPath(m.isOSDevice)
	flavor := string(flavorOf(m.isOSDevice))

	payload, err := json.Marshal(loginRequest{
		Username: m.username,
		Password: m.password,
		Remember: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode login request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build login request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		m.metrics.RecordLogin(flavor, observability.LoginFailed)
		m.logger.Warn("controller login failed", observability.F("error", err))

		return nil, connectionError(err, http.MethodPost, path)
	}

	body, err := response.ReadBody(resp)
	if err != nil {
		m.metrics.RecordLogin(flavor, observability.LoginFailed)

		return nil, connectionError(err, http.MethodPost, path)
	}

	if !response.Success(resp.StatusCode) {
		m.metrics.RecordLogin(flavor, observability.LoginRejected)
		m.logger.Warn("controller rejected login", observability.F("status", resp.StatusCode))

		return nil, authenticationError("controller rejected login with status %d", resp.StatusCode)
	}

	// UniFi OS answers with a bare user object; only an explicit error
	// envelope counts as a rejection.
	if env, err := response.Decode[json.RawMessage](body); err == nil && env.Failed() {
		m.metrics.RecordLogin(flavor, observability.LoginRejected)
		m.logger.Warn("controller rejected login", observability.F("message", env.Meta.Msg))

		return nil, authenticationError("controller rejected login: %s", env.Meta.Msg)
	}

	s := &Session{
		Cookies:   sessionCookies(resp.Cookies()),
		CSRFToken: resp.Header.Get(middleware.CSRFHeader),
		CreatedAt: m.now(),
		Flavor:    flavorOf(m.isOSDevice),
	}

	if len(s.Cookies) == 0 {
		m.logger.Warn("login response carried no session cookie")
	}

	m.metrics.RecordLogin(flavor, observability.LoginSuccess)
	m.logger.Info("logged in to controller", observability.F("csrf", s.CSRFToken != ""))

	return s, nil
}

// sessionCookies keeps the name and value of every cookie set at login,
// skipping deletions.
func sessionCookies(set []*http.Cookie) []*http.Cookie {
	cookies := make([]*http.Cookie, 0, len(set))
	for _, c := range set {
		if c.Value == "" || c.MaxAge < 0 {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value})
	}

	return cookies
}
