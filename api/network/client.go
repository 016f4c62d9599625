package network

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/lexfrei/unifi-mcp/internal/httpclient"
	"github.com/lexfrei/unifi-mcp/internal/middleware"
	"github.com/lexfrei/unifi-mcp/internal/ratelimit"
	"github.com/lexfrei/unifi-mcp/internal/response"
	"github.com/lexfrei/unifi-mcp/observability"
)

const (
	// DefaultSite is the site every controller is created with.
	DefaultSite = "default"
	// DefaultRateLimit is the default client-side rate limit (requests per minute).
	DefaultRateLimit = 1000
	// DefaultTimeout bounds a whole request, including reading the body.
	DefaultTimeout = 30 * time.Second
	// DefaultConnectTimeout bounds connection establishment and TLS handshake.
	DefaultConnectTimeout = 10 * time.Second

	// maxSessionRefreshes is how many times one call may log in again after
	// the controller reports an expired session.
	maxSessionRefreshes = 1
)

// Controller commands sent to cmd/devmgr and cmd/stamgr.
const (
	CmdRestart = "restart"
	CmdBlock   = "block-sta"
	CmdUnblock = "unblock-sta"
	CmdKick    = "kick-sta"
)

// APIClient talks to the legacy /api/s/{site} API of a UniFi Network
// controller using a session login. It is safe for concurrent use.
type APIClient struct {
	baseURL    string
	site       string
	isOSDevice bool

	httpClient *httpclient.Client
	session    *SessionManager

	logger  observability.Logger
	metrics observability.MetricsRecorder
	now     func() time.Time
}

// ClientConfig holds configuration for the controller client.
type ClientConfig struct {
	// ControllerURL is the base URL of the controller (e.g., "https://192.168.1.1"
	// or "https://unifi.local:8443"). Any path is ignored.
	ControllerURL string

	// Username and Password of a local controller admin.
	Username string
	Password string

	// Site is the site name used for site-scoped calls (defaults to "default").
	Site string

	// IsOSDevice selects the UniFi OS login endpoint and the /proxy/network prefix.
	IsOSDevice bool

	// InsecureSkipVerify disables TLS certificate verification. Verification
	// is on unless this is set.
	InsecureSkipVerify bool

	// Timeout bounds each request (defaults to 30s).
	Timeout time.Duration

	// ConnectTimeout bounds connection establishment (defaults to 10s).
	ConnectTimeout time.Duration

	// RateLimitPerMinute sets the client-side rate limit (defaults to 1000,
	// negative disables it).
	RateLimitPerMinute int

	// HTTPClient replaces the default HTTP client (optional). It is copied,
	// never modified. TLS and connect timeout settings are not applied to it.
	HTTPClient *http.Client

	// Logger for structured logging (optional, defaults to no-op).
	Logger observability.Logger

	// Metrics for recording metrics (optional, defaults to no-op).
	Metrics observability.MetricsRecorder
}

// New creates a client for a standard (non UniFi OS) controller with
// default settings and certificate verification enabled.
//
// Example:
//
//	client, err := network.New("https://unifi.local:8443", "admin", "secret")
func New(controllerURL, username, password string) (*APIClient, error) {
	return NewWithConfig(&ClientConfig{
		ControllerURL: controllerURL,
		Username:      username,
		Password:      password,
	})
}

// NewWithConfig creates a client with custom configuration. No request is
// made until the first operation.
//
// Example:
//
//	client, err := network.NewWithConfig(&network.ClientConfig{
//	    ControllerURL:      "https://192.168.1.1",
//	    Username:           "admin",
//	    Password:           "secret",
//	    IsOSDevice:         true,
//	    InsecureSkipVerify: true,
//	})
func NewWithConfig(cfg *ClientConfig) (*APIClient, error) {
	if cfg == nil {
		return nil, validationError("config is required")
	}

	baseURL, err := parseControllerURL(cfg.ControllerURL)
	if err != nil {
		return nil, err
	}
	if cfg.Username == "" {
		return nil, validationError("username is required")
	}
	if cfg.Password == "" {
		return nil, validationError("password is required")
	}

	// Set defaults
	site := cfg.Site
	if site == "" {
		site = DefaultSite
	}
	rateLimit := cfg.RateLimitPerMinute
	if rateLimit == 0 {
		rateLimit = DefaultRateLimit
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout == 0 {
		connectTimeout = DefaultConnectTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = observability.NoopLogger()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observability.NoopMetricsRecorder()
	}

	middlewares := []httpclient.Middleware{
		middleware.Observability(logger, metrics),
		middleware.RateLimit(middleware.RateLimitConfig{
			Limiter: ratelimit.NewRateLimiter(rateLimit),
			Logger:  logger,
			Metrics: metrics,
		}),
		middleware.Session(),
	}

	var opts []httpclient.Option
	if cfg.HTTPClient != nil {
		custom := *cfg.HTTPClient
		if custom.Timeout == 0 {
			custom.Timeout = timeout
		}
		opts = append(opts, httpclient.WithHTTPClient(&custom))
	} else {
		opts = append(opts,
			httpclient.WithTimeout(timeout),
			httpclient.WithDialTimeout(connectTimeout),
		)
		// TLSConfig replaces the transport, so it goes last (innermost).
		middlewares = append(middlewares, middleware.TLSConfig(middleware.ControllerTLS(!cfg.InsecureSkipVerify)))
	}
	opts = append(opts, httpclient.WithMiddleware(middlewares...))

	hc := httpclient.New(opts...)

	clientLogger := logger.With(observability.F("site", site))

	return &APIClient{
		baseURL:    baseURL,
		site:       site,
		isOSDevice: cfg.IsOSDevice,
		httpClient: hc,
		session: newSessionManager(hc.HTTPClient(), baseURL, cfg.Username, cfg.Password,
			cfg.IsOSDevice, clientLogger, metrics),
		logger:  clientLogger,
		metrics: metrics,
		now:     time.Now,
	}, nil
}

func parseControllerURL(raw string) (string, error) {
	if raw == "" {
		return "", validationError("controller URL is required")
	}

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", validationError("invalid controller URL %q: %v", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", validationError("invalid controller URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", validationError("invalid controller URL %q: missing host", raw)
	}

	return u.Scheme + "://" + u.Host, nil
}

// Site returns the configured site name.
func (c *APIClient) Site() string {
	return c.site
}

// IsOSDevice reports whether the client targets a UniFi OS console.
func (c *APIClient) IsOSDevice() bool {
	return c.isOSDevice
}

// Session returns the session manager owned by the client.
func (c *APIClient) Session() *SessionManager {
	return c.session
}

// Logout ends the controller session, best effort.
func (c *APIClient) Logout(ctx context.Context) {
	c.session.Logout(ctx)
}

func (c *APIClient) sitePath(suffix string) string {
	return SitePath(c.isOSDevice, c.site, suffix)
}

// ListDevices returns every device adopted on the site.
func (c *APIClient) ListDevices(ctx context.Context) ([]Device, error) {
	devices, err := dispatch[Device](ctx, c, http.MethodGet, c.sitePath("stat/device"), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list devices")
	}

	return devices, nil
}

// RestartDevice asks the controller to reboot a device. Success means the
// controller accepted the command, not that the device has rebooted.
func (c *APIClient) RestartDevice(ctx context.Context, mac string) (*CommandResult, error) {
	return c.command(ctx, "cmd/devmgr", CmdRestart, mac)
}

// ListClients returns active clients, or every known client with ClientsAll.
func (c *APIClient) ListClients(ctx context.Context, filter ClientFilter) ([]Client, error) {
	var suffix string
	switch filter {
	case ClientsActive:
		suffix = "stat/sta"
	case ClientsAll:
		suffix = "rest/user"
	default:
		return nil, validationError("unknown client filter %d", filter)
	}

	clients, err := dispatch[Client](ctx, c, http.MethodGet, c.sitePath(suffix), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list clients")
	}

	return clients, nil
}

// BlockClient prevents a client from connecting. Blocking an already
// blocked client succeeds.
func (c *APIClient) BlockClient(ctx context.Context, mac string) (*CommandResult, error) {
	return c.command(ctx, "cmd/stamgr", CmdBlock, mac)
}

// UnblockClient lifts a block. Unblocking a client that is not blocked succeeds.
func (c *APIClient) UnblockClient(ctx context.Context, mac string) (*CommandResult, error) {
	return c.command(ctx, "cmd/stamgr", CmdUnblock, mac)
}

// DisconnectClient forces a client to disconnect. It does not block it:
// the client may reconnect immediately.
func (c *APIClient) DisconnectClient(ctx context.Context, mac string) (*CommandResult, error) {
	return c.command(ctx, "cmd/stamgr", CmdKick, mac)
}

// ListSites returns the sites the logged-in admin can access.
func (c *APIClient) ListSites(ctx context.Context) ([]Site, error) {
	sites, err := dispatch[Site](ctx, c, http.MethodGet, SitesPath, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sites")
	}

	return sites, nil
}

// SiteHealth returns the per-subsystem health of the configured site.
func (c *APIClient) SiteHealth(ctx context.Context) (*SiteHealth, error) {
	subsystems, err := dispatch[HealthSubsystem](ctx, c, http.MethodGet, c.sitePath("stat/health"), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get site health")
	}

	return &SiteHealth{Site: c.site, Subsystems: subsystems}, nil
}

// ListNetworks returns the networks (LANs, VLANs, WANs, VPNs) configured on the site.
func (c *APIClient) ListNetworks(ctx context.Context) ([]Network, error) {
	networks, err := dispatch[Network](ctx, c, http.MethodGet, c.sitePath("rest/networkconf"), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list networks")
	}

	return networks, nil
}

// DeviceActivity joins a device with the active clients attached to it
// through ap_mac, sw_mac or uplink_mac, and sums their traffic counters.
// An unknown device yields an error matching ErrNotFound.
func (c *APIClient) DeviceActivity(ctx context.Context, mac string) (*ActivityRecord, error) {
	canonical, err := NormalizeMAC(mac)
	if err != nil {
		return nil, err
	}

	var (
		devices []Device
		clients []Client
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		devices, err = c.ListDevices(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		clients, err = c.ListClients(gctx, ClientsActive)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrapf(err, "failed to get activity for device %s", canonical)
	}

	record := &ActivityRecord{Clients: []Client{}}

	found := false
	for _, d := range devices {
		if sameMAC(d.MAC, canonical) {
			record.Device = d
			found = true
			break
		}
	}
	if !found {
		return nil, notFoundError("device %s not found on site %s", canonical, c.site)
	}

	for _, cl := range clients {
		if !cl.AttachedTo(canonical) {
			continue
		}
		record.Clients = append(record.Clients, cl)
		record.TotalTxBytes += cl.TxBytes
		record.TotalRxBytes += cl.RxBytes
	}
	record.ClientCount = len(record.Clients)

	return record, nil
}

// Self returns the logged-in admin. It is a cheap way to check the session.
func (c *APIClient) Self(ctx context.Context) (*Admin, error) {
	admins, err := dispatch[Admin](ctx, c, http.MethodGet, SelfPath(c.isOSDevice), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get current admin")
	}

	if len(admins) == 0 {
		return nil, errors.Mark(errors.New("controller returned no admin for the current session"), ErrController)
	}

	return &admins[0], nil
}

type commandRequest struct {
	Cmd string `json:"cmd"`
	MAC string `json:"mac"`
}

// command validates mac and sends a fire-and-forget command to a manager
// endpoint. The MAC is validated before any request is made.
func (c *APIClient) command(ctx context.Context, manager, cmd, mac string) (*CommandResult, error) {
	formatted, err := FormatMAC(mac)
	if err != nil {
		return nil, err
	}

	_, err = dispatch[json.RawMessage](ctx, c, http.MethodPost, c.sitePath(manager),
		commandRequest{Cmd: cmd, MAC: formatted})
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", cmd, formatted)
	}

	c.logger.Info("controller command accepted",
		observability.F("command", cmd),
		observability.F("mac", formatted),
	)

	return &CommandResult{
		Command:  cmd,
		MAC:      formatted,
		Accepted: true,
		IssuedAt: c.now(),
	}, nil
}

// exchange is one completed HTTP round trip with its body read.
type exchange struct {
	resp *http.Response
	body []byte
}

// dispatch runs one operation: ensure a session, send the request, and on a
// session-expired answer log in again and resend it, at most
// maxSessionRefreshes times. Other failures are returned as they are.
func dispatch[T any](ctx context.Context, c *APIClient, method, path string, payload any) ([]T, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode request")
		}
	}

	for refreshes := 0; ; refreshes++ {
		sess, err := c.session.Ensure(ctx)
		if err != nil {
			return nil, err
		}

		ex, err := c.send(ctx, sess, method, path, body)
		if err != nil {
			return nil, err
		}

		env, decodeErr := response.Decode[T](ex.body)

		if sessionExpired(ex.resp.StatusCode, env) {
			c.session.invalidate(sess)

			if refreshes >= maxSessionRefreshes {
				c.metrics.RecordError(method+" "+path, "session_expired")
				return nil, authenticationError("session still rejected after re-login (%s %s, status %d)",
					method, path, ex.resp.StatusCode)
			}

			c.metrics.RecordReauth(middleware.NormalizePath(path))
			c.logger.Info("controller session expired, logging in again",
				observability.F("path", path),
				observability.F("status", ex.resp.StatusCode),
			)

			continue
		}

		if !response.Success(ex.resp.StatusCode) || (env != nil && env.Failed()) {
			var msg string
			if env != nil {
				msg = env.Meta.Msg
			}

			return nil, newControllerError(ex.resp, path, msg)
		}

		if decodeErr != nil {
			return nil, errors.Mark(errors.Wrapf(decodeErr, "%s %s", method, path), ErrController)
		}

		return env.Data, nil
	}
}

func (c *APIClient) send(ctx context.Context, sess *Session, method, path string, body []byte) (*exchange, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	ctx = middleware.ContextWithCredentials(ctx, sess.credentials())

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build request %s %s", method, path)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, connectionError(err, method, path)
	}

	data, err := response.ReadBody(resp)
	if err != nil {
		return nil, connectionError(err, method, path)
	}

	return &exchange{resp: resp, body: data}, nil
}

// sessionExpired reports whether a response means the session is no longer
// valid: HTTP 401/403, or an error envelope asking for a login
// ("api.err.LoginRequired").
func sessionExpired[T any](status int, env *response.Envelope[T]) bool {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return true
	}

	if env == nil || !env.Failed() {
		return false
	}

	msg := strings.ToLower(env.Meta.Msg)

	return strings.Contains(msg, "loginrequired") || strings.Contains(msg, "login required")
}
