// Package testutil provides common testing utilities and helpers, chiefly a
// fake UniFi controller built on httptest.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Default credentials accepted by a Controller.
const (
	Username = "admin"
	Password = "s3cret"
)

// OKEnvelope is an empty successful envelope.
const OKEnvelope = `{"meta":{"rc":"ok"},"data":[]}`

// Reply is one canned response.
type Reply struct {
	Status int
	Body   string
	Header http.Header
	// Delay is slept before answering.
	Delay time.Duration
}

// OK returns a 200 reply with body.
func OK(body string) Reply {
	return Reply{Status: http.StatusOK, Body: body}
}

// Status returns a reply with the given status and body.
func Status(code int, body string) Reply {
	return Reply{Status: code, Body: body}
}

// Request is a request received by the Controller, with its body read.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// JSON unmarshals the request body into a map.
func (r Request) JSON(t testing.TB) map[string]any {
	t.Helper()

	var m map[string]any
	if err := json.Unmarshal(r.Body, &m); err != nil {
		t.Fatalf("request body is not JSON: %v (%q)", err, r.Body)
	}

	return m
}

// ControllerOptions configures a Controller.
type ControllerOptions struct {
	// OS makes the controller behave like a UniFi OS console: login at
	// /api/auth/login, TOKEN cookie plus X-CSRF-Token header.
	OS bool

	// Strict makes business routes answer 401 unless the request carries the
	// cookie (and, for OS, the CSRF token) of the latest login.
	Strict bool

	// LoginReplies overrides the login response sequence. Successful replies
	// still receive a session cookie.
	LoginReplies []Reply
}

// Controller is an httptest-backed fake controller. Routes are keyed by
// method and exact path; each route plays its replies in order and keeps
// repeating the last one.
type Controller struct {
	*httptest.Server

	t    testing.TB
	opts ControllerOptions

	mu       sync.Mutex
	routes   map[string][]Reply
	calls    map[string]int
	requests []Request
	logins   int
	logouts  int
	token    string
	csrf     string
}

// NewController starts a fake controller. It is closed with t.Cleanup.
func NewController(t testing.TB, opts ControllerOptions) *Controller {
	t.Helper()

	c := &Controller{
		t:      t,
		opts:   opts,
		routes: map[string][]Reply{},
		calls:  map[string]int{},
	}
	c.Server = httptest.NewServer(http.HandlerFunc(c.serve))
	t.Cleanup(c.Server.Close)

	return c
}

// LoginPath returns the login path of this controller flavor.
func (c *Controller) LoginPath() string {
	if c.opts.OS {
		return "/api/auth/login"
	}
	return "/api/login"
}

// LogoutPath returns the logout path of this controller flavor.
func (c *Controller) LogoutPath() string {
	if c.opts.OS {
		return "/api/auth/logout"
	}
	return "/api/logout"
}

// CookieName returns the session cookie name of this controller flavor.
func (c *Controller) CookieName() string {
	if c.opts.OS {
		return "TOKEN"
	}
	return "unifises"
}

// On registers the replies for method and path.
func (c *Controller) On(method, path string, replies ...Reply) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes[method+" "+path] = replies
}

// Expire invalidates the current session server-side. With Strict, the
// next business request answers 401 until the client logs in again.
func (c *Controller) Expire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.csrf = ""
}

// Calls returns how many requests hit method and path.
func (c *Controller) Calls(method, path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method+" "+path]
}

// Logins returns how many login requests were received.
func (c *Controller) Logins() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logins
}

// Logouts returns how many logout requests were received.
func (c *Controller) Logouts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logouts
}

// Requests returns every request received, in order.
func (c *Controller) Requests() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Request(nil), c.requests...)
}

// LastRequest returns the last request to method and path.
func (c *Controller) LastRequest(method, path string) (Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.requests) - 1; i >= 0; i-- {
		if r := c.requests[i]; r.Method == method && r.Path == path {
			return r, true
		}
	}

	return Request{}, false
}

func (c *Controller) serve(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		c.t.Errorf("read request body: %v", err)
	}

	key := r.Method + " " + r.URL.Path

	c.mu.Lock()
	n := c.calls[key]
	c.calls[key]++
	c.requests = append(c.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   body,
	})
	c.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == c.LoginPath():
		c.login(w, body)
		return
	case r.Method == http.MethodPost && r.URL.Path == c.LogoutPath():
		c.logout(w, n)
		return
	}

	if c.opts.Strict && !c.authorized(r) {
		write(w, Status(http.StatusUnauthorized, `{"meta":{"rc":"error","msg":"api.err.LoginRequired"},"data":[]}`))
		return
	}

	c.mu.Lock()
	replies, ok := c.routes[key]
	c.mu.Unlock()

	if !ok {
		c.t.Errorf("unexpected request: %s", key)
		write(w, Status(http.StatusNotFound, `{"meta":{"rc":"error","msg":"api.err.NotFound"},"data":[]}`))
		return
	}

	write(w, pick(replies, n))
}

func (c *Controller) login(w http.ResponseWriter, body []byte) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(body, &creds); err != nil {
		c.t.Errorf("login body is not JSON: %v", err)
	}

	c.mu.Lock()
	n := c.logins
	c.logins++
	c.mu.Unlock()

	var reply Reply
	switch {
	case len(c.opts.LoginReplies) > 0:
		reply = pick(c.opts.LoginReplies, n)
	case creds.Username != Username || creds.Password != Password:
		if c.opts.OS {
			reply = Status(http.StatusUnauthorized, `{"code":"AUTHENTICATION_FAILED_INVALID_CREDENTIALS","message":"Invalid username or password"}`)
		} else {
			reply = Status(http.StatusBadRequest, `{"meta":{"rc":"error","msg":"api.err.Invalid"},"data":[]}`)
		}
	case c.opts.OS:
		reply = OK(`{"unique_id":"b4e7e9a1","username":"admin"}`)
	default:
		reply = OK(`{"meta":{"rc":"ok"},"data":[]}`)
	}

	if reply.Status >= http.StatusOK && reply.Status < http.StatusMultipleChoices {
		token := "session-" + strconv.Itoa(n+1)

		c.mu.Lock()
		c.token = token
		if c.opts.OS {
			c.csrf = "csrf-" + strconv.Itoa(n+1)
			w.Header().Set("X-CSRF-Token", c.csrf)
		}
		c.mu.Unlock()

		http.SetCookie(w, &http.Cookie{Name: c.CookieName(), Value: token, Path: "/", HttpOnly: true})
	}

	write(w, reply)
}

// logout plays registered replies for the logout path when there are any,
// and otherwise clears the session.
func (c *Controller) logout(w http.ResponseWriter, n int) {
	c.mu.Lock()
	c.logouts++
	replies, overridden := c.routes[http.MethodPost+" "+c.LogoutPath()]
	if !overridden {
		c.token = ""
		c.csrf = ""
	}
	c.mu.Unlock()

	if overridden {
		write(w, pick(replies, n))
		return
	}

	http.SetCookie(w, &http.Cookie{Name: c.CookieName(), Value: "", Path: "/", MaxAge: -1})
	write(w, OK(OKEnvelope))
}

func (c *Controller) authorized(r *http.Request) bool {
	c.mu.Lock()
	token, csrf := c.token, c.csrf
	c.mu.Unlock()

	if token == "" {
		return false
	}

	cookie, err := r.Cookie(c.CookieName())
	if err != nil || cookie.Value != token {
		return false
	}

	return !c.opts.OS || r.Header.Get("X-CSRF-Token") == csrf
}

func pick(replies []Reply, n int) Reply {
	if len(replies) == 0 {
		return OK(OKEnvelope)
	}
	if n >= len(replies) {
		n = len(replies) - 1
	}
	return replies[n]
}

func write(w http.ResponseWriter, reply Reply) {
	if reply.Delay > 0 {
		time.Sleep(reply.Delay)
	}

	for k, vs := range reply.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.Header().Set("Content-Type", "application/json")

	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, reply.Body)
}

// AssertNoCredentials fails if any of the given strings leak the controller
// password or a session token.
func AssertNoCredentials(t testing.TB, values ...string) {
	t.Helper()

	for _, v := range values {
		assert.NotContains(t, v, Password, "password leaked")
		assert.NotContains(t, v, "session-", "session token leaked")
	}
}
