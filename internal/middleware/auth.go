package middleware

import (
	"context"
	"maps"
	"net/http"
)

// CSRFHeader carries the anti-forgery token UniFi OS consoles require on
// authenticated requests.
const CSRFHeader = "X-CSRF-Token"

// Credentials is the per-request authentication state: the session cookies
// issued at login and, on UniFi OS, the CSRF token.
type Credentials struct {
	Cookies   []*http.Cookie
	CSRFToken string
}

type credentialsKey struct{}

// ContextWithCredentials returns a context whose requests are authenticated
// with creds by the Session middleware.
func ContextWithCredentials(ctx context.Context, creds *Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, creds)
}

// CredentialsFromContext returns the credentials attached to ctx, if any.
func CredentialsFromContext(ctx context.Context) (*Credentials, bool) {
	creds, ok := ctx.Value(credentialsKey{}).(*Credentials)
	return creds, ok && creds != nil
}

// Session returns a middleware that authenticates each request with the
// credentials carried in its context and asks for JSON responses.
// Requests without credentials (the login call itself) pass through
// with only the Accept header set.
func Session() func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return &sessionTransport{next: next}
	}
}

type sessionTransport struct {
	next http.RoundTripper
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone request to avoid modifying original
	req = cloneRequest(req)

	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	if creds, ok := CredentialsFromContext(req.Context()); ok {
		for _, cookie := range creds.Cookies {
			req.AddCookie(cookie)
		}
		if creds.CSRFToken != "" {
			req.Header.Set(CSRFHeader, creds.CSRFToken)
		}
	}

	//nolint:wrapcheck // Middleware passes through errors from next handler in chain
	return t.next.RoundTrip(req)
}

// cloneRequest creates a shallow copy of the request with a cloned header map.
func cloneRequest(req *http.Request) *http.Request {
	r := new(http.Request)
	*r = *req
	r.Header = make(http.Header, len(req.Header))
	maps.Copy(r.Header, req.Header)
	return r
}
