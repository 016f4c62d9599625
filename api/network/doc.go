// Package network provides a Go client for the UniFi Network controller API
// used by the controller web UI (the legacy /api/s/{site} endpoints).
//
// # Controller flavors
//
// Two deployments are supported and selected with ClientConfig.IsOSDevice:
//
//   - Standard: the self-hosted Network application (usually port 8443).
//     Login is POST /api/login, business endpoints live under /api/s/{site}/.
//   - UniFi OS consoles (UDM, UDR, UCG, Cloud Key Gen2+). Login is
//     POST /api/auth/login and every Network path is prefixed with
//     /proxy/network. The console also issues a CSRF token that is sent back
//     on every request.
//
// The site listing (/api/self/sites) is never prefixed nor site-scoped.
//
// # Authentication
//
// The client logs in with a local admin account on first use and keeps the
// session cookie. When the controller answers 401/403 or
// api.err.LoginRequired, the client logs in again and resends the request
// exactly once; a second rejection is returned as ErrAuthentication.
// Concurrent calls share one login.
//
// # Errors
//
// Every error matches one of ErrConnection, ErrAuthentication, ErrController,
// ErrNotFound or ErrValidation with errors.Is. Controller failures also carry
// a *ControllerError with the HTTP status and the controller message:
//
//	devices, err := client.ListDevices(ctx)
//	var cerr *network.ControllerError
//	if errors.As(err, &cerr) {
//	    log.Printf("status %d: %s", cerr.StatusCode, cerr.Message)
//	}
//
// Transport errors are never retried.
//
// # Basic Usage
//
//	client, err := network.NewWithConfig(&network.ClientConfig{
//	    ControllerURL:      "https://192.168.1.1",
//	    Username:           "admin",
//	    Password:           "secret",
//	    IsOSDevice:         true,
//	    InsecureSkipVerify: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Logout(context.Background())
//
//	devices, err := client.ListDevices(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, d := range devices {
//	    fmt.Printf("%s %s %s\n", d.Name, d.Model, d.IP)
//	}
//
// # MAC addresses
//
// Commands accept MAC addresses with colons, dashes, dots or no separators,
// in any case. Malformed addresses fail with ErrValidation before any request
// is sent.
package network
