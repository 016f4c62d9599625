package network

import (
	"net/url"
	"strings"
)

// OSPathPrefix is prepended to every Network application path on UniFi OS
// consoles, except login and the site listing.
const OSPathPrefix = "/proxy/network"

// SitesPath lists the sites visible to the logged-in admin. It is neither
// site-scoped nor prefixed on UniFi OS.
const SitesPath = "/api/self/sites"

// LoginPath returns the login endpoint for a controller flavor.
func LoginPath(isOSDevice bool) string {
	if isOSDevice {
		return "/api/auth/login"
	}

	return "/api/login"
}

// LogoutPath returns the logout endpoint matching LoginPath.
func LogoutPath(isOSDevice bool) string {
	if isOSDevice {
		return "/api/auth/logout"
	}

	return "/api/logout"
}

// SelfPath returns the session check endpoint.
func SelfPath(isOSDevice bool) string {
	return pathPrefix(isOSDevice) + "/api/self"
}

// SitePath builds the path of a site-scoped endpoint:
// [/proxy/network]/api/s/{site}/{suffix}.
func SitePath(isOSDevice bool, site, suffix string) string {
	return pathPrefix(isOSDevice) + "/api/s/" + url.PathEscape(site) + "/" + strings.TrimPrefix(suffix, "/")
}

func pathPrefix(isOSDevice bool) string {
	if isOSDevice {
		return OSPathPrefix
	}

	return ""
}
