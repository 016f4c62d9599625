package network

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/api/auth/login", LoginPath(true))
	assert.Equal(t, "/api/login", LoginPath(false))
}

func TestLogoutPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/api/auth/logout", LogoutPath(true))
	assert.Equal(t, "/api/logout", LogoutPath(false))
}

func TestSelfPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/proxy/network/api/self", SelfPath(true))
	assert.Equal(t, "/api/self", SelfPath(false))
}

func TestSitePath(t *testing.T) {
	t.Parallel()

	sites := []string{"default", "x7k2m9p1", "branch-office"}
	suffixes := []string{"stat/device", "stat/sta", "rest/user", "cmd/stamgr", "cmd/devmgr", "stat/health", "rest/networkconf", "/stat/device"}

	for _, site := range sites {
		for _, suffix := range suffixes {
			osPath := SitePath(true, site, suffix)
			assert.True(t, strings.HasPrefix(osPath, "/proxy/network/api/s/"+site+"/"), osPath)

			std := SitePath(false, site, suffix)
			assert.True(t, strings.HasPrefix(std, "/api/s/"+site+"/"), std)
			assert.NotContains(t, std, "/proxy/network")
			assert.NotContains(t, std, "//")
		}
	}
}

func TestSitePathEscapesSite(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/api/s/a%2Fb/stat/device", SitePath(false, "a/b", "stat/device"))
}

func TestSitesPathNeverPrefixed(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/api/self/sites", SitesPath)
	assert.NotContains(t, SitesPath, "/api/s/")
}
