package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads and restores them after the test.
func clearEnv(t *testing.T) {
	t.Helper()

	for key := range envKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv(ConfigPathEnvVar, "")
	require.NoError(t, os.Unsetenv(ConfigPathEnvVar))
}

func setRequired(t *testing.T) {
	t.Helper()

	t.Setenv("UNIFI_HOST", "https://192.168.1.1")
	t.Setenv("UNIFI_USERNAME", "admin")
	t.Setenv("UNIFI_PASSWORD", "s3cret")
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	setRequired(t)

	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, "https://192.168.1.1", cfg.Controller.URL)
	assert.Equal(t, "admin", cfg.Controller.Username)
	assert.Equal(t, "default", cfg.Controller.Site)
	assert.True(t, cfg.Controller.VerifySSL)
	assert.False(t, cfg.Controller.IsOSDevice)
	assert.Equal(t, 30*time.Second, cfg.Controller.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Controller.ConnectTimeout)
	assert.Equal(t, 1000, cfg.Controller.RateLimit)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Metrics.Addr)
}

func TestLoadEnvironment(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("UNIFI_SITE", "lab")
	t.Setenv("UNIFI_VERIFY_SSL", "false")
	t.Setenv("UNIFI_IS_OS_DEVICE", "true")
	t.Setenv("UNIFI_TIMEOUT", "45s")
	t.Setenv("UNIFI_CONNECT_TIMEOUT", "3s")
	t.Setenv("UNIFI_RATE_LIMIT", "-1")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("METRICS_ADDR", "127.0.0.1:9090")

	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, "lab", cfg.Controller.Site)
	assert.False(t, cfg.Controller.VerifySSL)
	assert.True(t, cfg.Controller.IsOSDevice)
	assert.Equal(t, 45*time.Second, cfg.Controller.Timeout)
	assert.Equal(t, 3*time.Second, cfg.Controller.ConnectTimeout)
	assert.Equal(t, -1, cfg.Controller.RateLimit)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "127.0.0.1:9090", cfg.Metrics.Addr)

	cc := cfg.Controller.ClientConfig()
	assert.True(t, cc.InsecureSkipVerify)
	assert.True(t, cc.IsOSDevice)
	assert.Equal(t, "lab", cc.Site)
	assert.Equal(t, -1, cc.RateLimitPerMinute)
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)

	yamlPath := writeFile(t, "config.yaml", `
controller:
  url: https://from-yaml.local
  username: yaml-user
  password: yaml-pass
  site: yaml-site
  timeout: 20s
log:
  level: warn
`)
	envPath := writeFile(t, ".env", "UNIFI_USERNAME=dotenv-user\nUNIFI_SITE=dotenv-site\n")

	t.Setenv("UNIFI_SITE", "env-site")

	cfg, err := Load(Options{ConfigPath: yamlPath, EnvFile: envPath})
	require.NoError(t, err)

	assert.Equal(t, "https://from-yaml.local", cfg.Controller.URL, "yaml over defaults")
	assert.Equal(t, "yaml-pass", cfg.Controller.Password)
	assert.Equal(t, 20*time.Second, cfg.Controller.Timeout)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "dotenv-user", cfg.Controller.Username, ".env over yaml")
	assert.Equal(t, "env-site", cfg.Controller.Site, "environment over .env")
	assert.Equal(t, 10*time.Second, cfg.Controller.ConnectTimeout, "untouched defaults survive")
}

func TestLoadConfigPathFromEnvironment(t *testing.T) {
	clearEnv(t)
	setRequired(t)

	path := writeFile(t, "unifi.yaml", "controller:\n  is_os_device: true\n")
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.True(t, cfg.Controller.IsOSDevice)
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	clearEnv(t)
	setRequired(t)

	_, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)
}

func TestLoadMissingConfigFile(t *testing.T) {
	clearEnv(t)
	setRequired(t)

	_, err := Load(Options{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config file")
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing host",
			env:     map[string]string{"UNIFI_USERNAME": "admin", "UNIFI_PASSWORD": "s3cret"},
			wantErr: "Controller.URL",
		},
		{
			name:    "host without scheme",
			env:     map[string]string{"UNIFI_HOST": "unifi.local", "UNIFI_USERNAME": "admin", "UNIFI_PASSWORD": "s3cret"},
			wantErr: "Controller.URL",
		},
		{
			name:    "missing username",
			env:     map[string]string{"UNIFI_HOST": "https://192.168.1.1", "UNIFI_PASSWORD": "s3cret"},
			wantErr: "Controller.Username",
		},
		{
			name:    "missing password",
			env:     map[string]string{"UNIFI_HOST": "https://192.168.1.1", "UNIFI_USERNAME": "admin"},
			wantErr: "Controller.Password",
		},
		{
			name: "bad log level",
			env: map[string]string{
				"UNIFI_HOST": "https://192.168.1.1", "UNIFI_USERNAME": "admin", "UNIFI_PASSWORD": "s3cret",
				"LOG_LEVEL": "verbose",
			},
			wantErr: "Log.Level",
		},
		{
			name: "bad metrics address",
			env: map[string]string{
				"UNIFI_HOST": "https://192.168.1.1", "UNIFI_USERNAME": "admin", "UNIFI_PASSWORD": "s3cret",
				"METRICS_ADDR": "not an address",
			},
			wantErr: "Metrics.Addr",
		},
		{
			name: "zero timeout",
			env: map[string]string{
				"UNIFI_HOST": "https://192.168.1.1", "UNIFI_USERNAME": "admin", "UNIFI_PASSWORD": "s3cret",
				"UNIFI_TIMEOUT": "0s",
			},
			wantErr: "Controller.Timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(Options{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.NotContains(t, err.Error(), "s3cret")
		})
	}
}

func TestControllerConfigStringRedactsPassword(t *testing.T) {
	t.Parallel()

	c := ControllerConfig{URL: "https://192.168.1.1", Username: "admin", Password: "s3cret"}

	assert.NotContains(t, c.String(), "s3cret")
	assert.Contains(t, c.String(), "[REDACTED]")
}
