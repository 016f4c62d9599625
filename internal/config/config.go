// Package config loads the server configuration from layered sources:
//
//  1. built-in defaults
//  2. an optional YAML file (-config flag or UNIFI_MCP_CONFIG)
//  3. an optional .env file, which never overrides variables already set
//  4. environment variables
//
// Later layers win.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/lexfrei/unifi-mcp/api/network"
)

// ConfigPathEnvVar names the YAML config file when no path is given.
const ConfigPathEnvVar = "UNIFI_MCP_CONFIG"

// Config is the complete server configuration.
type Config struct {
	Controller ControllerConfig `koanf:"controller"`
	Log        LogConfig        `koanf:"log"`
	Metrics    MetricsConfig    `koanf:"metrics"`
}

// ControllerConfig describes how to reach and log in to the controller.
type ControllerConfig struct {
	URL            string        `koanf:"url"             validate:"required,url"`
	Username       string        `koanf:"username"        validate:"required"`
	Password       string        `koanf:"password"        validate:"required"`
	Site           string        `koanf:"site"            validate:"required"`
	VerifySSL      bool          `koanf:"verify_ssl"`
	IsOSDevice     bool          `koanf:"is_os_device"`
	Timeout        time.Duration `koanf:"timeout"         validate:"gt=0"`
	ConnectTimeout time.Duration `koanf:"connect_timeout" validate:"gt=0"`

	// RateLimit is in requests per minute; zero means the client default and
	// a negative value disables the limiter.
	RateLimit int `koanf:"rate_limit"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `koanf:"level"  validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// MetricsConfig enables the Prometheus listener when Addr is set.
type MetricsConfig struct {
	Addr string `koanf:"addr" validate:"omitempty,hostname_port"`
}

// String hides the password.
func (c ControllerConfig) String() string {
	return "ControllerConfig{URL: " + c.URL + ", Username: " + c.Username + ", Password: [REDACTED], Site: " + c.Site + "}"
}

// ClientConfig converts the controller section into a client configuration.
func (c ControllerConfig) ClientConfig() *network.ClientConfig {
	return &network.ClientConfig{
		ControllerURL:      c.URL,
		Username:           c.Username,
		Password:           c.Password,
		Site:               c.Site,
		IsOSDevice:         c.IsOSDevice,
		InsecureSkipVerify: !c.VerifySSL,
		Timeout:            c.Timeout,
		ConnectTimeout:     c.ConnectTimeout,
		RateLimitPerMinute: c.RateLimit,
	}
}

func defaultConfig() *Config {
	return &Config{
		Controller: ControllerConfig{
			Site:           network.DefaultSite,
			VerifySSL:      true,
			Timeout:        network.DefaultTimeout,
			ConnectTimeout: network.DefaultConnectTimeout,
			RateLimit:      network.DefaultRateLimit,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// envKeys maps the supported environment variables to config paths.
var envKeys = map[string]string{
	"UNIFI_HOST":            "controller.url",
	"UNIFI_USERNAME":        "controller.username",
	"UNIFI_PASSWORD":        "controller.password",
	"UNIFI_SITE":            "controller.site",
	"UNIFI_VERIFY_SSL":      "controller.verify_ssl",
	"UNIFI_IS_OS_DEVICE":    "controller.is_os_device",
	"UNIFI_TIMEOUT":         "controller.timeout",
	"UNIFI_CONNECT_TIMEOUT": "controller.connect_timeout",
	"UNIFI_RATE_LIMIT":      "controller.rate_limit",
	"LOG_LEVEL":             "log.level",
	"LOG_FORMAT":            "log.format",
	"METRICS_ADDR":          "metrics.addr",
}

// envTransformFunc maps an environment variable to its config path. Unknown
// variables map to "" and are ignored.
func envTransformFunc(key string) string {
	return envKeys[key]
}

// Options controls where Load looks for configuration files.
type Options struct {
	// ConfigPath is the YAML file to read. When empty, UNIFI_MCP_CONFIG is
	// consulted; when both are empty no file is read.
	ConfigPath string

	// EnvFile is the .env file to read. A missing file is not an error.
	EnvFile string
}

// Load builds the configuration from every layer and validates it.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(err, "failed to load env file %s", opts.EnvFile)
		}
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load defaults")
	}

	path := opts.ConfigPath
	if path == "" {
		path = os.Getenv(ConfigPathEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", path)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load environment variables")
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal configuration")
	}

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields and value ranges. Error messages name the
// offending field but never include its value.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "configuration validation failed")
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fe.Namespace()+": failed "+fe.Tag())
	}

	return errors.Newf("configuration validation failed: %s", strings.Join(problems, "; "))
}
