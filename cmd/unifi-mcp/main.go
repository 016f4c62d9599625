// Command unifi-mcp serves the UniFi Network controller as MCP tools over
// stdio. Logs go to stderr; stdout carries the MCP protocol.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lexfrei/unifi-mcp/api/network"
	"github.com/lexfrei/unifi-mcp/internal/config"
	"github.com/lexfrei/unifi-mcp/internal/tools"
	"github.com/lexfrei/unifi-mcp/observability"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "unifi-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to YAML config file (or use "+config.ConfigPathEnvVar+" env)")
	envFile := flag.String("env", ".env", "Path to .env file")
	flag.Parse()

	cfg, err := config.Load(config.Options{ConfigPath: *configPath, EnvFile: *envFile})
	if err != nil {
		return err
	}

	logger, err := observability.NewZerolog(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	clientConfig := cfg.Controller.ClientConfig()
	clientConfig.Logger = logger
	clientConfig.Metrics = observability.NewPrometheusRecorder(reg)

	client, err := network.NewWithConfig(clientConfig)
	if err != nil {
		return errors.Wrap(err, "failed to create controller client")
	}

	if cfg.Metrics.Addr != "" {
		metricsServer := serveMetrics(cfg.Metrics.Addr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	s := server.NewMCPServer(
		"unifi-mcp",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	tools.New(client, logger, tools.NewMetrics(reg)).Register(s)

	logger.Info("starting MCP server",
		observability.F("version", version),
		observability.F("controller", cfg.Controller.URL),
		observability.F("site", cfg.Controller.Site),
		observability.F("os_device", cfg.Controller.IsOSDevice),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ServeStdio(s)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-errCh:
		if err != nil {
			logger.Error("MCP server stopped", observability.F("error", err))
		}
	}

	logoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	client.Logout(logoutCtx)

	return errors.Wrap(err, "MCP server failed")
}

func serveMetrics(addr string, reg *prometheus.Registry, logger observability.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("serving metrics", observability.F("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", observability.F("error", err))
		}
	}()

	return srv
}
