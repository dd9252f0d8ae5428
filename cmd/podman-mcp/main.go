package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rimaleon/podman-mcp/internal/api"
	"github.com/rimaleon/podman-mcp/internal/config"
	"github.com/rimaleon/podman-mcp/internal/logger"
	"github.com/rimaleon/podman-mcp/internal/mcp"
	"github.com/rimaleon/podman-mcp/internal/podman"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	transport := flag.String("transport", "", "MCP transport (stdio or sse), overrides config")
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr) // stdout belongs to the stdio transport
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	appConfig, err := config.LoadConfig(*configPath, log)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *transport != "" {
		appConfig.Server.Transport = *transport
	}

	level := *logLevel
	if level == "" {
		level = appConfig.Logging.Level
	}
	logLevelValue, err := logrus.ParseLevel(level)
	if err != nil {
		log.Warnf("Invalid log level: %s, using 'info'", level)
		logLevelValue = logrus.InfoLevel
	}
	log.SetLevel(logLevelValue)
	if appConfig.Logging.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	activity := logger.NewActivityHook(100)
	log.AddHook(activity)

	log.Infof("Starting %s %s...", appConfig.Server.Name, appConfig.Server.Version)

	podmanBinary, err := resolveBinary(appConfig.Podman.Binary)
	if err != nil {
		log.Fatalf("%v", err)
	}
	composeBinary, err := resolveBinary(appConfig.Podman.ComposeBinary)
	if err != nil {
		// Compose deployments will fail with EngineNotFound; the other
		// three operations still work.
		log.Warnf("%v", err)
		composeBinary = appConfig.Podman.ComposeBinary
	}

	service := podman.NewService(podman.ServiceConfig{
		PodmanBinary:    podmanBinary,
		ComposeBinary:   composeBinary,
		Timeout:         appConfig.Podman.Timeout,
		MaxOutputBytes:  appConfig.Limits.MaxOutputBytes,
		MaxComposeBytes: appConfig.Limits.MaxComposeBytes,
		ComposeDir:      appConfig.Podman.ComposeDir,
	}, podman.NewCLIExecutor(log), log)

	mcpServer, err := mcp.NewMCPServer(mcp.ServerConfig{
		Name:        appConfig.Server.Name,
		Version:     appConfig.Server.Version,
		Transport:   mcp.Transport(appConfig.Server.Transport),
		Logger:      log,
		EnableTools: true,
	})
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	tools := mcp.NewContainerTools(service, log)
	tools.RegisterAll(mcpServer)

	apiServer := api.NewAPIServer(service, activity, &appConfig.HTTP, log)
	if err := apiServer.Start(); err != nil {
		log.Fatalf("Failed to start HTTP API: %v", err)
	}

	switch mcp.Transport(appConfig.Server.Transport) {
	case mcp.TransportSTDIO:
		if err := mcpServer.ServeStdio(); err != nil {
			log.Fatalf("MCP stdio server error: %v", err)
		}
	case mcp.TransportSSE:
		if err := mcpServer.StartSSE(fmt.Sprintf(":%d", appConfig.Server.SSEPort)); err != nil {
			log.Fatalf("Failed to start MCP SSE server: %v", err)
		}

		log.Info("Server running. Press Ctrl+C to stop.")
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mcpServer.Shutdown(ctx); err != nil {
			log.Errorf("MCP server shutdown error: %v", err)
		}
	default:
		log.Fatalf("Unknown transport: %s", appConfig.Server.Transport)
	}

	if err := apiServer.Shutdown(); err != nil {
		log.Errorf("%v", err)
	}

	log.Info("Shutdown complete")
}

// resolveBinary locates a configured engine binary. Explicit paths are used
// as-is; bare names are resolved on PATH once, at startup.
func resolveBinary(name string) (string, error) {
	if strings.ContainsRune(name, os.PathSeparator) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("engine binary %q not accessible: %w", name, err)
		}
		return name, nil
	}
	return podman.LookupBinary(name)
}
