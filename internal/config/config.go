package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(path string, logger *logrus.Logger) (*AppConfig, error) {
	config := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Warnf("Configuration file %s not found, using defaults", path)
		applyEnvironmentOverrides(config)
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration
	configString := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(configString), config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvironmentOverrides(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// validateConfig checks if the configuration is valid.
func validateConfig(config *AppConfig) error {
	if config.Server.Name == "" {
		return fmt.Errorf("server name cannot be empty")
	}

	switch config.Server.Transport {
	case "stdio", "sse":
	default:
		return fmt.Errorf("server transport must be 'stdio' or 'sse', got '%s'", config.Server.Transport)
	}

	if config.Server.Transport == "sse" && config.Server.SSEPort <= 0 {
		return fmt.Errorf("server.sse_port must be set when transport is 'sse'")
	}

	if config.Podman.Binary == "" {
		return fmt.Errorf("podman.binary cannot be empty")
	}
	if config.Podman.ComposeBinary == "" {
		return fmt.Errorf("podman.compose_binary cannot be empty")
	}
	if config.Podman.Timeout <= 0 {
		return fmt.Errorf("podman.timeout must be positive")
	}

	if config.Limits.MaxOutputBytes < 0 || config.Limits.MaxComposeBytes < 0 {
		return fmt.Errorf("limits cannot be negative")
	}

	if config.HTTP.Enabled && config.HTTP.Port <= 0 {
		return fmt.Errorf("http.port must be set when the HTTP API is enabled")
	}

	return nil
}

// applyEnvironmentOverrides applies environment variable overrides to the
// configuration.
func applyEnvironmentOverrides(config *AppConfig) {
	if name := os.Getenv("PODMAN_MCP_NAME"); name != "" {
		config.Server.Name = name
	}
	if transport := os.Getenv("PODMAN_MCP_TRANSPORT"); transport != "" {
		config.Server.Transport = transport
	}
	if portStr := os.Getenv("PODMAN_MCP_SSE_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err != nil {
			logrus.Warnf("Invalid PODMAN_MCP_SSE_PORT: %s", portStr)
		} else {
			config.Server.SSEPort = port
		}
	}

	if binary := os.Getenv("PODMAN_MCP_BINARY"); binary != "" {
		config.Podman.Binary = binary
	}
	if binary := os.Getenv("PODMAN_MCP_COMPOSE_BINARY"); binary != "" {
		config.Podman.ComposeBinary = binary
	}
	if timeoutStr := os.Getenv("PODMAN_MCP_TIMEOUT"); timeoutStr != "" {
		if timeout, err := time.ParseDuration(timeoutStr); err != nil {
			logrus.Warnf("Invalid PODMAN_MCP_TIMEOUT: %s", timeoutStr)
		} else {
			config.Podman.Timeout = timeout
		}
	}

	config.HTTP.Enabled = boolFromEnv("PODMAN_MCP_HTTP_ENABLED", config.HTTP.Enabled)
	if portStr := os.Getenv("PODMAN_MCP_HTTP_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err != nil {
			logrus.Warnf("Invalid PODMAN_MCP_HTTP_PORT: %s", portStr)
		} else {
			config.HTTP.Port = port
		}
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// boolFromEnv converts an environment variable to a boolean.
// "true", "yes", "1", "on" are considered true (case-insensitive).
func boolFromEnv(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	switch strings.ToLower(val) {
	case "true", "yes", "1", "on":
		return true
	default:
		return false
	}
}
