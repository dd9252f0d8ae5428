package config

import "time"

// AppConfig is the main configuration structure for the server.
type AppConfig struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Podman  PodmanConfig  `yaml:"podman" json:"podman"`
	Limits  LimitsConfig  `yaml:"limits" json:"limits"`
	HTTP    HTTPConfig    `yaml:"http" json:"http"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ServerConfig contains MCP server identity and transport settings.
type ServerConfig struct {
	Name      string `yaml:"name" json:"name"`
	Version   string `yaml:"version" json:"version"`
	Transport string `yaml:"transport" json:"transport"` // "stdio" or "sse"
	SSEPort   int    `yaml:"sse_port" json:"sse_port"`
}

// PodmanConfig contains the container engine invocation settings. Binary
// names are resolved on PATH once at startup; absolute paths are used as-is.
type PodmanConfig struct {
	Binary        string        `yaml:"binary" json:"binary"`
	ComposeBinary string        `yaml:"compose_binary" json:"compose_binary"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
	ComposeDir    string        `yaml:"compose_dir" json:"compose_dir"`
}

// LimitsConfig bounds payload sizes so a noisy engine or oversized compose
// document cannot exhaust memory.
type LimitsConfig struct {
	MaxOutputBytes  int `yaml:"max_output_bytes" json:"max_output_bytes"`
	MaxComposeBytes int `yaml:"max_compose_bytes" json:"max_compose_bytes"`
}

// HTTPConfig contains the management HTTP API settings.
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Host    string `yaml:"host" json:"host"`
	Port    int    `yaml:"port" json:"port"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"` // "text" or "json"
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Name:      "podman-mcp",
			Version:   "1.0.0",
			Transport: "stdio",
			SSEPort:   8090,
		},
		Podman: PodmanConfig{
			Binary:        "podman",
			ComposeBinary: "podman-compose",
			Timeout:       200 * time.Second,
		},
		Limits: LimitsConfig{
			MaxOutputBytes:  64 * 1024,
			MaxComposeBytes: 512 * 1024,
		},
		HTTP: HTTPConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    8091,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
