package mcp

import (
	"context"
	"fmt"
	"sync"

	mcpTypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

// Transport identifies how the MCP server talks to its host.
type Transport string

const (
	TransportSTDIO Transport = "stdio"
	TransportSSE   Transport = "sse"
)

// ServerConfig configures the MCP server wrapper.
type ServerConfig struct {
	Name            string
	Version         string
	Transport       Transport
	Logger          *logrus.Logger
	EnableTools     bool
	EnableResources bool
	EnablePrompts   bool
}

// MCPServer wraps the mark3labs MCP server with handler bookkeeping and
// transport lifecycle. The outer protocol's wire framing, handshake and
// session negotiation are owned entirely by the underlying library.
type MCPServer struct {
	config    ServerConfig
	server    *server.MCPServer
	sseServer *server.SSEServer
	logger    *logrus.Logger

	mutex    sync.RWMutex
	handlers map[string]server.ToolHandlerFunc
}

// NewMCPServer creates a new MCP server wrapper.
func NewMCPServer(config ServerConfig) (*MCPServer, error) {
	if config.Name == "" {
		return nil, fmt.Errorf("server name is required")
	}
	if config.Version == "" {
		config.Version = "1.0.0"
	}
	logger := config.Logger
	if logger == nil {
		logger = logrus.New()
	}

	var opts []server.ServerOption
	if config.EnableTools {
		opts = append(opts, server.WithToolCapabilities(true))
	}
	if config.EnableResources {
		opts = append(opts, server.WithResourceCapabilities(true, true))
	}
	if config.EnablePrompts {
		opts = append(opts, server.WithPromptCapabilities(true))
	}
	opts = append(opts, server.WithRecovery())

	s := server.NewMCPServer(config.Name, config.Version, opts...)

	return &MCPServer{
		config:   config,
		server:   s,
		logger:   logger,
		handlers: make(map[string]server.ToolHandlerFunc),
	}, nil
}

// AddTool registers a tool and its handler.
func (s *MCPServer) AddTool(tool mcpTypes.Tool, handler server.ToolHandlerFunc) {
	s.mutex.Lock()
	s.handlers[tool.Name] = handler
	s.mutex.Unlock()

	s.server.AddTool(tool, handler)
	s.logger.Debugf("Registered MCP tool: %s", tool.Name)
}

// FindToolHandler returns the registered handler for a tool name, or nil.
func (s *MCPServer) FindToolHandler(name string) server.ToolHandlerFunc {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.handlers[name]
}

// ToolNames returns the names of all registered tools.
func (s *MCPServer) ToolNames() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	names := make([]string, 0, len(s.handlers))
	for name := range s.handlers {
		names = append(names, name)
	}
	return names
}

// ServeStdio serves the MCP protocol over stdin/stdout. Blocks until the
// host closes the stream.
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("Serving MCP over stdio")
	return server.ServeStdio(s.server)
}

// StartSSE starts the SSE transport on addr in a background goroutine.
func (s *MCPServer) StartSSE(addr string) error {
	if s.sseServer != nil {
		return fmt.Errorf("SSE server already started")
	}
	s.sseServer = server.NewSSEServer(s.server)

	go func() {
		if err := s.sseServer.Start(addr); err != nil {
			s.logger.Errorf("SSE server error: %v", err)
		}
	}()

	s.logger.Infof("MCP SSE server listening on %s", addr)
	return nil
}

// Shutdown stops the SSE transport if it is running.
func (s *MCPServer) Shutdown(ctx context.Context) error {
	if s.sseServer == nil {
		return nil
	}
	return s.sseServer.Shutdown(ctx)
}
