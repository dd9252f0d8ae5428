package mcp

import (
	"context"
	"testing"
	"time"

	mcpTypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rimaleon/podman-mcp/internal/podman"
)

// echoExecutor is a fixture engine that echoes its argument vector on
// stdout and exits 0.
type echoExecutor struct {
	calls [][]string
}

func (e *echoExecutor) Run(ctx context.Context, binary string, args []string, timeout time.Duration) (*podman.ExecutionResult, error) {
	e.calls = append(e.calls, args)
	out := ""
	for i, a := range args {
		if i > 0 {
			out += " "
		}
		out += a
	}
	return &podman.ExecutionResult{ExitCode: 0, Stdout: []byte(out)}, nil
}

// failingExecutor always returns exit 1 with the configured stderr.
type failingExecutor struct {
	stderr string
}

func (e *failingExecutor) Run(ctx context.Context, binary string, args []string, timeout time.Duration) (*podman.ExecutionResult, error) {
	return &podman.ExecutionResult{ExitCode: 1, Stderr: []byte(e.stderr)}, nil
}

func newTestTools(executor podman.Executor) *ContainerTools {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	service := podman.NewService(podman.ServiceConfig{
		PodmanBinary:   "podman",
		ComposeBinary:  "podman-compose",
		Timeout:        5 * time.Second,
		MaxOutputBytes: 64 * 1024,
	}, executor, logger)
	return NewContainerTools(service, logger)
}

func callRequest(name string, args map[string]interface{}) mcpTypes.CallToolRequest {
	return mcpTypes.CallToolRequest{
		Params: struct {
			Name      string         `json:"name"`
			Arguments interface{}    `json:"arguments,omitempty"`
			Meta      *mcpTypes.Meta `json:"_meta,omitempty"`
		}{
			Name:      name,
			Arguments: args,
		},
	}
}

func textOf(t *testing.T, result *mcpTypes.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	textContent, ok := result.Content[0].(mcpTypes.TextContent)
	require.True(t, ok, "result should contain text content")
	return textContent.Text
}

func TestCreateContainerHandler_Success(t *testing.T) {
	executor := &echoExecutor{}
	tools := newTestTools(executor)

	result, err := tools.CreateContainerHandler(context.Background(), callRequest("create-container", map[string]interface{}{
		"image": "nginx:latest",
		"ports": map[string]interface{}{"80": "8080"},
	}))

	require.NoError(t, err)
	assert.False(t, result.IsError)
	text := textOf(t, result)
	assert.Contains(t, text, "nginx:latest")

	require.Len(t, executor.calls, 1)
	assert.Equal(t, []string{"run", "-d", "-p", "8080:80", "nginx:latest"}, executor.calls[0])
}

func TestCreateContainerHandler_InvalidParams(t *testing.T) {
	executor := &echoExecutor{}
	tools := newTestTools(executor)

	result, err := tools.CreateContainerHandler(context.Background(), callRequest("create-container", map[string]interface{}{}))

	require.NoError(t, err, "handler must never return a raw error to the transport")
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), string(podman.KindInvalidParameters))
	assert.Empty(t, executor.calls)
}

func TestGetLogsHandler_ContainerNotFound(t *testing.T) {
	tools := newTestTools(&failingExecutor{stderr: "Error: no such container"})

	result, err := tools.GetLogsHandler(context.Background(), callRequest("get-logs", map[string]interface{}{
		"container_name": "missing",
	}))

	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), string(podman.KindContainerNotFound))
}

func TestListContainersHandler(t *testing.T) {
	executor := &listExecutor{output: "abc\tweb\tnginx\tUp 2 hours\t80->80/tcp\n"}
	tools := newTestTools(executor)

	result, err := tools.ListContainersHandler(context.Background(), callRequest("list-containers", nil))

	require.NoError(t, err)
	assert.False(t, result.IsError)
	text := textOf(t, result)
	assert.Contains(t, text, "web")
	assert.Contains(t, text, "nginx")
}

type listExecutor struct {
	output string
}

func (e *listExecutor) Run(ctx context.Context, binary string, args []string, timeout time.Duration) (*podman.ExecutionResult, error) {
	return &podman.ExecutionResult{ExitCode: 0, Stdout: []byte(e.output)}, nil
}

func TestRegisterAll(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	server, err := NewMCPServer(ServerConfig{
		Name:        "test-server",
		Version:     "1.0.0",
		Logger:      logger,
		EnableTools: true,
	})
	require.NoError(t, err)

	tools := newTestTools(&echoExecutor{})
	tools.RegisterAll(server)

	for _, op := range podman.Operations {
		assert.NotNil(t, server.FindToolHandler(string(op)), "handler for %s should be registered", op)
	}
	assert.Nil(t, server.FindToolHandler("restart-container"))
	assert.Len(t, server.ToolNames(), 4)
}
