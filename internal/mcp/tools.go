package mcp

import (
	"context"

	mcpTypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/rimaleon/podman-mcp/internal/podman"
)

// ContainerTools exposes the container-engine operations as MCP tools. Each
// tool is a declaration plus a handler delegating to the podman service
// dispatcher; the dispatcher guarantees every failure comes back as a
// structured result, so handlers never return a Go error to the transport.
type ContainerTools struct {
	service *podman.Service
	logger  *logrus.Logger
}

func NewContainerTools(service *podman.Service, logger *logrus.Logger) *ContainerTools {
	if logger == nil {
		logger = logrus.New()
	}
	return &ContainerTools{service: service, logger: logger}
}

// RegisterAll adds the four container tools to the server.
func (t *ContainerTools) RegisterAll(server *MCPServer) {
	server.AddTool(t.GetCreateContainerTool(), t.CreateContainerHandler)
	server.AddTool(t.GetDeployComposeTool(), t.DeployComposeHandler)
	server.AddTool(t.GetLogsTool(), t.GetLogsHandler)
	server.AddTool(t.GetListContainersTool(), t.ListContainersHandler)
}

func (t *ContainerTools) GetCreateContainerTool() mcpTypes.Tool {
	return mcpTypes.NewTool(string(podman.OpCreateContainer),
		mcpTypes.WithDescription("Create and start a new container from an image"),
		mcpTypes.WithString("image",
			mcpTypes.Required(),
			mcpTypes.Description("Container image to run, e.g. 'nginx:latest'"),
		),
		mcpTypes.WithString("name",
			mcpTypes.Description("Name for the container"),
		),
		mcpTypes.WithObject("ports",
			mcpTypes.Description("Port mappings, container port to host port, e.g. {\"80\": \"8080\"}"),
		),
		mcpTypes.WithObject("environment",
			mcpTypes.Description("Environment variables to set in the container"),
		),
	)
}

func (t *ContainerTools) CreateContainerHandler(ctx context.Context, req mcpTypes.CallToolRequest) (*mcpTypes.CallToolResult, error) {
	return t.dispatch(ctx, podman.OpCreateContainer, req)
}

func (t *ContainerTools) GetDeployComposeTool() mcpTypes.Tool {
	return mcpTypes.NewTool(string(podman.OpDeployCompose),
		mcpTypes.WithDescription("Deploy a multi-service stack from a compose document"),
		mcpTypes.WithString("project_name",
			mcpTypes.Required(),
			mcpTypes.Description("Project name for the compose stack"),
		),
		mcpTypes.WithString("compose_yaml",
			mcpTypes.Required(),
			mcpTypes.Description("Raw compose file content in YAML format"),
		),
	)
}

func (t *ContainerTools) DeployComposeHandler(ctx context.Context, req mcpTypes.CallToolRequest) (*mcpTypes.CallToolResult, error) {
	return t.dispatch(ctx, podman.OpDeployCompose, req)
}

func (t *ContainerTools) GetLogsTool() mcpTypes.Tool {
	return mcpTypes.NewTool(string(podman.OpGetLogs),
		mcpTypes.WithDescription("Fetch logs from a container"),
		mcpTypes.WithString("container_name",
			mcpTypes.Required(),
			mcpTypes.Description("Name or ID of the container"),
		),
	)
}

func (t *ContainerTools) GetLogsHandler(ctx context.Context, req mcpTypes.CallToolRequest) (*mcpTypes.CallToolResult, error) {
	return t.dispatch(ctx, podman.OpGetLogs, req)
}

func (t *ContainerTools) GetListContainersTool() mcpTypes.Tool {
	return mcpTypes.NewTool(string(podman.OpListContainers),
		mcpTypes.WithDescription("List all containers with their status"),
	)
}

func (t *ContainerTools) ListContainersHandler(ctx context.Context, req mcpTypes.CallToolRequest) (*mcpTypes.CallToolResult, error) {
	return t.dispatch(ctx, podman.OpListContainers, req)
}

func (t *ContainerTools) dispatch(ctx context.Context, op podman.Operation, req mcpTypes.CallToolRequest) (*mcpTypes.CallToolResult, error) {
	result := t.service.Dispatch(ctx, string(op), req.GetArguments())
	if result.IsError {
		return mcpTypes.NewToolResultError(string(result.ErrorKind) + ": " + result.Content), nil
	}
	return mcpTypes.NewToolResultText(result.Content), nil
}
