package podman

import (
	"errors"
	"time"
)

// Operation names the four tool operations this server dispatches. The set
// is closed; Dispatch rejects anything else with UnknownOperation.
type Operation string

const (
	OpCreateContainer Operation = "create-container"
	OpDeployCompose   Operation = "deploy-compose"
	OpGetLogs         Operation = "get-logs"
	OpListContainers  Operation = "list-containers"
)

// Operations lists every supported operation in registration order.
var Operations = []Operation{
	OpCreateContainer,
	OpDeployCompose,
	OpGetLogs,
	OpListContainers,
}

// ContainerSpec is the validated payload of a create-container request.
// Ports maps container port to host port.
type ContainerSpec struct {
	Image       string
	Name        string
	Ports       map[string]string
	Environment map[string]string
}

// ComposeSpec is the validated payload of a deploy-compose request. The
// document is materialized to a transient file for the duration of one
// invocation and removed afterward.
type ComposeSpec struct {
	ProjectName string
	ComposeYAML string
}

// LogQuery is the validated payload of a get-logs request.
type LogQuery struct {
	ContainerName string
}

// ExecutionResult is the raw outcome of one child-process invocation. It is
// produced by the Executor and consumed only by the normalizer; it never
// crosses the boundary back to callers.
type ExecutionResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Container is one parsed record from the engine's list output.
type Container struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Image  string `json:"image"`
	Status string `json:"status"`
	Ports  string `json:"ports"`
}

// ToolResult is the only type returned to the transport layer. Every
// failure path terminates in one of these; nothing propagates uncaught.
type ToolResult struct {
	IsError    bool        `json:"is_error"`
	Content    string      `json:"content"`
	ErrorKind  ErrorKind   `json:"error_kind,omitempty"`
	Containers []Container `json:"containers,omitempty"`
}

func successResult(content string) ToolResult {
	return ToolResult{Content: content}
}

func errorResult(err error) ToolResult {
	content := err.Error()
	var perr *Error
	if errors.As(err, &perr) {
		content = perr.Message
	}
	return ToolResult{
		IsError:   true,
		Content:   content,
		ErrorKind: KindOf(err),
	}
}
