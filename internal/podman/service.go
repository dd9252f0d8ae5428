package podman

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ServiceConfig carries the injected execution environment: binary
// locations, bounds, and the scratch area for compose documents. Nothing is
// read from ambient process state at dispatch time.
type ServiceConfig struct {
	// PodmanBinary is the resolved path of the engine executable.
	PodmanBinary string
	// ComposeBinary is the resolved path of the compose tool.
	ComposeBinary string
	// Timeout bounds each child-process invocation.
	Timeout time.Duration
	// MaxOutputBytes caps stdout/stderr surfaced to callers.
	MaxOutputBytes int
	// MaxComposeBytes caps the accepted compose document size.
	MaxComposeBytes int
	// ComposeDir is where transient compose files are materialized.
	// Defaults to the OS temp directory.
	ComposeDir string
}

// Service implements the four container operations, each a fixed pipeline
// of build, execute, normalize. It holds no state between dispatch calls;
// the engine daemon is the sole source of truth for container state.
type Service struct {
	config   ServiceConfig
	executor Executor
	logger   *logrus.Logger
}

// NewService creates a Service around an Executor. Pass a fake Executor in
// tests to avoid spawning processes.
func NewService(config ServiceConfig, executor Executor, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	if config.ComposeDir == "" {
		config.ComposeDir = os.TempDir()
	}
	return &Service{
		config:   config,
		executor: executor,
		logger:   logger,
	}
}

// Dispatch validates the request, selects the handler by operation name,
// and returns the normalized result. Every failure path terminates in a
// ToolResult with IsError set; nothing propagates to the transport layer
// as an uncaught fault.
func (s *Service) Dispatch(ctx context.Context, operation string, args map[string]interface{}) ToolResult {
	if args == nil {
		args = map[string]interface{}{}
	}

	log := s.logger.WithFields(logrus.Fields{"tool": operation})
	log.Info("Dispatching tool call")

	var result ToolResult
	switch Operation(operation) {
	case OpCreateContainer:
		result = s.CreateContainer(ctx, args)
	case OpDeployCompose:
		result = s.DeployCompose(ctx, args)
	case OpGetLogs:
		result = s.GetLogs(ctx, args)
	case OpListContainers:
		result = s.ListContainers(ctx, args)
	default:
		result = errorResult(Errorf(KindUnknownOperation, "unknown operation %q", operation))
	}

	if result.IsError {
		log.WithField("error_kind", result.ErrorKind).Warn("Tool call failed")
	} else {
		log.Info("Tool call succeeded")
	}
	return result
}

// CreateContainer handles the create-container operation.
func (s *Service) CreateContainer(ctx context.Context, args map[string]interface{}) ToolResult {
	spec, err := decodeContainerSpec(args)
	if err != nil {
		return errorResult(err)
	}

	argv, err := BuildRunArgs(spec)
	if err != nil {
		return errorResult(err)
	}

	res, err := s.executor.Run(ctx, s.config.PodmanBinary, argv, s.config.Timeout)
	if err != nil {
		return errorResult(err)
	}
	return normalizeCreate(spec, res, s.config.MaxOutputBytes)
}

// DeployCompose handles the deploy-compose operation. The compose document
// is validated, written to a uniquely named transient file, and removed on
// every exit path including invocation failure and timeout.
func (s *Service) DeployCompose(ctx context.Context, args map[string]interface{}) ToolResult {
	spec, err := decodeComposeSpec(args)
	if err != nil {
		return errorResult(err)
	}

	if max := s.config.MaxComposeBytes; max > 0 && len(spec.ComposeYAML) > max {
		return errorResult(Errorf(KindInvalidParameters,
			"compose document is %d bytes, exceeding the %d byte limit", len(spec.ComposeYAML), max))
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal([]byte(spec.ComposeYAML), &doc); err != nil {
		return errorResult(Errorf(KindInvalidParameters, "invalid compose YAML: %v", err))
	}
	if len(doc) == 0 {
		return errorResult(Errorf(KindInvalidParameters, "compose document is empty"))
	}

	composePath, cleanup, err := s.writeComposeFile(spec)
	if err != nil {
		return errorResult(err)
	}
	defer cleanup()

	return s.deployStack(ctx, spec, composePath)
}

func (s *Service) deployStack(ctx context.Context, spec ComposeSpec, composePath string) ToolResult {
	// Best-effort teardown of a previous generation of the stack. Failure
	// here is logged and ignored; `up` is the authoritative step.
	if downArgs, err := BuildComposeArgs(composePath, spec.ProjectName, "down"); err == nil {
		if _, err := s.executor.Run(ctx, s.config.ComposeBinary, downArgs, s.config.Timeout); err != nil {
			s.logger.WithField("project", spec.ProjectName).Warnf("compose down before deploy failed: %v", err)
		}
	}

	upArgs, err := BuildComposeArgs(composePath, spec.ProjectName, "up", "-d")
	if err != nil {
		return errorResult(err)
	}
	res, err := s.executor.Run(ctx, s.config.ComposeBinary, upArgs, s.config.Timeout)
	if err != nil {
		return errorResult(err)
	}
	if res.ExitCode != 0 {
		return normalizeCompose(spec, res, "", s.config.MaxOutputBytes)
	}

	// Best-effort service listing for the confirmation message.
	serviceListing := "(unable to list services)"
	if psArgs, err := BuildComposeArgs(composePath, spec.ProjectName, "ps"); err == nil {
		if psRes, err := s.executor.Run(ctx, s.config.ComposeBinary, psArgs, s.config.Timeout); err == nil && psRes.ExitCode == 0 {
			serviceListing = string(psRes.Stdout)
		}
	}

	return normalizeCompose(spec, res, serviceListing, s.config.MaxOutputBytes)
}

// writeComposeFile materializes the compose document under a name unique to
// this request, so concurrent deployments cannot collide. The returned
// cleanup removes the file unconditionally.
func (s *Service) writeComposeFile(spec ComposeSpec) (string, func(), error) {
	if err := os.MkdirAll(s.config.ComposeDir, 0o755); err != nil {
		return "", nil, Errorf(KindEngineOperationFailed, "failed to create compose directory: %v", err)
	}

	name := fmt.Sprintf("%s-%s-compose.yml", spec.ProjectName, uuid.NewString())
	path := filepath.Join(s.config.ComposeDir, name)

	if err := os.WriteFile(path, []byte(spec.ComposeYAML), 0o644); err != nil {
		return "", nil, Errorf(KindEngineOperationFailed, "failed to write compose file: %v", err)
	}

	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warnf("failed to remove compose file %s: %v", path, err)
		}
	}
	return path, cleanup, nil
}

// GetLogs handles the get-logs operation.
func (s *Service) GetLogs(ctx context.Context, args map[string]interface{}) ToolResult {
	query, err := decodeLogQuery(args)
	if err != nil {
		return errorResult(err)
	}

	argv, err := BuildLogsArgs(query)
	if err != nil {
		return errorResult(err)
	}

	res, err := s.executor.Run(ctx, s.config.PodmanBinary, argv, s.config.Timeout)
	if err != nil {
		return errorResult(err)
	}
	return normalizeLogs(query, res, s.config.MaxOutputBytes)
}

// ListContainers handles the list-containers operation.
func (s *Service) ListContainers(ctx context.Context, args map[string]interface{}) ToolResult {
	if err := decodeListQuery(args); err != nil {
		return errorResult(err)
	}

	res, err := s.executor.Run(ctx, s.config.PodmanBinary, BuildListArgs(), s.config.Timeout)
	if err != nil {
		return errorResult(err)
	}
	return normalizeList(res, s.config.MaxOutputBytes)
}
