package podman

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"
)

// Executor runs an argument vector as a child process with a bounded
// lifetime. Implementations must pass arguments as a vector, never through
// a shell. The returned ExecutionResult covers every completed process
// including non-zero exits; the error return is reserved for spawn failures
// (EngineNotFound) and timeouts (ExecutionTimeout).
type Executor interface {
	Run(ctx context.Context, binary string, args []string, timeout time.Duration) (*ExecutionResult, error)
}

// CLIExecutor is the only component touching the OS. It launches the
// configured binary directly with exec, capturing stdout and stderr as
// separate streams.
type CLIExecutor struct {
	logger *logrus.Logger
}

// NewCLIExecutor creates an executor. The engine binary path is injected
// per call rather than read from ambient process state, so tests can
// substitute a fixture binary.
func NewCLIExecutor(logger *logrus.Logger) *CLIExecutor {
	if logger == nil {
		logger = logrus.New()
	}
	return &CLIExecutor{logger: logger}
}

// LookupBinary resolves name on PATH once, at startup. Returns an
// EngineNotFound error when the binary is missing so the failure is
// reported before the first request rather than during one.
func LookupBinary(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", Errorf(KindEngineNotFound, "engine binary %q not found: %v", name, err)
	}
	return path, nil
}

func (e *CLIExecutor) Run(ctx context.Context, binary string, args []string, timeout time.Duration) (*ExecutionResult, error) {
	runCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger.WithFields(logrus.Fields{
		"binary": binary,
		"args":   args,
	}).Debug("Executing engine command")

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	if err != nil {
		// A process that won the race and exited cleanly at the boundary is
		// reported normally; only a killed child counts as a timeout.
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, Errorf(KindExecutionTimeout, "command timed out after %s", timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExecutionResult{
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.Bytes(),
				Stderr:   stderr.Bytes(),
				Duration: duration,
			}, nil
		}
		return nil, Errorf(KindEngineNotFound, "failed to launch %q: %v", binary, err)
	}

	return &ExecutionResult{
		ExitCode: 0,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: duration,
	}, nil
}
