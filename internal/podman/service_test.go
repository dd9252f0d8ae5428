package podman

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecutor is a scripted Executor that never spawns a process. Each
// call consumes the next scripted step; extra calls reuse the last one.
type fakeExecutor struct {
	steps []fakeStep
	calls []fakeCall
}

type fakeStep struct {
	result *ExecutionResult
	err    error
	// onRun is invoked with the call before returning, for mid-pipeline
	// assertions such as temp-file existence.
	onRun func(call fakeCall)
}

type fakeCall struct {
	binary string
	args   []string
}

func (f *fakeExecutor) Run(ctx context.Context, binary string, args []string, timeout time.Duration) (*ExecutionResult, error) {
	call := fakeCall{binary: binary, args: args}
	f.calls = append(f.calls, call)

	step := fakeStep{result: &ExecutionResult{ExitCode: 0}}
	if len(f.steps) > 0 {
		step = f.steps[0]
		if len(f.steps) > 1 {
			f.steps = f.steps[1:]
		}
	}
	if step.onRun != nil {
		step.onRun(call)
	}
	return step.result, step.err
}

func newTestService(executor Executor) *Service {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewService(ServiceConfig{
		PodmanBinary:    "podman",
		ComposeBinary:   "podman-compose",
		Timeout:         5 * time.Second,
		MaxOutputBytes:  64 * 1024,
		MaxComposeBytes: 512 * 1024,
	}, executor, logger)
}

func TestDispatch_CreateContainer(t *testing.T) {
	exec := &fakeExecutor{steps: []fakeStep{
		{result: &ExecutionResult{ExitCode: 0, Stdout: []byte("abc123\n")}},
	}}
	service := newTestService(exec)

	result := service.Dispatch(context.Background(), "create-container", map[string]interface{}{
		"image": "nginx:latest",
		"name":  "web",
		"ports": map[string]interface{}{"80": "8080"},
	})

	assert.False(t, result.IsError)
	assert.Contains(t, result.Content, "web")
	assert.Contains(t, result.Content, "abc123")

	require.Len(t, exec.calls, 1)
	assert.Equal(t, "podman", exec.calls[0].binary)
	assert.Equal(t, []string{"run", "-d", "--name", "web", "-p", "8080:80", "nginx:latest"}, exec.calls[0].args)
}

func TestDispatch_InvalidParamsNeverSpawns(t *testing.T) {
	tests := []struct {
		name string
		op   string
		args map[string]interface{}
	}{
		{"missing image", "create-container", map[string]interface{}{}},
		{"bad port", "create-container", map[string]interface{}{
			"image": "nginx", "ports": map[string]interface{}{"80": "99999"},
		}},
		{"bad env name", "create-container", map[string]interface{}{
			"image": "nginx", "environment": map[string]interface{}{"1BAD": "x"},
		}},
		{"unknown key", "create-container", map[string]interface{}{
			"image": "nginx", "prots": map[string]interface{}{"80": "8080"},
		}},
		{"missing project", "deploy-compose", map[string]interface{}{"compose_yaml": "services: {}"}},
		{"missing yaml", "deploy-compose", map[string]interface{}{"project_name": "p"}},
		{"missing container", "get-logs", map[string]interface{}{}},
		{"unexpected param", "list-containers", map[string]interface{}{"all": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{}
			service := newTestService(exec)

			result := service.Dispatch(context.Background(), tt.op, tt.args)

			assert.True(t, result.IsError)
			assert.Equal(t, KindInvalidParameters, result.ErrorKind)
			assert.Empty(t, exec.calls, "executor must not be invoked for invalid parameters")
		})
	}
}

func TestDispatch_UnknownOperation(t *testing.T) {
	exec := &fakeExecutor{}
	service := newTestService(exec)

	result := service.Dispatch(context.Background(), "restart-container", nil)

	assert.True(t, result.IsError)
	assert.Equal(t, KindUnknownOperation, result.ErrorKind)
	assert.Empty(t, exec.calls)
}

func TestDispatch_GetLogsContainerNotFound(t *testing.T) {
	exec := &fakeExecutor{steps: []fakeStep{
		{result: &ExecutionResult{ExitCode: 1, Stderr: []byte("Error: no such container")}},
	}}
	service := newTestService(exec)

	result := service.Dispatch(context.Background(), "get-logs", map[string]interface{}{
		"container_name": "missing",
	})

	assert.True(t, result.IsError)
	assert.Equal(t, KindContainerNotFound, result.ErrorKind)
}

func TestDispatch_ListContainers(t *testing.T) {
	exec := &fakeExecutor{steps: []fakeStep{
		{result: &ExecutionResult{ExitCode: 0, Stdout: []byte("abc\tweb\tnginx\tUp\t80->80/tcp\n")}},
	}}
	service := newTestService(exec)

	result := service.Dispatch(context.Background(), "list-containers", nil)

	assert.False(t, result.IsError)
	require.Len(t, result.Containers, 1)
	assert.Equal(t, "web", result.Containers[0].Name)
}

func TestDeployCompose_Pipeline(t *testing.T) {
	var composePath string
	exec := &fakeExecutor{steps: []fakeStep{
		// down: best effort
		{result: &ExecutionResult{ExitCode: 0}},
		// up -d: authoritative; the compose file must exist right now
		{result: &ExecutionResult{ExitCode: 0}, onRun: func(call fakeCall) {
			require.GreaterOrEqual(t, len(call.args), 2)
			composePath = call.args[1]
			_, err := os.Stat(composePath)
			assert.NoError(t, err, "compose file should exist during invocation")
		}},
		// ps: best effort service listing
		{result: &ExecutionResult{ExitCode: 0, Stdout: []byte("svc1 running\n")}},
	}}
	service := newTestService(exec)

	result := service.Dispatch(context.Background(), "deploy-compose", map[string]interface{}{
		"project_name": "stack",
		"compose_yaml": "services:\n  web:\n    image: nginx\n",
	})

	assert.False(t, result.IsError)
	assert.Contains(t, result.Content, "stack")
	assert.Contains(t, result.Content, "svc1 running")

	require.Len(t, exec.calls, 3)
	assert.Equal(t, "down", exec.calls[0].args[4])
	assert.Equal(t, "up", exec.calls[1].args[4])
	assert.Equal(t, "ps", exec.calls[2].args[4])

	_, err := os.Stat(composePath)
	assert.True(t, os.IsNotExist(err), "compose file should be removed after dispatch")
}

func TestDeployCompose_CleanupOnFailure(t *testing.T) {
	outcomes := []struct {
		name string
		step fakeStep
	}{
		{"non-zero exit", fakeStep{result: &ExecutionResult{ExitCode: 1, Stderr: []byte("pull failed")}}},
		{"timeout", fakeStep{err: Errorf(KindExecutionTimeout, "command timed out after 5s")}},
		{"engine missing", fakeStep{err: Errorf(KindEngineNotFound, "binary gone")}},
	}

	for _, tc := range outcomes {
		t.Run(tc.name, func(t *testing.T) {
			var composePath string
			capture := func(call fakeCall) {
				composePath = call.args[1]
			}
			exec := &fakeExecutor{steps: []fakeStep{
				{result: &ExecutionResult{ExitCode: 0}, onRun: capture}, // down
				{result: tc.step.result, err: tc.step.err},             // up
			}}
			service := newTestService(exec)

			result := service.Dispatch(context.Background(), "deploy-compose", map[string]interface{}{
				"project_name": "stack",
				"compose_yaml": "services:\n  web:\n    image: nginx\n",
			})

			assert.True(t, result.IsError)
			require.NotEmpty(t, composePath)
			_, err := os.Stat(composePath)
			assert.True(t, os.IsNotExist(err), "compose file should be removed after %s", tc.name)
		})
	}
}

func TestDeployCompose_InvalidYAML(t *testing.T) {
	exec := &fakeExecutor{}
	service := newTestService(exec)

	result := service.Dispatch(context.Background(), "deploy-compose", map[string]interface{}{
		"project_name": "stack",
		"compose_yaml": ":\n  - not: [valid",
	})

	assert.True(t, result.IsError)
	assert.Equal(t, KindInvalidParameters, result.ErrorKind)
	assert.Empty(t, exec.calls)
}

func TestDeployCompose_DocumentTooLarge(t *testing.T) {
	exec := &fakeExecutor{}
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	service := NewService(ServiceConfig{
		PodmanBinary:    "podman",
		ComposeBinary:   "podman-compose",
		Timeout:         time.Second,
		MaxComposeBytes: 16,
	}, exec, logger)

	result := service.Dispatch(context.Background(), "deploy-compose", map[string]interface{}{
		"project_name": "stack",
		"compose_yaml": "services:\n  web:\n    image: nginx\n",
	})

	assert.True(t, result.IsError)
	assert.Equal(t, KindInvalidParameters, result.ErrorKind)
	assert.Empty(t, exec.calls)
}

func TestDeployCompose_UniqueTempNames(t *testing.T) {
	var paths []string
	capture := func(call fakeCall) {
		paths = append(paths, call.args[1])
	}
	exec := &fakeExecutor{steps: []fakeStep{
		{result: &ExecutionResult{ExitCode: 0}, onRun: capture},
	}}
	service := newTestService(exec)

	args := map[string]interface{}{
		"project_name": "stack",
		"compose_yaml": "services:\n  web:\n    image: nginx\n",
	}
	service.Dispatch(context.Background(), "deploy-compose", args)
	service.Dispatch(context.Background(), "deploy-compose", args)

	require.GreaterOrEqual(t, len(paths), 2)
	assert.NotEqual(t, paths[0], paths[len(paths)-1])
	for _, p := range paths {
		assert.True(t, strings.Contains(filepath.Base(p), "stack-"))
	}
}

func TestDispatch_ExecutorTimeoutSurfaced(t *testing.T) {
	exec := &fakeExecutor{steps: []fakeStep{
		{err: Errorf(KindExecutionTimeout, "command timed out after 5s")},
	}}
	service := newTestService(exec)

	result := service.Dispatch(context.Background(), "get-logs", map[string]interface{}{
		"container_name": "slow",
	})

	assert.True(t, result.IsError)
	assert.Equal(t, KindExecutionTimeout, result.ErrorKind)
}
