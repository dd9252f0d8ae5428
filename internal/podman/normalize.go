package podman

import (
	"fmt"
	"strings"
)

// containerNotFoundPattern is the one stderr substring classified as
// ContainerNotFound. The set of recognized patterns is deliberately small;
// anything unrecognized falls back to EngineOperationFailed.
const containerNotFoundPattern = "no such container"

// truncatedMarker is appended to any output cut at the configured cap.
const truncatedMarker = "\n... (output truncated)"

// normalizeCreate converts a create-container execution into a ToolResult.
func normalizeCreate(spec ContainerSpec, res *ExecutionResult, maxOutput int) ToolResult {
	if res.ExitCode != 0 {
		return engineFailure("failed to create container", res, maxOutput)
	}
	label := spec.Name
	if label == "" {
		label = spec.Image
	}
	id := strings.TrimSpace(string(res.Stdout))
	return successResult(fmt.Sprintf("Created container '%s'\nID: %s", label, capOutput(id, maxOutput)))
}

// normalizeCompose converts the authoritative `up -d` execution into a
// ToolResult. serviceListing is the best-effort `ps` output shown on
// success.
func normalizeCompose(spec ComposeSpec, res *ExecutionResult, serviceListing string, maxOutput int) ToolResult {
	if res.ExitCode != 0 {
		return engineFailure(fmt.Sprintf("failed to deploy compose stack '%s'", spec.ProjectName), res, maxOutput)
	}
	return successResult(fmt.Sprintf("Successfully deployed compose stack '%s'\nRunning services:\n%s",
		spec.ProjectName, capOutput(serviceListing, maxOutput)))
}

// normalizeLogs converts a get-logs execution into a ToolResult. Pure given
// the same input: normalizing the same ExecutionResult twice yields
// identical results.
func normalizeLogs(query LogQuery, res *ExecutionResult, maxOutput int) ToolResult {
	if res.ExitCode != 0 {
		stderr := trimmedStderr(res)
		if strings.Contains(strings.ToLower(stderr), containerNotFoundPattern) {
			return errorResult(Errorf(KindContainerNotFound, "container %q not found: %s", query.ContainerName, capOutput(stderr, maxOutput)))
		}
		return engineFailure(fmt.Sprintf("failed to get logs for %q", query.ContainerName), res, maxOutput)
	}
	return successResult(fmt.Sprintf("Logs for container '%s':\n%s",
		query.ContainerName, capOutput(string(res.Stdout), maxOutput)))
}

// normalizeList parses the fixed-column tabular output into ordered
// container records. A line with the wrong column count fails the whole
// parse with MalformedEngineOutput rather than silently dropping data.
func normalizeList(res *ExecutionResult, maxOutput int) ToolResult {
	if res.ExitCode != 0 {
		return engineFailure("failed to list containers", res, maxOutput)
	}

	containers, err := ParseContainerTable(string(res.Stdout))
	if err != nil {
		return errorResult(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d container(s)\n", len(containers))
	for _, c := range containers {
		fmt.Fprintf(&b, "%s  %s  %s  %s  %s\n", c.ID, c.Name, c.Image, c.Status, c.Ports)
	}

	result := successResult(strings.TrimRight(b.String(), "\n"))
	result.Containers = containers
	return result
}

// ParseContainerTable splits tab-separated engine list output into records.
// The expected layout is the five columns requested by BuildListArgs.
func ParseContainerTable(output string) ([]Container, error) {
	containers := []Container{}
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 5 {
			return nil, Errorf(KindMalformedEngineOutput,
				"unexpected column count %d in engine list output line %q", len(fields), line)
		}
		containers = append(containers, Container{
			ID:     strings.TrimSpace(fields[0]),
			Name:   strings.TrimSpace(fields[1]),
			Image:  strings.TrimSpace(fields[2]),
			Status: strings.TrimSpace(fields[3]),
			Ports:  strings.TrimSpace(fields[4]),
		})
	}
	return containers, nil
}

func engineFailure(context string, res *ExecutionResult, maxOutput int) ToolResult {
	stderr := trimmedStderr(res)
	if stderr == "" {
		stderr = strings.TrimSpace(string(res.Stdout))
	}
	return errorResult(Errorf(KindEngineOperationFailed, "%s (exit code %d): %s",
		context, res.ExitCode, capOutput(stderr, maxOutput)))
}

func trimmedStderr(res *ExecutionResult) string {
	return strings.TrimSpace(string(res.Stderr))
}

// capOutput bounds payloads surfaced to the caller so a noisy engine cannot
// produce an unbounded response.
func capOutput(s string, maxOutput int) string {
	if maxOutput <= 0 || len(s) <= maxOutput {
		return s
	}
	return s[:maxOutput] + truncatedMarker
}
