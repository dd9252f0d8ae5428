package podman

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// envNamePattern is the accepted shape of an environment variable name.
var envNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// psFormat is the fixed column layout requested from the engine for
// list-containers: id, name, image, status, ports, tab separated, no header
// row. Parsing depends on exactly these five columns.
const psFormat = "{{.ID}}\t{{.Names}}\t{{.Image}}\t{{.Status}}\t{{.Ports}}"

// BuildRunArgs maps a ContainerSpec to the argv for the engine binary,
// excluding the binary itself. Port and environment entries are emitted in
// sorted-key order so output is reproducible. Pure; no I/O.
func BuildRunArgs(spec ContainerSpec) ([]string, error) {
	if spec.Image == "" {
		return nil, Errorf(KindInvalidParameters, "image name cannot be empty")
	}

	args := []string{"run", "-d"}
	if spec.Name != "" {
		args = append(args, "--name", spec.Name)
	}

	containerPorts := sortedKeys(spec.Ports)
	for _, containerPort := range containerPorts {
		hostPort := spec.Ports[containerPort]
		if err := validatePort(containerPort); err != nil {
			return nil, err
		}
		if err := validatePort(hostPort); err != nil {
			return nil, err
		}
		args = append(args, "-p", fmt.Sprintf("%s:%s", hostPort, containerPort))
	}

	envNames := sortedKeys(spec.Environment)
	for _, name := range envNames {
		if !envNamePattern.MatchString(name) {
			return nil, Errorf(KindInvalidParameters, "invalid environment variable name %q", name)
		}
		args = append(args, "-e", fmt.Sprintf("%s=%s", name, spec.Environment[name]))
	}

	return append(args, spec.Image), nil
}

// BuildComposeArgs maps a compose invocation to the argv for the compose
// binary. The compose file must already be materialized at composeFile.
func BuildComposeArgs(composeFile, projectName, command string, extra ...string) ([]string, error) {
	if projectName == "" {
		return nil, Errorf(KindInvalidParameters, "project_name cannot be empty")
	}
	if composeFile == "" {
		return nil, Errorf(KindInvalidParameters, "compose file path cannot be empty")
	}
	args := []string{"-f", composeFile, "-p", projectName, command}
	return append(args, extra...), nil
}

// BuildLogsArgs maps a LogQuery to the argv for the engine binary.
func BuildLogsArgs(query LogQuery) ([]string, error) {
	if query.ContainerName == "" {
		return nil, Errorf(KindInvalidParameters, "container_name cannot be empty")
	}
	return []string{"logs", query.ContainerName}, nil
}

// BuildListArgs returns the argv for listing all containers in the fixed
// machine-parsable column layout.
func BuildListArgs() []string {
	return []string{"ps", "-a", "--format", psFormat}
}

func validatePort(port string) error {
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return Errorf(KindInvalidParameters, "invalid port %q: must be an integer between 1 and 65535", port)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
