package podman

import (
	"fmt"
	"strconv"
)

// Argument decoding from the transport's generic map form. Unknown keys are
// rejected rather than ignored so a typoed optional field cannot silently
// change behavior.

func decodeContainerSpec(args map[string]interface{}) (ContainerSpec, error) {
	if err := rejectUnknownKeys(args, "image", "name", "ports", "environment"); err != nil {
		return ContainerSpec{}, err
	}

	image, err := stringArg(args, "image", true)
	if err != nil {
		return ContainerSpec{}, err
	}
	name, err := stringArg(args, "name", false)
	if err != nil {
		return ContainerSpec{}, err
	}
	ports, err := stringMapArg(args, "ports")
	if err != nil {
		return ContainerSpec{}, err
	}
	environment, err := stringMapArg(args, "environment")
	if err != nil {
		return ContainerSpec{}, err
	}

	return ContainerSpec{
		Image:       image,
		Name:        name,
		Ports:       ports,
		Environment: environment,
	}, nil
}

func decodeComposeSpec(args map[string]interface{}) (ComposeSpec, error) {
	if err := rejectUnknownKeys(args, "project_name", "compose_yaml"); err != nil {
		return ComposeSpec{}, err
	}

	projectName, err := stringArg(args, "project_name", true)
	if err != nil {
		return ComposeSpec{}, err
	}
	composeYAML, err := stringArg(args, "compose_yaml", true)
	if err != nil {
		return ComposeSpec{}, err
	}

	return ComposeSpec{ProjectName: projectName, ComposeYAML: composeYAML}, nil
}

func decodeLogQuery(args map[string]interface{}) (LogQuery, error) {
	if err := rejectUnknownKeys(args, "container_name"); err != nil {
		return LogQuery{}, err
	}

	containerName, err := stringArg(args, "container_name", true)
	if err != nil {
		return LogQuery{}, err
	}
	return LogQuery{ContainerName: containerName}, nil
}

func decodeListQuery(args map[string]interface{}) error {
	return rejectUnknownKeys(args)
}

func rejectUnknownKeys(args map[string]interface{}, allowed ...string) error {
	for key := range args {
		known := false
		for _, a := range allowed {
			if key == a {
				known = true
				break
			}
		}
		if !known {
			return Errorf(KindInvalidParameters, "unknown parameter %q", key)
		}
	}
	return nil
}

func stringArg(args map[string]interface{}, key string, required bool) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		if required {
			return "", Errorf(KindInvalidParameters, "missing required parameter %q", key)
		}
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", Errorf(KindInvalidParameters, "parameter %q must be a string, got %T", key, raw)
	}
	if required && s == "" {
		return "", Errorf(KindInvalidParameters, "parameter %q cannot be empty", key)
	}
	return s, nil
}

// stringMapArg decodes an optional string-to-string mapping. JSON numbers
// are accepted for values since hosts commonly send ports unquoted.
func stringMapArg(args map[string]interface{}, key string) (map[string]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, Errorf(KindInvalidParameters, "parameter %q must be an object, got %T", key, raw)
	}

	result := make(map[string]string, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case string:
			result[k] = val
		case float64:
			result[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case int:
			result[k] = strconv.Itoa(val)
		default:
			return nil, Errorf(KindInvalidParameters, "parameter %q has non-string value for key %q: %s", key, k, fmt.Sprintf("%T", v))
		}
	}
	return result, nil
}
