package podman

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeContainerSpec_NumericPorts(t *testing.T) {
	// JSON hosts commonly send port values unquoted; they arrive as float64.
	spec, err := decodeContainerSpec(map[string]interface{}{
		"image": "nginx",
		"ports": map[string]interface{}{"80": float64(8080)},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"80": "8080"}, spec.Ports)
}

func TestDecodeContainerSpec_WrongTypes(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"image not string", map[string]interface{}{"image": 42}},
		{"ports not object", map[string]interface{}{"image": "a", "ports": "80:8080"}},
		{"env value not scalar", map[string]interface{}{
			"image": "a", "environment": map[string]interface{}{"K": []interface{}{"v"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeContainerSpec(tt.args)
			require.Error(t, err)
			assert.Equal(t, KindInvalidParameters, KindOf(err))
		})
	}
}

func TestDecodeComposeSpec(t *testing.T) {
	spec, err := decodeComposeSpec(map[string]interface{}{
		"project_name": "stack",
		"compose_yaml": "services: {}",
	})
	require.NoError(t, err)
	assert.Equal(t, "stack", spec.ProjectName)

	_, err = decodeComposeSpec(map[string]interface{}{
		"project_name": "stack",
		"compose_yaml": "services: {}",
		"detach":       true,
	})
	require.Error(t, err)
	assert.Equal(t, KindInvalidParameters, KindOf(err))
}
