package convert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/gateway-sync/pkg/convert"
)

func TestDeepCopyMap(t *testing.T) {
	original := map[string]any{
		"name":  "api",
		"paths": []any{"/v1"},
		"healthchecks": map[string]any{
			"active": map[string]any{"timeout": 1},
		},
	}

	copied := convert.DeepCopyMap(original)
	copied["paths"].([]any)[0] = "/v2"
	copied["healthchecks"].(map[string]any)["active"].(map[string]any)["timeout"] = 5

	assert.Equal(t, "/v1", original["paths"].([]any)[0])
	assert.Equal(t, 1, original["healthchecks"].(map[string]any)["active"].(map[string]any)["timeout"])
	assert.Nil(t, convert.DeepCopyMap[map[string]any](nil))
}

func TestToMap(t *testing.T) {
	type named map[string]any

	m, ok := convert.ToMap(named{"id": "svc-1"})
	require.True(t, ok)
	assert.Equal(t, "svc-1", m["id"])

	_, ok = convert.ToMap("svc-1")
	assert.False(t, ok)
	_, ok = convert.ToMap(nil)
	assert.False(t, ok)
}

func TestToSliceOfString(t *testing.T) {
	out, err := convert.ToSliceOfString([]any{"GET", 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"GET", "2"}, out)

	_, err = convert.ToSliceOfString(42)
	assert.Error(t, err)
}
