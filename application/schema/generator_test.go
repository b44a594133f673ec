package schema

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/reglet-dev/skillguard/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestSchema(t *testing.T) {
	raw, err := ManifestSchema()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, ManifestSchemaID, decoded["$id"])

	required, ok := decoded["required"].([]interface{})
	require.True(t, ok)
	assert.ElementsMatch(t, []interface{}{"name", "version"}, required)

	properties := decoded["properties"].(map[string]interface{})
	for _, field := range []string{"name", "version", "description", "author", "permissions"} {
		assert.Contains(t, properties, field)
	}

	perms := properties["permissions"].(map[string]interface{})
	assert.Equal(t, "array", perms["type"])
	items := perms["items"].(map[string]interface{})
	assert.Equal(t, PermissionPattern, items["pattern"])
	assert.NotContains(t, perms, "uniqueItems", "duplicates are warnings, not schema errors")
}

func TestPermissionPattern(t *testing.T) {
	re := regexp.MustCompile(PermissionPattern)
	for _, p := range []string{"fs:read", "fs:read:/app/", "api:brave:https://x.y", "kv:write:cache:"} {
		assert.True(t, re.MatchString(p), p)
		assert.True(t, entities.IsValidPermission(p), p)
	}
	for _, p := range []string{"fs", "fs:", "teleport:now", ":read"} {
		assert.False(t, re.MatchString(p), p)
		assert.False(t, entities.IsValidPermission(p), p)
	}
}
