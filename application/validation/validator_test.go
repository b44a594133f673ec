package validation_test

import (
	"testing"

	"github.com/reglet-dev/skillguard/application/validation"
	"github.com/reglet-dev/skillguard/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestValidator_Validate(t *testing.T) {
	v := validation.NewManifestValidator()

	t.Run("Valid manifest", func(t *testing.T) {
		res, err := v.Validate(&entities.SkillManifest{
			Name:        "web-search",
			Version:     "1.2.3",
			Permissions: []string{"network:https:api.search.brave.com", "api:brave:https://api.search.brave.com"},
		})
		require.NoError(t, err)
		assert.True(t, res.Valid)
		assert.Empty(t, res.Errors)
		assert.Empty(t, res.Warnings)
	})

	t.Run("Missing name and version", func(t *testing.T) {
		res, err := v.Validate(&entities.SkillManifest{})
		require.NoError(t, err)
		assert.False(t, res.Valid)
		require.Len(t, res.Errors, 2)
		assert.Equal(t, "name", res.Errors[0].Field)
		assert.Equal(t, "name is required", res.Errors[0].Message)
		assert.Equal(t, "version", res.Errors[1].Field)
	})

	t.Run("Bad name and version", func(t *testing.T) {
		res, err := v.Validate(&entities.SkillManifest{Name: "Web_Search", Version: "one"})
		require.NoError(t, err)
		assert.False(t, res.Valid)
		require.Len(t, res.Errors, 2)
		assert.Contains(t, res.Errors[0].Message, `"Web_Search"`)
		assert.Equal(t, `version "one" is not a semantic version`, res.Errors[1].Message)
	})

	t.Run("Invalid permissions", func(t *testing.T) {
		res, err := v.Validate(&entities.SkillManifest{
			Name:        "bad",
			Version:     "0.1.0",
			Permissions: []string{"fs:read", "nocolon", "teleport:now", "fs:"},
		})
		require.NoError(t, err)
		assert.False(t, res.Valid)
		require.Len(t, res.Errors, 3)
		assert.Equal(t, "permissions[1]", res.Errors[0].Field)
		assert.Equal(t, `invalid permission format: "nocolon" (expected category:resource[:path])`, res.Errors[0].Message)
		assert.Equal(t, `unknown permission category "teleport" in "teleport:now"`, res.Errors[1].Message)
		assert.Equal(t, `permission "fs:" has an empty resource`, res.Errors[2].Message)
	})

	t.Run("Dangerous and duplicate permissions warn", func(t *testing.T) {
		res, err := v.Validate(&entities.SkillManifest{
			Name:        "deployer",
			Version:     "2.0.0-rc.1",
			Permissions: []string{"system:exec", "fs:read", "fs:read", "fs:delete:/tmp/"},
		})
		require.NoError(t, err)
		assert.True(t, res.Valid)
		require.Len(t, res.Warnings, 3)
		assert.Equal(t, "system:exec requires user approval: Execute system commands", res.Warnings[0].Message)
		assert.Equal(t, "permissions[2]", res.Warnings[1].Field)
		assert.Contains(t, res.Warnings[1].Message, "more than once")
		assert.Equal(t, "permissions[3]", res.Warnings[2].Field)
	})

	t.Run("Nil manifest", func(t *testing.T) {
		_, err := v.Validate(nil)
		assert.Error(t, err)
	})
}

func TestStruct_CustomTags(t *testing.T) {
	type request struct {
		Skill      string `validate:"required,skillname"`
		Permission string `validate:"skillperm"`
	}

	assert.NoError(t, validation.Struct(request{Skill: "a-b", Permission: "kv:read"}))
	assert.Error(t, validation.Struct(request{Skill: "a--b", Permission: "kv:read"}))
	assert.Error(t, validation.Struct(request{Skill: "ok", Permission: "kv"}))
}
