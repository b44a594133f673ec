package config_test

import (
	"encoding/json"
	"testing"

	"github.com/reglet-dev/skillguard/application/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) config.Config {
	t.Helper()
	var c config.Config
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	return c
}

func TestGetString(t *testing.T) {
	c := decode(t, `{"email":"a@b.c","id":42,"verified":true}`)

	s, ok := config.GetString(c, "email")
	assert.True(t, ok)
	assert.Equal(t, "a@b.c", s)

	_, ok = config.GetString(c, "id")
	assert.False(t, ok)

	_, ok = config.GetString(c, "missing")
	assert.False(t, ok)

	_, ok = config.GetString(c, "verified")
	assert.False(t, ok)
}

func TestGetFirstString(t *testing.T) {
	c := decode(t, `{"name":"","login":"octocat","preferred_username":"cat"}`)

	s, ok := config.GetFirstString(c, "name", "login", "preferred_username")
	assert.True(t, ok)
	assert.Equal(t, "octocat", s)

	_, ok = config.GetFirstString(c, "name", "nickname")
	assert.False(t, ok)
}

func TestGetID(t *testing.T) {
	c := decode(t, `{"id":583231,"sub":"1098","empty":"","obj":{}}`)

	id, ok := config.GetID(c, "id")
	assert.True(t, ok)
	assert.Equal(t, "583231", id)

	id, ok = config.GetID(c, "sub")
	assert.True(t, ok)
	assert.Equal(t, "1098", id)

	_, ok = config.GetID(c, "empty")
	assert.False(t, ok)
	_, ok = config.GetID(c, "obj")
	assert.False(t, ok)
}

func TestGetStringSlice(t *testing.T) {
	c := decode(t, `{"roles":["Admin","dev"],"role":"viewer","mixed":["a",1]}`)

	roles, ok := config.GetStringSlice(c, "roles")
	assert.True(t, ok)
	assert.Equal(t, []string{"Admin", "dev"}, roles)

	roles, ok = config.GetStringSlice(c, "role")
	assert.True(t, ok)
	assert.Equal(t, []string{"viewer"}, roles)

	_, ok = config.GetStringSlice(c, "mixed")
	assert.False(t, ok)

	attrs := config.Attributes(map[string][]string{"groups": {"eng"}})
	groups, ok := config.GetStringSlice(attrs, "groups")
	assert.True(t, ok)
	assert.Equal(t, []string{"eng"}, groups)
}
