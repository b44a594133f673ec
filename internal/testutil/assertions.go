// Package testutil provides common test utilities, assertions and fakes
// for skillguard tests.
package testutil

import (
	"encoding/json"
	"testing"

	"github.com/reglet-dev/skillguard/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertGranted asserts that a permission check succeeded.
func AssertGranted(t *testing.T, result entities.PermissionCheckResult, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, result.Granted, append([]interface{}{"expected %s to be granted: %s", result.Permission, result.Reason}, msgAndArgs...)...)
}

// AssertDenied asserts that a permission check failed with a reason containing reasonPart.
func AssertDenied(t *testing.T, result entities.PermissionCheckResult, reasonPart string) {
	t.Helper()
	assert.False(t, result.Granted, "expected %s to be denied", result.Permission)
	assert.Contains(t, result.Reason, reasonPart)
}

// AssertJSONEqual compares two JSON strings for equality, ignoring formatting
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()

	var expectedJSON, actualJSON interface{}
	require.NoError(t, json.Unmarshal([]byte(expected), &expectedJSON), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal([]byte(actual), &actualJSON), "actual JSON is invalid")

	assert.Equal(t, expectedJSON, actualJSON, msgAndArgs...)
}

// AssertMapContains asserts that a map contains all expected key-value pairs
func AssertMapContains(t *testing.T, expectedMap, actualMap map[string]interface{}, msgAndArgs ...interface{}) {
	t.Helper()

	for key, expectedValue := range expectedMap {
		actualValue, ok := actualMap[key]
		assert.True(t, ok, "map should contain key %q", key)
		assert.Equal(t, expectedValue, actualValue, msgAndArgs...)
	}
}
