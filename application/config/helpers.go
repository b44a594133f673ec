// Package config provides typed lookups over untyped maps such as OAuth
// userinfo documents, ID token claims and SAML attribute sets.
package config

import "fmt"

// Config is an untyped key-value document, typically decoded from JSON.
type Config = map[string]any

// GetString extracts a string from config, returning (value, found).
func GetString(config Config, key string) (string, bool) {
	v, ok := config[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetFirstString returns the first non-empty string found under keys.
func GetFirstString(config Config, keys ...string) (string, bool) {
	for _, key := range keys {
		if s, ok := GetString(config, key); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// GetID extracts an identifier that providers encode either as a string
// or as a JSON number (GitHub user ids, for example).
func GetID(config Config, key string) (string, bool) {
	switch v := config[key].(type) {
	case string:
		return v, v != ""
	case float64:
		return fmt.Sprintf("%.0f", v), true
	case int:
		return fmt.Sprintf("%d", v), true
	case int64:
		return fmt.Sprintf("%d", v), true
	default:
		return "", false
	}
}

// GetStringSlice extracts a []string from config, returning (value, found).
// A single string is treated as a one-element list, and a space or comma
// separated string is not split.
func GetStringSlice(config Config, key string) ([]string, bool) {
	v, ok := config[key]
	if !ok {
		return nil, false
	}
	switch arr := v.(type) {
	case []string:
		return append([]string(nil), arr...), true
	case string:
		return []string{arr}, true
	case []interface{}:
		result := make([]string, 0, len(arr))
		for _, item := range arr {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			result = append(result, s)
		}
		return result, true
	default:
		return nil, false
	}
}

// Attributes converts multi-valued attributes (as carried by SAML
// assertions) into a Config with []string values.
func Attributes(attrs map[string][]string) Config {
	out := make(Config, len(attrs))
	for k, v := range attrs {
		out[k] = append([]string(nil), v...)
	}
	return out
}
