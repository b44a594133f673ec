package entities

import (
	"fmt"
	"strings"
)

// Category is the first segment of a skill permission string.
type Category string

const (
	CategoryFilesystem Category = "fs"
	CategoryNetwork    Category = "network"
	CategorySystem     Category = "system"
	CategoryAPI        Category = "api"
	CategoryEnv        Category = "env"
	CategoryKV         Category = "kv"
	CategoryAI         Category = "ai"
	CategoryMemory     Category = "memory"
	CategoryExternal   Category = "external"
)

// Categories returns every category a permission string may declare.
func Categories() []Category {
	return []Category{
		CategoryFilesystem,
		CategoryNetwork,
		CategorySystem,
		CategoryAPI,
		CategoryEnv,
		CategoryKV,
		CategoryAI,
		CategoryMemory,
		CategoryExternal,
	}
}

// IsKnown reports whether c is a member of the closed category set.
func (c Category) IsKnown() bool {
	switch c {
	case CategoryFilesystem, CategoryNetwork, CategorySystem, CategoryAPI, CategoryEnv,
		CategoryKV, CategoryAI, CategoryMemory, CategoryExternal:
		return true
	default:
		return false
	}
}

// ParsedPermission is the structured form of a permission string.
// It is derived on demand; the raw string stays canonical.
type ParsedPermission struct {
	Category Category `json:"category"`
	Resource string   `json:"resource"`
	Path     string   `json:"path,omitempty"`

	// HasPath distinguishes "fs:read" from "fs:read:" (present but empty path).
	HasPath bool `json:"-"`
}

// String reassembles the permission string.
func (p ParsedPermission) String() string {
	if p.HasPath {
		return string(p.Category) + ":" + p.Resource + ":" + p.Path
	}
	return string(p.Category) + ":" + p.Resource
}

// PathOr returns the path when one was declared, otherwise fallback.
func (p ParsedPermission) PathOr(fallback string) string {
	if p.HasPath {
		return p.Path
	}
	return fallback
}

// ParsePermission splits a permission string into category, resource and path.
// Everything after the second colon is the path, so URLs survive intact
// ("api:brave:https://api.search.brave.com").
func ParsePermission(permission string) (ParsedPermission, error) {
	parts := strings.Split(permission, ":")
	if len(parts) < 2 {
		return ParsedPermission{}, &ParseError{Permission: permission}
	}

	parsed := ParsedPermission{
		Category: Category(parts[0]),
		Resource: parts[1],
	}
	if len(parts) > 2 {
		parsed.Path = strings.Join(parts[2:], ":")
		parsed.HasPath = true
	}
	return parsed, nil
}

// IsValidPermission reports whether permission parses, names a known
// category and has a non-empty resource.
func IsValidPermission(permission string) bool {
	parsed, err := ParsePermission(permission)
	if err != nil {
		return false
	}
	return parsed.Category.IsKnown() && parsed.Resource != ""
}

// approvalRequired lists the category/resource pairs a user must approve
// before a skill holding them is installed. Filesystem reads and network
// egress are deliberately absent.
var approvalRequired = map[Category]map[string]struct{}{
	CategoryFilesystem: {"write": {}, "delete": {}},
	CategorySystem:     {"exec": {}, "spawn": {}},
}

// RequiresApproval reports whether permission is one of the dangerous
// capabilities: fs:write, fs:delete, system:exec or system:spawn.
// Malformed strings never require approval.
func RequiresApproval(permission string) bool {
	parsed, err := ParsePermission(permission)
	if err != nil {
		return false
	}
	resources, ok := approvalRequired[parsed.Category]
	if !ok {
		return false
	}
	_, ok = resources[parsed.Resource]
	return ok
}

// DescribePermission returns a human readable description of permission.
// Unrecognized or malformed permissions are returned verbatim.
func DescribePermission(permission string) string {
	parsed, err := ParsePermission(permission)
	if err != nil {
		return permission
	}
	if desc, ok := describeParsed(parsed); ok {
		return desc
	}
	return permission
}

func describeParsed(p ParsedPermission) (string, bool) {
	switch p.Category {
	case CategoryFilesystem:
		verb, ok := map[string]string{"read": "Read", "write": "Write", "delete": "Delete"}[p.Resource]
		if !ok {
			return "", false
		}
		if !p.HasPath || p.Path == "*" {
			return verb + " any file", true
		}
		return fmt.Sprintf("%s files in %s", verb, p.Path), true

	case CategoryNetwork:
		if p.HasPath {
			return fmt.Sprintf("Make %s requests to %s", strings.ToUpper(p.Resource), p.Path), true
		}
		return fmt.Sprintf("Make %s requests to any domain", strings.ToUpper(p.Resource)), true

	case CategorySystem:
		switch p.Resource {
		case "exec":
			return "Execute system commands", true
		case "env":
			return "Read environment variables", true
		case "spawn":
			return "Spawn child processes", true
		}
		return "", false

	case CategoryAPI:
		return fmt.Sprintf("Call the %s API", p.PathOr(p.Resource)), true

	case CategoryEnv:
		return fmt.Sprintf("Read environment variable %s", p.Resource), true

	case CategoryKV:
		var verb string
		switch p.Resource {
		case "read":
			verb = "Read from"
		case "write":
			verb = "Write to"
		default:
			return "", false
		}
		if p.HasPath {
			return fmt.Sprintf("%s key-value store (keys starting with %q)", verb, p.Path), true
		}
		return verb + " key-value store", true

	case CategoryAI:
		switch p.Resource {
		case "provider":
			if p.HasPath {
				return "Use AI provider " + p.Path, true
			}
		case "model":
			if p.HasPath {
				return "Use AI model " + p.Path, true
			}
		}
		return "", false

	case CategoryMemory:
		return fmt.Sprintf("Access agent memory (%s)", p.Resource), true

	case CategoryExternal:
		return "Access external service " + p.Resource, true
	}
	return "", false
}
