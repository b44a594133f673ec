// Package schema provides JSON schema generation for skill manifests.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/reglet-dev/skillguard/domain/entities"
	"github.com/reglet-dev/skillguard/domain/errors"
)

// ManifestSchemaID is the $id of the generated skill manifest schema.
const ManifestSchemaID = "https://reglet.dev/schemas/skill-manifest.json"

// PermissionPattern matches syntactically valid permission strings of a known category.
var PermissionPattern = func() string {
	names := make([]string, 0, len(entities.Categories()))
	for _, c := range entities.Categories() {
		names = append(names, string(c))
	}
	return "^(" + strings.Join(names, "|") + "):[^:]+(:.*)?$"
}()

// ManifestSchema returns the JSON schema of skill.json. Every permission
// item is constrained by PermissionPattern. Repeated permissions are allowed;
// validation reports them as warnings.
func ManifestSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
	}
	s := reflector.Reflect(&entities.SkillManifest{})
	s.ID = ManifestSchemaID
	s.Title = "Skill manifest"
	s.Description = "Declares a skill and the permissions it needs at runtime."

	if prop, ok := s.Properties.Get("permissions"); ok && prop.Items != nil {
		prop.Items.Pattern = PermissionPattern
		prop.Description = "Permission strings of the form category:resource[:path]."
	}
	jsonBytes, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, &errors.SchemaError{Type: "SkillManifest", Err: fmt.Errorf("failed to marshal schema: %w", err)}
	}
	return jsonBytes, nil
}
