package entities

// SkillManifest is the subset of skill.json (or skill.yaml) that authorization cares about.
type SkillManifest struct {
	Name        string   `json:"name" yaml:"name" validate:"required,skillname" jsonschema:"required,pattern=^[a-z0-9]+(-[a-z0-9]+)*$"`
	Version     string   `json:"version" yaml:"version" validate:"required,semver" jsonschema:"required"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Author      string   `json:"author,omitempty" yaml:"author,omitempty"`
	Permissions []string `json:"permissions,omitempty" yaml:"permissions,omitempty" validate:"dive,skillperm"`
}

// PermissionSet folds the manifest's permissions into a SkillPermissionSet.
func (m *SkillManifest) PermissionSet() *SkillPermissionSet {
	if m == nil {
		return &SkillPermissionSet{}
	}
	return BuildPermissionSet(m.Permissions)
}

// DangerousPermissions returns the declared permissions that require user approval.
func (m *SkillManifest) DangerousPermissions() []string {
	if m == nil {
		return nil
	}
	var out []string
	for _, p := range m.Permissions {
		if RequiresApproval(p) {
			out = append(out, p)
		}
	}
	return out
}
