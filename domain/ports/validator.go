package ports

import "github.com/reglet-dev/skillguard/domain/entities"

// ManifestValidator validates skill manifests before installation.
type ManifestValidator interface {
	Validate(manifest *entities.SkillManifest) (*entities.ValidationResult, error)
}
