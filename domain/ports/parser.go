package ports

import "github.com/reglet-dev/skillguard/domain/entities"

// ManifestParser parses raw manifest bytes into a SkillManifest.
type ManifestParser interface {
	// Parse unmarshals data into a SkillManifest.
	Parse(data []byte) (*entities.SkillManifest, error)
}
