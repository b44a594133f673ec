// Package parser reads skill manifests from skill.json (JSON with
// comments and trailing commas) or skill.yaml.
package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/reglet-dev/skillguard/domain/entities"
	"github.com/reglet-dev/skillguard/domain/ports"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Ensure implementations satisfy the interface.
var (
	_ ports.ManifestParser = (*JSONManifestParser)(nil)
	_ ports.ManifestParser = (*YamlManifestParser)(nil)
)

// JSONManifestParser implements ManifestParser for JSON and JSONC.
type JSONManifestParser struct{}

// NewJSONManifestParser creates a new JSONManifestParser.
func NewJSONManifestParser() ports.ManifestParser {
	return &JSONManifestParser{}
}

// Parse strips comments and trailing commas from data, then unmarshals it
// into a SkillManifest.
func (p *JSONManifestParser) Parse(data []byte) (*entities.SkillManifest, error) {
	var manifest entities.SkillManifest
	if err := json.Unmarshal(jsonc.ToJSON(data), &manifest); err != nil {
		return nil, fmt.Errorf("parsing skill manifest: %w", err)
	}
	return &manifest, nil
}

// YamlManifestParser implements ManifestParser for YAML.
type YamlManifestParser struct{}

// NewYamlManifestParser creates a new YamlManifestParser.
func NewYamlManifestParser() ports.ManifestParser {
	return &YamlManifestParser{}
}

// Parse unmarshals YAML bytes into a SkillManifest struct.
func (p *YamlManifestParser) Parse(data []byte) (*entities.SkillManifest, error) {
	var manifest entities.SkillManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing skill manifest: %w", err)
	}
	return &manifest, nil
}

// ForPath returns the parser matching the file extension of path.
// .yaml and .yml select YAML; everything else is parsed as JSONC.
func ForPath(path string) ports.ManifestParser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return NewYamlManifestParser()
	default:
		return NewJSONManifestParser()
	}
}

// ReadFile reads and parses the manifest at path. If path is a directory,
// skill.json, skill.jsonc, skill.yaml and skill.yml are tried in order.
func ReadFile(path string) (*entities.SkillManifest, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		found := false
		for _, name := range []string{"skill.json", "skill.jsonc", "skill.yaml", "skill.yml"} {
			candidate := filepath.Join(path, name)
			if _, err := os.Stat(candidate); err == nil {
				path, found = candidate, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("no skill manifest found in %s", path)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	manifest, err := ForPath(path).Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return manifest, nil
}
