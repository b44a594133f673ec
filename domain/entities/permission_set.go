package entities

// SkillPermissionSet is the structured, queryable form of a skill's
// permission strings. A nil category means no operation in that category
// is ever granted. A nil list inside a category means the constraint was
// never declared, which is not the same as an empty list.
type SkillPermissionSet struct {
	Filesystem *FilesystemPermissions `json:"filesystem,omitempty" yaml:"filesystem,omitempty"`
	Network    *NetworkPermissions    `json:"network,omitempty" yaml:"network,omitempty"`
	System     *SystemPermissions     `json:"system,omitempty" yaml:"system,omitempty"`
	API        *APIPermissions        `json:"api,omitempty" yaml:"api,omitempty"`
	AI         *AIPermissions         `json:"ai,omitempty" yaml:"ai,omitempty"`
	KV         *KVPermissions         `json:"kv,omitempty" yaml:"kv,omitempty"`
}

// FilesystemPermissions holds path patterns per operation.
// A pattern is an exact path, a directory prefix, a glob or "*".
type FilesystemPermissions struct {
	Read   []string `json:"read,omitempty" yaml:"read,omitempty"`
	Write  []string `json:"write,omitempty" yaml:"write,omitempty"`
	Delete []string `json:"delete,omitempty" yaml:"delete,omitempty"`
}

// NetworkPermissions holds allowed protocols and domain patterns.
type NetworkPermissions struct {
	Protocols      []string `json:"protocols,omitempty" yaml:"protocols,omitempty"`
	AllowedDomains []string `json:"allowedDomains,omitempty" yaml:"allowedDomains,omitempty"`
	BlockedDomains []string `json:"blockedDomains,omitempty" yaml:"blockedDomains,omitempty"`
}

// SystemPermissions holds the system capability flags.
type SystemPermissions struct {
	ExecCommands bool `json:"execCommands,omitempty" yaml:"execCommands,omitempty"`
	EnvAccess    bool `json:"envAccess,omitempty" yaml:"envAccess,omitempty"`
	ProcessSpawn bool `json:"processSpawn,omitempty" yaml:"processSpawn,omitempty"`
}

// APIPermissions holds allowed endpoint patterns.
type APIPermissions struct {
	AllowedEndpoints []string `json:"allowedEndpoints,omitempty" yaml:"allowedEndpoints,omitempty"`
	RateLimit        int      `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"`
}

// AIPermissions holds allowed providers and models.
type AIPermissions struct {
	Providers []string `json:"providers,omitempty" yaml:"providers,omitempty"`
	Models    []string `json:"models,omitempty" yaml:"models,omitempty"`
	MaxTokens int      `json:"maxTokens,omitempty" yaml:"maxTokens,omitempty"`
}

// KVPermissions holds key-value store flags and key prefixes.
type KVPermissions struct {
	Read          bool     `json:"read,omitempty" yaml:"read,omitempty"`
	Write         bool     `json:"write,omitempty" yaml:"write,omitempty"`
	ReadPrefixes  []string `json:"readPrefixes,omitempty" yaml:"readPrefixes,omitempty"`
	WritePrefixes []string `json:"writePrefixes,omitempty" yaml:"writePrefixes,omitempty"`
}

// BuildPermissionSet folds permission strings, in order, into a
// SkillPermissionSet. Malformed strings, unknown categories and unknown
// resources are skipped so that newer manifests still load. An empty
// input yields an empty set, which denies everything.
func BuildPermissionSet(permissions []string) *SkillPermissionSet {
	set := &SkillPermissionSet{}
	for _, raw := range permissions {
		parsed, err := ParsePermission(raw)
		if err != nil {
			continue
		}
		set.add(parsed)
	}
	return set
}

func (s *SkillPermissionSet) add(p ParsedPermission) {
	switch p.Category {
	case CategoryFilesystem:
		if s.Filesystem == nil {
			s.Filesystem = &FilesystemPermissions{}
		}
		path := p.PathOr("*")
		switch p.Resource {
		case "read":
			s.Filesystem.Read = append(s.Filesystem.Read, path)
		case "write":
			s.Filesystem.Write = append(s.Filesystem.Write, path)
		case "delete":
			s.Filesystem.Delete = append(s.Filesystem.Delete, path)
		}

	case CategoryNetwork:
		if s.Network == nil {
			s.Network = &NetworkPermissions{}
		}
		s.Network.Protocols = append(s.Network.Protocols, p.Resource)
		if p.HasPath {
			s.Network.AllowedDomains = append(s.Network.AllowedDomains, p.Path)
		}

	case CategorySystem:
		if s.System == nil {
			s.System = &SystemPermissions{}
		}
		switch p.Resource {
		case "exec":
			s.System.ExecCommands = true
		case "env":
			s.System.EnvAccess = true
		case "spawn":
			s.System.ProcessSpawn = true
		}

	case CategoryAPI:
		if s.API == nil {
			s.API = &APIPermissions{}
		}
		s.API.AllowedEndpoints = append(s.API.AllowedEndpoints, p.PathOr(p.Resource))

	case CategoryAI:
		if s.AI == nil {
			s.AI = &AIPermissions{}
		}
		if !p.HasPath {
			return
		}
		switch p.Resource {
		case "provider":
			s.AI.Providers = append(s.AI.Providers, p.Path)
		case "model":
			s.AI.Models = append(s.AI.Models, p.Path)
		}

	case CategoryKV:
		if s.KV == nil {
			s.KV = &KVPermissions{}
		}
		switch p.Resource {
		case "read":
			s.KV.Read = true
			if p.HasPath {
				s.KV.ReadPrefixes = append(s.KV.ReadPrefixes, p.Path)
			}
		case "write":
			s.KV.Write = true
			if p.HasPath {
				s.KV.WritePrefixes = append(s.KV.WritePrefixes, p.Path)
			}
		}
	}
}

// IsEmpty returns true if no category is present.
func (s *SkillPermissionSet) IsEmpty() bool {
	if s == nil {
		return true
	}
	return s.Filesystem == nil && s.Network == nil && s.System == nil &&
		s.API == nil && s.AI == nil && s.KV == nil
}

// Clone returns a deep copy of the set.
func (s *SkillPermissionSet) Clone() *SkillPermissionSet {
	if s == nil {
		return nil
	}
	clone := &SkillPermissionSet{}
	if s.Filesystem != nil {
		clone.Filesystem = &FilesystemPermissions{
			Read:   cloneStrings(s.Filesystem.Read),
			Write:  cloneStrings(s.Filesystem.Write),
			Delete: cloneStrings(s.Filesystem.Delete),
		}
	}
	if s.Network != nil {
		clone.Network = &NetworkPermissions{
			Protocols:      cloneStrings(s.Network.Protocols),
			AllowedDomains: cloneStrings(s.Network.AllowedDomains),
			BlockedDomains: cloneStrings(s.Network.BlockedDomains),
		}
	}
	if s.System != nil {
		sys := *s.System
		clone.System = &sys
	}
	if s.API != nil {
		clone.API = &APIPermissions{
			AllowedEndpoints: cloneStrings(s.API.AllowedEndpoints),
			RateLimit:        s.API.RateLimit,
		}
	}
	if s.AI != nil {
		clone.AI = &AIPermissions{
			Providers: cloneStrings(s.AI.Providers),
			Models:    cloneStrings(s.AI.Models),
			MaxTokens: s.AI.MaxTokens,
		}
	}
	if s.KV != nil {
		clone.KV = &KVPermissions{
			Read:          s.KV.Read,
			Write:         s.KV.Write,
			ReadPrefixes:  cloneStrings(s.KV.ReadPrefixes),
			WritePrefixes: cloneStrings(s.KV.WritePrefixes),
		}
	}
	return clone
}

// cloneStrings preserves the nil/non-nil distinction.
func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append(make([]string, 0, len(in)), in...)
}
