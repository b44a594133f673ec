package entities

import "strings"

// RiskLevel represents the security risk level of a permission or permission set.
type RiskLevel int

const (
	RiskLevelLow    RiskLevel = iota // Narrow reads, API and AI calls
	RiskLevelMedium                  // Writes, scoped network egress, env access
	RiskLevelHigh                    // Command execution, process spawn, unrestricted writes or egress
)

// String returns the human-readable name of the risk level.
func (r RiskLevel) String() string {
	switch r {
	case RiskLevelLow:
		return "Low"
	case RiskLevelMedium:
		return "Medium"
	case RiskLevelHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// BroadFilesystemPatterns are filesystem patterns that reach most of a host.
var BroadFilesystemPatterns = []string{
	"*", "/", "/*", "/**",
	"/etc", "/etc/", "/etc/*",
	"/root", "/root/", "/root/*",
	"/home", "/home/", "/home/*",
}

// SensitiveReadPrefixes are path prefixes whose reads are treated as medium risk.
var SensitiveReadPrefixes = []string{"/etc/", "/root/", "/var/run/"}

type riskAssessorConfig struct {
	customBroadPatterns map[string][]string
}

func defaultRiskAssessorConfig() riskAssessorConfig {
	return riskAssessorConfig{
		customBroadPatterns: make(map[string][]string),
	}
}

// RiskAssessorOption configures a RiskAssessor instance.
type RiskAssessorOption func(*riskAssessorConfig)

// WithCustomBroadPatterns adds additional patterns considered "broad" for a category
// ("fs" or "network").
func WithCustomBroadPatterns(category Category, patterns []string) RiskAssessorOption {
	return func(c *riskAssessorConfig) {
		c.customBroadPatterns[string(category)] = append(c.customBroadPatterns[string(category)], patterns...)
	}
}

// RiskAssessor evaluates the security risk of skill permissions.
type RiskAssessor struct {
	config riskAssessorConfig
}

// NewRiskAssessor creates a new RiskAssessor with the given options.
func NewRiskAssessor(opts ...RiskAssessorOption) *RiskAssessor {
	cfg := defaultRiskAssessorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &RiskAssessor{config: cfg}
}

// AssessPermission evaluates a single permission string.
func (r *RiskAssessor) AssessPermission(permission string) RiskLevel {
	return r.AssessSet(BuildPermissionSet([]string{permission}))
}

// AssessSet evaluates the overall risk level of a permission set.
func (r *RiskAssessor) AssessSet(s *SkillPermissionSet) RiskLevel {
	if s == nil {
		return RiskLevelLow
	}
	highest := RiskLevelLow
	for _, level := range []RiskLevel{
		r.assessSystem(s.System),
		r.assessFilesystem(s.Filesystem),
		r.assessNetwork(s.Network),
		r.assessKV(s.KV),
	} {
		if level == RiskLevelHigh {
			return RiskLevelHigh
		}
		if level > highest {
			highest = level
		}
	}
	return highest
}

func (r *RiskAssessor) assessSystem(sys *SystemPermissions) RiskLevel {
	if sys == nil {
		return RiskLevelLow
	}
	if sys.ExecCommands || sys.ProcessSpawn {
		return RiskLevelHigh
	}
	if sys.EnvAccess {
		return RiskLevelMedium
	}
	return RiskLevelLow
}

func (r *RiskAssessor) assessFilesystem(fs *FilesystemPermissions) RiskLevel {
	if fs == nil {
		return RiskLevelLow
	}
	broad := r.patterns(CategoryFilesystem, BroadFilesystemPatterns)
	mutating := append(append([]string(nil), fs.Write...), fs.Delete...)
	for _, p := range mutating {
		if matchesAny(p, broad) || strings.Contains(p, "**") {
			return RiskLevelHigh
		}
	}
	if len(mutating) > 0 {
		return RiskLevelMedium
	}
	for _, p := range fs.Read {
		if matchesAny(p, broad) || hasAnyPrefix(p, SensitiveReadPrefixes) {
			return RiskLevelMedium
		}
	}
	return RiskLevelLow
}

func (r *RiskAssessor) assessNetwork(n *NetworkPermissions) RiskLevel {
	if n == nil {
		return RiskLevelLow
	}
	if n.AllowedDomains == nil {
		return RiskLevelHigh
	}
	broad := r.patterns(CategoryNetwork, []string{"*"})
	for _, d := range n.AllowedDomains {
		if matchesAny(d, broad) {
			return RiskLevelHigh
		}
	}
	return RiskLevelMedium
}

func (r *RiskAssessor) assessKV(kv *KVPermissions) RiskLevel {
	if kv != nil && kv.Write {
		return RiskLevelMedium
	}
	return RiskLevelLow
}

// DescribeRisks returns a list of human-readable risk descriptions.
func (r *RiskAssessor) DescribeRisks(s *SkillPermissionSet) []string {
	if s == nil {
		return nil
	}
	var risks []string
	if s.System != nil {
		if s.System.ExecCommands {
			risks = append(risks, "Executes system commands (High Risk)")
		}
		if s.System.ProcessSpawn {
			risks = append(risks, "Spawns child processes (High Risk)")
		}
		if s.System.EnvAccess {
			risks = append(risks, "Reads environment variables")
		}
	}
	if s.Filesystem != nil {
		if len(s.Filesystem.Write) > 0 {
			risks = append(risks, "Write access to filesystem")
		}
		if len(s.Filesystem.Delete) > 0 {
			risks = append(risks, "Deletes files")
		}
	}
	if s.Network != nil && r.assessNetwork(s.Network) == RiskLevelHigh {
		risks = append(risks, "Accesses any network domain (High Risk)")
	}
	if s.KV != nil && s.KV.Write {
		risks = append(risks, "Write access to key-value store")
	}
	return risks
}

func (r *RiskAssessor) patterns(category Category, base []string) []string {
	patterns := append([]string(nil), base...)
	return append(patterns, r.config.customBroadPatterns[string(category)]...)
}

func matchesAny(value string, patterns []string) bool {
	for _, p := range patterns {
		if value == p {
			return true
		}
	}
	return false
}

func hasAnyPrefix(value string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(value, p) {
			return true
		}
	}
	return false
}
