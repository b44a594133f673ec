package entities_test

import (
	"testing"

	"github.com/reglet-dev/skillguard/domain/entities"
	"github.com/stretchr/testify/assert"
)

func TestRiskLevel_String(t *testing.T) {
	assert.Equal(t, "Low", entities.RiskLevelLow.String())
	assert.Equal(t, "Medium", entities.RiskLevelMedium.String())
	assert.Equal(t, "High", entities.RiskLevelHigh.String())
	assert.Equal(t, "Unknown", entities.RiskLevel(42).String())
}

func TestRiskAssessor_AssessSet(t *testing.T) {
	r := entities.NewRiskAssessor()

	tests := []struct {
		name        string
		permissions []string
		want        entities.RiskLevel
	}{
		{"Nothing", nil, entities.RiskLevelLow},
		{"Scoped read", []string{"fs:read:/app/data"}, entities.RiskLevelLow},
		{"API and AI", []string{"api:openai", "ai:provider:openai"}, entities.RiskLevelLow},
		{"Sensitive read", []string{"fs:read:/etc/hosts"}, entities.RiskLevelMedium},
		{"Scoped write", []string{"fs:write:/tmp/out"}, entities.RiskLevelMedium},
		{"Scoped network", []string{"network:https:api.example.com"}, entities.RiskLevelMedium},
		{"KV write", []string{"kv:write:cache:"}, entities.RiskLevelMedium},
		{"Env access", []string{"system:env"}, entities.RiskLevelMedium},
		{"Exec", []string{"system:exec"}, entities.RiskLevelHigh},
		{"Spawn", []string{"system:spawn"}, entities.RiskLevelHigh},
		{"Unscoped write", []string{"fs:write"}, entities.RiskLevelHigh},
		{"Recursive delete", []string{"fs:delete:/data/**"}, entities.RiskLevelHigh},
		{"Any domain", []string{"network:https"}, entities.RiskLevelHigh},
		{"Wildcard domain", []string{"network:https:*"}, entities.RiskLevelHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.AssessSet(entities.BuildPermissionSet(tt.permissions)))
		})
	}
	assert.Equal(t, entities.RiskLevelLow, r.AssessSet(nil))
}

func TestRiskAssessor_CustomBroadPatterns(t *testing.T) {
	r := entities.NewRiskAssessor(entities.WithCustomBroadPatterns(entities.CategoryFilesystem, []string{"/srv/"}))
	assert.Equal(t, entities.RiskLevelHigh, r.AssessPermission("fs:write:/srv/"))
	assert.Equal(t, entities.RiskLevelMedium, entities.NewRiskAssessor().AssessPermission("fs:write:/srv/"))
}

func TestRiskAssessor_DescribeRisks(t *testing.T) {
	r := entities.NewRiskAssessor()
	risks := r.DescribeRisks(entities.BuildPermissionSet([]string{"system:exec", "fs:write:/tmp", "network:https", "kv:write"}))
	assert.Equal(t, []string{
		"Executes system commands (High Risk)",
		"Write access to filesystem",
		"Accesses any network domain (High Risk)",
		"Write access to key-value store",
	}, risks)
	assert.Nil(t, r.DescribeRisks(nil))
}

func TestNewApprovalRequest(t *testing.T) {
	req := entities.NewApprovalRequest("shell", "system:exec")
	assert.Equal(t, "shell", req.Skill)
	assert.Equal(t, "Execute system commands", req.Description)
	assert.Equal(t, entities.RiskLevelHigh, req.RiskLevel)
}
