package entities

// ApprovalRequest asks a user to approve one dangerous permission of a skill.
type ApprovalRequest struct {
	Skill       string
	Permission  string
	Description string
	RiskLevel   RiskLevel
}

// NewApprovalRequest builds the request shown to a user for permission.
func NewApprovalRequest(skill, permission string) ApprovalRequest {
	return ApprovalRequest{
		Skill:       skill,
		Permission:  permission,
		Description: DescribePermission(permission),
		RiskLevel:   NewRiskAssessor().AssessPermission(permission),
	}
}
