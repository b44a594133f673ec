// Package entities provides the core domain types for skill authorization.
// Skill permissions are capability strings of the form "category:resource[:path]"
// that fold into a structured SkillPermissionSet. These types carry no I/O
// and are shared by the policy, application and infrastructure layers.
package entities
