package rbac_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"testing"

	"github.com/reglet-dev/skillguard/domain/rbac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// declaredPermissions reads every Permission constant from permission.go so
// the admin derivation is checked against the source, not a second list.
func declaredPermissions(t *testing.T) []rbac.Permission {
	t.Helper()

	f, err := parser.ParseFile(token.NewFileSet(), "permission.go", nil, 0)
	require.NoError(t, err)

	var perms []rbac.Permission
	for _, decl := range f.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.CONST {
			continue
		}
		for _, spec := range gen.Specs {
			vs := spec.(*ast.ValueSpec)
			ident, ok := vs.Type.(*ast.Ident)
			if !ok || ident.Name != "Permission" {
				continue
			}
			for _, v := range vs.Values {
				lit, ok := v.(*ast.BasicLit)
				require.True(t, ok, "permission constants must be string literals")
				s, err := strconv.Unquote(lit.Value)
				require.NoError(t, err)
				perms = append(perms, rbac.Permission(s))
			}
		}
	}
	require.NotEmpty(t, perms)
	return perms
}

func TestAllPermissions_CoversEveryConstant(t *testing.T) {
	declared := declaredPermissions(t)
	assert.ElementsMatch(t, declared, rbac.AllPermissions())
	assert.Len(t, declared, 30)
}

func TestAdminHasEveryPermission(t *testing.T) {
	for _, p := range declaredPermissions(t) {
		assert.True(t, rbac.HasPermission(rbac.RoleAdmin, p), "admin lacks %s", p)
	}
	assert.Equal(t, rbac.AllPermissions(), rbac.RolePermissions(rbac.RoleAdmin))
}

func TestPermissions_AreResourceAction(t *testing.T) {
	seen := map[rbac.Permission]bool{}
	for _, p := range rbac.AllPermissions() {
		assert.Regexp(t, `^[a-z-]+:[a-z]+$`, string(p))
		assert.False(t, seen[p], "duplicate permission %s", p)
		assert.True(t, p.IsValid())
		seen[p] = true
	}
	assert.False(t, rbac.Permission("agent:fly").IsValid())
}

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role rbac.Role
		perm rbac.Permission
		want bool
	}{
		{rbac.RoleDeveloper, rbac.PermAgentCreate, true},
		{rbac.RoleDeveloper, rbac.PermSkillInstall, true},
		{rbac.RoleDeveloper, rbac.PermUserRead, true},
		{rbac.RoleDeveloper, rbac.PermUserDelete, false},
		{rbac.RoleDeveloper, rbac.PermMarketplaceModerate, false},
		{rbac.RoleDeveloper, rbac.PermCostManage, false},
		{rbac.RoleDeveloper, rbac.PermAuditRead, false},
		{rbac.RoleViewer, rbac.PermAgentRead, true},
		{rbac.RoleViewer, rbac.PermCostRead, true},
		{rbac.RoleViewer, rbac.PermAgentDelete, false},
		{rbac.RoleViewer, rbac.PermUserRead, false},
		{rbac.Role("ghost"), rbac.PermAgentRead, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.perm), func(t *testing.T) {
			assert.Equal(t, tt.want, rbac.HasPermission(tt.role, tt.perm))
		})
	}
}

func TestRoleHierarchyIsNested(t *testing.T) {
	for _, p := range rbac.RolePermissions(rbac.RoleViewer) {
		assert.True(t, rbac.HasPermission(rbac.RoleDeveloper, p), "developer lacks viewer permission %s", p)
	}
	for _, p := range rbac.RolePermissions(rbac.RoleDeveloper) {
		assert.True(t, rbac.HasPermission(rbac.RoleAdmin, p))
	}
}

func TestRolePermissions_ReturnsCopy(t *testing.T) {
	perms := rbac.RolePermissions(rbac.RoleViewer)
	perms[0] = rbac.PermUserDelete
	assert.False(t, rbac.HasPermission(rbac.RoleViewer, rbac.PermUserDelete))
	assert.NotEqual(t, rbac.PermUserDelete, rbac.RolePermissions(rbac.RoleViewer)[0])
}

func TestCanAccessOrOwn(t *testing.T) {
	viewer := &rbac.UserWithRole{ID: "u-1", Role: rbac.RoleViewer}

	assert.True(t, rbac.CanAccessOrOwn(viewer, rbac.PermAgentDelete, viewer.ID))
	assert.False(t, rbac.CanAccessOrOwn(viewer, rbac.PermAgentDelete, "u-2"))
	assert.False(t, rbac.CanAccessOrOwn(viewer, rbac.PermAgentDelete, ""))
	assert.True(t, rbac.CanAccessOrOwn(viewer, rbac.PermAgentRead, ""))
	assert.False(t, rbac.CanAccessOrOwn(nil, rbac.PermAgentRead, "u-1"))

	anonymous := &rbac.UserWithRole{Role: rbac.RoleViewer}
	assert.False(t, rbac.CanAccessOrOwn(anonymous, rbac.PermAgentDelete, ""))
}

func TestUserWithRole_Can(t *testing.T) {
	dev := &rbac.UserWithRole{ID: "d", Role: rbac.RoleDeveloper}
	assert.True(t, dev.Can(rbac.PermSkillExecute))
	assert.False(t, dev.Can(rbac.PermUserDelete))

	var nobody *rbac.UserWithRole
	assert.False(t, nobody.Can(rbac.PermAgentRead))
}
