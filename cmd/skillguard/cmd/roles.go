package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/reglet-dev/skillguard/domain/rbac"
	"github.com/reglet-dev/skillguard/infrastructure/casbinrbac"
	"github.com/spf13/cobra"
)

func newRolesCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "roles [role]",
		Short: "List roles and their permissions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			enforcer, err := casbinrbac.NewEnforcer()
			if err != nil {
				return err
			}
			roles := rbac.Roles()
			if len(args) == 1 {
				role, err := rbac.ParseRole(args[0])
				if err != nil {
					return err
				}
				roles = []rbac.Role{role}
			}

			table := pterm.TableData{{"ROLE", "LEVEL", "PERMISSIONS"}}
			for _, role := range roles {
				perms, err := enforcer.Policy(role)
				if err != nil {
					return err
				}
				table = append(table, []string{string(role), fmt.Sprint(rbac.RoleLevel(role)), fmt.Sprint(len(perms))})
			}
			_ = pterm.DefaultTable.WithHasHeader().WithData(table).Render()

			if len(roles) == 1 {
				perms, err := enforcer.Policy(roles[0])
				if err != nil {
					return err
				}
				for _, p := range perms {
					pterm.Println(string(p))
				}
			}
			return nil
		},
	}
	c.AddCommand(newRolesCanCmd())
	return c
}

func newRolesCanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "can <role> <permission>",
		Short: "Check whether a role grants a permission",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			role, err := rbac.ParseRole(args[0])
			if err != nil {
				return err
			}
			perm := rbac.Permission(args[1])
			if !perm.IsValid() {
				return fmt.Errorf("unknown permission %q", args[1])
			}
			enforcer, err := casbinrbac.NewEnforcer()
			if err != nil {
				return err
			}
			ok, err := enforcer.RoleCan(role, perm)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("role %s does not grant %s", role, perm)
			}
			pterm.Success.Printf("role %s grants %s\n", role, perm)
			return nil
		},
	}
}
