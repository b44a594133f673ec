package cmd

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/reglet-dev/skillguard/application/skill"
	"github.com/reglet-dev/skillguard/domain/ports"
	"github.com/reglet-dev/skillguard/infrastructure/approvalstore"
	"github.com/reglet-dev/skillguard/infrastructure/parser"
	"github.com/reglet-dev/skillguard/infrastructure/prompter"
	"github.com/spf13/cobra"
)

var (
	approveRevoke bool
	approveYes    bool
)

func newApprovalStore() *approvalstore.FileStore {
	var opts []approvalstore.FileStoreOption
	if cfg.Approvals.Path != "" {
		opts = append(opts, approvalstore.WithPath(cfg.Approvals.Path))
	}
	return approvalstore.NewFileStore(opts...)
}

func newApproveCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "approve <manifest>",
		Short: "Review and approve a skill's dangerous permissions",
		Long: `Prompts for every dangerous permission (filesystem writes and deletes,
command execution and process spawning) the skill declares that has not
been approved yet. Answer "always" to persist the approval.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := parser.ReadFile(args[0])
			if err != nil {
				return err
			}
			store := newApprovalStore()

			var p ports.Prompter
			if !nonInteractive {
				p = prompter.NewCliPrompter(os.Stdin, cmd.OutOrStdout())
			}
			approver := skill.NewApprover(store, p, skill.WithApproverLogger(logger))

			switch {
			case approveRevoke:
				if err := approver.Revoke(manifest.Name); err != nil {
					return err
				}
				pterm.Success.Printf("Revoked approvals for %s\n", manifest.Name)
				return nil

			case approveYes:
				approved, err := approver.Approve(manifest)
				if err != nil {
					return err
				}
				for _, perm := range approved {
					pterm.Info.Printf("approved %s\n", perm)
				}

			default:
				if err := approver.Review(manifest); err != nil {
					return err
				}
			}
			pterm.Success.Printf("%s is approved (%s)\n", manifest.Name, store.ConfigPath())
			return nil
		},
	}
	c.Flags().BoolVar(&approveRevoke, "revoke", false, "Forget all approvals of the skill")
	c.Flags().BoolVarP(&approveYes, "yes", "y", false, "Approve every pending permission without prompting")
	return c
}
