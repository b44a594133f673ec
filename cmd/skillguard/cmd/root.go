// Package cmd implements the skillguard command line.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pterm/pterm"
	"github.com/reglet-dev/skillguard/config"
	"github.com/reglet-dev/skillguard/log"
	"github.com/spf13/cobra"
)

var (
	configPath     string
	nonInteractive bool

	cfg    *config.Config
	logger *slog.Logger
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "skillguard",
		Short: "Capability permissions for agent skills",
		Long: `skillguard checks what installed agent skills may do (filesystem, network,
API, AI, system and key-value access), manages approval of dangerous
permissions and serves the role-based HTTP API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if os.Getenv("SKILLGUARD_NON_INTERACTIVE") == "1" {
				nonInteractive = true
			}
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			cfg.Log.Output = cmd.ErrOrStderr()
			l, err := log.New(cfg.Log)
			if err != nil {
				return err
			}
			logger = l
			pterm.SetDefaultOutput(cmd.OutOrStdout())
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to skillguard.yaml")
	root.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Disable interactive prompts (also set via SKILLGUARD_NON_INTERACTIVE=1)")

	root.AddCommand(
		newCheckCmd(),
		newDescribeCmd(),
		newValidateCmd(),
		newApproveCmd(),
		newSchemaCmd(),
		newRolesCmd(),
		newServeCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
