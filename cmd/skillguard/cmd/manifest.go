package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/reglet-dev/skillguard/application/skill"
	"github.com/reglet-dev/skillguard/application/validation"
	"github.com/reglet-dev/skillguard/domain/entities"
	"github.com/reglet-dev/skillguard/domain/policy"
	"github.com/reglet-dev/skillguard/infrastructure/parser"
	"github.com/reglet-dev/skillguard/infrastructure/telemetry"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <manifest> <request>...",
		Short: "Check operations against a skill's permissions",
		Long: `Evaluates each request (for example fs:read:/data/a.csv or
network:https:api.example.com) against the permissions declared by the
manifest. Exits non-zero if any request is denied.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := parser.ReadFile(args[0])
			if err != nil {
				return err
			}

			metrics, err := telemetry.NewDenialMetrics()
			if err != nil {
				return err
			}
			registry := skill.NewRegistry(
				skill.WithLogger(logger),
				skill.WithDenialHandler(policy.MultiDenialHandler{
					&policy.SlogDenialHandler{Logger: logger},
					metrics,
				}),
			)
			if err := registry.Install(manifest); err != nil {
				return err
			}

			table := pterm.TableData{{"REQUEST", "RESULT", "REASON"}}
			denied := 0
			for _, req := range args[1:] {
				result, err := registry.Evaluate(cmd.Context(), manifest.Name, req)
				if err != nil {
					table = append(table, []string{req, pterm.Red("invalid"), err.Error()})
					denied++
					continue
				}
				verdict := pterm.Green("granted")
				if !result.Granted {
					verdict = pterm.Red("denied")
					denied++
				}
				table = append(table, []string{req, verdict, result.Reason})
			}
			_ = pterm.DefaultTable.WithHasHeader().WithData(table).Render()

			if denied > 0 {
				return fmt.Errorf("%d of %d request(s) denied for skill %s", denied, len(args)-1, manifest.Name)
			}
			return nil
		},
	}
}

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <manifest>",
		Short: "Describe a skill's permissions and risk",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			manifest, err := parser.ReadFile(args[0])
			if err != nil {
				return err
			}
			assessor := entities.NewRiskAssessor()
			set := manifest.PermissionSet()

			pterm.DefaultSection.Printf("%s %s\n", manifest.Name, manifest.Version)
			if manifest.Description != "" {
				pterm.Println(manifest.Description)
			}

			table := pterm.TableData{{"PERMISSION", "RISK", "APPROVAL", "DESCRIPTION"}}
			for _, p := range manifest.Permissions {
				approval := "-"
				if entities.RequiresApproval(p) {
					approval = "required"
				}
				table = append(table, []string{p, assessor.AssessPermission(p).String(), approval, entities.DescribePermission(p)})
			}
			_ = pterm.DefaultTable.WithHasHeader().WithData(table).Render()

			pterm.Info.Printf("Overall risk: %s\n", assessor.AssessSet(set))
			for _, risk := range assessor.DescribeRisks(set) {
				pterm.Warning.Println(risk)
			}
			return nil
		},
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <manifest>",
		Short: "Validate a skill manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			manifest, err := parser.ReadFile(args[0])
			if err != nil {
				return err
			}
			result, err := validation.NewManifestValidator().Validate(manifest)
			if err != nil {
				return err
			}
			for _, w := range result.Warnings {
				pterm.Warning.Printf("%s: %s\n", w.Field, w.Message)
			}
			if !result.Valid {
				msgs := make([]string, 0, len(result.Errors))
				for _, e := range result.Errors {
					pterm.Error.Printf("%s: %s\n", e.Field, e.Message)
					msgs = append(msgs, e.Field)
				}
				return fmt.Errorf("manifest %s is invalid (%s)", args[0], strings.Join(msgs, ", "))
			}
			pterm.Success.Printf("%s is valid\n", manifest.Name)
			return nil
		},
	}
}
