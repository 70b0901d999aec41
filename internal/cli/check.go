package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kolah/refdoc/internal/config"
	"github.com/kolah/refdoc/internal/docgen"
	"github.com/kolah/refdoc/internal/loader"
)

func CheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the synthesized curl samples against the spec",
		Args:  cobra.NoArgs,
		RunE:  runCheck,
	}

	config.BindCommonFlags(cmd)

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg.Log.Level, cmd.ErrOrStderr())

	result, err := loader.LoadFile(cfg.Spec)
	if err != nil {
		return fmt.Errorf("loading spec: %w", err)
	}
	for _, w := range result.Warnings {
		cmd.PrintErrf("Warning: %s\n", w)
	}

	gen, err := docgen.New(cfg, log)
	if err != nil {
		return fmt.Errorf("creating generator: %w", err)
	}

	ctx := contextOf(cmd)
	ref, err := gen.Build(ctx, result)
	if err != nil {
		return err
	}

	// With --strict, err carries the findings and the report is still set.
	report, err := gen.Check(ctx, result, ref)
	if report == nil {
		return err
	}

	cmd.PrintErrf("Checked %d samples, %d rejected\n", report.Checked, len(report.Findings))
	for _, f := range report.Findings {
		fmt.Fprintln(cmd.OutOrStdout(), f.Error())
	}

	return err
}
