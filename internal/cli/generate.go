package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kolah/refdoc/internal/config"
	"github.com/kolah/refdoc/internal/docgen"
	"github.com/kolah/refdoc/internal/loader"
	"github.com/kolah/refdoc/internal/watch"
)

func GenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the markdown reference from an OpenAPI spec",
		Args:  cobra.NoArgs,
		RunE:  runGenerate,
	}

	config.BindCommonFlags(cmd)
	config.BindRenderFlags(cmd)
	cmd.Flags().Bool("dry-run", false, "Print output without writing files")
	cmd.Flags().BoolP("watch", "w", false, "Regenerate when the spec or config file changes")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg.Log.Level, cmd.ErrOrStderr())

	dryRun, _ := cmd.Flags().GetBool("dry-run")

	// Each run reloads the config file, so watch mode picks up edits to it.
	generate := func(ctx context.Context) error {
		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		gen, err := docgen.New(cfg, log)
		if err != nil {
			return fmt.Errorf("creating generator: %w", err)
		}

		result, err := loader.LoadFile(cfg.Spec)
		if err != nil {
			return fmt.Errorf("loading spec: %w", err)
		}

		for _, w := range result.Warnings {
			cmd.PrintErrf("Warning: %s\n", w)
		}

		out, err := gen.Generate(ctx, result)
		if err != nil {
			return err
		}

		ref := out.Reference
		cmd.PrintErrf("Loaded OpenAPI %s: %s v%s\n", result.Version, ref.Info.Title, ref.Info.Version)
		cmd.PrintErrf("  Groups: %d\n", len(ref.Groups))
		cmd.PrintErrf("  Operations: %d\n", ref.OperationCount())
		if out.Report != nil {
			cmd.PrintErrf("  Samples checked: %d (%d rejected)\n", out.Report.Checked, len(out.Report.Findings))
		}

		if dryRun {
			fmt.Fprint(cmd.OutOrStdout(), out.Content)
			return nil
		}

		if dir := filepath.Dir(out.Filename); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
		}
		if err := os.WriteFile(out.Filename, []byte(out.Content), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", out.Filename, err)
		}
		cmd.PrintErrf("Written: %s\n", out.Filename)

		return nil
	}

	watching, _ := cmd.Flags().GetBool("watch")
	if !watching {
		return generate(contextOf(cmd))
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt)
	defer stop()

	w, err := watch.New([]string{cfg.Spec, cfg.File}, watch.DefaultDebounce, log)
	if err != nil {
		return err
	}
	cmd.PrintErrf("Watching %s (Ctrl+C to stop)\n", cfg.Spec)
	return w.Run(ctx, generate)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
