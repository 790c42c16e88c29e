package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version = "dev" // semantic version, injected via ldflags
	commit  string  // git commit SHA
	date    string  // build timestamp
)

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// NewRootCommand builds the cubed command tree.
func NewRootCommand() *cobra.Command {
	var verbose bool
	var flags configFlags

	root := &cobra.Command{
		Use:   "cubed",
		Short: "cubed visualizes (x+dx)³ as a decomposed cube",
		Long: `cubed splits a cube of side x+dx into a box, three faces, three edges and a
point, mirroring (x+dx)³ = x³ + 3x²dx + 3x·dx² + dx³, and recomputes every
piece's transform as dx changes.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			logger := newLogger(os.Stderr, level)

			cfg, err := flags.resolve(cmd.Flags())
			if err != nil {
				return err
			}
			logger.Debug("config resolved",
				"base_unit", cfg.BaseUnit, "initial_dx", cfg.InitialDx, "gap", cfg.Gap,
				"range", fmt.Sprintf("[%g, %g]", cfg.MinDx, cfg.MaxDx),
				"arrangement", cfg.Arrangement, "translate", cfg.Translate, "scale", cfg.Scale, "bounds", cfg.Bounds)

			ctx := withLogger(cmd.Context(), logger)
			cmd.SetContext(withConfig(ctx, cfg))
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("cubed %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	flags.register(root.PersistentFlags())

	root.AddCommand(newLayoutCmd())
	root.AddCommand(newSweepCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newTUICmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newConfigCmd())

	return root
}

// Execute runs the cubed CLI with ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the default configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeDefaultConfig(cmd.OutOrStdout())
		},
	}
}
