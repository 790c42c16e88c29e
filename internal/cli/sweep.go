package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/chazu/cubed/pkg/decomp"
)

type sweepOptions struct {
	from, to float64
	steps    int
	asJSON   bool
}

func newSweepCmd() *cobra.Command {
	var opts sweepOptions

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Step dx across a range and print each update",
		Long: `Sweep moves dx from --from to --to in --steps equal steps, applying each
value as an update, and prints the translate and scale amounts along with
the volume check for every frame.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd.Context())
			if !cmd.Flags().Changed("from") {
				opts.from = cfg.MinDx
			}
			if !cmd.Flags().Changed("to") {
				opts.to = cfg.MaxDx
			}
			frames, err := sweep(cfg, opts.from, opts.to, opts.steps)
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("sweep complete", "frames", len(frames))

			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), frames)
			}
			renderSweep(cmd.OutOrStdout(), cfg, frames)
			return nil
		},
	}

	cmd.Flags().Float64Var(&opts.from, "from", 0, "first dx (default: min_dx)")
	cmd.Flags().Float64Var(&opts.to, "to", 0, "last dx (default: max_dx)")
	cmd.Flags().IntVarP(&opts.steps, "steps", "n", 10, "number of steps between from and to")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

// sweepFrame is one applied update plus the resulting volume terms.
type sweepFrame struct {
	decomp.Update
	Volumes decomp.Volumes `json:"volumes"`
}

// sweep applies steps+1 evenly spaced values from..to to a fresh session.
func sweep(cfg decomp.Config, from, to float64, steps int) ([]sweepFrame, error) {
	if steps < 1 {
		return nil, fmt.Errorf("steps must be at least 1, got %d", steps)
	}
	st, err := decomp.NewState(cfg)
	if err != nil {
		return nil, err
	}

	frames := make([]sweepFrame, 0, steps+1)
	for i := 0; i <= steps; i++ {
		dx := to
		if i < steps {
			dx = from + (to-from)*float64(i)/float64(steps)
		}
		u, err := st.Update(dx)
		if err != nil {
			return frames, fmt.Errorf("step %d: %w", i, err)
		}
		frames = append(frames, sweepFrame{
			Update:  u,
			Volumes: decomp.Measure(cfg, st.Layout(), u.Dx),
		})
	}
	return frames, nil
}

func renderSweep(w io.Writer, cfg decomp.Config, frames []sweepFrame) {
	rows := make([][]string, 0, len(frames))
	for _, f := range frames {
		rows = append(rows, []string{
			num(f.PrevDx),
			num(f.Dx),
			num(f.Translate),
			num(f.Scale),
			vec(f.Point.Translation),
			num(f.Volumes.Total()),
			num(decomp.Cube(cfg.BaseUnit, f.Dx)),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("Prev dx", "dx", "Translate", "Scale", "Point moves", "Volume", "(x+dx)³").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			return styleValue
		})

	fmt.Fprintln(w, styleTitle.Render(fmt.Sprintf("sweep %s policy, %s scale", cfg.Translate, cfg.Scale)))
	fmt.Fprintln(w, t.Render())
}
