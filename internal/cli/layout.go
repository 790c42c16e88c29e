package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/chazu/cubed/pkg/decomp"
)

func newLayoutCmd() *cobra.Command {
	var asJSON bool
	var dx float64

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the eight solids and where they sit at a given dx",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd.Context())
			st, err := decomp.NewState(cfg)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dx") {
				if _, err := st.Update(dx); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, layoutView(st))
			}
			renderLayout(out, st)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().Float64Var(&dx, "dx", 0, "show poses at this dx (default: initial dx)")
	return cmd
}

// layoutDoc is the JSON form of a session's solids and poses.
type layoutDoc struct {
	Dx      float64                `json:"dx"`
	Layout  *decomp.Layout         `json:"layout"`
	Poses   map[string]decomp.Pose `json:"poses"`
	Volumes decomp.Volumes         `json:"volumes"`
	Check   decomp.CheckResult     `json:"check"`
}

func layoutView(st *decomp.State) layoutDoc {
	return layoutDoc{
		Dx:      st.CurrentDx(),
		Layout:  st.Layout(),
		Poses:   st.Poses(),
		Volumes: decomp.Measure(st.Config(), st.Layout(), st.CurrentDx()),
		Check:   decomp.Check(st.Config(), st.Layout(), st.CurrentDx()),
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// layoutTable renders one row per solid with its pose at the current dx.
func layoutTable(st *decomp.State) string {
	rows := [][]string{}
	for _, s := range st.Layout().Solids() {
		p := st.Pose(s)
		rows = append(rows, []string{
			swatch(s.Color),
			s.Name,
			s.Kind.String(),
			vec(s.Dimensions),
			vec(p.Position),
			vec(p.Scale),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("", "Solid", "Kind", "Dimensions", "Position", "Scale").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col >= 3 {
				return styleValue
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

func renderLayout(w io.Writer, st *decomp.State) {
	cfg := st.Config()
	v := decomp.Measure(cfg, st.Layout(), st.CurrentDx())

	var b strings.Builder
	b.WriteString(styleTitle.Render(fmt.Sprintf("(x+dx)³ with x=%g dx=%g", cfg.BaseUnit, st.CurrentDx())))
	b.WriteString("\n")
	b.WriteString(layoutTable(st))
	b.WriteString("\n")
	b.WriteString(volumeLine(cfg.BaseUnit, st.CurrentDx(), v))
	for _, f := range findings(decomp.Check(cfg, st.Layout(), st.CurrentDx())) {
		b.WriteString("\n")
		b.WriteString(f)
	}
	fmt.Fprintln(w, b.String())
}

// findings renders check results, errors first.
func findings(r decomp.CheckResult) []string {
	var out []string
	for _, f := range r.Errors {
		out = append(out, styleError.Render("✗ "+f.Error()))
	}
	for _, f := range r.Warnings {
		out = append(out, styleWarning.Render("! "+f.Error()))
	}
	return out
}

// volumeLine shows the binomial terms and whether they add up.
func volumeLine(x, dx float64, v decomp.Volumes) string {
	want := decomp.Cube(x, dx)
	status := styleSuccess.Render("✓")
	if diff := v.Total() - want; diff > 1e-6 || diff < -1e-6 {
		status = styleWarning.Render("≠ " + num(want))
	}
	return fmt.Sprintf("%s %s + %s + %s + %s = %s %s",
		styleDim.Render("volume"),
		styleNumber.Render(num(v.Box)),
		styleNumber.Render(num(v.Faces)),
		styleNumber.Render(num(v.Edges)),
		styleNumber.Render(num(v.Point)),
		styleValue.Render(num(v.Total())),
		status)
}
