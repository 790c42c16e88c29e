package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/chazu/cubed/pkg/decomp"
)

// Slider styles
var (
	sliderFillStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	sliderTrackStyle = lipgloss.NewStyle().Foreground(colorDim)
	sliderKnobStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
)

const (
	sliderWidth = 40
	coarseSteps = 100 // shift+arrow moves this many steps
)

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Drive dx with an interactive terminal slider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := decomp.NewState(configFromContext(cmd.Context()))
			if err != nil {
				return err
			}
			p := tea.NewProgram(NewSliderModel(st), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				return err
			}
			if m, ok := final.(SliderModel); ok {
				loggerFromContext(cmd.Context()).Debug("slider closed", "dx", m.State.CurrentDx(), "updates", m.Updates)
			}
			return nil
		},
	}
}

// SliderModel is the bubbletea model for the dx slider. Every key press
// that moves the knob is applied to State as one update.
type SliderModel struct {
	State   *decomp.State
	Last    decomp.Update
	Updates int
	Err     error
}

// NewSliderModel creates a slider positioned at the state's current dx.
func NewSliderModel(st *decomp.State) SliderModel {
	dx := st.CurrentDx()
	return SliderModel{
		State: st,
		Last:  decomp.Compute(st.Config(), dx, dx),
	}
}

func (m SliderModel) Init() tea.Cmd {
	return nil
}

func (m SliderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	cfg := m.State.Config()
	step := cfg.Step
	if step <= 0 {
		step = (cfg.MaxDx - cfg.MinDx) / sliderWidth
	}
	dx := m.State.CurrentDx()

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "right", "l":
		dx += step
	case "left", "h":
		dx -= step
	case "shift+right", "L":
		dx += step * coarseSteps
	case "shift+left", "H":
		dx -= step * coarseSteps
	case "home":
		dx = cfg.MinDx
	case "end":
		dx = cfg.MaxDx
	case "r":
		dx = cfg.InitialDx
	default:
		return m, nil
	}

	// The slider itself never leaves the range, whatever the bounds policy.
	dx = cfg.Snap(clamp(dx, cfg.MinDx, cfg.MaxDx))
	u, err := m.State.Update(dx)
	if err != nil {
		m.Err = err
		return m, nil
	}
	m.Err = nil
	m.Last = u
	m.Updates++
	return m, nil
}

func (m SliderModel) View() string {
	cfg := m.State.Config()
	dx := m.State.CurrentDx()

	var b strings.Builder
	b.WriteString(styleTitle.Render(fmt.Sprintf("(x+dx)³  x=%g", cfg.BaseUnit)))
	b.WriteString("\n")
	b.WriteString(styleDim.Render("←/→ step  shift+←/→ jump  home/end  r reset  q quit"))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("%s %s %s  dx=%s\n",
		styleDim.Render(num(cfg.MinDx)),
		sliderBar(dx, cfg.MinDx, cfg.MaxDx),
		styleDim.Render(num(cfg.MaxDx)),
		styleNumber.Render(num(dx))))
	b.WriteString(fmt.Sprintf("translate %s  scale %s\n\n",
		styleValue.Render(num(m.Last.Translate)),
		styleValue.Render(num(m.Last.Scale))))

	b.WriteString(layoutTable(m.State))
	b.WriteString("\n")
	b.WriteString(volumeLine(cfg.BaseUnit, dx, decomp.Measure(cfg, m.State.Layout(), dx)))
	b.WriteString("\n")
	for _, f := range findings(decomp.Check(cfg, m.State.Layout(), dx)) {
		b.WriteString(f)
		b.WriteString("\n")
	}
	if m.Err != nil {
		b.WriteString(styleError.Render(m.Err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

// sliderBar draws a fixed-width track with the knob at dx.
func sliderBar(dx, lo, hi float64) string {
	pos := 0
	if hi > lo {
		pos = int((dx - lo) / (hi - lo) * float64(sliderWidth-1))
	}
	pos = max(0, min(pos, sliderWidth-1))
	return sliderFillStyle.Render(strings.Repeat("━", pos)) +
		sliderKnobStyle.Render("●") +
		sliderTrackStyle.Render(strings.Repeat("─", sliderWidth-1-pos))
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
