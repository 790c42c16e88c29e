package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var (
	colorCyan   = lipgloss.Color("36")  // primary
	colorGreen  = lipgloss.Color("35")  // success
	colorYellow = lipgloss.Color("220") // warnings
	colorRed    = lipgloss.Color("167") // errors
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // secondary text
	colorDim    = lipgloss.Color("240") // muted text
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleError   = lipgloss.NewStyle().Foreground(colorRed)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleBorder  = lipgloss.NewStyle().Foreground(colorDim)
)

// swatch renders a block in the solid's "#rrggbb" color.
func swatch(hex string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("██")
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}

func vec(v v3.Vec) string {
	return fmt.Sprintf("(%s, %s, %s)", num(v.X), num(v.Y), num(v.Z))
}
