package tui

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Colors - cyberpunk/neon palette
var (
	ColorPrimary    = lipgloss.Color("#C084FC") // soft violet
	ColorDanger     = lipgloss.Color("#FF5555") // red
	ColorMuted      = lipgloss.Color("#4A5568") // darker muted
	ColorBorder     = lipgloss.Color("#4A5568") // border
	ColorBackground = lipgloss.Color("#1F1F23") // dark background
	ColorCyan       = lipgloss.Color("#00FFFF") // neon cyan
	ColorLeaf       = lipgloss.Color("#A0A0A0") // leaves on chains without a color
	ColorText       = lipgloss.Color("#E4E4E7") // default text
)

// chainColors tints leaf borders by chain
var chainColors = map[string]lipgloss.Color{
	"Ethereum": lipgloss.Color("#8EA2F5"),
	"Polygon":  lipgloss.Color("#A77BF3"),
}

// ChainColor returns the border color for a chain
func ChainColor(chain string) lipgloss.Color {
	if c, ok := chainColors[chain]; ok {
		return c
	}
	return ColorLeaf
}

// Styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Background(ColorBackground).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Background(ColorPrimary).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 1).
			Bold(true)

	StatsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	// Help bar - dimmer with bright key highlights
	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3D4555")). // very dim
			Padding(0, 1)

	HelpKey = lipgloss.NewStyle().
		Foreground(ColorCyan).
		Background(lipgloss.Color("#1E3A4C")). // subtle dark cyan bg
		Padding(0, 1)

	// Help overlay key style (no background for cleaner look)
	HelpOverlayKey = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Padding(0, 1)
)

// FormatValue formats a wallet value with a metric suffix
func FormatValue(v float64) string {
	negative := v < 0
	if negative {
		v = -v
	}

	var result string
	switch {
	case v >= 1e9:
		result = fmt.Sprintf("%.1fB", v/1e9)
	case v >= 1e6:
		result = fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		result = fmt.Sprintf("%.1fk", v/1e3)
	case v == math.Trunc(v):
		result = fmt.Sprintf("%.0f", v)
	default:
		result = fmt.Sprintf("%.2f", v)
	}

	if negative {
		return "-" + result
	}
	return result
}

// FormatTime formats a time for display, using shorter format for today
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	now := time.Now()
	if t.YearDay() == now.YearDay() && t.Year() == now.Year() {
		return t.Format("15:04:05")
	}
	return t.Format("Jan 2 15:04")
}

// shortAddress abbreviates a hex address for narrow blocks
func shortAddress(address string, width int) string {
	s := "0x" + address
	if len(s) <= width || width < 7 {
		if len(s) > width && width > 0 {
			return s[:width]
		}
		return s
	}
	keep := (width - 1) / 2
	return s[:keep] + "…" + s[len(s)-(width-1-keep):]
}
