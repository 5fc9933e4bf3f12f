// Package theme holds the lipgloss styles shared by the CLI, the TUI and the
// terminal completion effect.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/prosper/internal/models"
)

var categoryColors = map[models.Category]lipgloss.Color{
	models.CategoryBody:          "#27ae60",
	models.CategoryEnergy:        "#7bed9f",
	models.CategoryMind:          "#9b59b6",
	models.CategoryWork:          "#3498db",
	models.CategoryRelationships: "#ff7675",
	models.CategoryMoney:         "#5d7a96",
}

var categoryIcons = map[models.Category]string{
	models.CategoryBody:          "💪",
	models.CategoryEnergy:        "⚡",
	models.CategoryMind:          "🧠",
	models.CategoryWork:          "💼",
	models.CategoryRelationships: "❤️",
	models.CategoryMoney:         "💰",
}

var (
	Title    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	Subtle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	Done     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	Warning  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true)
	Danger   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	Selected = lipgloss.NewStyle().Background(lipgloss.Color("236")).Bold(true)
	Doc      = lipgloss.NewStyle().Padding(1, 2)
)

// CategoryColor returns the accent colour of c, grey for unknown categories.
func CategoryColor(c models.Category) lipgloss.Color {
	if col, ok := categoryColors[c]; ok {
		return col
	}
	return "240"
}

func CategoryIcon(c models.Category) string {
	if icon, ok := categoryIcons[c]; ok {
		return icon
	}
	return "•"
}

// Category renders a coloured category label.
func Category(c models.Category) string {
	return lipgloss.NewStyle().Foreground(CategoryColor(c)).Render(string(c))
}

// Bar renders a horizontal bar of width cells filled to pct (0-100).
func Bar(pct float64, width int, color lipgloss.Color) string {
	filled := int(pct/100*float64(width) + 0.5)
	filled = max(0, min(width, filled))
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		Subtle.Render(strings.Repeat("░", width-filled))
}

// ScoreColor grades a 0-100 score red, amber or green.
func ScoreColor(score float64) lipgloss.Color {
	switch {
	case score >= 70:
		return "42"
	case score >= 40:
		return "214"
	default:
		return "196"
	}
}
