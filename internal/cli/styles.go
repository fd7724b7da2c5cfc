package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/constants"
	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/models"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	DangerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	levelColors = map[constants.AchievementLevel]lipgloss.Color{
		constants.LevelBronze: lipgloss.Color("#CD7F32"),
		constants.LevelSilver: lipgloss.Color("#C0C0C0"),
		constants.LevelGold:   lipgloss.Color("#FFD700"),
	}
)

// LevelStyle colors text by achievement tier.
func LevelStyle(level constants.AchievementLevel) lipgloss.Style {
	if c, ok := levelColors[level]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return MutedStyle
}

// ItemStyle colors an item title with its stored color token.
func ItemStyle(c models.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex()))
}

// ProgressBar renders pct (0-100) as a fixed-width bar followed by the percentage.
func ProgressBar(pct, width int) string {
	if width <= 0 {
		width = 20
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := pct * width / 100
	bar := SuccessStyle.Render(strings.Repeat("█", filled)) + MutedStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %3d%%", bar, pct)
}
