package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pilotdeck/pilotdeck/internal/api"
)

var (
	accent   = lipgloss.Color("#8B5CF6") // violet
	green    = lipgloss.Color("#22C55E")
	amber    = lipgloss.Color("#F59E0B")
	red      = lipgloss.Color("#EF4444")
	blue     = lipgloss.Color("#38BDF8")
	slate    = lipgloss.Color("#94A3B8")
	slateDim = lipgloss.Color("#64748B")
	panelBg  = lipgloss.Color("#111827")
	bgDark   = lipgloss.Color("#0B1220")
	line     = lipgloss.Color("#1F2937")
	ink      = lipgloss.Color("#E5E7EB")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ink).
			Background(bgDark).
			BorderStyle(lipgloss.ThickBorder()).
			BorderLeft(true).
			BorderTop(false).
			BorderRight(false).
			BorderBottom(false).
			BorderForeground(accent).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(line).
			Background(panelBg).
			Padding(1, 1)

	panelHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ink)

	mutedBadgeStyle = lipgloss.NewStyle().
			Foreground(slate).
			Background(bgDark).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(line).
			Padding(0, 1)

	keycapStyle = lipgloss.NewStyle().
			Foreground(ink).
			Background(lipgloss.Color("#1E293B")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(line).
			Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#0F172A")).
				BorderStyle(lipgloss.NormalBorder()).
				BorderLeft(true).
				BorderForeground(accent)

	errStyle = lipgloss.NewStyle().Foreground(red)
	dimStyle = lipgloss.NewStyle().Foreground(slateDim)
	inkStyle = lipgloss.NewStyle().Foreground(ink)
)

// statusBadge renders a session status with its conventional colour. Unknown
// statuses get the muted badge, rendered verbatim.
func statusBadge(status string) string {
	bg := lipgloss.NewStyle().Foreground(bgDark).Padding(0, 1)
	switch status {
	case api.StatusCompleted:
		return bg.Background(green).Render(status)
	case api.StatusFailed:
		return bg.Background(red).Render(status)
	case api.StatusWaitingForUser:
		return bg.Background(amber).Render(status)
	case api.StatusCoding, api.StatusPlanning, api.StatusReviewing:
		return bg.Background(blue).Render(status)
	case api.StatusQueued:
		return bg.Background(slateDim).Render(status)
	}
	return mutedBadgeStyle.Render(status)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
