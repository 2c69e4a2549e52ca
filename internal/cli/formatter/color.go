package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ganttagent/internal/agent"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// ActionStyle picks a color by what the action does to the chart.
func ActionStyle(kind string) lipgloss.Style {
	switch {
	case agent.IsDangerous(kind):
		return StyleRed
	case kind == agent.KindQuery:
		return StyleBlue
	case strings.HasPrefix(kind, "add_"):
		return StyleGreen
	case strings.HasPrefix(kind, "update_"), kind == agent.KindSetProgress, kind == agent.KindCollapseBucket:
		return StyleYellow
	default:
		return StylePurple
	}
}

// ActionBadge renders an action type in its color.
func ActionBadge(kind string) string {
	return ActionStyle(kind).Render(kind)
}

// StatusPill summarizes a result in one colored word.
func StatusPill(r agent.Result) string {
	switch {
	case r.Success:
		return StyleGreen.Render("● ok")
	case r.NeedsClarification:
		return StyleYellow.Render("? needs clarification")
	default:
		return StyleRed.Render("✖ failed")
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
