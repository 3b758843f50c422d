package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Styles
var (
	highlight  = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special    = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	warning    = lipgloss.AdaptiveColor{Light: "#F29F05", Dark: "#F29F05"}

	titleStyle = lipgloss.NewStyle().
			Foreground(highlight).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	// Status dots
	dotStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).SetString("•")
	okDot    = lipgloss.NewStyle().Foreground(special).SetString("●")
	warnDot  = lipgloss.NewStyle().Foreground(warning).SetString("●")

	badgeStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("#ffffff")).
			Bold(true)

	regexBadge   = badgeStyle.Background(lipgloss.Color("#3C8AFF")) // Blue
	literalBadge = badgeStyle.Background(lipgloss.Color("#8E44AD")) // Purple
	insertBadge  = badgeStyle.Background(lipgloss.Color("#27AE60")) // Green
)

// Helper functions for common output patterns

func PrintSuccess(msg string) {
	fmt.Printf("%s %s\n", okDot.String(), msg)
}

func PrintWarning(msg string) {
	fmt.Printf("%s %s\n", warnDot.String(), msg)
}

// RenderTable prints rows under bold headers, padding each column to its widest cell.
func RenderTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	for i, h := range headers {
		fmt.Print(headerStyle.Width(widths[i] + 2).Render(h))
	}
	fmt.Println()

	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				fmt.Print(lipgloss.NewStyle().Width(widths[i]+2).Padding(0, 1).Render(cell))
			}
		}
		fmt.Println()
	}
}

// GetMatchDot marks whether a rule changed the text.
func GetMatchDot(matched bool) string {
	if matched {
		return okDot.String()
	}
	return dotStyle.String()
}

// GetKindBadge renders a rule kind as a colored badge.
func GetKindBadge(kind string) string {
	switch kind {
	case "regex":
		return regexBadge.Render("REGEX")
	case "literal":
		return literalBadge.Render("LITERAL")
	case "insert-before-final-brace":
		return insertBadge.Render("INSERT")
	default:
		return badgeStyle.Background(lipgloss.Color("#95A5A6")).Render(kind)
	}
}
