package render

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	Accent = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00AFD7"}
	Good   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	Dim    = lipgloss.AdaptiveColor{Light: "#9E9E9E", Dark: "#626262"}

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Accent).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Accent).
			Padding(0, 1)

	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Good)

	advisoryStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(Dim)
)

// Header renders the boxed banner that opens one section of the report.
func Header(index, total int, title string) string {
	return headerStyle.Render(fmt.Sprintf("%d/%d %s", index, total, title))
}

// Banner renders the closing line of a complete run.
func Banner(text string) string {
	return bannerStyle.Render("✔ " + text)
}

// Advisory renders a low-key notice meant for stderr, like a missing pager.
func Advisory(text string) string {
	return advisoryStyle.Render(text)
}
