package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// popupWidth caps the results area so long answers wrap like they would in a
// narrow browser popup.
const popupWidth = 72

func renderNavbar(source string, tabCount int, model string, width int) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	sourceStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statsStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	left := " " + titleStyle.Render("Tab Assistant")
	if source != "" {
		noun := "tabs"
		if tabCount == 1 {
			noun = "tab"
		}
		left += "   " + statsStyle.Render(fmt.Sprintf("%d %s", tabCount, noun))
	}

	right := sourceStyle.Render(source)
	if model != "" {
		right += statsStyle.Render(" · " + model)
	}
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	padding := lipgloss.NewStyle().Width(gap)

	return left + padding.Render("") + right + " "
}
