// Package render turns round-trip outcomes into the text shown in the results
// area of the popup and on stdout for one-shot queries.
package render

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/lotas/tabask/internal/interpret"
)

// MaxTitleLen is how many characters of a tab title the opening message shows.
const MaxTitleLen = 40

const rateLimitHint = "There was a problem connecting to the completion API. If you're seeing rate limit errors,\nwait a few minutes before trying again."

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	bodyStyle  = lipgloss.NewStyle().PaddingLeft(2)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	iconStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
)

// Truncate shortens title to max characters followed by "..." when longer.
func Truncate(title string, max int) string {
	r := []rune(title)
	if len(r) <= max {
		return title
	}
	return string(r[:max]) + "..."
}

// Opening is shown while the resolved tab is about to be activated. index is 0-based.
func Opening(title string, index, count int) string {
	return iconStyle.Render("⚡") + " " + labelStyle.Render("Opening tab:") + "\n" +
		titleStyle.Render(Truncate(title, MaxTitleLen)) + "\n" +
		dimStyle.Render(fmt.Sprintf("Tab %d of %d", index+1, count))
}

// Response shows the query and the answer with any OPEN_TAB directive removed.
// Line breaks in the answer are preserved.
func Response(query, answer string) string {
	return labelStyle.Render("You asked:") + "\n" +
		bodyStyle.Render(query) + "\n\n" +
		labelStyle.Render("Response:") + "\n" +
		bodyStyle.Render(interpret.StripDirective(answer))
}

// Error shows err's message and a hint about rate limiting.
func Error(err error) string {
	return errorStyle.Render("Error: "+err.Error()) + "\n\n" + dimStyle.Render(rateLimitHint)
}
