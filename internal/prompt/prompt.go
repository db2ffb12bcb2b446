package prompt

import (
	"fmt"
	"strings"

	"github.com/lotas/tabask/internal/types"
)

// SystemPrompt frames the assistant's role for every request.
const SystemPrompt = "You are a helpful assistant that helps users find and understand their open browser tabs."

const instructions = `Please respond to the user's query about these tabs. If the query is asking to find specific tabs,
include the tab numbers in your response. Be concise but helpful.

IMPORTANT: If the user is asking to find or open a specific tab, identify the most relevant tab number
and include "OPEN_TAB: X" at the end of your response (where X is the tab number).`

// Compose builds the user turn: every tab as "<n>. <title> (<url>)" numbered
// from 1 in snapshot order, then the query and the answering instructions.
func Compose(tabs []types.Tab, query string) string {
	var b strings.Builder
	b.WriteString("I have the following browser tabs open:\n\n")
	b.WriteString(ListTabs(tabs))
	fmt.Fprintf(&b, "\n\nUser query: \"%s\"\n\n", query)
	b.WriteString(instructions)
	b.WriteByte('\n')
	return b.String()
}

// ListTabs renders the numbered tab lines, one per tab, without a trailing newline.
func ListTabs(tabs []types.Tab) string {
	lines := make([]string, len(tabs))
	for i, t := range tabs {
		lines[i] = fmt.Sprintf("%d. %s (%s)", i+1, t.Title, t.URL)
	}
	return strings.Join(lines, "\n")
}
