package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/lotas/tabask/internal/analyzer"
	"github.com/lotas/tabask/internal/storage"
	"github.com/lotas/tabask/internal/types"
)

// Markdown formats a tab snapshot as a numbered markdown list.
func Markdown(snap *types.Snapshot) string {
	var b strings.Builder

	n := len(snap.Tabs)
	noun := "tabs"
	if n == 1 {
		noun = "tab"
	}
	fmt.Fprintf(&b, "# Tabs (%s, %d %s)\n", snap.Source, n, noun)
	fmt.Fprintf(&b, "> Collected %s\n\n", snap.TakenAt.Format("2006-01-02 15:04"))

	dups := analyzer.Duplicates(snap.Tabs)
	for i, tab := range snap.Tabs {
		title := tab.Title
		if title == "" {
			title = tab.URL
		}
		marker := ""
		if tab.Active {
			marker = " (active)"
		}
		if others := dups[i]; len(others) > 0 {
			marker += fmt.Sprintf(" (same as %s)", joinNumbers(numbers(others)))
		}
		fmt.Fprintf(&b, "%d. [%s](%s)%s\n", i+1, title, tab.URL, marker)
	}

	return b.String()
}

// History formats past queries, newest first, as markdown.
func History(entries []storage.Entry) string {
	if len(entries) == 0 {
		return "No queries recorded.\n"
	}

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "## %q (%s)\n", e.Query, relativeTime(e.AskedAt))
		fmt.Fprintf(&b, "- source: %s, model: %s, tabs: %d\n", e.Source, e.Model, e.TabCount)
		switch {
		case e.Error != "":
			fmt.Fprintf(&b, "- error: %s\n", e.Error)
		case e.Target != nil:
			fmt.Fprintf(&b, "- opened tab %d: [%s](%s)\n", *e.Target+1, e.TabTitle, e.TabURL)
		default:
			for _, line := range strings.Split(strings.TrimSpace(e.Answer), "\n") {
				fmt.Fprintf(&b, "> %s\n", line)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func joinNumbers(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprintf("#%d", n)
	}
	return strings.Join(parts, ", ")
}
