package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lotas/tabask/internal/browser"
)

// Source is a selectable place to collect tabs from.
type Source struct {
	Label     string
	Browser   browser.Browser
	IsDefault bool
}

// SourcePicker is an overlay for choosing the tab source before the first query.
type SourcePicker struct {
	Sources []Source
	Cursor  int
}

func NewSourcePicker(sources []Source) SourcePicker {
	p := SourcePicker{Sources: sources}
	for i, s := range sources {
		if s.IsDefault {
			p.Cursor = i
			break
		}
	}
	return p
}

func (m *SourcePicker) MoveUp() {
	if m.Cursor > 0 {
		m.Cursor--
	}
}

func (m *SourcePicker) MoveDown() {
	if m.Cursor < len(m.Sources)-1 {
		m.Cursor++
	}
}

func (m SourcePicker) Selected() Source {
	return m.Sources[m.Cursor]
}

func (m *SourcePicker) SelectByNumber(n int) bool {
	idx := n - 1
	if idx >= 0 && idx < len(m.Sources) {
		m.Cursor = idx
		return true
	}
	return false
}

func (m SourcePicker) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	selectedStyle := lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	normalStyle := lipgloss.NewStyle().Padding(0, 1)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Ask about tabs from:") + "\n\n")

	for i, src := range m.Sources {
		label := fmt.Sprintf("%d  %s", i+1, src.Label)
		if src.IsDefault {
			label += " (default)"
		}
		if i == m.Cursor {
			label = selectedStyle.Render(label)
		} else {
			label = normalStyle.Render("  " + label)
		}
		b.WriteString(label + "\n")
	}

	b.WriteString("\n" + normalStyle.Render("↑↓ navigate · enter select · 1-9 quick select"))

	return boxStyle.Render(b.String())
}
