package export

import (
	"encoding/json"
	"net/url"
	"time"

	"github.com/lotas/tabask/internal/analyzer"
	"github.com/lotas/tabask/internal/types"
)

type jsonExport struct {
	Source     string    `json:"source"`
	TakenAt    time.Time `json:"taken_at"`
	ExportedAt time.Time `json:"exported_at"`
	Tabs       []jsonTab `json:"tabs"`
}

type jsonTab struct {
	Number   int    `json:"number"`
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Domain   string `json:"domain"`
	WindowID int    `json:"window_id,omitempty"`
	Active   bool   `json:"active,omitempty"`
	// DuplicateOf lists the numbers of other tabs with the same URL.
	DuplicateOf []int `json:"duplicate_of,omitempty"`
}

// JSON formats a tab snapshot as a JSON document. Tab numbers are 1-based and
// match the numbering the model sees in the prompt.
func JSON(snap *types.Snapshot) (string, error) {
	out := jsonExport{
		Source:     snap.Source,
		TakenAt:    snap.TakenAt,
		ExportedAt: time.Now(),
		Tabs:       make([]jsonTab, 0, len(snap.Tabs)),
	}
	dups := analyzer.Duplicates(snap.Tabs)

	for i, tab := range snap.Tabs {
		out.Tabs = append(out.Tabs, jsonTab{
			Number:      i + 1,
			ID:          tab.ID,
			Title:       tab.Title,
			URL:         tab.URL,
			Domain:      extractDomain(tab.URL),
			WindowID:    tab.WindowID,
			Active:      tab.Active,
			DuplicateOf: numbers(dups[i]),
		})
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}

func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Hostname()
}

// numbers converts 0-based indices to the 1-based numbers shown to users.
func numbers(indices []int) []int {
	if len(indices) == 0 {
		return nil
	}
	out := make([]int, len(indices))
	for i, idx := range indices {
		out[i] = idx + 1
	}
	return out
}
