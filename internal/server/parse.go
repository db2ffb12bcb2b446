package server

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/lotas/tabask/internal/types"
)

type wireTab struct {
	ID       int    `json:"id"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	WindowID int    `json:"windowId"`
	Index    int    `json:"index"`
	Active   bool   `json:"active"`
}

// ParseSnapshot converts an IncomingMsg of type "snapshot" into the tabs of
// the focused window, ordered by their position in the tab strip. When the
// extension does not report a focused window all tabs are kept.
func ParseSnapshot(msg IncomingMsg) (*types.Snapshot, error) {
	if msg.Type != "snapshot" {
		return nil, fmt.Errorf("unexpected message type %q", msg.Type)
	}
	var wire []wireTab
	if len(msg.Tabs) > 0 {
		if err := json.Unmarshal(msg.Tabs, &wire); err != nil {
			return nil, fmt.Errorf("parse tabs: %w", err)
		}
	}

	tabs := make([]types.Tab, 0, len(wire))
	for _, wt := range wire {
		if msg.WindowID != 0 && wt.WindowID != msg.WindowID {
			continue
		}
		tabs = append(tabs, types.Tab{
			ID:       strconv.Itoa(wt.ID),
			Title:    wt.Title,
			URL:      wt.URL,
			WindowID: wt.WindowID,
			Index:    wt.Index,
			Active:   wt.Active,
		})
	}
	slices.SortStableFunc(tabs, func(a, b types.Tab) int {
		if a.WindowID != b.WindowID {
			return a.WindowID - b.WindowID
		}
		return a.Index - b.Index
	})

	return &types.Snapshot{
		Tabs:    tabs,
		Source:  "live",
		TakenAt: time.Now(),
	}, nil
}
