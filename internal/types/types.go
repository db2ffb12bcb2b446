package types

import "time"

// Tab is one browser tab as seen when the snapshot was taken.
type Tab struct {
	ID       string // opaque handle understood by the browser backend
	Title    string
	URL      string
	WindowID int
	Index    int // position in the window as reported by the browser
	Active   bool
}

// Snapshot holds the tabs of the current window, in browser order.
type Snapshot struct {
	Tabs    []Tab
	Source  string // "live", "chrome", "firefox:<profile>"
	TakenAt time.Time
}

// Profile represents a Firefox profile.
type Profile struct {
	Name       string
	Path       string // absolute path to profile directory
	IsDefault  bool
	IsRelative bool
}
