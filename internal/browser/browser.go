// Package browser provides the tab inventory and tab activation primitives
// the assistant works against. Each backend reaches the user's browser a
// different way: a WebSocket-connected extension, the Chrome DevTools
// endpoint, or a Firefox session file on disk.
package browser

import (
	"context"
	"errors"

	"github.com/lotas/tabask/internal/types"
)

var (
	// ErrReadOnly is returned by backends that can list tabs but not focus them.
	ErrReadOnly = errors.New("this tab source is read-only; cannot switch tabs")
	// ErrNotConnected is returned when the extension has not connected yet.
	ErrNotConnected = errors.New("browser extension not connected")
)

// Browser lists the current window's tabs and brings one of them to front.
type Browser interface {
	// Name identifies the backend in logs and the UI, e.g. "live".
	Name() string
	// Tabs returns the current window's tabs in tab-strip order.
	Tabs(ctx context.Context) ([]types.Tab, error)
	// Activate focuses the given tab.
	Activate(ctx context.Context, tab types.Tab) error
}
