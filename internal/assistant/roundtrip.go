package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/lotas/tabask/internal/applog"
	"github.com/lotas/tabask/internal/types"
)

// UI is the presentation surface a round trip renders into.
type UI interface {
	SetLoading(on bool)
	ShowOpening(tab types.Tab, index, count int)
	ShowResponse(query, answer string)
	ShowError(err error)
	// Close dismisses the surface after a tab was activated.
	Close()
}

// RoundTrip answers query and renders the outcome into ui. The loading
// indicator is switched on once and off once, whatever happens while the
// model is consulted. If a tab was resolved it is activated after the
// session's delay and ui is closed.
func RoundTrip(ctx context.Context, s *Session, query string, ui UI) error {
	if strings.TrimSpace(query) == "" {
		return ErrEmptyQuery
	}

	out, err := s.answer(ctx, query, ui)
	if err != nil || !out.HasTarget {
		return err
	}

	if err := s.Open(ctx, out); err != nil {
		ui.ShowError(err)
		return err
	}
	ui.Close()
	return nil
}

func (s *Session) answer(ctx context.Context, query string, ui UI) (out Outcome, err error) {
	ui.SetLoading(true)
	defer ui.SetLoading(false)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected failure: %v", r)
			applog.Error("ask.panic", err)
			ui.ShowError(err)
		}
	}()

	out, err = s.Ask(ctx, query)
	if err != nil {
		ui.ShowError(err)
		return out, err
	}

	if tab, ok := s.Tab(out); ok {
		ui.ShowOpening(tab, out.Target, len(s.tabs))
	} else {
		ui.ShowResponse(out.Query, out.Answer)
	}
	return out, nil
}
