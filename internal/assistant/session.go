// Package assistant runs the query round trip: compose a prompt from the tab
// snapshot, ask the model, and work out which tab the answer points at.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lotas/tabask/internal/applog"
	"github.com/lotas/tabask/internal/browser"
	"github.com/lotas/tabask/internal/completion"
	"github.com/lotas/tabask/internal/interpret"
	"github.com/lotas/tabask/internal/prompt"
	"github.com/lotas/tabask/internal/storage"
	"github.com/lotas/tabask/internal/types"
)

// DefaultActivateDelay leaves the "opening tab" message on screen long enough
// to be read before focus moves to the browser.
const DefaultActivateDelay = 800 * time.Millisecond

// ErrEmptyQuery is returned when the query is blank.
var ErrEmptyQuery = errors.New("query is empty")

// Session is the state of one popup: the tabs collected when it opened and
// the collaborators used to answer queries about them.
type Session struct {
	Browser       browser.Browser
	Completer     completion.Completer
	Model         string           // recorded in history only
	History       *storage.History // nil disables history
	ActivateDelay time.Duration

	tabs []types.Tab
}

// NewSession collects the current window's tabs once. They are not refreshed
// for the lifetime of the session.
func NewSession(ctx context.Context, b browser.Browser, c completion.Completer) (*Session, error) {
	tabs, err := b.Tabs(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect tabs from %s: %w", b.Name(), err)
	}
	applog.Info("session.tabs", "source", b.Name(), "count", len(tabs))
	return &Session{
		Browser:       b,
		Completer:     c,
		ActivateDelay: DefaultActivateDelay,
		tabs:          tabs,
	}, nil
}

// Tabs returns a copy of the session's snapshot.
func (s *Session) Tabs() []types.Tab {
	out := make([]types.Tab, len(s.tabs))
	copy(out, s.tabs)
	return out
}

// Outcome is the interpreted answer to one query.
type Outcome struct {
	Query     string
	Answer    string // as returned by the model, directive included
	Target    int    // 0-based tab index; valid only if HasTarget
	HasTarget bool
}

// Tab returns the resolved tab.
func (s *Session) Tab(o Outcome) (types.Tab, bool) {
	if !o.HasTarget || o.Target < 0 || o.Target >= len(s.tabs) {
		return types.Tab{}, false
	}
	return s.tabs[o.Target], true
}

// Ask sends query with the tab list to the model and interprets the answer.
func (s *Session) Ask(ctx context.Context, query string) (Outcome, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Outcome{}, ErrEmptyQuery
	}

	start := time.Now()
	applog.Info("ask.start", "source", s.Browser.Name(), "tabs", len(s.tabs))

	answer, err := s.Completer.Complete(ctx, prompt.SystemPrompt, prompt.Compose(s.tabs, query))
	if err != nil {
		applog.Error("ask.error", err, "elapsed", time.Since(start))
		s.record(ctx, storage.Entry{Query: query, Error: err.Error()})
		return Outcome{}, err
	}

	out := Outcome{Query: query, Answer: answer}
	out.Target, out.HasTarget = interpret.FindTarget(answer, query, len(s.tabs))
	applog.Info("ask.done", "elapsed", time.Since(start), "target", out.Target, "found", out.HasTarget)

	e := storage.Entry{Query: query, Answer: answer}
	if tab, ok := s.Tab(out); ok {
		idx := out.Target
		e.Target, e.TabTitle, e.TabURL = &idx, tab.Title, tab.URL
	}
	s.record(ctx, e)
	return out, nil
}

// Open waits for the activation delay and then focuses the resolved tab.
func (s *Session) Open(ctx context.Context, o Outcome) error {
	tab, ok := s.Tab(o)
	if !ok {
		return fmt.Errorf("no tab to open")
	}
	if s.ActivateDelay > 0 {
		t := time.NewTimer(s.ActivateDelay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	applog.Info("tab.activate", "source", s.Browser.Name(), "index", o.Target, "id", tab.ID)
	if err := s.Browser.Activate(ctx, tab); err != nil {
		applog.Error("tab.activate", err, "id", tab.ID)
		return fmt.Errorf("open tab %d: %w", o.Target+1, err)
	}
	return nil
}

func (s *Session) record(ctx context.Context, e storage.Entry) {
	if s.History == nil {
		return
	}
	e.Source = s.Browser.Name()
	e.Model = s.Model
	e.TabCount = len(s.tabs)
	if _, err := s.History.Record(ctx, e); err != nil {
		applog.Error("history.record", err)
	}
}
