package browser

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lotas/tabask/internal/applog"
	"github.com/lotas/tabask/internal/server"
	"github.com/lotas/tabask/internal/types"
)

// Live talks to the companion extension over the local WebSocket bridge.
// Calls are expected to be sequential; each one consumes the server's
// message channel until it sees its own reply.
type Live struct {
	srv  *server.Server
	poll time.Duration
}

// NewLive wraps srv. The caller either calls Start or mounts srv.Handler()
// on its own listener.
func NewLive(srv *server.Server) *Live {
	return &Live{srv: srv, poll: 100 * time.Millisecond}
}

func (l *Live) Name() string { return "live" }

// Start runs the WebSocket listener until ctx is cancelled.
func (l *Live) Start(ctx context.Context) {
	go func() {
		if err := l.srv.ListenAndServe(ctx); err != nil {
			applog.Error("server.listen", err, "port", l.srv.Port())
		}
	}()
}

// WaitConnected blocks until the extension connects or ctx is done.
func (l *Live) WaitConnected(ctx context.Context) error {
	for !l.srv.Connected() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for extension on port %d: %w", l.srv.Port(), ctx.Err())
		case <-time.After(l.poll):
		}
	}
	return nil
}

// Tabs asks the extension for a fresh snapshot of the focused window.
func (l *Live) Tabs(ctx context.Context) ([]types.Tab, error) {
	if err := l.WaitConnected(ctx); err != nil {
		return nil, err
	}
	if err := l.srv.Send(server.OutgoingMsg{ID: uuid.NewString(), Action: "snapshot"}); err != nil {
		return nil, fmt.Errorf("request snapshot: %w", err)
	}

	for {
		select {
		case msg := <-l.srv.Messages():
			if msg.Type != "snapshot" {
				continue
			}
			snap, err := server.ParseSnapshot(msg)
			if err != nil {
				return nil, err
			}
			return snap.Tabs, nil
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for snapshot: %w", ctx.Err())
		}
	}
}

// Activate sends a focus command and waits for the extension to confirm it.
func (l *Live) Activate(ctx context.Context, tab types.Tab) error {
	tabID, err := strconv.Atoi(tab.ID)
	if err != nil {
		return fmt.Errorf("invalid tab id %q: %w", tab.ID, err)
	}
	if !l.srv.Connected() {
		return ErrNotConnected
	}

	id := uuid.NewString()
	if err := l.srv.Send(server.OutgoingMsg{ID: id, Action: "focus", TabID: tabID}); err != nil {
		return fmt.Errorf("send focus: %w", err)
	}

	for {
		select {
		case msg := <-l.srv.Messages():
			if msg.ID != id || msg.OK == nil {
				continue
			}
			if !*msg.OK {
				return fmt.Errorf("focus tab %d: %s", tabID, msg.Error)
			}
			return nil
		case <-ctx.Done():
			return fmt.Errorf("waiting for focus confirmation: %w", ctx.Err())
		}
	}
}
