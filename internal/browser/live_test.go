package browser

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lotas/tabask/internal/server"
	"github.com/lotas/tabask/internal/types"
	"nhooyr.io/websocket"
)

// fakeExtension dials the bridge and answers commands the way the companion
// extension does.
func fakeExtension(t *testing.T, ctx context.Context, url string, focusOK bool) {
	t.Helper()
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })

	go func() {
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var cmd server.OutgoingMsg
			if err := json.Unmarshal(data, &cmd); err != nil {
				continue
			}
			var reply string
			switch cmd.Action {
			case "snapshot":
				reply = `{"type":"snapshot","windowId":1,"tabs":[
					{"id":11,"title":"Docs","url":"https://docs.example","windowId":1,"index":0},
					{"id":12,"title":"Mail","url":"https://mail.example","windowId":1,"index":1},
					{"id":99,"title":"Other window","url":"https://x.example","windowId":2,"index":0}]}`
			case "focus":
				if focusOK {
					reply = `{"id":"` + cmd.ID + `","ok":true}`
				} else {
					reply = `{"id":"` + cmd.ID + `","ok":false,"error":"No tab with id"}`
				}
			}
			conn.Write(ctx, websocket.MessageText, []byte(reply))
		}
	}()
}

func newLiveForTest(t *testing.T, focusOK bool) (*Live, context.Context) {
	t.Helper()
	srv := server.New(0)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)

	fakeExtension(t, ctx, "ws"+strings.TrimPrefix(ts.URL, "http"), focusOK)

	l := NewLive(srv)
	l.poll = 10 * time.Millisecond
	return l, ctx
}

func TestLiveTabs(t *testing.T) {
	l, ctx := newLiveForTest(t, true)

	tabs, err := l.Tabs(ctx)
	if err != nil {
		t.Fatalf("Tabs: %v", err)
	}
	if len(tabs) != 2 {
		t.Fatalf("got %d tabs, want 2", len(tabs))
	}
	if tabs[0].ID != "11" || tabs[1].Title != "Mail" {
		t.Errorf("unexpected tabs: %+v", tabs)
	}
}

func TestLiveActivate(t *testing.T) {
	l, ctx := newLiveForTest(t, true)
	if err := l.WaitConnected(ctx); err != nil {
		t.Fatal(err)
	}
	if err := l.Activate(ctx, types.Tab{ID: "12"}); err != nil {
		t.Fatalf("Activate: %v", err)
	}
}

func TestLiveActivateRejected(t *testing.T) {
	l, ctx := newLiveForTest(t, false)
	if err := l.WaitConnected(ctx); err != nil {
		t.Fatal(err)
	}
	err := l.Activate(ctx, types.Tab{ID: "12"})
	if err == nil || !strings.Contains(err.Error(), "No tab with id") {
		t.Fatalf("expected extension error, got %v", err)
	}
}

func TestLiveActivateNotConnected(t *testing.T) {
	l := NewLive(server.New(0))
	err := l.Activate(context.Background(), types.Tab{ID: "1"})
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if err := l.Activate(context.Background(), types.Tab{ID: "abc"}); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
}

func TestLiveTabsTimeout(t *testing.T) {
	l := NewLive(server.New(0))
	l.poll = 5 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if _, err := l.Tabs(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}
