package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/lotas/tabask/internal/types"
	"nhooyr.io/websocket"
)

func TestChromeTabs(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/list" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[
			{"id":"AAA","type":"page","title":"Go","url":"https://go.dev"},
			{"id":"BBB","type":"service_worker","title":"sw","url":"https://go.dev/sw.js"},
			{"id":"CCC","type":"page","url":"about:blank"}
		]`))
	}))
	defer ts.Close()

	c := NewChrome(ts.URL + "/")
	tabs, err := c.Tabs(context.Background())
	if err != nil {
		t.Fatalf("Tabs: %v", err)
	}
	if len(tabs) != 2 {
		t.Fatalf("got %d tabs, want 2 pages", len(tabs))
	}
	if tabs[0].ID != "AAA" || tabs[0].Title != "Go" {
		t.Errorf("tab0 = %+v", tabs[0])
	}
	if tabs[1].Index != 1 || tabs[1].Title != "" {
		t.Errorf("tab1 = %+v", tabs[1])
	}
}

func TestChromeTabsHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	if _, err := NewChrome(ts.URL).Tabs(context.Background()); err == nil {
		t.Fatal("expected error for HTTP 500")
	}
}

type cdpCall struct {
	Method string
	Params json.RawMessage
}

// fakeDevTools serves /json/version and a browser websocket that records
// every CDP command. Commands for targets other than known fail.
type fakeDevTools struct {
	known string

	mu    sync.Mutex
	calls []cdpCall
}

func (f *fakeDevTools) methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		out = append(out, c.Method)
	}
	return out
}

func (f *fakeDevTools) serve(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/json/version", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"Browser":"Chrome/140","webSocketDebuggerUrl":"ws://%s/devtools/browser/fake"}`, r.Host)
	})
	mux.HandleFunc("/devtools/browser/fake", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Errorf("accept: %v", err)
			return
		}
		defer conn.CloseNow()
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				return
			}
			var msg struct {
				ID     int64           `json:"id"`
				Method string          `json:"method"`
				Params json.RawMessage `json:"params"`
			}
			if err := json.Unmarshal(data, &msg); err != nil {
				t.Errorf("bad CDP message %s: %v", data, err)
				return
			}
			f.mu.Lock()
			f.calls = append(f.calls, cdpCall{Method: msg.Method, Params: msg.Params})
			f.mu.Unlock()

			var params struct {
				TargetID string `json:"targetId"`
			}
			json.Unmarshal(msg.Params, &params)
			reply := fmt.Sprintf(`{"id":%d,"result":{}}`, msg.ID)
			if params.TargetID != f.known {
				reply = fmt.Sprintf(`{"id":%d,"error":{"code":-32602,"message":"No target with given id found"}}`, msg.ID)
			}
			if err := conn.Write(r.Context(), websocket.MessageText, []byte(reply)); err != nil {
				return
			}
		}
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestChromeActivate(t *testing.T) {
	f := &fakeDevTools{known: "T1"}
	ts := f.serve(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := NewChrome(ts.URL).Activate(ctx, types.Tab{ID: "T1"}); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	methods := f.methods()
	if !slices.Equal(methods, []string{"Target.activateTarget"}) {
		t.Errorf("CDP methods = %v, want only Target.activateTarget", methods)
	}
	if slices.Contains(methods, "Target.closeTarget") {
		t.Error("Activate closed the tab it focused")
	}

	var params struct {
		TargetID string `json:"targetId"`
	}
	f.mu.Lock()
	json.Unmarshal(f.calls[0].Params, &params)
	f.mu.Unlock()
	if params.TargetID != "T1" {
		t.Errorf("targetId = %q, want T1", params.TargetID)
	}
}

func TestChromeActivateUnknownTarget(t *testing.T) {
	f := &fakeDevTools{known: "T1"}
	ts := f.serve(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := NewChrome(ts.URL).Activate(ctx, types.Tab{ID: "GONE"})
	if err == nil {
		t.Fatal("expected error for unknown target")
	}
	if slices.Contains(f.methods(), "Target.closeTarget") {
		t.Error("closeTarget sent")
	}
}

func TestChromeActivateNoDevTools(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	if err := NewChrome(ts.URL).Activate(context.Background(), types.Tab{ID: "T1"}); err == nil {
		t.Fatal("expected error when /json/version is missing")
	}
}
