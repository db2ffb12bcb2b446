package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/lotas/tabask/internal/applog"
	"github.com/lotas/tabask/internal/types"
)

// Chrome reads tabs from a Chromium browser started with
// --remote-debugging-port and focuses them over the DevTools protocol.
type Chrome struct {
	baseURL string
	client  *http.Client
}

// NewChrome returns a backend for the DevTools HTTP endpoint at baseURL,
// e.g. "http://127.0.0.1:9222".
func NewChrome(baseURL string) *Chrome {
	return &Chrome{baseURL: strings.TrimRight(baseURL, "/"), client: http.DefaultClient}
}

func (c *Chrome) Name() string { return "chrome" }

// Tabs lists page targets. The DevTools endpoint has no notion of a current
// window, so every page of the browser is returned.
func (c *Chrome) Tabs(ctx context.Context) ([]types.Tab, error) {
	infos, err := c.listTargets(ctx)
	if err != nil {
		return nil, err
	}
	var tabs []types.Tab
	for _, t := range infos {
		if t.Type != "page" {
			continue
		}
		tabs = append(tabs, types.Tab{
			ID:    string(t.TargetID),
			Title: t.Title,
			URL:   t.URL,
			Index: len(tabs),
		})
	}
	return tabs, nil
}

// listTargets fetches open targets via the HTTP /json/list endpoint. Going
// through HTTP avoids chromedp opening a blank tab just to enumerate.
func (c *Chrome) listTargets(ctx context.Context) ([]*target.Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/json/list", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("devtools: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("devtools: /json/list: HTTP %d", resp.StatusCode)
	}

	var entries []struct {
		ID    string `json:"id"`
		Type  string `json:"type"`
		Title string `json:"title"`
		URL   string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("devtools: decode targets: %w", err)
	}

	out := make([]*target.Info, 0, len(entries))
	for _, e := range entries {
		out = append(out, &target.Info{
			TargetID: target.ID(e.ID),
			Type:     e.Type,
			Title:    e.Title,
			URL:      e.URL,
		})
	}
	return out, nil
}

// browserWSURL fetches the browser-level WebSocket debugger URL from /json/version.
func (c *Chrome) browserWSURL(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/json/version", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("devtools: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("devtools: /json/version: HTTP %d", resp.StatusCode)
	}

	var info struct {
		WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("devtools: decode version: %w", err)
	}
	if info.WebSocketDebuggerURL == "" {
		return "", fmt.Errorf("devtools: empty webSocketDebuggerUrl")
	}
	return info.WebSocketDebuggerURL, nil
}

// Activate brings the target to front over a browser-level connection. The
// page itself is never attached, so nothing is detached or closed afterwards.
func (c *Chrome) Activate(ctx context.Context, tab types.Tab) error {
	wsURL, err := c.browserWSURL(ctx)
	if err != nil {
		return err
	}

	// Cancelling connCtx makes chromedp close the connection.
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	b, err := chromedp.NewBrowser(connCtx, wsURL,
		chromedp.WithBrowserLogf(func(format string, v ...any) {
			applog.Info("cdp.log", "msg", fmt.Sprintf(format, v...))
		}),
		chromedp.WithBrowserErrorf(func(format string, v ...any) {
			applog.Error("cdp.error", fmt.Errorf(format, v...))
		}),
	)
	if err != nil {
		return fmt.Errorf("devtools: %w", err)
	}

	if err := target.ActivateTarget(target.ID(tab.ID)).Do(cdp.WithExecutor(connCtx, b)); err != nil {
		return fmt.Errorf("activate target %s: %w", tab.ID, err)
	}
	return nil
}
