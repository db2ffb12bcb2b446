package main

import (
	"context"
	"fmt"
	"io"

	"github.com/lotas/tabask/internal/browser"
	"github.com/lotas/tabask/internal/render"
	"github.com/lotas/tabask/internal/types"
)

// cliUI renders a round trip for `tabask ask`: results on out, progress and
// errors on errOut.
type cliUI struct {
	out    io.Writer
	errOut io.Writer
}

func newCLIUI(out, errOut io.Writer) *cliUI {
	return &cliUI{out: out, errOut: errOut}
}

func (u *cliUI) SetLoading(on bool) {
	if on {
		fmt.Fprint(u.errOut, "Thinking...\r")
	} else {
		fmt.Fprint(u.errOut, "           \r")
	}
}

func (u *cliUI) ShowOpening(tab types.Tab, index, count int) {
	fmt.Fprintln(u.out, render.Opening(tab.Title, index, count))
}

func (u *cliUI) ShowResponse(query, answer string) {
	fmt.Fprintln(u.out, render.Response(query, answer))
}

func (u *cliUI) ShowError(err error) {
	fmt.Fprintln(u.errOut, render.Error(err))
}

func (u *cliUI) Close() {}

// dryRun reports the tab it would activate instead of focusing it.
type dryRun struct {
	browser.Browser
}

func (d dryRun) Activate(ctx context.Context, tab types.Tab) error {
	fmt.Printf("%s\n", tab.URL)
	return nil
}
