// Package tui is the interactive popup: pick a tab source, type a question
// about the open tabs, and either read the answer or jump to the tab it names.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lotas/tabask/internal/assistant"
	"github.com/lotas/tabask/internal/completion"
	"github.com/lotas/tabask/internal/render"
	"github.com/lotas/tabask/internal/storage"
	"github.com/lotas/tabask/internal/types"
)

// --- Messages ---

type sessionMsg struct {
	session *assistant.Session
	err     error
}

// Round-trip events, delivered by channelUI.
type loadingMsg bool

type openingMsg struct {
	tab          types.Tab
	index, count int
}

type responseMsg struct{ query, answer string }

type errorMsg struct{ err error }

type closeMsg struct{}

type roundTripDoneMsg struct{ err error }

// channelUI implements assistant.UI by forwarding every call as a tea.Msg.
// The round trip runs off the update loop; listen feeds the events back in.
type channelUI chan tea.Msg

func (u channelUI) SetLoading(on bool) { u <- loadingMsg(on) }

func (u channelUI) ShowOpening(tab types.Tab, index, count int) {
	u <- openingMsg{tab: tab, index: index, count: count}
}

func (u channelUI) ShowResponse(query, answer string) { u <- responseMsg{query: query, answer: answer} }
func (u channelUI) ShowError(err error)               { u <- errorMsg{err: err} }
func (u channelUI) Close()                            { u <- closeMsg{} }

type state int

const (
	statePicking state = iota
	stateCollecting
	stateReady
	stateOpening
)

// Options configures a popup.
type Options struct {
	Sources       []Source
	Completer     completion.Completer
	Model         string
	History       *storage.History
	ActivateDelay time.Duration
	// Timeout bounds each query; zero means no limit.
	Timeout time.Duration
}

// --- Model ---

type Model struct {
	ctx  context.Context
	opts Options

	state   state
	picker  SourcePicker
	source  Source
	session *assistant.Session

	input   textinput.Model
	spinner spinner.Model
	// busy spans the whole round trip; loading only the model call.
	busy    bool
	loading bool
	events  channelUI
	results string
	err     error

	width  int
	height int
}

// NewModel builds the popup. With a single source the picker is skipped.
func NewModel(ctx context.Context, opts Options) Model {
	in := textinput.New()
	in.Placeholder = "Ask about your tabs, e.g. \"where is my mail?\""
	in.CharLimit = 500
	in.Width = popupWidth - 4
	in.Prompt = "❯ "

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))

	m := Model{
		ctx:     ctx,
		opts:    opts,
		input:   in,
		spinner: s,
		picker:  NewSourcePicker(opts.Sources),
	}
	if len(opts.Sources) == 1 {
		m.source = opts.Sources[0]
		m.state = stateCollecting
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.state == stateCollecting {
		return tea.Batch(m.spinner.Tick, collectTabs(m.ctx, m.source, m.opts))
	}
	return nil
}

func collectTabs(ctx context.Context, src Source, opts Options) tea.Cmd {
	return func() tea.Msg {
		s, err := assistant.NewSession(ctx, src.Browser, opts.Completer)
		if err != nil {
			return sessionMsg{err: err}
		}
		s.Model = opts.Model
		s.History = opts.History
		s.ActivateDelay = opts.ActivateDelay
		return sessionMsg{session: s}
	}
}

// runRoundTrip starts assistant.RoundTrip in the background. It finishes with
// exactly one roundTripDoneMsg on events.
func runRoundTrip(ctx context.Context, s *assistant.Session, query string, timeout time.Duration, events channelUI) tea.Cmd {
	return func() tea.Msg {
		go func() {
			ctx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			events <- roundTripDoneMsg{err: assistant.RoundTrip(ctx, s, query, events)}
		}()
		return nil
	}
}

func listen(events channelUI) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.state {
		case statePicking:
			return m.updatePicker(msg)
		case stateReady:
			return m.updateInput(msg)
		default:
			if msg.String() == "esc" {
				return m, tea.Quit
			}
		}
		return m, nil

	case sessionMsg:
		if msg.err != nil {
			m.err = msg.err
			if len(m.opts.Sources) > 1 {
				m.state = statePicking
			} else {
				m.state = stateReady
			}
			return m, nil
		}
		m.session = msg.session
		m.err = nil
		m.state = stateReady
		return m, tea.Batch(m.input.Focus(), textinput.Blink)

	case loadingMsg:
		m.loading = bool(msg)
		if m.loading {
			m.results = ""
			return m, tea.Batch(m.spinner.Tick, listen(m.events))
		}
		return m, listen(m.events)

	case openingMsg:
		m.results = render.Opening(msg.tab.Title, msg.index, msg.count)
		m.state = stateOpening
		m.input.Blur()
		return m, listen(m.events)

	case responseMsg:
		m.results = render.Response(msg.query, msg.answer)
		return m, listen(m.events)

	case errorMsg:
		m.results = render.Error(msg.err)
		return m, listen(m.events)

	case closeMsg:
		return m, tea.Quit

	case roundTripDoneMsg:
		m.busy = false
		if m.state == stateOpening && msg.err != nil {
			// Activation failed; the error is already rendered.
			m.state = stateReady
			return m, m.input.Focus()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading && m.state != stateCollecting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.state == stateReady {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.picker.MoveUp()
	case "down", "j":
		m.picker.MoveDown()
	case "enter":
		return m.choose(m.picker.Selected())
	case "esc", "q":
		return m, tea.Quit
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		n := int(msg.String()[0] - '0')
		if m.picker.SelectByNumber(n) {
			return m.choose(m.picker.Selected())
		}
	}
	return m, nil
}

func (m Model) choose(src Source) (tea.Model, tea.Cmd) {
	m.source = src
	m.state = stateCollecting
	m.err = nil
	return m, tea.Batch(m.spinner.Tick, collectTabs(m.ctx, src, m.opts))
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "enter":
		query := strings.TrimSpace(m.input.Value())
		// One query at a time; blank input is ignored.
		if m.busy || query == "" || m.session == nil {
			return m, nil
		}
		m.busy = true
		m.events = make(channelUI, 8)
		return m, tea.Batch(runRoundTrip(m.ctx, m.session, query, m.opts.Timeout, m.events), listen(m.events))
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.state == statePicking {
		picker := m.picker.View()
		if m.err != nil {
			picker += "\n\n" + render.Error(m.err)
		}
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, picker)
	}

	tabCount := 0
	if m.session != nil {
		tabCount = len(m.session.Tabs())
	}
	width := m.width
	if width == 0 || width > popupWidth {
		width = popupWidth
	}

	var b strings.Builder
	b.WriteString(renderNavbar(m.source.Label, tabCount, m.opts.Model, width) + "\n\n")

	switch {
	case m.state == stateCollecting:
		b.WriteString(" " + m.spinner.View() + " Collecting tabs from " + m.source.Label + "...\n")
		return b.String()
	case m.session == nil && m.err != nil:
		b.WriteString(render.Error(m.err) + "\n\n")
		b.WriteString(helpStyle.Render(" esc quit") + "\n")
		return b.String()
	}

	b.WriteString(" " + m.input.View() + "\n\n")

	resultsStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(width - 2)
	switch {
	case m.loading:
		b.WriteString(resultsStyle.Render(m.spinner.View()+" Thinking...") + "\n")
	case m.results != "":
		b.WriteString(resultsStyle.Render(m.results) + "\n")
	}

	if m.state == stateReady {
		b.WriteString("\n" + helpStyle.Render(" enter ask · esc quit") + "\n")
	}
	return b.String()
}

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
