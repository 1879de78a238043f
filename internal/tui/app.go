// Package tui implements the interactive log browser.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"crmadmin/internal/model"
	"crmadmin/internal/query"
	"crmadmin/internal/session"
	"crmadmin/internal/store"
)

// Pane identifies which pane is focused.
type Pane int

const (
	PaneSessions Pane = iota
	PaneTimeline
)

// Mode identifies the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
)

// typeCycle is the order the type filter steps through.
var typeCycle = []string{query.All, string(model.LogInfo), string(model.LogSuccess), string(model.LogError)}

// App is the root Bubble Tea model of the log browser.
type App struct {
	logs    *store.List[model.LogRecord]
	timeout time.Duration

	// State
	state       store.State[model.LogRecord]
	groups      *session.Groups
	selectedIdx int
	scroll      int
	loading     bool

	// UI
	activePane Pane
	mode       Mode
	search     textinput.Model
	spin       spinner.Model
	width      int
	height     int

	statusMsg string
}

// New creates a browser over logs. Each reload is bounded by timeout.
func New(logs *store.List[model.LogRecord], timeout time.Duration) App {
	si := textinput.New()
	si.Placeholder = "search messages..."
	si.CharLimit = 128
	si.SetValue(logs.Filter().Search)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = dimStyle

	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return App{
		logs:       logs,
		timeout:    timeout,
		groups:     session.Group(nil),
		search:     si,
		spin:       sp,
		activePane: PaneSessions,
		mode:       ModeNormal,
	}
}

// Init starts the first load.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("crmadmin logs"),
		a.spin.Tick,
		reloadCmd(a.logs, a.timeout),
	)
}

// loadedMsg carries the result of a reload.
type loadedMsg struct {
	state store.State[model.LogRecord]
	err   error
}

func reloadCmd(logs *store.List[model.LogRecord], timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		st, err := logs.Reload(ctx)
		return loadedMsg{state: st, err: err}
	}
}

func (a App) reload() (App, tea.Cmd) {
	a.loading = true
	a.statusMsg = "loading..."
	return a, tea.Batch(a.spin.Tick, reloadCmd(a.logs, a.timeout))
}

// Update handles messages.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case loadedMsg:
		if errors.Is(msg.err, store.ErrSuperseded) {
			// A newer reload is still in flight and owns the screen.
			return a, nil
		}
		a.loading = false
		if msg.err != nil {
			a.statusMsg = "error: " + msg.err.Error()
			return a, nil
		}
		a.state = msg.state
		a.groups = session.Group(msg.state.Items)
		if a.selectedIdx >= a.groups.Len() {
			a.selectedIdx = max(0, a.groups.Len()-1)
		}
		a.scroll = 0
		a.statusMsg = pageStatus(a.state)
		return a, nil

	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.mode == ModeSearch {
		switch msg.String() {
		case "esc":
			a.mode = ModeNormal
			a.search.SetValue(a.logs.Filter().Search)
			a.search.Blur()
			return a, nil
		case "enter":
			a.mode = ModeNormal
			a.search.Blur()
			value := strings.TrimSpace(a.search.Value())
			a.logs.Update(func(f *query.Filter) { f.Search = value })
			return a.reload()
		default:
			var cmd tea.Cmd
			a.search, cmd = a.search.Update(msg)
			return a, cmd
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "j", "down":
		if a.activePane == PaneSessions {
			if a.selectedIdx < a.groups.Len()-1 {
				a.selectedIdx++
				a.scroll = 0
			}
		} else {
			a.scroll++
		}
	case "k", "up":
		if a.activePane == PaneSessions {
			if a.selectedIdx > 0 {
				a.selectedIdx--
				a.scroll = 0
			}
		} else if a.scroll > 0 {
			a.scroll--
		}

	case "tab":
		a.activePane = (a.activePane + 1) % 2

	case "/":
		a.mode = ModeSearch
		a.search.Focus()
		return a, textinput.Blink

	case "t":
		next := nextType(a.logs.Filter().Type)
		a.logs.Update(func(f *query.Filter) { f.Type = next })
		return a.reload()

	case "n", "]":
		if a.logs.NextPage() {
			return a.reload()
		}
		a.statusMsg = "already on the last page"
	case "p", "[":
		if a.logs.PrevPage() {
			return a.reload()
		}
		a.statusMsg = "already on the first page"

	case "c":
		a.logs.Update(func(f *query.Filter) { f.Reset() })
		a.search.SetValue("")
		return a.reload()

	case "r":
		return a.reload()
	}

	return a, nil
}

func nextType(current string) string {
	for i, t := range typeCycle {
		if strings.EqualFold(t, current) {
			return typeCycle[(i+1)%len(typeCycle)]
		}
	}
	return typeCycle[1]
}

func (a App) selectedSession() (session.Session, bool) {
	keys := a.groups.Keys()
	if a.selectedIdx >= len(keys) {
		return session.Session{}, false
	}
	id := keys[a.selectedIdx]
	recs, _ := a.groups.Get(id)
	return session.Session{ID: id, Records: recs}, true
}
