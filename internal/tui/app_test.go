package tui

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"crmadmin/internal/model"
	"crmadmin/internal/query"
	"crmadmin/internal/store"
)

type fakeLogs struct {
	mu      sync.Mutex
	queries []url.Values
	records []model.LogRecord
}

func (f *fakeLogs) fetch(_ context.Context, q url.Values) (model.Page[model.LogRecord], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	return model.Page[model.LogRecord]{Items: f.records, Total: len(f.records) * 2, Page: 1, Pages: 2}, nil
}

func (f *fakeLogs) last() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

func newApp(t *testing.T) (App, *fakeLogs) {
	t.Helper()
	base := time.Date(2025, 10, 27, 12, 0, 0, 0, time.UTC)
	fake := &fakeLogs{records: []model.LogRecord{
		{ID: "1", SessionID: "A", Type: model.LogInfo, ActionType: "GENERATE", Message: "start", CreatedAt: base},
		{ID: "2", SessionID: "B", Type: model.LogError, ActionType: "SYNC", Message: "boom", CreatedAt: base.Add(time.Second)},
		{ID: "3", SessionID: "A", Type: model.LogSuccess, ActionType: "GENERATE", Message: "done", CreatedAt: base.Add(2 * time.Second)},
	}}
	logs := store.New(fake.fetch, query.Filter{Page: 1, PageSize: 20})
	a := New(logs, time.Second)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return m.(App), fake
}

// run executes cmd and feeds every loadedMsg it produces back into the app.
func run(t *testing.T, a App, cmd tea.Cmd) App {
	t.Helper()
	if cmd == nil {
		return a
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if lm, ok := c().(loadedMsg); ok {
				m, _ := a.Update(lm)
				a = m.(App)
			}
		}
	case loadedMsg:
		m, _ := a.Update(msg)
		a = m.(App)
	}
	return a
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, a App, s string) App {
	t.Helper()
	m, cmd := a.Update(key(s))
	return run(t, m.(App), cmd)
}

func TestReloadGroupsCurrentPage(t *testing.T) {
	a, _ := newApp(t)
	a = press(t, a, "r")

	if a.loading {
		t.Fatal("loading should clear after the reload result")
	}
	if got := a.groups.Keys(); len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Fatalf("unexpected session keys %v", got)
	}
	if !strings.Contains(a.statusMsg, "page 1/2") {
		t.Fatalf("unexpected status %q", a.statusMsg)
	}

	view := a.View()
	if !strings.Contains(view, "Sessions") || !strings.Contains(view, "start") {
		t.Fatalf("view missing content:\n%s", view)
	}
}

func TestSupersededResultIgnored(t *testing.T) {
	a, _ := newApp(t)
	a = press(t, a, "r")
	before := a.groups.Len()

	a.loading = true
	m, _ := a.Update(loadedMsg{err: store.ErrSuperseded})
	a = m.(App)
	if !a.loading {
		t.Fatal("superseded result must not end the newer load")
	}
	if a.groups.Len() != before {
		t.Fatal("superseded result must not replace the shown sessions")
	}
}

func TestTypeCycleUpdatesQuery(t *testing.T) {
	a, fake := newApp(t)
	a = press(t, a, "t")
	if got := fake.last().Get("type"); got != "INFO" {
		t.Fatalf("expected type=INFO, got %q", got)
	}
	a = press(t, a, "t")
	a = press(t, a, "t")
	a = press(t, a, "t")
	if _, ok := fake.last()["type"]; ok {
		t.Fatalf("all sentinel should be omitted, got %v", fake.last())
	}
	_ = a
}

func TestSearchAppliesOnEnter(t *testing.T) {
	a, fake := newApp(t)
	a = press(t, a, "/")
	if a.mode != ModeSearch {
		t.Fatal("expected search mode")
	}
	for _, r := range "boom" {
		m, _ := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		a = m.(App)
	}
	a = press(t, a, "enter")
	if a.mode != ModeNormal {
		t.Fatal("enter should leave search mode")
	}
	if got := fake.last().Get("search"); got != "boom" {
		t.Fatalf("expected search=boom, got %q", got)
	}
}

func TestPagingAndNavigation(t *testing.T) {
	a, fake := newApp(t)
	a = press(t, a, "r")
	a = press(t, a, "n")
	if got := fake.last().Get("page"); got != "2" {
		t.Fatalf("expected page=2, got %q", got)
	}

	a = press(t, a, "j")
	if a.selectedIdx != 1 {
		t.Fatalf("expected second session selected, got %d", a.selectedIdx)
	}
	a = press(t, a, "j")
	if a.selectedIdx != 1 {
		t.Fatalf("selection should stop at the last session, got %d", a.selectedIdx)
	}
	s, ok := a.selectedSession()
	if !ok || s.ID != "B" {
		t.Fatalf("unexpected selected session %+v", s)
	}
}

func TestNextType(t *testing.T) {
	cases := map[string]string{"": "INFO", "all": "INFO", "info": "SUCCESS", "ERROR": "all"}
	for in, want := range cases {
		if got := nextType(in); got != want {
			t.Fatalf("nextType(%q) = %q, want %q", in, got, want)
		}
	}
}
