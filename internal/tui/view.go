package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"crmadmin/internal/badge"
	"crmadmin/internal/format"
	"crmadmin/internal/model"
	"crmadmin/internal/query"
	"crmadmin/internal/session"
	"crmadmin/internal/store"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	activePaneStyle = paneStyle.
			BorderForeground(lipgloss.Color("205"))

	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View renders the browser.
func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "loading..."
	}

	statusBarH := 2
	mainH := a.height - statusBarH - 2
	listW := a.width*2/5 - 2
	detailW := a.width - listW - 4

	list := a.renderSessions(listW, mainH)
	listPane := a.paneBox(PaneSessions, a.sessionsTitle(), list, listW, mainH)

	detail := a.renderTimeline(detailW, mainH)
	detailPane := a.paneBox(PaneTimeline, " Timeline ", detail, detailW, mainH)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
	return lipgloss.JoinVertical(lipgloss.Left, topRow, a.renderStatusBar())
}

func (a App) paneBox(pane Pane, title, content string, w, h int) string {
	style := paneStyle
	if a.activePane == pane {
		style = activePaneStyle
	}
	return style.Width(w).Height(h).Render(
		titleStyle.Render(title) + "\n" + content,
	)
}

func (a App) sessionsTitle() string {
	f := a.logs.Filter()
	title := " Sessions "
	if !query.IsSentinel(f.Type) {
		title += dimStyle.Render("["+strings.ToLower(f.Type)+"]") + " "
	}
	if f.Search != "" {
		title += dimStyle.Render("/"+f.Search) + " "
	}
	return title
}

func (a App) renderSessions(w, h int) string {
	var b strings.Builder
	if a.loading {
		b.WriteString(a.spin.View() + " loading\n")
	}

	sessions := a.groups.Sessions()
	if len(sessions) == 0 {
		b.WriteString(dimStyle.Render("no log records"))
		if a.mode == ModeSearch {
			b.WriteString("\n\n" + a.search.View())
		}
		return b.String()
	}

	maxVisible := h - 3
	if a.mode == ModeSearch {
		maxVisible -= 2
	}
	maxVisible = max(maxVisible, 1)
	start := 0
	if a.selectedIdx >= maxVisible {
		start = a.selectedIdx - maxVisible + 1
	}

	for i := start; i < len(sessions) && i-start < maxVisible; i++ {
		sum := sessions[i].Summary()
		indicator := badge.Render(badge.ForLog(sum.Outcome()), true)
		label := fmt.Sprintf("%s (%d)", session.Label(sum.ID), sum.Count)
		line := fmt.Sprintf(" %s %s", indicator, truncate(label, w-4))

		if i == a.selectedIdx {
			line = selectedStyle.Width(w).Render(" " + badge.ForLog(sum.Outcome()).String() + " " + truncate(label, w-4))
		}
		b.WriteString(line + "\n")
	}

	if a.mode == ModeSearch {
		b.WriteString("\n" + a.search.View())
	}
	return b.String()
}

func (a App) renderTimeline(w, h int) string {
	s, ok := a.selectedSession()
	if !ok {
		return dimStyle.Render("select a session")
	}

	lines := timelineLines(s, w)
	maxVisible := max(h-2, 1)
	start := min(a.scroll, max(len(lines)-maxVisible, 0))

	var b strings.Builder
	for i := start; i < len(lines) && i-start < maxVisible; i++ {
		b.WriteString(lines[i] + "\n")
	}
	return b.String()
}

func timelineLines(s session.Session, w int) []string {
	sum := s.Summary()
	lines := []string{
		fmt.Sprintf("Session:  %s", session.Label(sum.ID)),
		fmt.Sprintf("Outcome:  %s", badge.Render(badge.ForLog(sum.Outcome()), true)),
		fmt.Sprintf("Duration: %s", format.FormatDuration(sum.DurationSeconds())),
	}
	if len(sum.ImageIDs) > 0 {
		lines = append(lines, "Images:   "+strings.Join(sum.ImageIDs, ", "))
	}
	lines = append(lines, "")

	for _, rec := range s.Records {
		ts := "--:--:--"
		if !rec.CreatedAt.IsZero() {
			ts = rec.CreatedAt.UTC().Format("15:04:05")
		}
		head := fmt.Sprintf("%s %s %s", dimStyle.Render(ts), badge.Render(badge.ForLog(rec.Type), true), rec.ActionType)
		lines = append(lines, head)
		for _, body := range format.RenderRecordLines(rec, max(w-4, 20)) {
			lines = append(lines, "  "+truncate(body, w-2))
		}
	}
	return lines
}

func (a App) renderStatusBar() string {
	left := a.statusMsg
	right := "j/k:nav tab:pane /:search t:type n/p:page c:clear r:reload q:quit"
	if a.mode == ModeSearch {
		right = "enter:apply esc:cancel"
	}

	gap := a.width - runewidth.StringWidth(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	return helpStyle.Render(left + strings.Repeat(" ", gap) + right)
}

func pageStatus(st store.State[model.LogRecord]) string {
	page := max(st.Page, 1)
	pages := max(st.Pages, 1)
	return fmt.Sprintf("%d records · page %d/%d · %d total", len(st.Items), page, pages, st.Total)
}

func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= w {
		return s
	}
	return runewidth.Truncate(s, w, "…")
}
