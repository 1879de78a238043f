package view

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"crmadmin/internal/format"
	"crmadmin/internal/model"
	"crmadmin/internal/session"

	"github.com/mattn/go-runewidth"
)

func renderSessionCards(sessions []session.Session, width int, useColor bool) []string {
	if width <= 0 {
		width = 80
	}
	padding := 2

	lines := make([]string, 0, len(sessions)*8)
	for idx, s := range sessions {
		if idx > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, renderCard(s, width, padding, useColor)...)
	}
	return lines
}

func renderCard(s session.Session, totalWidth int, padding int, useColor bool) []string {
	sum := s.Summary()

	maxContentWidth := totalWidth - padding*2 - 4
	if maxContentWidth < 20 {
		maxContentWidth = totalWidth - 4
		if maxContentWidth < 8 {
			maxContentWidth = 8
		}
	}

	headerText, headerLabel, headerMeta := cardHeader(sum)
	body := make([]string, 0, len(s.Records)+1)
	body = append(body, headerText)
	for _, rec := range s.Records {
		body = append(body, recordLine(rec))
		for _, extra := range format.RenderRecordLines(model.LogRecord{Details: rec.Details, ImageID: rec.ImageID}, 0) {
			body = append(body, "    "+extra)
		}
	}
	content := wrapLines(body, maxContentWidth)

	cardWidth := contentMaxWidth(content)
	if cardWidth > maxContentWidth {
		cardWidth = maxContentWidth
	}
	leftPad := padding
	if maxPad := totalWidth - cardWidth - 4; leftPad > maxPad {
		leftPad = max(maxPad, 0)
	}

	if useColor && len(content) > 0 {
		colored := fmt.Sprintf("%s · %s",
			colorize(true, typeColor(sum.Outcome()), headerLabel),
			colorize(true, ansiTimestamp, headerMeta),
		)
		content[0] = strings.Replace(content[0], headerText, colored, 1)
	}

	top := fmt.Sprintf("%s╭%s╮", strings.Repeat(" ", leftPad), strings.Repeat("─", cardWidth+2))
	bottom := fmt.Sprintf("%s╰%s╯", strings.Repeat(" ", leftPad), strings.Repeat("─", cardWidth+2))

	result := []string{top}
	for _, line := range content {
		result = append(result, renderCardBodyLine(line, cardWidth, leftPad, useColor))
	}
	result = append(result, bottom)
	return result
}

func renderCardBodyLine(line string, cardWidth int, leftPad int, useColor bool) string {
	displayLen := visibleWidth(line)
	if displayLen > cardWidth {
		line = truncateToWidth(line, cardWidth)
		displayLen = visibleWidth(line)
	}
	paddingRight := cardWidth - displayLen

	border := "│"
	if useColor {
		border = colorize(true, ansiSeparator, border)
	}

	return fmt.Sprintf("%s%s %s%s %s", strings.Repeat(" ", leftPad), border, line, strings.Repeat(" ", paddingRight), border)
}

func cardHeader(sum session.Summary) (header string, label string, meta string) {
	label = session.Label(sum.ID)
	start := "-"
	if !sum.Start.IsZero() {
		start = sum.Start.UTC().Format("Jan 02 15:04")
	}
	meta = fmt.Sprintf("%s · %d records · %s · %s",
		strings.ToLower(string(sum.Outcome())), sum.Count, start, format.FormatDuration(sum.DurationSeconds()))
	return fmt.Sprintf("%s · %s", label, meta), label, meta
}

func recordLine(rec model.LogRecord) string {
	ts := "--:--:--"
	if !rec.CreatedAt.IsZero() {
		ts = rec.CreatedAt.UTC().Format(time.TimeOnly)
	}
	action := ""
	if rec.ActionType != "" {
		action = " " + rec.ActionType
	}
	return fmt.Sprintf("%s %-7s%s %s", ts, string(rec.Type), action, strings.TrimSpace(rec.Message))
}

func wrapLines(lines []string, width int) []string {
	var out []string
	for _, line := range lines {
		out = append(out, wrapText(line, width)...)
	}
	return out
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	text = strings.TrimRight(text, " ")
	if text == "" {
		return []string{""}
	}
	var out []string
	var current strings.Builder
	currentWidth := 0

	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if currentWidth+rw > width && current.Len() > 0 {
			out = append(out, current.String())
			current.Reset()
			currentWidth = 0
		}
		current.WriteRune(r)
		currentWidth += rw
	}
	if currentWidth > 0 || current.Len() > 0 {
		out = append(out, current.String())
	}
	return out
}

func contentMaxWidth(lines []string) int {
	widest := 0
	for _, line := range lines {
		if w := visibleWidth(line); w > widest {
			widest = w
		}
	}
	return widest
}

func truncateToWidth(text string, width int) string {
	if visibleWidth(text) <= width {
		return text
	}
	var colored strings.Builder
	current := 0

	for i := 0; i < len(text); {
		if m := ansiPattern.FindStringIndex(text[i:]); m != nil && m[0] == 0 {
			colored.WriteString(text[i : i+m[1]])
			i += m[1]
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		rw := runewidth.RuneWidth(r)
		if current+rw > width {
			break
		}
		colored.WriteRune(r)
		current += rw
		i += size
	}
	return colored.String()
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func visibleWidth(text string) int {
	clean := ansiPattern.ReplaceAllString(text, "")
	return runewidth.StringWidth(clean)
}
