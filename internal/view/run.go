// Package view renders log records as a timeline for the terminal.
package view

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"crmadmin/internal/format"
	"crmadmin/internal/model"
	"crmadmin/internal/query"
	"crmadmin/internal/session"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// Options defines the configurable parameters for rendering a view.
type Options struct {
	Format       string
	Wrap         int
	MaxRecords   int
	TypeArg      string
	ActionArg    string
	SessionID    string
	ForceColor   bool
	ForceNoColor bool
	Out          io.Writer
	OutFile      *os.File
}

// Run renders records according to the provided options. Records are shown
// in the order given.
func Run(records []model.LogRecord, opts Options) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	filters, err := buildFilters(opts.TypeArg, opts.ActionArg)
	if err != nil {
		return err
	}

	formatMode := strings.ToLower(opts.Format)
	if formatMode == "" {
		formatMode = "text"
	}

	selected := selectRecords(records, filters, opts.SessionID, opts.MaxRecords)

	switch formatMode {
	case "text":
		useColor := resolveColorChoice(opts)
		for idx, rec := range selected {
			if idx > 0 {
				fmt.Fprintln(opts.Out)
			}
			printRecord(opts.Out, rec, idx+1, opts.Wrap, useColor)
		}
		return nil

	case "raw":
		enc := json.NewEncoder(opts.Out)
		for _, rec := range selected {
			if err := enc.Encode(rec); err != nil {
				return err
			}
		}
		return nil

	case "cards":
		colorEnabled := resolveColorChoice(opts)
		width := determineWidth(opts.OutFile, opts.Wrap)
		if len(selected) == 0 {
			return nil
		}

		lines := renderSessionCards(session.Group(selected).Sessions(), width, colorEnabled)
		if len(lines) == 0 {
			return nil
		}
		if opts.OutFile != nil && isatty.IsTerminal(opts.OutFile.Fd()) {
			return pipeThroughPager(lines, colorEnabled)
		}
		return writeLines(opts.Out, lines)

	default:
		return fmt.Errorf("unsupported format: %s", opts.Format)
	}
}

type viewFilters struct {
	types   map[model.LogType]struct{}
	actions map[string]struct{}
}

func buildFilters(typeArg, actionArg string) (viewFilters, error) {
	var filters viewFilters

	types, err := parseTypeArg(typeArg)
	if err != nil {
		return filters, err
	}
	filters.types = types
	filters.actions = parseActionArg(actionArg)
	return filters, nil
}

func parseTypeArg(arg string) (map[model.LogType]struct{}, error) {
	values := query.ParseCSV(arg)
	if len(values) == 0 {
		return nil, nil
	}
	for _, v := range values {
		if v == query.All {
			return nil, nil
		}
	}

	lookup := make(map[string]model.LogType, len(model.LogTypes))
	for _, t := range model.LogTypes {
		lookup[strings.ToLower(string(t))] = t
	}

	set := make(map[model.LogType]struct{}, len(values))
	for _, token := range values {
		logType, ok := lookup[token]
		if !ok {
			return nil, fmt.Errorf("unknown log type %q", token)
		}
		set[logType] = struct{}{}
	}
	return set, nil
}

func parseActionArg(arg string) map[string]struct{} {
	values := query.ParseCSV(arg)
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == query.All {
			return nil
		}
		set[v] = struct{}{}
	}
	return set
}

func recordMatches(rec model.LogRecord, filters viewFilters) bool {
	if filters.types != nil {
		if _, ok := filters.types[model.LogType(strings.ToUpper(string(rec.Type)))]; !ok {
			return false
		}
	}
	if filters.actions != nil {
		if _, ok := filters.actions[strings.ToLower(rec.ActionType)]; !ok {
			return false
		}
	}
	return true
}

// selectRecords applies filters and keeps the last limit matches when limit > 0.
func selectRecords(records []model.LogRecord, filters viewFilters, sessionID string, limit int) []model.LogRecord {
	ring := newRecordRing(limit)
	var all []model.LogRecord
	for _, rec := range records {
		if sessionID != "" && rec.SessionID != sessionID {
			continue
		}
		if !recordMatches(rec, filters) {
			continue
		}
		if limit > 0 {
			ring.push(rec)
		} else {
			all = append(all, rec)
		}
	}
	if limit > 0 {
		return ring.slice()
	}
	return all
}

type recordRing struct {
	data   []model.LogRecord
	start  int
	length int
}

func newRecordRing(capacity int) *recordRing {
	if capacity <= 0 {
		return &recordRing{}
	}
	return &recordRing{data: make([]model.LogRecord, capacity)}
}

func (r *recordRing) push(rec model.LogRecord) {
	if len(r.data) == 0 {
		return
	}
	idx := (r.start + r.length) % len(r.data)
	r.data[idx] = rec
	if r.length < len(r.data) {
		r.length++
		return
	}
	r.start = (r.start + 1) % len(r.data)
}

func (r *recordRing) slice() []model.LogRecord {
	if r.length == 0 {
		return nil
	}
	result := make([]model.LogRecord, r.length)
	for i := 0; i < r.length; i++ {
		result[i] = r.data[(r.start+i)%len(r.data)]
	}
	return result
}

func determineWidth(out *os.File, wrap int) int {
	if wrap > 0 {
		return wrap
	}
	if out != nil {
		if w, _, err := term.GetSize(int(out.Fd())); err == nil && w > 0 {
			return w
		}
	}
	if colsStr := os.Getenv("COLUMNS"); colsStr != "" {
		if v, err := strconv.Atoi(colsStr); err == nil && v > 0 {
			return v
		}
	}
	return 80
}

func pipeThroughPager(lines []string, colorEnabled bool) error {
	text := strings.Join(lines, "\n")
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	pagerCmd := os.Getenv("PAGER")
	var cmd *exec.Cmd
	if pagerCmd == "" {
		args := []string{"less"}
		if colorEnabled {
			args = append(args, "-R")
		}
		cmd = exec.Command(args[0], args[1:]...) // #nosec G204
	} else {
		cmd = exec.Command("sh", "-c", pagerCmd) // #nosec G204
	}

	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create pager pipe: %w", err)
	}
	go func() {
		defer stdin.Close()
		io.WriteString(stdin, text) //nolint:errcheck
	}()

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run pager: %w", err)
	}

	return nil
}

func writeLines(out io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

func printRecord(out io.Writer, rec model.LogRecord, index int, wrap int, useColor bool) {
	typeLabel := strings.ToLower(string(rec.Type))
	if typeLabel == "" {
		typeLabel = "log"
	}
	action := rec.ActionType
	if action == "" {
		action = "-"
	}

	ts := "-"
	if !rec.CreatedAt.IsZero() {
		ts = rec.CreatedAt.UTC().Format(time.RFC3339)
	}
	sess := session.Label(rec.SessionID)
	headerPlain := fmt.Sprintf("[#%03d] %s | %s | %s | %s", index, typeLabel, action, sess, ts)

	indexText := fmt.Sprintf("#%03d", index)
	typeText := typeLabel
	actionText := action
	sessText := sess
	tsText := ts
	separator := "|"

	if useColor {
		indexText = colorize(true, ansiBoldWhite, indexText)
		typeText = colorize(true, typeColor(rec.Type), typeText)
		sessText = colorize(true, ansiSession, sessText)
		tsText = colorize(true, ansiTimestamp, tsText)
		separator = colorize(true, ansiSeparator, "|")
	}

	header := fmt.Sprintf("[%s] %s %s %s %s %s %s %s", indexText, typeText, separator, actionText, separator, sessText, separator, tsText)
	fmt.Fprintln(out, header)
	fmt.Fprintln(out, strings.Repeat("-", len(headerPlain)))

	lines := format.RenderRecordLines(rec, wrap)
	if len(lines) == 0 {
		prefix := "|"
		if useColor {
			prefix = colorize(true, ansiSeparator, "|")
		}
		fmt.Fprintf(out, "%s %s\n", prefix, "(no content)")
		return
	}
	linePrefix := "| "
	emptyPrefix := "|"
	if useColor {
		separatorColor := colorize(true, ansiSeparator, "|")
		linePrefix = separatorColor + " "
		emptyPrefix = separatorColor
	}
	for _, line := range lines {
		if line == "" {
			fmt.Fprintln(out, emptyPrefix)
			continue
		}
		fmt.Fprintf(out, "%s%s\n", linePrefix, line)
	}
}

const (
	ansiReset     = "\x1b[0m"
	ansiBoldWhite = "\x1b[1;97m"
	ansiTimestamp = "\x1b[38;5;245m"
	ansiSeparator = "\x1b[38;5;240m"
	ansiSession   = "\x1b[38;5;44m"
	ansiInfo      = "\x1b[38;5;39m"
	ansiSuccess   = "\x1b[38;5;42m"
	ansiError     = "\x1b[38;5;196m"
)

func colorize(enabled bool, code string, text string) string {
	if !enabled {
		return text
	}
	return code + text + ansiReset
}

func typeColor(t model.LogType) string {
	switch model.LogType(strings.ToUpper(string(t))) {
	case model.LogInfo:
		return ansiInfo
	case model.LogSuccess:
		return ansiSuccess
	case model.LogError:
		return ansiError
	default:
		return ansiSeparator
	}
}

func resolveColorChoice(opts Options) bool {
	if opts.ForceColor {
		return true
	}
	if opts.ForceNoColor {
		return false
	}
	return shouldUseColorAuto(opts.Out)
}

func shouldUseColorAuto(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ColorEnabled resolves the --color/--no-color choice for w.
func ColorEnabled(w io.Writer, force, forceNo bool) bool {
	return resolveColorChoice(Options{Out: w, ForceColor: force, ForceNoColor: forceNo})
}
