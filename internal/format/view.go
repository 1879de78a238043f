package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"crmadmin/internal/checkin"
	"crmadmin/internal/model"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderRecordLines returns the formatted body lines for a log record: the
// wrapped message, followed by the details (pretty-printed when JSON) and
// the linked image.
func RenderRecordLines(rec model.LogRecord, wrapWidth int) []string {
	var parts []string
	if msg := strings.TrimSpace(rec.Message); msg != "" {
		parts = append(parts, wrapBody(msg, wrapWidth))
	}
	if details := strings.TrimSpace(rec.Details); details != "" {
		formatted := formatJSON(details)
		if formatted == details {
			parts = append(parts, "Details: "+wrapBody(details, wrapWidth))
		} else {
			parts = append(parts, "Details:\n"+formatted)
		}
	}
	if rec.ImageID != "" {
		parts = append(parts, "Image: "+rec.ImageID)
	}
	if len(parts) == 0 {
		return nil
	}
	return strings.Split(strings.Join(parts, "\n"), "\n")
}

func wrapBody(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
		} else {
			current += " " + word
		}
	}
	lines = append(lines, current)

	return strings.Join(lines, "\n")
}

func formatJSON(raw string) string {
	if raw == "" {
		return raw
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(raw), "", "  "); err == nil {
		return buf.String()
	}
	return raw
}

// KV is one labelled value of a detail view.
type KV struct {
	Key   string
	Value string
}

// WriteDetail renders a two-column key/value table.
func WriteDetail(w io.Writer, title string, rows []KV) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	if title != "" {
		tw.SetTitle(title)
	}
	for _, r := range rows {
		tw.AppendRow(table.Row{r.Key, dash(r.Value)})
	}
	tw.Render()
}

// BookingDetail returns the detail rows of a booking.
func BookingDetail(b model.Booking, color bool) []KV {
	layout := Bookings(color)
	rows := kvFromLayout(layout.Columns, layout.Row(b))
	return append(rows,
		KV{"GUEST EMAIL", b.GuestEmail},
		KV{"EXTERNAL ID", b.ExternalID},
		KV{"CREATED", stamp(b.CreatedAt)},
	)
}

// ClientAppDetail returns the detail rows of a client application. The API
// key is masked unless reveal is set.
func ClientAppDetail(a model.ClientApp, color, reveal bool) []KV {
	layout := ClientApps(color)
	rows := kvFromLayout(layout.Columns, layout.Row(a))
	key := a.APIKey
	if !reveal {
		key = MaskKey(key)
	}
	return append(rows,
		KV{"DESCRIPTION", a.Description},
		KV{"API KEY", key},
	)
}

// ReportDetail returns the detail rows of a report.
func ReportDetail(r model.Report, color bool) []KV {
	layout := Reports(color)
	rows := kvFromLayout(layout.Columns, layout.Row(r))
	rows[1].Value = r.Title
	return append(rows,
		KV{"REPORTER", strings.TrimSpace(r.ReporterName + " " + angle(r.ReporterEmail))},
		KV{"CLIENT APP", r.ClientAppID},
		KV{"UPDATED", stamp(r.UpdatedAt)},
		KV{"CONTENT", wrapBody(r.Content, 72)},
	)
}

// ModelDetail returns the detail rows of an ML model.
func ModelDetail(m model.MLModel, color bool) []KV {
	layout := Models(color)
	rows := kvFromLayout(layout.Columns, layout.Row(m))
	return append(rows, KV{"CREATED", stamp(m.CreatedAt)})
}

// PredictionDetail returns the detail rows of a prediction.
func PredictionDetail(p model.Prediction) []KV {
	rows := []KV{
		{"MODEL", p.ModelID},
		{"ENTITY", string(p.EntityType) + ":" + p.EntityID},
		{"CONFIDENCE", fmt.Sprintf("%.2f", p.Confidence)},
	}
	if len(p.Output) > 0 {
		raw, err := json.MarshalIndent(p.Output, "", "  ")
		if err == nil {
			rows = append(rows, KV{"OUTPUT", string(raw)})
		}
	}
	return rows
}

// SyncDetail returns the detail rows of a booking sync result.
func SyncDetail(r model.SyncResult) []KV {
	rows := []KV{
		{"CREATED", fmt.Sprint(r.Created)},
		{"UPDATED", fmt.Sprint(r.Updated)},
		{"SKIPPED", fmt.Sprint(r.Skipped)},
	}
	if len(r.Errors) > 0 {
		rows = append(rows, KV{"ERRORS", strings.Join(r.Errors, "\n")})
	}
	return rows
}

// WriteForm renders a check-in form as one table per section.
func WriteForm(w io.Writer, f checkin.Form) {
	WriteDetail(w, "CHECK-IN FORM", []KV{
		{"ID", f.ID},
		{"NAME", f.Name},
		{"DESCRIPTION", f.Description},
		{"PROPERTIES", strings.Join(f.PropertyIDs, ", ")},
		{"ACTIVE", yesNo(f.IsActive)},
	})
	for _, sec := range f.Sections {
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.SetStyle(table.StyleRounded)
		tw.SetTitle(sec.Title)
		tw.AppendHeader(table.Row{"ID", "LABEL", "TYPE", "REQUIRED", "CONSTRAINTS"})
		for _, field := range sec.Fields {
			tw.AppendRow(table.Row{field.ID, field.Label, string(field.Type), yesNo(field.Required), dash(constraints(field))})
		}
		tw.Render()
	}
}

func constraints(f checkin.Field) string {
	var parts []string
	if len(f.Options) > 0 {
		parts = append(parts, "options="+strings.Join(f.Options, "|"))
	}
	if f.Min != nil {
		parts = append(parts, fmt.Sprintf("min=%g", *f.Min))
	}
	if f.Max != nil {
		parts = append(parts, fmt.Sprintf("max=%g", *f.Max))
	}
	if f.Pattern != "" {
		parts = append(parts, "pattern="+f.Pattern)
	}
	return strings.Join(parts, " ")
}

func kvFromLayout(cols []Column, cells []string) []KV {
	rows := make([]KV, 0, len(cols))
	for i, c := range cols {
		if i < len(cells) {
			rows = append(rows, KV{c.Header, cells[i]})
		}
	}
	return rows
}

func angle(email string) string {
	if email == "" {
		return ""
	}
	return "<" + email + ">"
}

// MaskKey hides all but the last four characters of an API key.
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
