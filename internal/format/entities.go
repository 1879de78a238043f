package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"crmadmin/internal/badge"
	"crmadmin/internal/checkin"
	"crmadmin/internal/imagegen"
	"crmadmin/internal/model"
	"crmadmin/internal/session"

	"github.com/jedib0t/go-pretty/v6/text"
)

const dateLayout = "2006-01-02"

func stamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func day(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(dateLayout)
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// Bookings is the list layout for bookings.
func Bookings(color bool) Layout[model.Booking] {
	return Layout[model.Booking]{
		Columns: []Column{
			{Header: "ID"},
			{Header: "GUEST", WidthMax: 24},
			{Header: "PROPERTY", WidthMax: 24},
			{Header: "CHECK IN"},
			{Header: "CHECK OUT"},
			{Header: "NIGHTS", Align: text.AlignRight},
			{Header: "STATUS"},
			{Header: "AMOUNT", Align: text.AlignRight},
			{Header: "SOURCE"},
		},
		Row: func(b model.Booking) []string {
			property := b.PropertyName
			if property == "" {
				property = b.PropertyID
			}
			return []string{
				b.ID,
				dash(b.GuestName),
				dash(property),
				day(b.CheckIn),
				day(b.CheckOut),
				strconv.Itoa(b.Nights()),
				badge.Render(badge.ForBooking(b.Status), color),
				Money(b.TotalAmount, b.Currency),
				dash(b.Source),
			}
		},
		Empty: "no bookings",
	}
}

// Money renders an amount with an optional currency code.
func Money(amount float64, currency string) string {
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	if currency == "" {
		return s
	}
	return s + " " + strings.ToUpper(currency)
}

// ClientApps is the list layout for client applications.
func ClientApps(color bool) Layout[model.ClientApp] {
	return Layout[model.ClientApp]{
		Columns: []Column{
			{Header: "ID"},
			{Header: "NAME", WidthMax: 28},
			{Header: "TYPE"},
			{Header: "DOMAINS", WidthMax: 40},
			{Header: "STATUS"},
			{Header: "CREATED"},
		},
		Row: func(a model.ClientApp) []string {
			return []string{
				a.ID,
				a.Name,
				dash(a.Type),
				dash(strings.Join(a.Domain, ", ")),
				badge.Render(badge.ForClientApp(a.Status), color),
				day(a.CreatedAt),
			}
		},
		Empty: "no client apps",
	}
}

// Reports is the list layout for reports.
func Reports(color bool) Layout[model.Report] {
	return Layout[model.Report]{
		Columns: []Column{
			{Header: "ID"},
			{Header: "TITLE", WidthMax: 36},
			{Header: "CATEGORY"},
			{Header: "STATUS"},
			{Header: "PUBLIC"},
			{Header: "FEATURED"},
			{Header: "TAGS", WidthMax: 30},
			{Header: "CREATED"},
		},
		Row: func(r model.Report) []string {
			return []string{
				r.ID,
				Clip(r.Title, 60),
				dash(r.Category),
				badge.Render(badge.ForReport(r.Status), color),
				yesNo(r.IsPublic),
				yesNo(r.IsFeatured),
				dash(strings.Join(r.Tags, ",")),
				day(r.CreatedAt),
			}
		},
		Empty: "no reports",
	}
}

// CheckinForms is the list layout for check-in forms.
func CheckinForms() Layout[checkin.Form] {
	return Layout[checkin.Form]{
		Columns: []Column{
			{Header: "ID"},
			{Header: "NAME", WidthMax: 32},
			{Header: "PROPERTIES", WidthMax: 30},
			{Header: "SECTIONS", Align: text.AlignRight},
			{Header: "FIELDS", Align: text.AlignRight},
			{Header: "ACTIVE"},
		},
		Row: func(f checkin.Form) []string {
			return []string{
				dash(f.ID),
				f.Name,
				dash(strings.Join(f.PropertyIDs, ",")),
				strconv.Itoa(len(f.Sections)),
				strconv.Itoa(f.FieldCount()),
				yesNo(f.IsActive),
			}
		},
		Empty: "no check-in forms",
	}
}

// Images is the list layout for generated images.
func Images() Layout[model.GeneratedImage] {
	return Layout[model.GeneratedImage]{
		Columns: []Column{
			{Header: "ID"},
			{Header: "TEMPLATE"},
			{Header: "ENTITY"},
			{Header: "SESSION"},
			{Header: "PATH", WidthMax: 48},
			{Header: "CREATED"},
		},
		Row: func(img model.GeneratedImage) []string {
			entity := "-"
			if img.EntityType != "" {
				entity = img.EntityType + ":" + img.EntityID
			}
			return []string{
				img.ID,
				img.TemplateType,
				entity,
				dash(img.SessionID),
				dash(img.Path),
				stamp(img.CreatedAt),
			}
		},
		Empty: "no images",
	}
}

// Templates is the list layout for image templates.
func Templates() Layout[imagegen.Template] {
	return Layout[imagegen.Template]{
		Columns: []Column{
			{Header: "TEMPLATE"},
			{Header: "ENTITY"},
			{Header: "REQUIRED", WidthMax: 40},
			{Header: "OPTIONAL", WidthMax: 40},
		},
		Row: func(t imagegen.Template) []string {
			return []string{
				string(t.Type),
				dash(string(t.Entity)),
				dash(strings.Join(t.Required, ",")),
				dash(strings.Join(t.Optional, ",")),
			}
		},
		Empty: "no templates",
	}
}

// Logs is the list layout for log records.
func Logs(color bool) Layout[model.LogRecord] {
	return Layout[model.LogRecord]{
		Columns: []Column{
			{Header: "TIMESTAMP"},
			{Header: "SESSION"},
			{Header: "TYPE"},
			{Header: "ACTION"},
			{Header: "MESSAGE", WidthMax: 60},
		},
		Row: func(r model.LogRecord) []string {
			return []string{
				stamp(r.CreatedAt),
				session.Label(r.SessionID),
				badge.Render(badge.ForLog(r.Type), color),
				dash(r.ActionType),
				Clip(r.Message, 120),
			}
		},
		Empty: "no log records",
	}
}

// Sessions is the list layout for session summaries.
func Sessions(color bool) Layout[session.Summary] {
	return Layout[session.Summary]{
		Columns: []Column{
			{Header: "SESSION"},
			{Header: "STARTED"},
			{Header: "DURATION"},
			{Header: "RECORDS", Align: text.AlignRight},
			{Header: "OUTCOME"},
			{Header: "IMAGES", Align: text.AlignRight},
			{Header: "LAST MESSAGE", WidthMax: 48},
		},
		Row: func(s session.Summary) []string {
			return []string{
				session.Label(s.ID),
				stamp(s.Start),
				FormatDuration(s.DurationSeconds()),
				strconv.Itoa(s.Count),
				badge.Render(badge.ForLog(s.Outcome()), color),
				strconv.Itoa(len(s.ImageIDs)),
				Clip(s.LastMessage, 80),
			}
		},
		Empty: "no sessions",
	}
}

// Models is the list layout for ML models.
func Models(color bool) Layout[model.MLModel] {
	return Layout[model.MLModel]{
		Columns: []Column{
			{Header: "ID"},
			{Header: "NAME", WidthMax: 32},
			{Header: "ENTITY"},
			{Header: "VERSION"},
			{Header: "STATUS"},
			{Header: "ACCURACY", Align: text.AlignRight},
		},
		Row: func(m model.MLModel) []string {
			acc := "-"
			if m.Accuracy > 0 {
				acc = fmt.Sprintf("%.1f%%", m.Accuracy*100)
			}
			return []string{
				m.ID,
				m.Name,
				string(m.EntityType),
				dash(m.Version),
				badge.Render(badge.ForModel(m.Status), color),
				acc,
			}
		},
		Empty: "no models",
	}
}

// BadgeRow is one line of the badge legend.
type BadgeRow struct {
	Kind  badge.Kind  `json:"kind"`
	Value string      `json:"value"`
	Badge badge.Badge `json:"badge"`
}

// BadgeRows lists every declared value of the given kinds with its badge.
func BadgeRows(kinds ...badge.Kind) []BadgeRow {
	var rows []BadgeRow
	for _, k := range kinds {
		for _, v := range badge.Values(k) {
			rows = append(rows, BadgeRow{Kind: k, Value: v, Badge: badge.For(k, v)})
		}
	}
	return rows
}

// Badges is the list layout for the badge legend.
func Badges(color bool) Layout[BadgeRow] {
	return Layout[BadgeRow]{
		Columns: []Column{
			{Header: "KIND"},
			{Header: "VALUE"},
			{Header: "BADGE"},
			{Header: "COLOR"},
		},
		Row: func(r BadgeRow) []string {
			return []string{string(r.Kind), r.Value, badge.Render(r.Badge, color), string(r.Badge.Color)}
		},
	}
}
