// Package badge maps domain status values to presentation badges.
package badge

import (
	"strings"

	"crmadmin/internal/model"

	"github.com/charmbracelet/lipgloss"
)

// Color names a badge palette entry.
type Color string

const (
	Gray   Color = "gray"
	Green  Color = "green"
	Blue   Color = "blue"
	Yellow Color = "yellow"
	Red    Color = "red"
	Purple Color = "purple"
	Orange Color = "orange"
)

// Badge is the label, color and icon shown for a status.
type Badge struct {
	Label string `json:"label"`
	Color Color  `json:"color"`
	Icon  string `json:"icon"`
}

// Unknown is returned for values outside the declared enums.
var Unknown = Badge{Label: "Unknown", Color: Gray, Icon: "?"}

// Kind selects which enum a raw value belongs to.
type Kind string

const (
	KindBooking   Kind = "booking"
	KindReport    Kind = "report"
	KindModel     Kind = "model"
	KindClientApp Kind = "client-app"
	KindLog       Kind = "log"
)

// Kinds lists every supported Kind.
var Kinds = []Kind{KindBooking, KindReport, KindModel, KindClientApp, KindLog}

// ForBooking maps a booking status.
func ForBooking(s model.BookingStatus) Badge {
	switch model.BookingStatus(strings.ToLower(string(s))) {
	case model.BookingPending:
		return Badge{Label: "Pending", Color: Yellow, Icon: "…"}
	case model.BookingConfirmed:
		return Badge{Label: "Confirmed", Color: Green, Icon: "✓"}
	case model.BookingCheckedIn:
		return Badge{Label: "Checked in", Color: Blue, Icon: "⌂"}
	case model.BookingCompleted:
		return Badge{Label: "Completed", Color: Purple, Icon: "★"}
	case model.BookingCancelled:
		return Badge{Label: "Cancelled", Color: Red, Icon: "✗"}
	case model.BookingNoShow:
		return Badge{Label: "No show", Color: Orange, Icon: "!"}
	default:
		return Unknown
	}
}

// ForReport maps a report status.
func ForReport(s model.ReportStatus) Badge {
	switch model.ReportStatus(strings.ToLower(string(s))) {
	case model.ReportPending:
		return Badge{Label: "Pending review", Color: Yellow, Icon: "…"}
	case model.ReportInProgress:
		return Badge{Label: "In progress", Color: Blue, Icon: "↻"}
	case model.ReportResolved:
		return Badge{Label: "Resolved", Color: Green, Icon: "✓"}
	case model.ReportClosed:
		return Badge{Label: "Closed", Color: Purple, Icon: "■"}
	case model.ReportRejected:
		return Badge{Label: "Rejected", Color: Red, Icon: "✗"}
	default:
		return Unknown
	}
}

// ForModel maps an ML model status.
func ForModel(s model.ModelStatus) Badge {
	switch model.ModelStatus(strings.ToLower(string(s))) {
	case model.ModelTraining:
		return Badge{Label: "Training", Color: Blue, Icon: "↻"}
	case model.ModelActive:
		return Badge{Label: "Active", Color: Green, Icon: "●"}
	case model.ModelInactive:
		return Badge{Label: "Inactive", Color: Yellow, Icon: "○"}
	case model.ModelFailed:
		return Badge{Label: "Failed", Color: Red, Icon: "✗"}
	case model.ModelDeprecated:
		return Badge{Label: "Deprecated", Color: Orange, Icon: "↓"}
	default:
		return Unknown
	}
}

// ForClientApp maps a client application status.
func ForClientApp(s model.ClientAppStatus) Badge {
	switch model.ClientAppStatus(strings.ToLower(string(s))) {
	case model.ClientAppActive:
		return Badge{Label: "Active", Color: Green, Icon: "●"}
	case model.ClientAppInactive:
		return Badge{Label: "Inactive", Color: Yellow, Icon: "○"}
	case model.ClientAppSuspended:
		return Badge{Label: "Suspended", Color: Red, Icon: "⏸"}
	case model.ClientAppPending:
		return Badge{Label: "Pending", Color: Blue, Icon: "…"}
	default:
		return Unknown
	}
}

// ForLog maps a log record type.
func ForLog(t model.LogType) Badge {
	switch model.LogType(strings.ToUpper(string(t))) {
	case model.LogInfo:
		return Badge{Label: "Info", Color: Blue, Icon: "i"}
	case model.LogSuccess:
		return Badge{Label: "Success", Color: Green, Icon: "✓"}
	case model.LogError:
		return Badge{Label: "Error", Color: Red, Icon: "✗"}
	default:
		return Unknown
	}
}

// For maps a raw value of the given kind. Unknown kinds yield Unknown.
func For(kind Kind, value string) Badge {
	switch kind {
	case KindBooking:
		return ForBooking(model.BookingStatus(value))
	case KindReport:
		return ForReport(model.ReportStatus(value))
	case KindModel:
		return ForModel(model.ModelStatus(value))
	case KindClientApp:
		return ForClientApp(model.ClientAppStatus(value))
	case KindLog:
		return ForLog(model.LogType(value))
	default:
		return Unknown
	}
}

// Values returns the declared enum values for kind.
func Values(kind Kind) []string {
	var out []string
	switch kind {
	case KindBooking:
		for _, v := range model.BookingStatuses {
			out = append(out, string(v))
		}
	case KindReport:
		for _, v := range model.ReportStatuses {
			out = append(out, string(v))
		}
	case KindModel:
		for _, v := range model.ModelStatuses {
			out = append(out, string(v))
		}
	case KindClientApp:
		for _, v := range model.ClientAppStatuses {
			out = append(out, string(v))
		}
	case KindLog:
		for _, v := range model.LogTypes {
			out = append(out, string(v))
		}
	}
	return out
}

var palette = map[Color]lipgloss.Color{
	Gray:   lipgloss.Color("245"),
	Green:  lipgloss.Color("42"),
	Blue:   lipgloss.Color("39"),
	Yellow: lipgloss.Color("220"),
	Red:    lipgloss.Color("196"),
	Purple: lipgloss.Color("141"),
	Orange: lipgloss.Color("208"),
}

// String returns the plain "icon label" form.
func (b Badge) String() string {
	return b.Icon + " " + b.Label
}

// Render returns the badge text, styled when color is true.
func Render(b Badge, color bool) string {
	if !color {
		return b.String()
	}
	fg, ok := palette[b.Color]
	if !ok {
		fg = palette[Gray]
	}
	return lipgloss.NewStyle().Foreground(fg).Bold(true).Render(b.String())
}
