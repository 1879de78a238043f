// Package query composes independent filter controls into gateway query parameters.
package query

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// All is the sentinel used by enum dropdowns for "no filter".
const All = "all"

// Gateway pagination keys.
const (
	KeyPage  = "page"
	KeyLimit = "limit"
)

// IsSentinel reports whether v means "no filter". Sentinel values are never sent.
func IsSentinel(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, All)
}

// Builder accumulates query parameters, dropping sentinel values.
// The gateway treats an absent key differently from an empty one.
type Builder struct {
	values url.Values
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{values: url.Values{}}
}

// String sets key to the trimmed value unless it is a sentinel.
func (b *Builder) String(key, value string) *Builder {
	if IsSentinel(value) {
		return b
	}
	b.values.Set(key, strings.TrimSpace(value))
	return b
}

// Int sets key when n is positive.
func (b *Builder) Int(key string, n int) *Builder {
	if n <= 0 {
		return b
	}
	b.values.Set(key, strconv.Itoa(n))
	return b
}

// Bool sets key when v is non-nil. A nil pointer means "all".
func (b *Builder) Bool(key string, v *bool) *Builder {
	if v == nil {
		return b
	}
	b.values.Set(key, strconv.FormatBool(*v))
	return b
}

// Time sets key to an RFC3339 timestamp unless t is zero.
func (b *Builder) Time(key string, t time.Time) *Builder {
	if t.IsZero() {
		return b
	}
	b.values.Set(key, t.UTC().Format(time.RFC3339))
	return b
}

// Strings joins the non-sentinel entries of vs with commas.
// If any entry is "all" the key is omitted.
func (b *Builder) Strings(key string, vs []string) *Builder {
	kept := make([]string, 0, len(vs))
	for _, v := range vs {
		if strings.EqualFold(strings.TrimSpace(v), All) {
			return b
		}
		if IsSentinel(v) {
			continue
		}
		kept = append(kept, strings.TrimSpace(v))
	}
	if len(kept) == 0 {
		return b
	}
	b.values.Set(key, strings.Join(kept, ","))
	return b
}

// Values returns a copy of the accumulated parameters.
func (b *Builder) Values() url.Values {
	out := make(url.Values, len(b.values))
	for k, v := range b.values {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Filter is the per-screen filter state. It is owned by the caller and
// never persisted.
type Filter struct {
	Page     int
	PageSize int
	Search   string
	Type     string
	Status   string
	From     time.Time
	To       time.Time
	// Extra holds screen-specific controls keyed by gateway parameter name.
	Extra map[string]string
}

// Keys used by Encode for the common controls.
const (
	KeySearch    = "search"
	KeyType      = "type"
	KeyStatus    = "status"
	KeyStartDate = "startDate"
	KeyEndDate   = "endDate"
)

// Encode converts the filter into query parameters, omitting every control
// that holds a sentinel value.
func (f Filter) Encode() url.Values {
	b := NewBuilder().
		Int(KeyPage, f.Page).
		Int(KeyLimit, f.PageSize).
		String(KeySearch, f.Search).
		String(KeyType, f.Type).
		String(KeyStatus, f.Status).
		Time(KeyStartDate, f.From).
		Time(KeyEndDate, f.To)
	for k, v := range f.Extra {
		b.String(k, v)
	}
	return b.Values()
}

// Set stores a screen-specific control.
func (f *Filter) Set(key, value string) {
	if f.Extra == nil {
		f.Extra = make(map[string]string)
	}
	f.Extra[key] = value
}

// Reset clears every control but keeps the page size.
func (f *Filter) Reset() {
	*f = Filter{PageSize: f.PageSize}
}

// ParseCSV splits a comma-separated flag value into trimmed lower-case tokens.
func ParseCSV(arg string) []string {
	if strings.TrimSpace(arg) == "" {
		return nil
	}
	parts := strings.Split(arg, ",")
	output := make([]string, 0, len(parts))
	for _, part := range parts {
		token := strings.TrimSpace(strings.ToLower(part))
		if token != "" {
			output = append(output, token)
		}
	}
	return output
}

// ParseDate accepts RFC3339 or YYYY-MM-DD. An empty string yields the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

// ParseDateEnd is ParseDate for inclusive upper bounds: a YYYY-MM-DD value
// becomes the last instant of that day.
func ParseDateEnd(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
}
