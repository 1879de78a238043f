package main

import (
	"fmt"
	"strconv"
	"strings"

	"crmadmin/internal/badge"
	"crmadmin/internal/format"
	"crmadmin/internal/query"
	"crmadmin/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// listFlags are the filter and paging controls shared by list commands.
type listFlags struct {
	page     int
	limit    int
	search   string
	status   string
	typ      string
	fromStr  string
	toStr    string
	noHeader bool
}

func (lf *listFlags) register(flags *pflag.FlagSet, withStatus, withType bool) {
	flags.IntVar(&lf.page, "page", 1, "page number to fetch")
	flags.IntVar(&lf.limit, "limit", 0, "records per page (default from config)")
	flags.StringVar(&lf.search, "search", "", "free-text search")
	if withStatus {
		flags.StringVar(&lf.status, "status", query.All, "status filter, or 'all'")
	}
	if withType {
		flags.StringVar(&lf.typ, "type", query.All, "type filter, or 'all'")
	}
	flags.StringVar(&lf.fromStr, "from", "", "include items on/after the given date (RFC3339 or YYYY-MM-DD)")
	flags.StringVar(&lf.toStr, "to", "", "include items on/before the given date (RFC3339 or YYYY-MM-DD)")
	flags.BoolVar(&lf.noHeader, "no-header", false, "omit header row")
}

func (lf *listFlags) filter(a *app) (query.Filter, error) {
	f := query.Filter{
		Page:     lf.page,
		PageSize: a.pageSize(lf.limit),
		Search:   strings.TrimSpace(lf.search),
		Status:   lf.status,
		Type:     lf.typ,
	}
	if lf.fromStr != "" {
		t, err := query.ParseDate(lf.fromStr)
		if err != nil {
			return f, fmt.Errorf("invalid --from value: %w", err)
		}
		f.From = t
	}
	if lf.toStr != "" {
		t, err := query.ParseDateEnd(lf.toStr)
		if err != nil {
			return f, fmt.Errorf("invalid --to value: %w", err)
		}
		f.To = t
	}
	return f, nil
}

// runList loads one page through a store and renders it.
func runList[T any](cmd *cobra.Command, a *app, lf *listFlags, fetch store.Fetcher[T], layout func(bool) format.Layout[T], extra func(*query.Filter)) error {
	f, err := lf.filter(a)
	if err != nil {
		return err
	}
	if extra != nil {
		extra(&f)
	}

	st, err := store.New(fetch, f).Reload(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	opts := format.Options{Format: a.format(), IncludeHeader: !lf.noHeader, Color: a.useColor(out)}
	if err := format.WriteList(out, st.Items, layout(opts.Color), opts); err != nil {
		return err
	}
	if opts.Format == "table" {
		format.WritePageFooter(out, len(st.Items), st.Total, st.Page, st.Pages)
	}
	return nil
}

// writeItem renders a single entity as JSON or as a detail table.
func writeItem(cmd *cobra.Command, a *app, v any, title string, rows func(color bool) []format.KV) error {
	out := cmd.OutOrStdout()
	switch a.format() {
	case "json", "jsonl":
		return format.WriteJSON(out, v)
	default:
		format.WriteDetail(out, title, rows(a.useColor(out)))
		return nil
	}
}

// triState maps a "true|false|all" flag to a filter value. Empty and "all"
// stay sentinels and are omitted from the query.
func triState(name, v string) (string, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if query.IsSentinel(v) {
		return "", nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return "", fmt.Errorf("invalid --%s value %q: expected true, false or all", name, v)
	}
	return strconv.FormatBool(b), nil
}

// parsePairs turns key=value arguments into a map. Values stay strings
// unless numeric reports the key as a number field.
func parsePairs(pairs []string, numeric func(key string) bool) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid pair %q: expected key=value", p)
		}
		value = strings.TrimSpace(value)
		if numeric != nil && numeric(key) {
			n, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid value for %s: %q is not a number", key, value)
			}
			out[key] = n
			continue
		}
		out[key] = value
	}
	return out, nil
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(text)), " ")
}

// checkEnum rejects a filter or update value that is neither a sentinel nor
// a declared value of kind.
func checkEnum(kind badge.Kind, v string) error {
	if query.IsSentinel(v) {
		return nil
	}
	allowed := badge.Values(kind)
	for _, want := range allowed {
		if strings.EqualFold(v, want) {
			return nil
		}
	}
	return fmt.Errorf("unknown %s value %q (want one of: %s)", kind, v, strings.Join(allowed, ", "))
}
