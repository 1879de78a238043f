package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"crmadmin/internal/badge"
)

type request struct {
	method string
	path   string
	query  string
}

type fakeGateway struct {
	mu       sync.Mutex
	requests []request
}

func (fg *fakeGateway) count(method, path string) int {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	n := 0
	for _, r := range fg.requests {
		if r.method == method && r.path == path {
			n++
		}
	}
	return n
}

func (fg *fakeGateway) last() request {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	return fg.requests[len(fg.requests)-1]
}

func newGateway(t *testing.T, handler http.HandlerFunc) (string, *fakeGateway) {
	t.Helper()
	fg := &fakeGateway{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fg.mu.Lock()
		fg.requests = append(fg.requests, request{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery})
		fg.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv.URL, fg
}

// execute runs the root command against gatewayURL with an empty config.
func execute(t *testing.T, gatewayURL, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	if os.Getenv("CRMADMIN_ARCHIVE") == "" {
		t.Setenv("CRMADMIN_ARCHIVE", filepath.Join(t.TempDir(), "logs.db"))
	}

	base := []string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}
	if gatewayURL != "" {
		base = append(base, "--gateway", gatewayURL, "--api-key", "secret")
	}

	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(base, args...))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestCollapseWhitespace(t *testing.T) {
	text := "  line one\n\nline\t two  "
	if got := collapseWhitespace(text); got != "line one line two" {
		t.Fatalf("collapseWhitespace failed: %q", got)
	}
}

func TestTriState(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: ""},
		{in: "all", want: ""},
		{in: "ALL", want: ""},
		{in: "true", want: "true"},
		{in: "0", want: "false"},
		{in: "maybe", wantErr: true},
	}
	for _, tc := range cases {
		got, err := triState("public", tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("triState(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("triState(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestParsePairs(t *testing.T) {
	numeric := func(key string) bool { return key == "budget" }
	got, err := parsePairs([]string{"budget=1200.5", "remote=t", "owner = ada ", "phone=0123"}, numeric)
	if err != nil {
		t.Fatalf("parsePairs returned error: %v", err)
	}
	if got["budget"] != 1200.5 {
		t.Fatalf("budget should decode as a number, got %#v", got["budget"])
	}
	if got["remote"] != "t" {
		t.Fatalf("remote should stay a string, got %#v", got["remote"])
	}
	if got["owner"] != "ada" {
		t.Fatalf("owner should stay a trimmed string, got %#v", got["owner"])
	}
	if got["phone"] != "0123" {
		t.Fatalf("phone should keep its leading zero, got %#v", got["phone"])
	}
	if _, err := parsePairs([]string{"budget=lots"}, numeric); err == nil {
		t.Fatal("expected error for a non-numeric number field")
	}
	if _, err := parsePairs([]string{"novalue"}, nil); err == nil {
		t.Fatal("expected error for a pair without '='")
	}
}

func TestCheckEnum(t *testing.T) {
	for _, v := range []string{"", "all", "confirmed", "CANCELLED"} {
		if err := checkEnum(badge.KindBooking, v); err != nil {
			t.Fatalf("checkEnum(%q) returned error: %v", v, err)
		}
	}
	err := checkEnum(badge.KindBooking, "archived")
	if err == nil || !strings.Contains(err.Error(), "no_show") {
		t.Fatalf("expected error listing allowed values, got %v", err)
	}
}

func TestParseKind(t *testing.T) {
	if k, err := parseKind("Reports"); err != nil || k != badge.KindReport {
		t.Fatalf("parseKind(Reports) = %q, %v", k, err)
	}
	if _, err := parseKind("invoice"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestMissingGatewayURL(t *testing.T) {
	t.Setenv("CRMADMIN_GATEWAY_URL", "")
	_, _, err := execute(t, "", "", "bookings", "list")
	if err == nil || !strings.Contains(err.Error(), "gateway.url is required") {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestColorFlagsConflict(t *testing.T) {
	_, _, err := execute(t, "", "", "--color", "--no-color", "badges")
	if err == nil {
		t.Fatal("expected error for --color with --no-color")
	}
}

func TestBookingsListPlain(t *testing.T) {
	url, fg := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"data":[{"id":"bk-1","guestName":"Ada Lovelace","propertyName":"Sea View",`+ //nolint:errcheck
			`"checkIn":"2025-10-01T15:00:00Z","checkOut":"2025-10-04T10:00:00Z","status":"confirmed",`+
			`"totalAmount":420,"currency":"eur","source":"airbnb"}],"total":1,"page":1,"pages":1}`)
	})

	out, _, err := execute(t, url, "", "bookings", "list", "--format", "plain", "--status", "all", "--search", "  ")
	if err != nil {
		t.Fatalf("bookings list returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", out)
	}
	if !strings.HasPrefix(lines[0], "id\tguest\t") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], "Ada Lovelace") || !strings.Contains(lines[1], "✓ Confirmed") {
		t.Fatalf("unexpected row %q", lines[1])
	}

	q := fg.last().query
	if strings.Contains(q, "status=") || strings.Contains(q, "search=") {
		t.Fatalf("sentinel filters must be omitted, got %q", q)
	}
	if !strings.Contains(q, "page=1") || !strings.Contains(q, "limit=20") {
		t.Fatalf("pagination not sent, got %q", q)
	}
}

func TestBookingsListRejectsUnknownStatus(t *testing.T) {
	url, fg := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"data":[]}`) //nolint:errcheck
	})
	if _, _, err := execute(t, url, "", "bookings", "list", "--status", "archived"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if len(fg.requests) != 0 {
		t.Fatalf("no request should be sent, got %d", len(fg.requests))
	}
}

func TestClientAppDeleteRefreshesOnce(t *testing.T) {
	url, fg := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			io.WriteString(w, `{"data":[{"id":"ca-2","name":"Web","status":"active"},{"id":"ca-3","name":"App","status":"inactive"}],"total":2,"page":1,"pages":1}`) //nolint:errcheck
		}
	})

	out, _, err := execute(t, url, "", "--yes", "client-apps", "delete", "ca-1")
	if err != nil {
		t.Fatalf("delete returned error: %v", err)
	}
	if got := fg.count(http.MethodDelete, "/client-apps/ca-1"); got != 1 {
		t.Fatalf("expected one delete, got %d", got)
	}
	if got := fg.count(http.MethodGet, "/client-apps"); got != 1 {
		t.Fatalf("expected exactly one refresh, got %d", got)
	}
	if !strings.Contains(out, "deleted client app ca-1 (2 remaining)") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestDeleteFailureDoesNotRefresh(t *testing.T) {
	url, fg := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"message":"client app not found"}`) //nolint:errcheck
	})

	_, _, err := execute(t, url, "", "--yes", "client-apps", "delete", "ca-9")
	if err == nil || !strings.Contains(err.Error(), "client app not found") {
		t.Fatalf("expected gateway error, got %v", err)
	}
	if got := fg.count(http.MethodGet, "/client-apps"); got != 0 {
		t.Fatalf("failed delete must not refresh, got %d", got)
	}
}

func TestDeleteAbortsWithoutConfirmation(t *testing.T) {
	url, fg := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	_, errOut, err := execute(t, url, "n\n", "reports", "delete", "rp-1")
	if err != nil {
		t.Fatalf("declined delete should not error: %v", err)
	}
	if !strings.Contains(errOut, "Delete report rp-1? [y/N]") || !strings.Contains(errOut, "aborted") {
		t.Fatalf("unexpected prompt output %q", errOut)
	}
	if len(fg.requests) != 0 {
		t.Fatalf("no request should be sent, got %d", len(fg.requests))
	}
}

func TestReportsListBooleanFilters(t *testing.T) {
	url, fg := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"data":[],"total":0,"page":1,"pages":0}`) //nolint:errcheck
	})

	out, _, err := execute(t, url, "", "reports", "list", "--public", "true", "--featured", "all", "--category", "all")
	if err != nil {
		t.Fatalf("reports list returned error: %v", err)
	}
	q := fg.last().query
	if !strings.Contains(q, "isPublic=true") {
		t.Fatalf("isPublic not sent, got %q", q)
	}
	if strings.Contains(q, "isFeatured") || strings.Contains(q, "category") {
		t.Fatalf("sentinels must be omitted, got %q", q)
	}
	if !strings.Contains(out, "no reports") {
		t.Fatalf("expected empty-state row, got %q", out)
	}
}

func TestReportsStatusValidatesBeforeRequest(t *testing.T) {
	url, fg := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{}`) //nolint:errcheck
	})
	if _, _, err := execute(t, url, "", "reports", "status", "rp-1", "done"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if len(fg.requests) != 0 {
		t.Fatalf("no request should be sent, got %d", len(fg.requests))
	}
}

const validForm = `name: Guest check-in
sections:
  - id: guest
    title: Guest
    fields:
      - id: email
        label: Email
        type: email
        required: true
      - id: guests
        label: Guests
        type: number
        min: 1
        max: 8
`

func TestFormsValidateLocal(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(good, []byte(validForm), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("name: ''\nsections: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "", "", "checkin-forms", "validate", good)
	if err != nil {
		t.Fatalf("validate returned error: %v", err)
	}
	if !strings.Contains(out, "ok (1 sections, 2 fields)") {
		t.Fatalf("unexpected output %q", out)
	}

	out, _, err = execute(t, "", "", "checkin-forms", "validate", bad)
	if err == nil {
		t.Fatal("expected error for invalid form")
	}
	if !strings.Contains(out, "name is required") {
		t.Fatalf("problems should be listed, got %q", out)
	}
}

func TestFormsCheckSubmission(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.yaml")
	if err := os.WriteFile(path, []byte(validForm), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "", "", "checkin-forms", "check", path, "--value", "email=not-an-email", "--value", "guests=12")
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(out, "email: ") || !strings.Contains(out, "guests: ") {
		t.Fatalf("field errors should be printed inline, got %q", out)
	}

	out, _, err = execute(t, "", "", "checkin-forms", "check", path, "--value", "email=ada@example.com", "--value", "guests=2")
	if err != nil {
		t.Fatalf("valid answers returned error: %v", err)
	}
	if !strings.Contains(out, "all answers valid") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestImagesGenerateRejectsUnknownTemplate(t *testing.T) {
	url, fg := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{}`) //nolint:errcheck
	})
	_, _, err := execute(t, url, "", "images", "generate", "billboard", "--data", "title=x")
	if err == nil || !strings.Contains(err.Error(), "unsupported template type") {
		t.Fatalf("expected unsupported template error, got %v", err)
	}
	if len(fg.requests) != 0 {
		t.Fatalf("no request should be sent, got %d", len(fg.requests))
	}
}

func TestMLTestRejectsUnknownEntity(t *testing.T) {
	_, _, err := execute(t, "http://127.0.0.1:1", "", "ml", "test", "invoice", "42")
	if err == nil || !strings.Contains(err.Error(), "unsupported entity type") {
		t.Fatalf("expected unsupported entity error, got %v", err)
	}
}

func TestLogsImportThenArchiveSessions(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CRMADMIN_ARCHIVE", filepath.Join(dir, "logs.db"))

	export := filepath.Join(dir, "logs.jsonl")
	data := strings.Join([]string{
		`{"id":"1","sessionId":"A","type":"INFO","actionType":"GENERATE","message":"start","createdAt":"2025-10-27T12:00:00Z"}`,
		`{"id":"2","sessionId":"B","type":"ERROR","actionType":"SYNC","message":"boom","createdAt":"2025-10-27T12:00:01Z"}`,
		`not json`,
		`{"id":"3","sessionId":"A","type":"SUCCESS","actionType":"GENERATE","message":"done","createdAt":"2025-10-27T12:00:02Z"}`,
	}, "\n")
	if err := os.WriteFile(export, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	out, errOut, err := execute(t, "", "", "logs", "import", export)
	if err != nil {
		t.Fatalf("import returned error: %v", err)
	}
	if !strings.Contains(out, "imported 3 records (1 skipped)") {
		t.Fatalf("unexpected import output %q", out)
	}
	if !strings.Contains(errOut, "warning: line 3") {
		t.Fatalf("expected warning for the bad line, got %q", errOut)
	}

	out, _, err = execute(t, "", "", "logs", "sessions", "--archive", "--format", "plain", "--no-header")
	if err != nil {
		t.Fatalf("sessions returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two sessions, got %q", out)
	}
	if !strings.HasPrefix(lines[0], "A\t") || !strings.Contains(lines[0], "\t2\t") {
		t.Fatalf("session A should come first with two records, got %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "B\t") || !strings.Contains(lines[1], "✗") {
		t.Fatalf("session B should report an error outcome, got %q", lines[1])
	}
}

func TestLogsViewRawFromArchive(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CRMADMIN_ARCHIVE", filepath.Join(dir, "logs.db"))
	export := filepath.Join(dir, "logs.jsonl")
	data := `{"id":"1","sessionId":"A","type":"INFO","actionType":"GENERATE","message":"start","createdAt":"2025-10-27T12:00:00Z"}
{"id":"2","sessionId":"B","type":"ERROR","actionType":"SYNC","message":"boom","createdAt":"2025-10-27T12:00:01Z"}
`
	if err := os.WriteFile(export, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := execute(t, "", "", "logs", "import", export); err != nil {
		t.Fatalf("import returned error: %v", err)
	}

	out, _, err := execute(t, "", "", "logs", "view", "--archive", "--mode", "raw", "--type", "error")
	if err != nil {
		t.Fatalf("view returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], `"id":"2"`) {
		t.Fatalf("expected only the error record, got %q", out)
	}
}

func TestConfigShowMasksKey(t *testing.T) {
	out, _, err := execute(t, "https://gw.example.com", "", "--api-key", "sk-live-123456", "config", "show")
	if err != nil {
		t.Fatalf("config show returned error: %v", err)
	}
	if strings.Contains(out, "sk-live-123456") {
		t.Fatalf("api key leaked: %q", out)
	}
	if !strings.Contains(out, "3456") || !strings.Contains(out, "url: https://gw.example.com") {
		t.Fatalf("unexpected config output %q", out)
	}
}

func TestBadgesLegend(t *testing.T) {
	out, _, err := execute(t, "", "", "badges", "log", "--format", "plain", "--no-header")
	if err != nil {
		t.Fatalf("badges returned error: %v", err)
	}
	want := []string{
		"log\tINFO\ti Info\tblue",
		"log\tSUCCESS\t✓ Success\tgreen",
		"log\tERROR\t✗ Error\tred",
	}
	for _, line := range want {
		if !strings.Contains(out, line) {
			t.Fatalf("missing %q in %q", line, out)
		}
	}
}

func importLogs(t *testing.T, lines ...string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CRMADMIN_ARCHIVE", filepath.Join(dir, "logs.db"))
	export := filepath.Join(dir, "logs.jsonl")
	if err := os.WriteFile(export, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := execute(t, "", "", "logs", "import", export); err != nil {
		t.Fatalf("import returned error: %v", err)
	}
}

func TestLogsListToIncludesWholeDay(t *testing.T) {
	url, fg := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"data":[],"total":0,"page":1,"pages":0}`) //nolint:errcheck
	})

	if _, _, err := execute(t, url, "", "logs", "list", "--to", "2025-10-27"); err != nil {
		t.Fatalf("logs list returned error: %v", err)
	}
	if q := fg.last().query; !strings.Contains(q, "endDate=2025-10-27T23%3A59%3A59Z") {
		t.Fatalf("endDate should cover the whole day, got %q", q)
	}
}

func TestLogsViewArchiveToIncludesWholeDay(t *testing.T) {
	importLogs(t,
		`{"id":"1","sessionId":"A","type":"INFO","actionType":"GENERATE","message":"morning","createdAt":"2025-10-27T09:00:00Z"}`,
		`{"id":"2","sessionId":"A","type":"INFO","actionType":"GENERATE","message":"next day","createdAt":"2025-10-28T09:00:00Z"}`,
	)

	out, _, err := execute(t, "", "", "logs", "view", "--archive", "--mode", "raw", "--to", "2025-10-27")
	if err != nil {
		t.Fatalf("view returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], `"id":"1"`) {
		t.Fatalf("expected only the record of 2025-10-27, got %q", out)
	}
}

func TestLogsViewArchiveMaxKeepsLatest(t *testing.T) {
	importLogs(t,
		`{"id":"1","sessionId":"A","type":"INFO","message":"one","createdAt":"2025-10-27T09:00:00Z"}`,
		`{"id":"2","sessionId":"A","type":"INFO","message":"two","createdAt":"2025-10-27T09:01:00Z"}`,
		`{"id":"3","sessionId":"A","type":"SUCCESS","message":"three","createdAt":"2025-10-27T09:02:00Z"}`,
	)

	out, _, err := execute(t, "", "", "logs", "view", "--archive", "--mode", "raw", "--max", "2")
	if err != nil {
		t.Fatalf("view returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], `"id":"2"`) || !strings.Contains(lines[1], `"id":"3"`) {
		t.Fatalf("expected the two latest records, got %q", out)
	}
}

func TestLogsViewSessionFiltersAtGateway(t *testing.T) {
	url, fg := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sessionId") != "S-target" {
			io.WriteString(w, `{"data":[{"id":"9","sessionId":"S-other","type":"INFO","message":"other","createdAt":"2025-10-27T09:00:00Z"}],"total":1,"page":1,"pages":1}`) //nolint:errcheck
			return
		}
		io.WriteString(w, `{"data":[{"id":"4","sessionId":"S-target","type":"INFO","message":"found","createdAt":"2025-10-27T09:00:00Z"}],"total":1,"page":1,"pages":1}`) //nolint:errcheck
	})

	out, _, err := execute(t, url, "", "logs", "view", "S-target", "--mode", "raw")
	if err != nil {
		t.Fatalf("view returned error: %v", err)
	}
	if q := fg.last().query; !strings.Contains(q, "sessionId=S-target") {
		t.Fatalf("session id not sent to the gateway, got %q", q)
	}
	if !strings.Contains(out, `"id":"4"`) {
		t.Fatalf("expected the session record, got %q", out)
	}
}

func TestLogsPullAllWithoutCounters(t *testing.T) {
	t.Setenv("CRMADMIN_ARCHIVE", filepath.Join(t.TempDir(), "logs.db"))
	url, fg := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			io.WriteString(w, `[{"id":"1","sessionId":"A","type":"INFO","createdAt":"2025-10-27T09:00:00Z"},{"id":"2","sessionId":"A","type":"INFO","createdAt":"2025-10-27T09:01:00Z"}]`) //nolint:errcheck
		case "2":
			io.WriteString(w, `[{"id":"3","sessionId":"B","type":"ERROR","createdAt":"2025-10-27T09:02:00Z"}]`) //nolint:errcheck
		default:
			io.WriteString(w, `[]`) //nolint:errcheck
		}
	})

	out, _, err := execute(t, url, "", "logs", "pull", "--all", "--limit", "2")
	if err != nil {
		t.Fatalf("pull returned error: %v", err)
	}
	if got := fg.count(http.MethodGet, "/logs"); got != 2 {
		t.Fatalf("expected two page requests, got %d", got)
	}
	if !strings.Contains(out, "pulled 3 records (3 saved), archive holds 3") {
		t.Fatalf("unexpected pull output %q", out)
	}
}

func TestReportsStatusSurvivesRefreshFailure(t *testing.T) {
	url, fg := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusForbidden)
			io.WriteString(w, `{"message":"list forbidden"}`) //nolint:errcheck
			return
		}
		io.WriteString(w, `{"id":"r1","title":"Broken heater","status":"resolved"}`) //nolint:errcheck
	})

	out, errOut, err := execute(t, url, "", "reports", "status", "r1", "resolved")
	if err != nil {
		t.Fatalf("applied change should not fail: %v", err)
	}
	if got := fg.count(http.MethodPatch, "/admin/reports/r1/status"); got != 1 {
		t.Fatalf("expected one status update, got %d", got)
	}
	if !strings.Contains(out, "Broken heater") {
		t.Fatalf("updated report not printed, got %q", out)
	}
	if !strings.Contains(errOut, "level=WARN") || !strings.Contains(errOut, "list forbidden") {
		t.Fatalf("expected a refresh warning, got %q", errOut)
	}
}

func TestClientAppDeleteSurvivesRefreshFailure(t *testing.T) {
	url, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"message":"list forbidden"}`) //nolint:errcheck
	})

	out, errOut, err := execute(t, url, "", "--yes", "client-apps", "delete", "ca-1")
	if err != nil {
		t.Fatalf("applied delete should not fail: %v", err)
	}
	if strings.TrimSpace(out) != "deleted client app ca-1" {
		t.Fatalf("unexpected output %q", out)
	}
	if !strings.Contains(errOut, "level=WARN") {
		t.Fatalf("expected a refresh warning, got %q", errOut)
	}
}

func TestMLTestKeepsStringFeatures(t *testing.T) {
	var body string
	var mu sync.Mutex
	url, _ := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		body = string(data)
		mu.Unlock()
		io.WriteString(w, `{"prediction":"on_track","confidence":0.8}`) //nolint:errcheck
	})

	_, _, err := execute(t, url, "", "ml", "test", "project", "p1", "--feature", "budget=100", "--feature", "deadline=0123")
	if err != nil {
		t.Fatalf("ml test returned error: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if !strings.Contains(body, `"budget":100`) || !strings.Contains(body, `"deadline":"0123"`) {
		t.Fatalf("unexpected feature encoding %s", body)
	}
}
