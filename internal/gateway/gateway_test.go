package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"crmadmin/internal/checkin"
	"crmadmin/internal/model"
	"crmadmin/internal/query"
	"crmadmin/internal/store"
)

type recorded struct {
	method string
	path   string
	query  url.Values
	body   string
	header http.Header
}

type fakeGateway struct {
	mu       sync.Mutex
	requests []recorded
	handler  func(w http.ResponseWriter, r *http.Request)
}

func newFake(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *fakeGateway) {
	t.Helper()
	fg := &fakeGateway{handler: handler}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fg.mu.Lock()
		fg.requests = append(fg.requests, recorded{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query(),
			body:   string(body),
			header: r.Header.Clone(),
		})
		fg.mu.Unlock()
		fg.handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL + "/api/", APIKey: "secret"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return c, fg
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

func TestNewValidatesURL(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("expected error for empty url")
	}
	if _, err := New(Options{BaseURL: "ftp://example.com"}); err == nil {
		t.Fatal("expected error for non-http url")
	}
}

func TestListBookingsHeadersAndQuery(t *testing.T) {
	c, fg := newFake(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":[{"id":"b1","guestName":"Ada","status":"confirmed"}],"total":41,"pages":3,"page":2}`) //nolint:errcheck
	})

	f := query.Filter{Page: 2, PageSize: 20, Status: "all", Search: ""}
	page, err := c.Bookings.List(context.Background(), f.Encode())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].GuestName != "Ada" {
		t.Fatalf("unexpected items: %+v", page.Items)
	}
	if page.Total != 41 || page.Pages != 3 || page.Page != 2 {
		t.Fatalf("unexpected counters: %+v", page)
	}

	req := fg.requests[0]
	if req.path != "/api/bookings" {
		t.Fatalf("unexpected path %s", req.path)
	}
	if req.header.Get(APIKeyHeader) != "secret" {
		t.Fatalf("api key header missing")
	}
	if req.header.Get(RequestIDHeader) == "" {
		t.Fatalf("request id header missing")
	}
	if _, ok := req.query["status"]; ok {
		t.Fatalf("status=all must be omitted: %v", req.query)
	}
	if _, ok := req.query["search"]; ok {
		t.Fatalf("empty search must be omitted: %v", req.query)
	}
	if req.query.Get("page") != "2" || req.query.Get("limit") != "20" {
		t.Fatalf("pagination not sent: %v", req.query)
	}
}

func TestDecodePageShapes(t *testing.T) {
	q := url.Values{"page": {"1"}, "limit": {"10"}}
	tests := []struct {
		name  string
		body  string
		items int
		total int
		pages int
	}{
		{"bare array", `[{"id":"1"},{"id":"2"}]`, 2, 2, 1},
		{"items key", `{"items":[{"id":"1"}],"totalCount":25}`, 1, 25, 3},
		{"nested data", `{"data":{"items":[{"id":"1"}],"total":"11","totalPages":2}}`, 1, 11, 2},
		{"meta block", `{"data":[{"id":"1"}],"meta":{"total":30,"pages":3,"page":1}}`, 1, 30, 3},
		{"empty", `{"data":[],"total":0}`, 0, 0, 0},
		{"full page without counters", `{"data":[` + strings.TrimSuffix(strings.Repeat(`{"id":"x"},`, 10), ",") + `]}`, 10, 10, 2},
		{"empty without counters", `[]`, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := decodePage[model.LogRecord]([]byte(tt.body), q)
			if err != nil {
				t.Fatalf("decodePage returned error: %v", err)
			}
			if len(page.Items) != tt.items || page.Total != tt.total || page.Pages != tt.pages {
				t.Fatalf("got items=%d total=%d pages=%d", len(page.Items), page.Total, page.Pages)
			}
			if page.Items == nil {
				t.Fatal("items should never be nil")
			}
		})
	}

	last, err := decodePage[model.LogRecord]([]byte(`[{"id":"11"},{"id":"12"}]`), url.Values{"page": {"2"}, "limit": {"10"}})
	if err != nil {
		t.Fatalf("decodePage returned error: %v", err)
	}
	if last.Total != 12 || last.Pages != 2 || last.Page != 2 {
		t.Fatalf("short second page should end paging, got total=%d pages=%d page=%d", last.Total, last.Pages, last.Page)
	}

	if _, err := decodePage[model.LogRecord]([]byte(`{"message":"ok"}`), q); err == nil {
		t.Fatal("expected error when no item list is present")
	}
}

func TestAPIError(t *testing.T) {
	c, _ := newFake(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"statusCode":404,"message":"Booking not found"}`) //nolint:errcheck
	})

	_, err := c.Bookings.Get(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Message != "Booking not found" || apiErr.RequestID == "" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
	if !IsNotFound(err) {
		t.Fatal("IsNotFound should be true")
	}
}

func TestGetUnwrapsData(t *testing.T) {
	c, _ := newFake(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true,"data":{"id":"r1","title":"Leak","status":"pending","tags":["a"]}}`) //nolint:errcheck
	})
	r, err := c.Reports.Get(context.Background(), "r1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if r.Title != "Leak" || len(r.Tags) != 1 {
		t.Fatalf("unexpected report: %+v", r)
	}
}

func TestReportMutations(t *testing.T) {
	c, fg := newFake(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":"r1","status":"resolved","isPublic":true,"isFeatured":true,"tags":["x","y"]}`) //nolint:errcheck
	})
	ctx := context.Background()

	if _, err := c.Reports.SetStatus(ctx, "r1", model.ReportResolved); err != nil {
		t.Fatalf("SetStatus returned error: %v", err)
	}
	if _, err := c.Reports.SetVisibility(ctx, "r1", true); err != nil {
		t.Fatalf("SetVisibility returned error: %v", err)
	}
	if _, err := c.Reports.SetFeatured(ctx, "r1", false); err != nil {
		t.Fatalf("SetFeatured returned error: %v", err)
	}
	if _, err := c.Reports.SetTags(ctx, "r1", nil); err != nil {
		t.Fatalf("SetTags returned error: %v", err)
	}

	want := []struct{ path, body string }{
		{"/api/admin/reports/r1/status", `{"status":"resolved"}`},
		{"/api/admin/reports/r1/visibility", `{"isPublic":true}`},
		{"/api/admin/reports/r1/featured", `{"isFeatured":false}`},
		{"/api/admin/reports/r1/tags", `{"tags":[]}`},
	}
	for i, w := range want {
		got := fg.requests[i]
		if got.method != http.MethodPatch || got.path != w.path || got.body != w.body {
			t.Fatalf("request %d: got %s %s %s", i, got.method, got.path, got.body)
		}
	}
}

func TestDeleteClientAppRefreshesOnce(t *testing.T) {
	c, fg := newFake(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			io.WriteString(w, `{"data":[{"id":"app-2","name":"Two","status":"active"}],"total":1}`) //nolint:errcheck
		}
	})

	apps := store.New(c.ClientApps.List, query.Filter{PageSize: 10}).WithDeleter(c.ClientApps.Delete)
	if err := apps.Remove(context.Background(), "app-1"); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if n := fg.count(http.MethodDelete, "/api/client-apps/app-1"); n != 1 {
		t.Fatalf("expected one delete call, got %d", n)
	}
	if n := fg.count(http.MethodGet, "/api/client-apps"); n != 1 {
		t.Fatalf("expected exactly one refresh, got %d", n)
	}
	if got := apps.State().Items; len(got) != 1 || got[0].ID != "app-2" {
		t.Fatalf("unexpected items after refresh: %+v", got)
	}
}

func TestCreateClientAppRequiresName(t *testing.T) {
	c, fg := newFake(t, func(w http.ResponseWriter, r *http.Request) {})
	if _, err := c.ClientApps.Create(context.Background(), model.ClientAppInput{}); err == nil {
		t.Fatal("expected error")
	}
	if len(fg.requests) != 0 {
		t.Fatal("invalid input must not reach the gateway")
	}
}

func TestSyncBookings(t *testing.T) {
	c, fg := newFake(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"created":3,"updated":1,"skipped":0}`) //nolint:errcheck
	})
	res, err := c.Bookings.Sync(context.Background(), SyncOptions{PropertyID: "p-1"})
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if res.Created != 3 || res.Updated != 1 {
		t.Fatalf("unexpected sync result: %+v", res)
	}
	if fg.requests[0].method != http.MethodPost || fg.requests[0].path != "/api/bookings/sync" {
		t.Fatalf("unexpected request: %+v", fg.requests[0])
	}
	if !strings.Contains(fg.requests[0].body, `"propertyId":"p-1"`) {
		t.Fatalf("unexpected body: %s", fg.requests[0].body)
	}
}

func TestPredictDispatch(t *testing.T) {
	c, fg := newFake(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"modelId":"m1","output":{"risk":"low"},"confidence":0.92}`) //nolint:errcheck
	})
	ctx := context.Background()

	pred, err := c.ML.Predict(ctx, model.PredictRequest{EntityType: "Task", EntityID: "t-1"})
	if err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}
	var sent model.PredictRequest
	if err := json.Unmarshal([]byte(fg.requests[0].body), &sent); err != nil {
		t.Fatalf("decode sent body: %v", err)
	}
	if sent.EntityType != model.EntityTask {
		t.Fatalf("entity type should be normalised, got %q", sent.EntityType)
	}
	if pred.EntityType != model.EntityTask || pred.EntityID != "t-1" || pred.Confidence != 0.92 {
		t.Fatalf("unexpected prediction: %+v", pred)
	}
	if fg.requests[0].path != "/api/ml/predict/task" {
		t.Fatalf("unexpected path: %s", fg.requests[0].path)
	}

	_, err = c.ML.Predict(ctx, model.PredictRequest{EntityType: "invoice", EntityID: "i-1"})
	if !errors.Is(err, ErrUnsupportedEntity) {
		t.Fatalf("expected ErrUnsupportedEntity, got %v", err)
	}
	if _, err := c.ML.Predict(ctx, model.PredictRequest{EntityType: "task"}); err == nil {
		t.Fatal("expected error for missing entity id")
	}
	if len(fg.requests) != 1 {
		t.Fatalf("invalid predictions must not reach the gateway, got %d requests", len(fg.requests))
	}
}

func checkinForm(name string) checkin.Form {
	return checkin.Form{
		Name: name,
		Sections: []checkin.Section{{
			ID:    "guest",
			Title: "Guest",
			Fields: []checkin.Field{
				{ID: "fullName", Label: "Full name", Type: checkin.FieldText, Required: true},
			},
		}},
	}
}

func TestCheckinCreateValidatesLocally(t *testing.T) {
	c, fg := newFake(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":"f1","name":"Basic","sections":[]}`) //nolint:errcheck
	})
	_, err := c.CheckinForms.Create(context.Background(), checkinForm(""))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(fg.requests) != 0 {
		t.Fatal("invalid form must not reach the gateway")
	}

	out, err := c.CheckinForms.Create(context.Background(), checkinForm("Basic"))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if out.ID != "f1" {
		t.Fatalf("unexpected form: %+v", out)
	}
}
