package format

import (
	"bytes"
	"strings"
	"testing"

	"crmadmin/internal/checkin"
	"crmadmin/internal/model"
)

func TestRenderRecordLines_Text(t *testing.T) {
	rec := model.LogRecord{Message: "one two three four five six"}

	lines := RenderRecordLines(rec, 10)
	if len(lines) < 2 {
		t.Fatalf("expected wrapped lines, got %v", lines)
	}
	if strings.TrimSpace(lines[0]) == "" {
		t.Fatalf("first line should contain text: %v", lines)
	}
}

func TestRenderRecordLines_JSONDetails(t *testing.T) {
	rec := model.LogRecord{
		Message: "render failed",
		Details: `{"foo":1,"bar":{"baz":2}}`,
		ImageID: "img-1",
	}

	lines := RenderRecordLines(rec, 80)
	if lines[0] != "render failed" || lines[1] != "Details:" {
		t.Fatalf("unexpected leading lines: %v", lines)
	}
	if !strings.HasPrefix(lines[2], "{") || !strings.HasPrefix(lines[3], "  ") {
		t.Fatalf("json details not indented: %v", lines)
	}
	if lines[len(lines)-1] != "Image: img-1" {
		t.Fatalf("image line missing: %v", lines)
	}
}

func TestRenderRecordLines_Empty(t *testing.T) {
	if lines := RenderRecordLines(model.LogRecord{}, 80); lines != nil {
		t.Fatalf("expected nil lines, got %v", lines)
	}
}

func TestClientAppDetailMasksKey(t *testing.T) {
	app := model.ClientApp{ID: "app-1", Name: "Portal", APIKey: "ak_live_123456789", Status: model.ClientAppActive}

	var buf bytes.Buffer
	WriteDetail(&buf, "", ClientAppDetail(app, false, false))
	out := buf.String()
	if strings.Contains(out, "ak_live_1234") || !strings.Contains(out, "6789") {
		t.Fatalf("api key should be masked:\n%s", out)
	}

	buf.Reset()
	WriteDetail(&buf, "", ClientAppDetail(app, false, true))
	if !strings.Contains(buf.String(), "ak_live_123456789") {
		t.Fatalf("revealed key missing:\n%s", buf.String())
	}
}

func TestWriteForm(t *testing.T) {
	max := 10.0
	form := checkin.Form{
		ID:   "f1",
		Name: "Arrival",
		Sections: []checkin.Section{{
			ID:    "guest",
			Title: "Guest",
			Fields: []checkin.Field{
				{ID: "adults", Label: "Adults", Type: checkin.FieldNumber, Required: true, Max: &max},
				{ID: "purpose", Label: "Purpose", Type: checkin.FieldSelect, Options: []string{"leisure", "business"}},
			},
		}},
	}

	var buf bytes.Buffer
	WriteForm(&buf, form)
	out := buf.String()
	for _, want := range []string{"Arrival", "Guest", "max=10", "options=leisure|business"} {
		if !strings.Contains(out, want) {
			t.Fatalf("form output missing %q:\n%s", want, out)
		}
	}
}

func TestMaskKey(t *testing.T) {
	cases := map[string]string{
		"":         "",
		"abc":      "****",
		"abcdefgh": "****efgh",
	}
	for in, want := range cases {
		if got := MaskKey(in); got != want {
			t.Fatalf("MaskKey(%q) = %q, want %q", in, got, want)
		}
	}
}
