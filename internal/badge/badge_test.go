package badge

import (
	"strings"
	"testing"
)

func TestEveryDeclaredValueHasBadge(t *testing.T) {
	for _, kind := range Kinds {
		values := Values(kind)
		if len(values) == 0 {
			t.Fatalf("kind %s has no declared values", kind)
		}
		for _, v := range values {
			b := For(kind, v)
			if b == Unknown {
				t.Fatalf("%s value %q fell back to Unknown", kind, v)
			}
			if b.Label == "" || b.Color == "" || b.Icon == "" {
				t.Fatalf("%s value %q has incomplete badge %+v", kind, v, b)
			}
		}
	}
}

func TestUnknownFallback(t *testing.T) {
	for _, kind := range Kinds {
		if got := For(kind, "definitely-not-a-status"); got != Unknown {
			t.Fatalf("%s: expected Unknown, got %+v", kind, got)
		}
		if got := For(kind, ""); got != Unknown {
			t.Fatalf("%s: expected Unknown for empty value, got %+v", kind, got)
		}
	}
	if got := For(Kind("invoice"), "paid"); got != Unknown {
		t.Fatalf("unknown kind should map to Unknown, got %+v", got)
	}
}

func TestCaseInsensitive(t *testing.T) {
	if ForLog("error").Label != "Error" {
		t.Fatal("log types should match case-insensitively")
	}
	if For(KindBooking, "CONFIRMED").Label != "Confirmed" {
		t.Fatal("booking status should match case-insensitively")
	}
}

func TestRender(t *testing.T) {
	b := For(KindReport, "resolved")
	if got := Render(b, false); got != "✓ Resolved" {
		t.Fatalf("unexpected plain render: %q", got)
	}
	if got := Render(b, true); !strings.Contains(got, "Resolved") {
		t.Fatalf("colored render lost label: %q", got)
	}
}
