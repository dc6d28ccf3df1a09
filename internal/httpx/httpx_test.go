package httpx

import (
	"net/url"
	"strings"
	"testing"
)

type sample struct {
	Name string `json:"name"`
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var s sample
	if err := DecodeJSON(strings.NewReader(`{"name":"a","extra":1}`), &s); err == nil {
		t.Fatalf("expected unknown field error")
	}
	if err := DecodeLenientJSON(strings.NewReader(`{"name":"a","extra":1}`), &s); err != nil {
		t.Fatalf("DecodeLenientJSON error: %v", err)
	}
	if s.Name != "a" {
		t.Fatalf("expected name a, got %q", s.Name)
	}
}

func TestDecodeJSONRejectsTrailingValue(t *testing.T) {
	var s sample
	if err := DecodeJSON(strings.NewReader(`{"name":"a"}{"name":"b"}`), &s); err == nil {
		t.Fatalf("expected trailing value error")
	}
}

func TestParseLimitOffset(t *testing.T) {
	limit, offset, err := ParseLimitOffset(url.Values{"limit": {"500"}, "offset": {"5"}}, 20, 100)
	if err != nil {
		t.Fatalf("ParseLimitOffset error: %v", err)
	}
	if limit != 100 || offset != 5 {
		t.Fatalf("unexpected limit/offset %d/%d", limit, offset)
	}

	if _, _, err := ParseLimitOffset(url.Values{"limit": {"0"}}, 20, 100); err == nil {
		t.Fatalf("expected invalid limit")
	}
	if _, _, err := ParseLimitOffset(url.Values{"offset": {"-1"}}, 20, 100); err == nil {
		t.Fatalf("expected invalid offset")
	}
}
