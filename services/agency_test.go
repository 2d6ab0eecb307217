package services

import "testing"

func TestParseSources(t *testing.T) {
	if got := ParseSources(""); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
	if got := ParseSources(" , "); got != nil {
		t.Fatalf("expected nil for blank list, got %v", got)
	}

	got := ParseSources("MyHome, daft ,")
	if len(got) != 2 || !got["myhome"] || !got["daft"] {
		t.Fatalf("unexpected set %v", got)
	}
}
