package pipeline

import (
	"testing"

	"proplookup/models"
)

func TestPick_AliasOrder(t *testing.T) {
	rec := models.Record{
		"HousePrice": "250000",
		"price":      "199000",
	}
	// "house_price" normalizes to the same key as "HousePrice".
	if got := Pick(rec, "house_price", "price"); got != "250000" {
		t.Fatalf("expected first alias to win, got %q", got)
	}
	if got := Pick(rec, "nope", "price"); got != "199000" {
		t.Fatalf("expected fallthrough to second alias, got %q", got)
	}
	if got := Pick(rec, "missing", "also missing"); got != "" {
		t.Fatalf("expected empty for no match, got %q", got)
	}
}

func TestPick_PresenceStopsProbe(t *testing.T) {
	// A present key with empty text still wins over later aliases.
	rec := models.Record{"price": "", "house_price": "350000"}
	if got := Pick(rec, "price", "house_price"); got != "" {
		t.Fatalf("expected present-but-empty to stop the probe, got %q", got)
	}
}

func TestText_Coercion(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"hello", "hello"},
		{float64(350000), "350000"},
		{float64(12.5), "12.5"},
		{0.0, "0"},
		{map[string]any{"#text": "Bray, Co. Wicklow"}, "Bray, Co. Wicklow"},
		{map[string]any{"value": float64(3)}, "3"},
		{map[string]any{"other": "x"}, ""},
		{[]any{"a"}, ""},
		{true, ""},
	}
	for _, c := range cases {
		if got := Text(c.in); got != c.want {
			t.Fatalf("Text(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestText_ZeroNotFiltered(t *testing.T) {
	// Zero survives extraction; callers decide whether it means absent.
	if got := Text(float64(0)); got != "0" {
		t.Fatalf("expected \"0\", got %q", got)
	}
}

func TestNormalizeKey(t *testing.T) {
	cases := map[string]string{
		"house_price":     "houseprice",
		"House Price":     "houseprice",
		"PriceAsString":   "priceasstring",
		"price as string": "priceasstring",
	}
	for in, want := range cases {
		if got := normalizeKey(in); got != want {
			t.Fatalf("normalizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}
