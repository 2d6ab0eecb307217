package pipeline

import "testing"

func TestFormatDate_EpochSecondsAndMillis(t *testing.T) {
	sec := FormatDate("1700000000")
	ms := FormatDate("1700000000000")
	if sec != ms {
		t.Fatalf("seconds and millis should agree: %q vs %q", sec, ms)
	}
	if sec != "2023-11-14 22:13" {
		t.Fatalf("unexpected date %q", sec)
	}
}

func TestFormatDate_MidnightDropsTime(t *testing.T) {
	// 2024-01-01T00:00:00Z
	if got := FormatDate("1704067200"); got != "2024-01-01" {
		t.Fatalf("expected bare date at midnight, got %q", got)
	}
}

func TestFormatDate_ISOPrefix(t *testing.T) {
	cases := map[string]string{
		"2024-03-07":              "2024-03-07",
		"2024-03-07T09:30:00":     "2024-03-07 09:30",
		"2024-03-07 09:30:15":     "2024-03-07 09:30",
		"2024-03-07T00:00:00.000": "2024-03-07 00:00",
	}
	for in, want := range cases {
		if got := FormatDate(in); got != want {
			t.Fatalf("FormatDate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDate_GenericLayouts(t *testing.T) {
	if got := FormatDate("07/03/2024"); got != "2024-03-07" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestFormatDate_UnparseableReturnedUnchanged(t *testing.T) {
	for _, in := range []string{"", "next Tuesday", "soon", "n/a"} {
		if got := FormatDate(in); got != in {
			t.Fatalf("FormatDate(%q) = %q, want input unchanged", in, got)
		}
	}
}
