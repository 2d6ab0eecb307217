package pipeline

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var isoPrefixRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// Layouts tried for free-form date strings, roughly in the order feeds
// actually use them.
var genericLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"Jan 2, 2006 15:04",
	"Jan 2, 2006",
	"2 January 2006",
}

// FormatDate renders a feed date value as "YYYY-MM-DD" or
// "YYYY-MM-DD HH:MM" (UTC, midnight omitted). Numeric strings are Unix
// timestamps, in milliseconds when already past 1e12, otherwise seconds.
// ISO-looking strings are split directly so the feed's own wall time is
// kept. Anything unparseable comes back unchanged, never an error.
func FormatDate(val string) string {
	if val == "" {
		return ""
	}

	if num, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil && num > 0 {
		ms := num
		if num <= 1e12 {
			ms = num * 1000
		}
		return formatUTC(time.UnixMilli(int64(ms)).UTC())
	}

	if isoPrefixRegex.MatchString(val) {
		datePart, rest := splitDateTime(val)
		timePart := rest
		if len(timePart) > 5 {
			timePart = timePart[:5]
		}
		if timePart != "" {
			return datePart + " " + timePart
		}
		return datePart
	}

	for _, layout := range genericLayouts {
		if t, err := time.Parse(layout, val); err == nil {
			return formatUTC(t.UTC())
		}
	}

	return val
}

func formatUTC(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04")
}

// splitDateTime separates an ISO-like value on the first 'T' or space.
func splitDateTime(val string) (string, string) {
	if i := strings.IndexAny(val, "T "); i >= 0 {
		return val[:i], val[i+1:]
	}
	return val, ""
}
