package pipeline

import (
	"strconv"

	"proplookup/models"
)

// normalizeKey lowercases a field name and strips everything that is not
// a letter or digit, so "house_price", "HousePrice" and "house price" all
// collapse to the same lookup key.
func normalizeKey(key string) string {
	out := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			out = append(out, c)
		case c >= 'A' && c <= 'Z':
			out = append(out, c+'a'-'A')
		}
	}
	return string(out)
}

// Text coerces a raw feed value to display text. Strings and numbers
// stringify as-is; wrapper objects carrying "#text" (xmltodict style) or
// "value" unwrap to their inner text; everything else is empty. Zero and
// blank values pass through untouched, callers decide whether they count
// as absent.
func Text(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case map[string]any:
		if inner, ok := v["#text"].(string); ok {
			return inner
		}
		if inner, ok := v["value"]; ok {
			return scalarText(inner)
		}
		return ""
	default:
		return ""
	}
}

func scalarText(val any) string {
	switch val.(type) {
	case string, float64, int, int64:
		return Text(val)
	}
	return ""
}

// Pick probes the alias keys in order against a case/punctuation-
// insensitive view of the record's own keys and returns the text of the
// first alias that is present. Presence wins over content: an alias whose
// value coerces to "" still stops the probe. No match means "".
func Pick(rec models.Record, aliases ...string) string {
	if len(rec) == 0 {
		return ""
	}
	normalized := make(map[string]any, len(rec))
	for k, v := range rec {
		normalized[normalizeKey(k)] = v
	}
	for _, alias := range aliases {
		if hit, ok := normalized[normalizeKey(alias)]; ok {
			return Text(hit)
		}
	}
	return ""
}

// child returns a nested map field, or nil when absent or not a map.
func child(rec models.Record, key string) models.Record {
	if m, ok := rec[key].(map[string]any); ok {
		return models.Record(m)
	}
	return nil
}

// firstPresent returns the value of the first key that exists in the
// record, mirroring a ??-chain over raw fields: presence, not
// non-emptiness, decides.
func firstPresent(rec models.Record, keys ...string) any {
	for _, k := range keys {
		if v, ok := rec[k]; ok {
			return v
		}
	}
	return nil
}
