package feeds

import (
	"html"
	"sort"

	"proplookup/models"
)

// normalizeWordPressRow reshapes a WP REST row into the flat form the
// normalizer expects. Titles arrive as {"rendered": "..."} with HTML
// entities; the property plugin stores photos under wppd_ keys.
func normalizeWordPressRow(row models.Record) models.Record {
	out := models.Record{
		"id":          row["id"],
		"addressText": wpTitle(row["title"]),
		"price":       firstNonEmpty(row, "price", "price_sold"),
		"status":      firstNonEmpty(row, "property_status", "status", "property_market"),
		"eircode":     row["eircode"],
		"latitude":    row["latitude"],
		"longitude":   row["longitude"],
		"photoUrls":   wpPhotos(row),
		"link":        row["link"],
		"source":      models.SourceWordPress,
		"sourceLabel": models.SourceLabels[models.SourceWordPress],
	}
	return out
}

func wpTitle(v any) string {
	if m, ok := v.(map[string]any); ok {
		if rendered, ok := m["rendered"].(string); ok {
			return html.UnescapeString(rendered)
		}
		return ""
	}
	if s, ok := v.(string); ok {
		return html.UnescapeString(s)
	}
	return ""
}

func wpPhotos(row models.Record) []any {
	if pics, ok := row["wppd_pics"].([]any); ok {
		return pics
	}
	if primary, ok := row["wppd_primary_image"].(string); ok && primary != "" {
		return []any{primary}
	}
	return nil
}

func firstNonEmpty(row models.Record, keys ...string) any {
	for _, key := range keys {
		v, ok := row[key]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		return v
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
