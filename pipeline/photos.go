package pipeline

import (
	"sort"
	"strings"

	"proplookup/models"
)

// Fields that may carry photo URLs, across all providers.
var photoFields = []string{
	"MainPhoto",
	"MainPhotoWeb",
	"Photos",
	"Photo",
	"PhotoList",
	"images_url_house",
	"pictures",
	"picturethumbnails",
	"photos",
}

// CollectPhotos gathers every usable photo URL from a raw record:
// recursively unwrapping arrays and wrapper objects, trimming stray
// quotes, skipping thumbnail/ipad variants, promoting protocol-relative
// URLs to https, and dropping anything that is not an absolute http(s)
// URL. First-seen order is kept, duplicates collapse.
func CollectPhotos(rec models.Record) []string {
	var urls []string
	seen := make(map[string]bool)

	var push func(val any)
	push = func(val any) {
		switch v := val.(type) {
		case []any:
			for _, item := range v {
				push(item)
			}
		case map[string]any:
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				push(v[k])
			}
		case string:
			u := strings.Trim(strings.TrimSpace(v), `'"`)
			if u == "" {
				return
			}
			low := strings.ToLower(u)
			if strings.Contains(low, "thumbnail") || strings.Contains(low, "ipad") {
				return
			}
			if strings.HasPrefix(u, "//") {
				u = "https:" + u
			}
			low = strings.ToLower(u)
			if !strings.HasPrefix(low, "http://") && !strings.HasPrefix(low, "https://") {
				return
			}
			if !seen[u] {
				seen[u] = true
				urls = append(urls, u)
			}
		}
	}

	for _, field := range photoFields {
		push(rec[field])
	}
	return urls
}
