package pipeline

import (
	"strings"

	"proplookup/identity"
	"proplookup/models"
)

// Group merges normalized listings that describe the same physical
// property across feed sources. Matching priority, strictest first:
//
//  1. exact fingerprint match against an existing group's key
//  2. scan groups in creation order for the first whose representative
//     shares a non-empty eircode, passes the token-similarity test, or
//     whose squashed address text contains (or is contained by) the
//     listing's
//  3. no match: the listing opens a new group under its own fingerprint
//
// Each listing lands in exactly one group. Variants keep arrival order,
// the source list keeps first-seen order with duplicates collapsed, and
// groups come back in the order their first member appeared. A listing
// with no usable address simply becomes a singleton group; that is not
// an error.
func Group(listings []models.NormalizedListing) []models.ListingGroup {
	var groups []*models.ListingGroup
	byKey := make(map[string]int)

	for _, item := range listings {
		key := groupKey(item)

		idx, matched := byKey[key]
		if !matched {
			idx, matched = scanGroups(groups, item)
		}

		if matched {
			g := groups[idx]
			g.Variants = append(g.Variants, item)
			if !g.HasSource(item.SourceCode) {
				g.SourceList = append(g.SourceList, item.SourceCode)
			}
			continue
		}

		groups = append(groups, &models.ListingGroup{
			AddressKey:    key,
			SourceList:    []string{item.SourceCode},
			Variants:      []models.NormalizedListing{item},
			DisplayStatus: item.DisplayStatus,
		})
		if _, taken := byKey[key]; !taken {
			byKey[key] = len(groups) - 1
		}
	}

	out := make([]models.ListingGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	return out
}

// Annotate is the non-grouped "live rows" mode: every listing becomes its
// own group carrying a single-element source list. No cross-source
// matching happens.
func Annotate(listings []models.NormalizedListing) []models.ListingGroup {
	out := make([]models.ListingGroup, 0, len(listings))
	for _, item := range listings {
		out = append(out, models.ListingGroup{
			AddressKey:    groupKey(item),
			SourceList:    []string{item.SourceCode},
			Variants:      []models.NormalizedListing{item},
			DisplayStatus: item.DisplayStatus,
		})
	}
	return out
}

func groupKey(item models.NormalizedListing) string {
	if item.AddressKey != "" {
		return item.AddressKey
	}
	if item.AddressText != "" {
		return item.AddressText
	}
	return item.ID
}

// scanGroups applies the fallback match rules against each group's
// representative (first) member, in group creation order.
func scanGroups(groups []*models.ListingGroup, item models.NormalizedListing) (int, bool) {
	itemAddr := squash(item.AddressText)
	for i, g := range groups {
		rep := g.Variants[0]
		if item.EircodeNormalized != "" && rep.EircodeNormalized != "" &&
			item.EircodeNormalized == rep.EircodeNormalized {
			return i, true
		}
		if identity.SimilarTokens(item.AddressTokens, rep.AddressTokens) {
			return i, true
		}
		repAddr := squash(rep.AddressText)
		if itemAddr != "" && repAddr != "" &&
			(strings.Contains(itemAddr, repAddr) || strings.Contains(repAddr, itemAddr)) {
			return i, true
		}
	}
	return 0, false
}

// squash lowercases address text and removes all whitespace for the
// substring containment rule.
func squash(addr string) string {
	return strings.Join(strings.Fields(strings.ToLower(addr)), "")
}
