package identity

import (
	"regexp"
	"sort"
	"strings"
)

var (
	// Generic words that carry no identity for Irish addresses. Only
	// whole-word occurrences are stripped, so "Cork" survives "co".
	genericWordRegex = regexp.MustCompile(`\b(?:county|co|ireland)\b`)
	nonWordRegex     = regexp.MustCompile(`[^a-z0-9_]`)
	whitespaceRegex  = regexp.MustCompile(`\s+`)
)

// Tokenize joins the non-empty parts, lowercases, strips generic words and
// punctuation, and returns the sorted set of unique tokens. Equal token
// sets come back identical regardless of input order or duplicates.
func Tokenize(parts ...string) []string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	text := strings.ToLower(strings.Join(kept, " "))
	text = genericWordRegex.ReplaceAllString(text, "")
	text = nonWordRegex.ReplaceAllString(text, " ")

	seen := make(map[string]bool)
	var tokens []string
	for _, tok := range strings.Fields(text) {
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}

// BuildKey concatenates the sorted token set into the address fingerprint.
func BuildKey(parts ...string) string {
	return strings.Join(Tokenize(parts...), "")
}

// FallbackKey is used when tokenization produces nothing: the raw text
// lowercased with everything non-alphanumeric removed.
func FallbackKey(text string) string {
	text = strings.ToLower(text)
	var b strings.Builder
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeEircode uppercases a postcode and strips all whitespace.
func NormalizeEircode(code string) string {
	return strings.ToUpper(whitespaceRegex.ReplaceAllString(code, ""))
}

// SimilarTokens reports whether two address token sets plausibly describe
// the same property. The dual threshold lets a listing with a long, wordy
// address match a terse one as long as at least three exact tokens
// overlap, while short addresses need near-total overlap. False when
// either set is empty. Symmetric.
func SimilarTokens(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	inB := make(map[string]bool, len(b))
	for _, t := range b {
		inB[t] = true
	}
	intersection := 0
	for _, t := range a {
		if inB[t] {
			intersection++
		}
	}
	maxSize := len(a)
	minSize := len(b)
	if minSize > maxSize {
		maxSize, minSize = minSize, maxSize
	}
	ratio := float64(intersection) / float64(maxSize)
	minRatio := float64(intersection) / float64(minSize)
	return ratio >= 0.65 || (intersection >= 3 && minRatio >= 0.75)
}
