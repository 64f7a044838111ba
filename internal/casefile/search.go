package casefile

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// removeDiacritics strips diacritical marks from a string (e.g., "Výměna" -> "Vymena").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeQuery normalizes text for case list search: lowercase, no
// diacritics, collapsed whitespace.
func NormalizeQuery(s string) string {
	s = removeDiacritics(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// MatchesFields reports whether a title or address matches the search
// query, ignoring case and diacritics. An empty query matches everything.
// Stores use this to filter listings without loading full case graphs.
func MatchesFields(query, title, address string) bool {
	q := NormalizeQuery(query)
	if q == "" {
		return true
	}
	return strings.Contains(NormalizeQuery(title), q) ||
		strings.Contains(NormalizeQuery(address), q)
}

// MatchesQuery reports whether the case title or address matches the search
// query, ignoring case and diacritics.
func (c *Case) MatchesQuery(query string) bool {
	return MatchesFields(query, c.Title, c.Address)
}
