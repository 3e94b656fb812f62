package ffn

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// collapseSpace trims s and folds every whitespace run (U+00A0 included)
// into a single ASCII space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripAccents removes combining marks: "Épreuve" → "Epreuve".
func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// FoldLabel canonicalizes a free-text event label so that spelling variants
// of the same label compare equal: accents dropped, upper-cased, whitespace
// collapsed, trailing dots removed ("50 Pap." → "50 PAP").
func FoldLabel(s string) string {
	s = collapseSpace(stripAccents(s))
	s = strings.TrimRight(s, ".")
	return cases.Upper(language.French).String(s)
}

// isHeaderLabel reports the column captions the results tables repeat.
func isHeaderLabel(s string) bool {
	switch strings.ToLower(stripAccents(collapseSpace(s))) {
	case "epreuve", "nage":
		return true
	}
	return false
}
