package extract

import (
	"slices"

	"golang.org/x/text/unicode/norm"

	"github.com/VictorBaumgartner/ExtractTime/pkg/catalog"
)

// ScanDates returns every date candidate in text. Patterns run in catalog
// order and each contributes all of its non-overlapping matches; the same
// phrase may be captured by several patterns.
func ScanDates(cat *catalog.Catalog, text string) []DateCandidate {
	return scanDates(cat, norm.NFKC.String(text))
}

// ScanTimes returns every time candidate in text, in catalog order.
func ScanTimes(cat *catalog.Catalog, text string) []TimeCandidate {
	return scanTimes(cat, norm.NFKC.String(text))
}

func scanDates(cat *catalog.Catalog, text string) []DateCandidate {
	var out []DateCandidate
	for _, p := range cat.Dates() {
		for _, fields := range scanPattern(p, text) {
			out = append(out, DateCandidate{Pattern: p.Name, Fields: fields})
		}
	}
	return out
}

func scanTimes(cat *catalog.Catalog, text string) []TimeCandidate {
	var out []TimeCandidate
	for _, p := range cat.Times() {
		for _, fields := range scanPattern(p, text) {
			out = append(out, TimeCandidate{Pattern: p.Name, Fields: fields})
		}
	}
	return out
}

// scanPattern returns the capture groups of each match of p in text.
func scanPattern(p catalog.Pattern, text string) [][]string {
	matches := p.Regexp().FindAllStringSubmatch(text, -1)
	out := make([][]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, slices.Clone(m[1:]))
	}
	return out
}
