package mepapi

import (
	"regexp"
	"strings"
)

var innerWhitespace = regexp.MustCompile(`\s+`)

// normalizeSpace trims a scraped string and collapses runs of whitespace.
// Profile pages are indentation-heavy, so raw text nodes arrive with
// newlines and tabs embedded.
func normalizeSpace(s string) string {
	return strings.TrimSpace(innerWhitespace.ReplaceAllString(s, " "))
}

// splitCountryLine splits the "Country - Party" line of a profile header.
// The party part is optional and may carry a trailing group suffix in
// parentheses, which is kept as-is.
func splitCountryLine(line string) (country, party string) {
	parts := strings.SplitN(line, " - ", 2)
	country = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		party = strings.TrimSpace(parts[1])
	}
	return country, party
}
