package extract

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// cleanText trims s and composes it to NFC so visually identical text from
// different pages compares equal.
func cleanText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// cleanLine is cleanText with inner whitespace, newlines included, collapsed
// to single spaces. Titles and author names are single-line values.
func cleanLine(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// normalizeLines trims every line, collapses runs of inner whitespace and
// drops blank lines.
func normalizeLines(s string) string {
	lines := strings.Split(norm.NFC.String(s), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// appendUnique appends name to names unless it is blank or already present.
func appendUnique(names []string, name string) []string {
	name = cleanLine(name)
	if name == "" {
		return names
	}
	for _, n := range names {
		if n == name {
			return names
		}
	}
	return append(names, name)
}
