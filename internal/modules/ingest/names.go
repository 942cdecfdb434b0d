// Package ingest parses per-category player source files into canonical rows.
package ingest

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	generationalSuffix = regexp.MustCompile(`,?\s+(?:Jr|Sr|II|III|IV)\.?$`)
	whitespaceRun      = regexp.MustCompile(`\s+`)
)

// NormalizeName canonicalizes a player name so the same player joins across sources.
// "José Ramírez" → "Jose Ramirez", "J.D. Martinez" → "JD Martinez", "Mike Trout Jr." → "Mike Trout".
func NormalizeName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return ""
	}

	// transform.Transformer values are stateful; build one per call
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(stripMarks, name); err == nil {
		name = stripped
	}

	name = strings.ReplaceAll(name, ".", "")
	name = generationalSuffix.ReplaceAllString(name, "")
	name = whitespaceRun.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// MatchKey is the case-insensitive identity used when matching auction history to players
func MatchKey(raw string) string {
	return strings.ToLower(NormalizeName(raw))
}
