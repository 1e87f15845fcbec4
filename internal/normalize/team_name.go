// Package normalize implements the venue-agnostic text normalization
// the matcher relies on: team-name canonicalization and map/game number
// extraction from free-form market titles.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stopwords are dropped from a team name during tokenization. Keep this
// set small and specific: it exists to collapse venue-specific
// decoration ("Cloud9 Esports" vs "Cloud9"), not to do general English
// stopword removal.
var stopwords = map[string]struct{}{
	"team":    {},
	"esports": {},
	"gaming":  {},
	"fc":      {},
	"sc":      {},
	"the":     {},
}

var trailingNumberRe = regexp.MustCompile(`^[0-9]+$`)

var accentFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// TeamName canonicalizes a venue's free-form team label so that the
// same team listed on both venues produces an identical string.
//
// Steps: strip accents, lowercase, strip ASCII punctuation, tokenize on
// whitespace, drop stopwords, drop a trailing token that is itself
// entirely numeric (a map/game number tacked onto the team name, e.g.
// "Cloud9 2"), concatenate the remaining tokens with no separator. If
// dropping stopwords would empty the token list the pre-filter tokens
// are used instead, so identifiers that are themselves stopword-like
// ("m80", "g2") are never destroyed. A team name that is itself purely
// numeric, or that ends in a digit that is part of the name rather than
// a separate token ("cloud9"), is left untouched — only a standalone
// trailing numeric token is dropped.
func TeamName(raw string) string {
	folded, _, err := transform.String(accentFold, raw)
	if err != nil {
		folded = raw
	}
	folded = strings.ToLower(folded)
	folded = stripASCIIPunctuation(folded)

	tokens := strings.Fields(folded)
	if len(tokens) == 0 {
		return ""
	}

	filtered := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		filtered = append(filtered, tok)
	}
	if len(filtered) == 0 {
		filtered = tokens
	}

	if len(filtered) > 1 && trailingNumberRe.MatchString(filtered[len(filtered)-1]) {
		filtered = filtered[:len(filtered)-1]
	}

	return strings.Join(filtered, "")
}

func stripASCIIPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < unicode.MaxASCII && unicode.IsPunct(r) {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// mapGameRe matches the literal word "map" or "game", preceded by a
// word boundary, followed by whitespace and an integer. It must not
// match "2.5 maps" (plural, or a decimal preceding it) or "over N maps".
var mapGameRe = regexp.MustCompile(`(?i)\b(?:map|game)\s+([0-9]+)\b`)

// ExtractMapOrGameNumber finds a "map N" / "game N" token in free text
// and returns the integer N, or false if none is present.
func ExtractMapOrGameNumber(title string) (int, bool) {
	loc := mapGameRe.FindStringSubmatchIndex(title)
	if loc == nil {
		return 0, false
	}
	// Reject a pluralized match ("maps"/"games") immediately following
	// the captured number's keyword — the regex only ever matches the
	// singular keyword itself, but guard explicitly against a
	// following "s" glued onto "map"/"game" in case callers feed
	// titles where a plural precedes a different numeral.
	match := title[loc[0]:loc[1]]
	if strings.Contains(strings.ToLower(match), "maps") || strings.Contains(strings.ToLower(match), "games") {
		return 0, false
	}
	numStr := title[loc[2]:loc[3]]
	n, err := strconv.Atoi(numStr)
	if err != nil {
		return 0, false
	}
	return n, true
}
