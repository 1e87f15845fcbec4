// Package venueb implements the Venue-B adapter: a token-based CLOB
// reached over HTTP, with orders signed by an asymmetric wallet key and
// placed through a proxy maker address, modeled on Polymarket's Gamma +
// CLOB API shape.
package venueb

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/EMMoasis/BothMarkets/internal/normalize"
	"github.com/EMMoasis/BothMarkets/internal/types"
	"github.com/EMMoasis/BothMarkets/pkg/polymarket/gamma"
)

var seriesPrefixes = map[string]string{
	"cs2":    "CS2",
	"lol":    "LOL",
	"valorant": "VAL",
	"nba":    "NBA",
	"nhl":    "NHL",
	"mlb":    "MLB",
	"nfl":    "NFL",
	"soccer": "SOCCER",
	"epl":    "SOCCER",
}

var vsRe = regexp.MustCompile(`(?i)^(.+?)\s+vs\.?\s+(.+)$`)
var willWinRe = regexp.MustCompile(`(?i)^will\s+(.+?)\s+win\b`)
var drawRe = regexp.MustCompile(`(?i)\bdraw\b`)

var aboveRe = regexp.MustCompile(`(?i)(above|or more|≥|or higher)`)
var numberRe = regexp.MustCompile(`[0-9][0-9,]*(\.[0-9]+)?`)
var cryptoKeywords = map[string]string{
	"bitcoin":  "BTC",
	"btc":      "BTC",
	"ether":    "ETH",
	"ethereum": "ETH",
	"eth":      "ETH",
}

// sportFromSlugOrTags returns the sport code for a market, or "" if the
// market is not recognized as a sports contract this system trades.
func sportFromSlugOrTags(slug string, tags []gamma.Tag) string {
	lowerSlug := strings.ToLower(slug)
	for prefix, sport := range seriesPrefixes {
		if strings.HasPrefix(lowerSlug, prefix) {
			return sport
		}
	}
	for _, tag := range tags {
		lowerLabel := strings.ToLower(tag.Label)
		for prefix, sport := range seriesPrefixes {
			if strings.Contains(lowerLabel, prefix) {
				return sport
			}
		}
	}
	return ""
}

// NormalizeMarkets expands one venue-B Gamma market into zero, one, or
// two NormalizedMarket rows (§4.1: series/map markets with two distinct
// team outcomes are expanded one row per team).
func NormalizeMarkets(m gamma.Market, scanWindow time.Duration, now time.Time) []types.NormalizedMarket {
	if !m.Active || m.Closed {
		return nil
	}
	if m.EndDate.Before(now) || m.EndDate.After(now.Add(scanWindow)) {
		return nil
	}

	if sport := sportFromSlugOrTags(m.Slug, m.Tags); sport != "" {
		return normalizeSports(m, sport)
	}
	if asset, ok := classifyCrypto(m.Question); ok {
		if nm, ok := normalizeCrypto(m, asset); ok {
			return []types.NormalizedMarket{nm}
		}
	}
	return nil
}

func normalizeSports(m gamma.Market, sport string) []types.NormalizedMarket {
	outcomes := m.Outcomes()
	tokens := m.ClobTokenIDs()

	if drawRe.MatchString(m.Question) && !vsRe.MatchString(m.Question) {
		// Draw-only markets are skipped per §4.1.
		return nil
	}

	subtype := types.SubtypeSeries
	lowerSlug := strings.ToLower(m.Slug)
	if strings.Contains(lowerSlug, "map") || strings.Contains(lowerSlug, "game") {
		subtype = types.SubtypeMap
	}
	var mapNum *int
	if n, ok := normalize.ExtractMapOrGameNumber(m.Question); ok {
		mapNum = &n
	} else if n, ok := normalize.ExtractMapOrGameNumber(m.Slug); ok {
		mapNum = &n
	}

	// Two-outcome "team X vs team Y" markets with distinct winner
	// tokens expand into two rows, one per team.
	if loc := vsRe.FindStringSubmatch(m.Question); loc != nil && len(outcomes) == 2 && len(tokens) == 2 {
		teamA := normalize.TeamName(loc[1])
		teamB := normalize.TeamName(loc[2])
		if teamA == "" || teamB == "" {
			return nil
		}
		rowA := types.NormalizedMarket{
			Venue: types.VenueB, PlatformID: m.ConditionID + ":" + teamA,
			AssetClass: types.AssetSports, Sport: sport,
			Team: teamA, Opponent: teamB, SportSubtype: subtype, MapNumber: mapNum,
			ResolutionDT: m.EndDate.UTC(), YesToken: tokens[0], NoToken: tokens[1],
			RawTitle: m.Question,
		}
		rowB := types.NormalizedMarket{
			Venue: types.VenueB, PlatformID: m.ConditionID + ":" + teamB,
			AssetClass: types.AssetSports, Sport: sport,
			Team: teamB, Opponent: teamA, SportSubtype: subtype, MapNumber: mapNum,
			ResolutionDT: m.EndDate.UTC(), YesToken: tokens[1], NoToken: tokens[0],
			RawTitle: m.Question,
		}
		return []types.NormalizedMarket{rowA, rowB}
	}

	// "Will X win?" single YES/NO-outcome markets (common in soccer):
	// extract the team and leave Opponent empty, so the row cannot
	// satisfy the matcher's opponent criterion against venue A's vs-pair
	// rows.
	if loc := willWinRe.FindStringSubmatch(m.Question); loc != nil && len(tokens) == 2 {
		team := normalize.TeamName(loc[1])
		if team == "" {
			return nil
		}
		return []types.NormalizedMarket{{
			Venue: types.VenueB, PlatformID: m.ConditionID,
			AssetClass: types.AssetSports, Sport: sport,
			Team: team, SportSubtype: subtype, MapNumber: mapNum,
			ResolutionDT: m.EndDate.UTC(), YesToken: tokens[0], NoToken: tokens[1],
			RawTitle: m.Question,
		}}
	}

	return nil
}

func classifyCrypto(question string) (string, bool) {
	lower := strings.ToLower(question)
	for kw, asset := range cryptoKeywords {
		if strings.Contains(lower, kw) {
			return asset, true
		}
	}
	return "", false
}

func normalizeCrypto(m gamma.Market, asset string) (types.NormalizedMarket, bool) {
	tokens := m.ClobTokenIDs()
	if len(tokens) != 2 {
		return types.NormalizedMarket{}, false
	}

	direction := types.DirectionBelow
	if aboveRe.MatchString(m.Question) {
		direction = types.DirectionAbove
	}

	cleaned := strings.ReplaceAll(m.Question, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	match := numberRe.FindString(cleaned)
	if match == "" {
		return types.NormalizedMarket{}, false
	}
	threshold, err := decimal.NewFromString(match)
	if err != nil {
		return types.NormalizedMarket{}, false
	}

	return types.NormalizedMarket{
		Venue:        types.VenueB,
		PlatformID:   m.ConditionID,
		AssetClass:   types.AssetCrypto,
		CryptoAsset:  asset,
		Direction:    direction,
		Threshold:    threshold,
		ResolutionDT: m.EndDate.UTC(),
		YesToken:     tokens[0],
		NoToken:      tokens[1],
		RawTitle:     m.Question,
	}, true
}
