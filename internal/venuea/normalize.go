package venuea

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/EMMoasis/BothMarkets/internal/normalize"
	"github.com/EMMoasis/BothMarkets/internal/types"
	"github.com/EMMoasis/BothMarkets/internal/venue"
)

// seriesPrefixes maps a venue-A ticker prefix to the sport code the
// rest of the pipeline uses.
var seriesPrefixes = map[string]string{
	"CS2":    "CS2",
	"LOL":    "LOL",
	"VAL":    "VAL",
	"NBA":    "NBA",
	"NHL":    "NHL",
	"MLB":    "MLB",
	"NFL":    "NFL",
	"SOCCER": "SOCCER",
}

var cryptoKeywords = map[string]string{
	"bitcoin": "BTC",
	"btc":     "BTC",
	"ether":   "ETH",
	"eth":     "ETH",
	"ethereum": "ETH",
}

// matchupRe extracts "X vs. Y" style team/opponent pairs out of a
// venue-A title or yes_sub_title, e.g. "Will X win the X vs. Y series?".
var matchupRe = regexp.MustCompile(`(?i)([A-Za-z0-9 .'-]+?)\s+vs\.?\s+([A-Za-z0-9 .'-]+)`)

var aboveRe = regexp.MustCompile(`(?i)(above|or more|≥|or higher)`)
var numberRe = regexp.MustCompile(`[0-9][0-9,]*(\.[0-9]+)?`)

// NormalizeMarket converts one raw venue-A market record into the
// common schema, or returns ok=false if the record does not classify
// into either asset class this system trades.
func NormalizeMarket(m Market) (types.NormalizedMarket, bool) {
	closeTime, err := time.Parse(time.RFC3339, m.CloseTime)
	if err != nil {
		return types.NormalizedMarket{}, false
	}

	prefix := tickerPrefix(m.Ticker)
	if sport, ok := seriesPrefixes[prefix]; ok {
		return normalizeSports(m, sport, closeTime)
	}
	if asset, ok := classifyCrypto(m.Title); ok {
		return normalizeCrypto(m, asset, closeTime)
	}
	return types.NormalizedMarket{}, false
}

func tickerPrefix(ticker string) string {
	parts := strings.SplitN(ticker, "-", 2)
	return strings.ToUpper(parts[0])
}

func classifyCrypto(title string) (string, bool) {
	lower := strings.ToLower(title)
	for kw, asset := range cryptoKeywords {
		if strings.Contains(lower, kw) {
			return asset, true
		}
	}
	return "", false
}

func normalizeSports(m Market, sport string, closeTime time.Time) (types.NormalizedMarket, bool) {
	combined := m.YesSubTitle
	if combined == "" {
		combined = m.Title
	}
	loc := matchupRe.FindStringSubmatch(combined)
	if loc == nil {
		loc = matchupRe.FindStringSubmatch(m.Title)
	}
	if loc == nil {
		return types.NormalizedMarket{}, false
	}
	team := normalize.TeamName(loc[1])
	opponent := normalize.TeamName(loc[2])
	if team == "" || opponent == "" {
		return types.NormalizedMarket{}, false
	}

	subtype := types.SubtypeSeries
	if strings.Contains(strings.ToUpper(m.Ticker), "MAP") || strings.Contains(strings.ToUpper(m.Ticker), "GAME") {
		subtype = types.SubtypeMap
	}

	var mapNum *int
	if n, ok := normalize.ExtractMapOrGameNumber(m.Title); ok {
		mapNum = &n
	}

	return types.NormalizedMarket{
		Venue:        types.VenueA,
		PlatformID:   m.Ticker,
		AssetClass:   types.AssetSports,
		Sport:        sport,
		Team:         team,
		Opponent:     opponent,
		SportSubtype: subtype,
		MapNumber:    mapNum,
		ResolutionDT: closeTime.UTC(),
		YesToken:     m.Ticker,
		NoToken:      m.Ticker,
		RawTitle:     m.Title,
	}, true
}

func normalizeCrypto(m Market, asset string, closeTime time.Time) (types.NormalizedMarket, bool) {
	combined := m.Title + " " + m.Subtitle
	direction := types.DirectionBelow
	if aboveRe.MatchString(combined) {
		direction = types.DirectionAbove
	}

	cleaned := strings.ReplaceAll(combined, "$", "")
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
		Venue:        types.VenueA,
		PlatformID:   m.Ticker,
		AssetClass:   types.AssetCrypto,
		CryptoAsset:  asset,
		Direction:    direction,
		Threshold:    threshold,
		ResolutionDT: closeTime.UTC(),
		YesToken:     m.Ticker,
		NoToken:      m.Ticker,
		RawTitle:     m.Title,
	}, true
}

// ladderFromWire converts a venue-A ascending-by-price wire ladder
// (best last) into the canonical best-first ladder, mirroring the
// reversal venue-B's descending wire ladder also requires (§4.3).
func ladderFromWire(levels []PriceLevelWire) []types.PriceLevel {
	out := make([]types.PriceLevel, len(levels))
	for i, lvl := range levels {
		out[len(levels)-1-i] = types.PriceLevel{
			PriceCents: decimal.NewFromInt(int64(lvl.Price)),
			Size:       decimal.NewFromInt(int64(lvl.Size)),
		}
	}
	return out
}

func quoteFromOrderbook(ob Orderbook) *venue.Quote {
	q := &venue.Quote{}

	yesLadder := ladderFromWire(ob.AskYes)
	if len(yesLadder) > 0 {
		q.YesOK = true
		q.YesAskCents = yesLadder[0].PriceCents
		q.YesDepth = yesLadder[0].Size
		q.YesLadder = yesLadder
	}

	noLadder := ladderFromWire(ob.AskNo)
	if len(noLadder) > 0 {
		q.NoOK = true
		q.NoAskCents = noLadder[0].PriceCents
		q.NoDepth = noLadder[0].Size
		q.NoLadder = noLadder
	}

	return q
}
