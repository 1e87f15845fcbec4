package match

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/EMMoasis/BothMarkets/internal/types"
)

func sportsMarket(venue types.Venue, team, opp string, subtype types.SportSubtype, mapNum *int, t time.Time) types.NormalizedMarket {
	return types.NormalizedMarket{
		Venue: venue, PlatformID: string(venue) + "-" + team + "-" + opp,
		AssetClass: types.AssetSports, Sport: "CS2",
		Team: team, Opponent: opp, SportSubtype: subtype, MapNumber: mapNum,
		ResolutionDT: t,
	}
}

func intp(n int) *int { return &n }

func TestMatchExclusivity(t *testing.T) {
	now := time.Now().UTC()
	a := []types.NormalizedMarket{sportsMarket(types.VenueA, "drx", "t1", types.SubtypeMap, intp(2), now)}
	b := []types.NormalizedMarket{
		sportsMarket(types.VenueB, "drx", "t1", types.SubtypeMap, intp(2), now),
		sportsMarket(types.VenueB, "drx", "t1", types.SubtypeMap, intp(2), now),
	}
	res := Match(a, b, Options{})
	if len(res.Pairs) != 1 {
		t.Fatalf("expected exactly 1 pair (exclusive consumption), got %d", len(res.Pairs))
	}

	seen := make(map[string]int)
	for _, p := range res.Pairs {
		seen[p.A.Key()]++
		seen[p.B.Key()]++
	}
	for k, c := range seen {
		if c > 1 {
			t.Errorf("market %s appears in %d pairs, want at most 1", k, c)
		}
	}
}

func TestMatchRejectOpponent(t *testing.T) {
	now := time.Now().UTC()
	a := []types.NormalizedMarket{sportsMarket(types.VenueA, "drx", "t1", types.SubtypeSeries, nil, now)}
	b := []types.NormalizedMarket{sportsMarket(types.VenueB, "drx", "geng", types.SubtypeSeries, nil, now)}
	res := Match(a, b, Options{})
	if len(res.Pairs) != 0 {
		t.Fatalf("expected no pair on opponent mismatch, got %d", len(res.Pairs))
	}
	if len(res.Rejections) != 1 || res.Rejections[0].Reason != "opponent_mismatch" {
		t.Fatalf("expected opponent_mismatch rejection, got %+v", res.Rejections)
	}
}

func TestMatchMapNumberRequiredWhenBothPresent(t *testing.T) {
	now := time.Now().UTC()
	a := []types.NormalizedMarket{sportsMarket(types.VenueA, "drx", "t1", types.SubtypeMap, intp(2), now)}
	b := []types.NormalizedMarket{sportsMarket(types.VenueB, "drx", "t1", types.SubtypeMap, intp(3), now)}
	res := Match(a, b, Options{})
	if len(res.Pairs) != 0 {
		t.Fatalf("expected no pair on map number mismatch, got %d", len(res.Pairs))
	}
}

func TestMatchMapNumberAbsentOneSideStillMatches(t *testing.T) {
	now := time.Now().UTC()
	a := []types.NormalizedMarket{sportsMarket(types.VenueA, "drx", "t1", types.SubtypeMap, intp(2), now)}
	b := []types.NormalizedMarket{sportsMarket(types.VenueB, "drx", "t1", types.SubtypeMap, nil, now)}
	res := Match(a, b, Options{})
	if len(res.Pairs) != 1 {
		t.Fatalf("expected a pair when only one side carries map_number, got %d", len(res.Pairs))
	}
}

func TestMatchDateGapRejected(t *testing.T) {
	now := time.Now().UTC()
	a := []types.NormalizedMarket{sportsMarket(types.VenueA, "drx", "t1", types.SubtypeSeries, nil, now)}
	b := []types.NormalizedMarket{sportsMarket(types.VenueB, "drx", "t1", types.SubtypeSeries, nil, now.Add(5*time.Hour))}
	res := Match(a, b, Options{})
	if len(res.Pairs) != 0 {
		t.Fatalf("expected no pair beyond 4h sports tolerance, got %d", len(res.Pairs))
	}
}

func TestMatchCryptoDisabledByDefault(t *testing.T) {
	now := time.Now().UTC()
	a := []types.NormalizedMarket{{
		Venue: types.VenueA, PlatformID: "a1", AssetClass: types.AssetCrypto,
		CryptoAsset: "BTC", Direction: types.DirectionAbove, Threshold: decimal.NewFromInt(75000),
		ResolutionDT: now,
	}}
	b := []types.NormalizedMarket{{
		Venue: types.VenueB, PlatformID: "b1", AssetClass: types.AssetCrypto,
		CryptoAsset: "BTC", Direction: types.DirectionAbove, Threshold: decimal.NewFromInt(75000),
		ResolutionDT: now,
	}}
	res := Match(a, b, Options{MatchCrypto: false})
	if len(res.Pairs) != 0 {
		t.Fatalf("expected no pair when crypto matching disabled, got %d", len(res.Pairs))
	}

	res = Match(a, b, Options{MatchCrypto: true})
	if len(res.Pairs) != 1 {
		t.Fatalf("expected a pair when crypto matching enabled, got %d", len(res.Pairs))
	}
}
