package opportunity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/EMMoasis/BothMarkets/internal/types"
)

func cents(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func TestFindExactArb(t *testing.T) {
	pq := types.PairQuotes{
		A: &types.VenueQuote{YesOK: true, YesAskCents: cents(48), YesDepth: cents(100)},
		B: &types.VenueQuote{NoOK: true, NoAskCents: cents(49), NoDepth: cents(100)},
	}
	opps := Find(pq, cents(0.8), time.Now())
	if len(opps) != 1 {
		t.Fatalf("expected exactly one opportunity (strategy A only), got %d", len(opps))
	}
	o := opps[0]
	if o.Strategy != types.StrategyA {
		t.Errorf("strategy = %s, want A", o.Strategy)
	}
	if !o.SpreadCents.Equal(cents(3)) {
		t.Errorf("spread = %s, want 3", o.SpreadCents)
	}
	if o.Tier != types.TierLow {
		t.Errorf("tier = %s, want LOW", o.Tier)
	}
	if !o.MaxLockedProfitUSD.Equal(cents(3)) {
		t.Errorf("profit = %s, want 3", o.MaxLockedProfitUSD)
	}
}

func TestFindBelowMinSpreadRejected(t *testing.T) {
	pq := types.PairQuotes{
		A: &types.VenueQuote{YesOK: true, YesAskCents: cents(49), YesDepth: cents(10)},
		B: &types.VenueQuote{NoOK: true, NoAskCents: cents(49), NoDepth: cents(10)},
	}
	opps := Find(pq, cents(3.3), time.Now())
	if len(opps) != 0 {
		t.Fatalf("expected no opportunity below min spread, got %d", len(opps))
	}
}

func TestFindNullAskNeverTreatedAsZero(t *testing.T) {
	pq := types.PairQuotes{
		A: &types.VenueQuote{YesOK: false},
		B: &types.VenueQuote{NoOK: true, NoAskCents: cents(10), NoDepth: cents(10)},
	}
	opps := Find(pq, cents(3.3), time.Now())
	if len(opps) != 0 {
		t.Fatalf("expected no opportunity when a side's ask is absent, got %d", len(opps))
	}
}

func TestFindBothStrategiesCanFire(t *testing.T) {
	pq := types.PairQuotes{
		A: &types.VenueQuote{
			YesOK: true, YesAskCents: cents(40), YesDepth: cents(10),
			NoOK: true, NoAskCents: cents(40), NoDepth: cents(10),
		},
		B: &types.VenueQuote{
			YesOK: true, YesAskCents: cents(40), YesDepth: cents(10),
			NoOK: true, NoAskCents: cents(40), NoDepth: cents(10),
		},
	}
	opps := Find(pq, cents(3.3), time.Now())
	if len(opps) != 2 {
		t.Fatalf("expected both strategies to fire independently, got %d", len(opps))
	}
}

func TestWalkLadderBelowMinimum(t *testing.T) {
	ladder := []types.PriceLevel{
		{PriceCents: cents(30), Size: cents(3)},
		{PriceCents: cents(32), Size: cents(5)},
	}
	res := WalkLadder(ladder, cents(90))
	if !res.Units.Equal(cents(3)) {
		t.Errorf("units = %s, want 3 (min already satisfied at first level: 3*30=90)", res.Units)
	}
}

func TestWalkLadderSpillsToSecondLevel(t *testing.T) {
	ladder := []types.PriceLevel{
		{PriceCents: cents(30), Size: cents(3)},
		{PriceCents: cents(32), Size: cents(5)},
	}
	// needs $0.90 -> 90 cents; but spec scenario uses min=$1 -> 100c
	res := WalkLadder(ladder, cents(100))
	if !res.Units.Equal(cents(4)) {
		t.Errorf("units = %s, want 4 (3 @ 30 + 1 @ 32)", res.Units)
	}
	if !res.BlendedCents.Equal(cents(30.5)) {
		t.Errorf("blended = %s, want 30.5", res.BlendedCents)
	}
	if res.Exhausted {
		t.Errorf("expected not exhausted, minimum was reached")
	}
}

func TestWalkLadderExhausted(t *testing.T) {
	ladder := []types.PriceLevel{
		{PriceCents: cents(30), Size: cents(1)},
	}
	res := WalkLadder(ladder, cents(1000))
	if !res.Exhausted {
		t.Errorf("expected ladder exhausted before reaching minimum")
	}
}
