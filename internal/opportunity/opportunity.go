// Package opportunity evaluates both arbitrage strategies against a
// tick's quotes and emits sized, tiered candidates (§4.4).
package opportunity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/EMMoasis/BothMarkets/internal/types"
)

var hundred = decimal.NewFromInt(100)

// Find evaluates both strategies for one pair's quotes and returns
// zero, one, or two opportunities. minSpreadCents is the configured
// floor (§9 open question a: not hard-coded).
func Find(pq types.PairQuotes, minSpreadCents decimal.Decimal, now time.Time) []types.Opportunity {
	if pq.A == nil || pq.B == nil {
		return nil
	}

	var out []types.Opportunity

	if pq.A.YesOK && pq.B.NoOK {
		if opp, ok := evaluate(pq, types.StrategyA, pq.A.YesAskCents, pq.B.NoAskCents, pq.A.YesDepth, pq.B.NoDepth, minSpreadCents, now); ok {
			out = append(out, opp)
		}
	}
	if pq.A.NoOK && pq.B.YesOK {
		if opp, ok := evaluate(pq, types.StrategyB, pq.A.NoAskCents, pq.B.YesAskCents, pq.A.NoDepth, pq.B.YesDepth, minSpreadCents, now); ok {
			out = append(out, opp)
		}
	}

	return out
}

func evaluate(pq types.PairQuotes, strat types.Strategy, kCost, pCost, kDepth, pDepth, minSpreadCents decimal.Decimal, now time.Time) (types.Opportunity, bool) {
	spread := hundred.Sub(kCost.Add(pCost))
	if spread.LessThan(minSpreadCents) {
		return types.Opportunity{}, false
	}

	units := kDepth
	if pDepth.LessThan(units) {
		units = pDepth
	}

	return types.Opportunity{
		ID:                 uuid.NewString(),
		Pair:               pq.Pair,
		Strategy:           strat,
		KCostCents:         kCost,
		PCostCents:         pCost,
		SpreadCents:        spread,
		Tier:               tierOf(spread),
		TradeableUnits:     units,
		MaxLockedProfitUSD: units.Mul(spread).Div(hundred),
		DetectedAt:         now,
	}, true
}

func tierOf(spread decimal.Decimal) types.Tier {
	switch {
	case spread.GreaterThanOrEqual(decimal.NewFromFloat(8.0)):
		return types.TierUltraHigh
	case spread.GreaterThanOrEqual(decimal.NewFromFloat(5.0)):
		return types.TierHigh
	case spread.GreaterThanOrEqual(decimal.NewFromFloat(4.0)):
		return types.TierMid
	default:
		return types.TierLow
	}
}

// WalkResult is the outcome of consuming successive ladder levels to
// satisfy a minimum order constraint.
type WalkResult struct {
	Units        decimal.Decimal
	BlendedCents decimal.Decimal
	Exhausted    bool
}

// WalkLadder consumes ladder levels (best-first) until cumulative
// spend reaches minSpendCents or the ladder runs out, and returns the
// size-weighted blended price across consumed levels (§4.5 book-walk).
// Shares are whole units: a level that would only partially cover the
// remaining spend still contributes one whole additional share rather
// than a fractional one, so the walk may overshoot minSpendCents by
// less than one share's cost rather than landing on it exactly.
func WalkLadder(ladder []types.PriceLevel, minSpendCents decimal.Decimal) WalkResult {
	units := decimal.Zero
	spend := decimal.Zero

	for _, lvl := range ladder {
		if spend.GreaterThanOrEqual(minSpendCents) {
			break
		}
		needed := minSpendCents.Sub(spend).Div(lvl.PriceCents).Ceil()
		take := needed
		if lvl.Size.LessThan(take) {
			take = lvl.Size
		}
		units = units.Add(take)
		spend = spend.Add(take.Mul(lvl.PriceCents))
	}

	res := WalkResult{Units: units}
	if !units.IsZero() {
		res.BlendedCents = spend.Div(units)
	}
	res.Exhausted = spend.LessThan(minSpendCents)
	return res
}
