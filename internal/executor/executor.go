// Package executor drives the two-leg execution state machine:
// balance gate, leg ordering, partial-fill reconciliation, and
// cross-venue unwind on failure (§4.5).
package executor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/EMMoasis/BothMarkets/internal/cooldown"
	"github.com/EMMoasis/BothMarkets/internal/opportunity"
	"github.com/EMMoasis/BothMarkets/internal/types"
	"github.com/EMMoasis/BothMarkets/internal/venue"
)

const hundred = 100

// Config holds the operational tunables governing sizing, pacing, and
// cooldown (§9 open question a: treated as configuration, no
// hard-coded default).
type Config struct {
	MinSpreadCents     decimal.Decimal
	MaxTradeUSD        decimal.Decimal
	MaxUnitsPerMap     decimal.Decimal
	PolyMinOrderUSD    decimal.Decimal
	Leg1SettleDelay    time.Duration
	UnwindDelaySeconds time.Duration
	UnwindMaxAttempts  int
	CooldownCycles     int64
}

// Executor executes opportunities against the two venue adapters it
// was constructed with (live adapters, or paper-mode simulators —
// both satisfy venue.Adapter, per §9's dynamic-dispatch design note).
type Executor struct {
	a, b     venue.Adapter
	cooldown *cooldown.Table
	cfg      Config
	log      *zap.Logger
}

func New(a, b venue.Adapter, cd *cooldown.Table, cfg Config, log *zap.Logger) *Executor {
	return &Executor{a: a, b: b, cooldown: cd, cfg: cfg, log: log}
}

// Execute runs the full state machine for one opportunity and returns
// the resulting Trade record. Caller must not invoke Execute for a
// pair while cooldown.Active(opp.Pair) is true.
func (e *Executor) Execute(ctx context.Context, opp types.Opportunity, quote types.PairQuotes) types.Trade {
	trade := types.Trade{
		ID:             uuid.NewString(),
		OpportunityID:  opp.ID,
		TradedAt:       time.Now().UTC(),
		RequestedUnits: opp.TradeableUnits,
	}

	_, bLadder := legLadders(opp.Strategy, quote)

	balance, err := e.b.GetBalance(ctx)
	if err != nil {
		return e.reject(trade, opp.Pair, types.StatusSkippedError, err.Error())
	}
	trade.PBalanceBeforeUSD = balance
	if balance.LessThan(e.cfg.PolyMinOrderUSD) {
		return e.reject(trade, opp.Pair, types.StatusSkippedLowBalance, "")
	}

	units := e.sizeLive(opp)
	if units.LessThanOrEqual(decimal.Zero) {
		return e.reject(trade, opp.Pair, types.StatusSkippedError, "zero sizing")
	}

	blendedPCents, ok, reason := e.resolveBlendedPrice(opp, units, bLadder)
	if !ok {
		return e.reject(trade, opp.Pair, types.StatusSkippedError, reason)
	}

	aSide, bSide := sidesFor(opp.Strategy)

	leg1, err := e.a.PlaceTaker(ctx, opp.Pair.A.PlatformID, aSide, units, opp.KCostCents)
	if err != nil {
		return e.reject(trade, opp.Pair, types.StatusSkippedError, err.Error())
	}
	trade.KOrderID = leg1.OrderID

	time.Sleep(e.cfg.Leg1SettleDelay)
	fill, err := e.a.GetFill(ctx, leg1.OrderID)
	if err != nil {
		return e.reject(trade, opp.Pair, types.StatusSkippedError, err.Error())
	}
	trade.KFilled = fill.Filled
	trade.KPriceCents = fill.PriceCents

	if fill.Filled.IsZero() {
		return e.reject(trade, opp.Pair, types.StatusSkippedNoFill, "")
	}
	if fill.Filled.LessThan(units) {
		if err := e.a.Cancel(ctx, leg1.OrderID); err != nil && e.log != nil {
			e.log.Warn("cancel remainder failed", zap.String("pair", opp.Pair.Key()), zap.Error(err))
		}
		units = fill.Filled
	}

	leg2, err := e.b.PlaceTaker(ctx, opp.Pair.B.PlatformID, bSide, units, blendedPCents)
	if err != nil {
		trade.Status = e.unwind(ctx, opp, units)
		trade.Reason = err.Error()
		e.cool(opp.Pair, true)
		e.finishCosts(&trade, units)
		return trade
	}

	trade.POrderID = leg2.OrderID
	trade.PFilled = leg2.Filled
	trade.PPriceCents = leg2.PriceCents
	trade.Status = types.StatusFilled
	e.finishCosts(&trade, units)
	e.cool(opp.Pair, false)
	return trade
}

// resolveBlendedPrice returns the price limit to use for the venue-B
// leg, book-walking the ladder when the requested size would fall
// under the venue minimum order size (§4.5).
func (e *Executor) resolveBlendedPrice(opp types.Opportunity, units decimal.Decimal, bLadder []types.PriceLevel) (decimal.Decimal, bool, string) {
	minSpendCents := e.cfg.PolyMinOrderUSD.Mul(decimal.NewFromInt(hundred))
	if units.Mul(opp.PCostCents).GreaterThanOrEqual(minSpendCents) {
		return opp.PCostCents, true, ""
	}

	walk := opportunity.WalkLadder(bLadder, minSpendCents)
	if walk.Units.IsZero() {
		return decimal.Zero, false, "book walk: no liquidity"
	}
	blendedSpread := decimal.NewFromInt(hundred).Sub(opp.KCostCents.Add(walk.BlendedCents))
	if blendedSpread.LessThan(e.cfg.MinSpreadCents) {
		return decimal.Zero, false, "book walk: spread below minimum after blending"
	}
	return walk.BlendedCents, true, ""
}

func (e *Executor) reject(trade types.Trade, pair types.MatchedPair, status types.TradeStatus, reason string) types.Trade {
	trade.Status = status
	trade.Reason = reason
	e.cool(pair, false)
	return trade
}

func (e *Executor) finishCosts(trade *types.Trade, units decimal.Decimal) {
	trade.KCostUSD = trade.KPriceCents.Mul(trade.KFilled).Div(decimal.NewFromInt(hundred))
	trade.PCostUSD = trade.PPriceCents.Mul(trade.PFilled).Div(decimal.NewFromInt(hundred))
	trade.TotalCostUSD = trade.KCostUSD.Add(trade.PCostUSD)
	spreadCents := decimal.NewFromInt(hundred).Sub(trade.KPriceCents.Add(trade.PPriceCents))
	trade.LockedProfitUSD = units.Mul(spreadCents).Div(decimal.NewFromInt(hundred))
	trade.KFeeUSD = trade.KFilled.Mul(decimal.NewFromFloat(0.0175))
	trade.NetProfitUSD = trade.LockedProfitUSD.Sub(trade.KFeeUSD)
}

// unwind attempts to close the filled venue-A leg at the current best
// bid, up to UnwindMaxAttempts, separated by UnwindDelaySeconds.
func (e *Executor) unwind(ctx context.Context, opp types.Opportunity, units decimal.Decimal) types.TradeStatus {
	aSide, _ := sidesFor(opp.Strategy)
	for attempt := 1; attempt <= e.cfg.UnwindMaxAttempts; attempt++ {
		time.Sleep(e.cfg.UnwindDelaySeconds)
		if _, err := e.a.SellAtBid(ctx, opp.Pair.A.PlatformID, aSide, units); err == nil {
			return types.StatusUnwound
		} else if e.log != nil {
			e.log.Warn("unwind attempt failed", zap.String("pair", opp.Pair.Key()), zap.Int("attempt", attempt), zap.Error(err))
		}
	}
	if e.log != nil {
		e.log.Error("unwind exhausted, position stuck", zap.String("pair", opp.Pair.Key()))
	}
	return types.StatusPartialStuck
}

func (e *Executor) cool(pair types.MatchedPair, failed bool) {
	cycles := e.cfg.CooldownCycles
	if failed {
		cycles *= 2
	}
	e.cooldown.Start(pair, cycles)
}

// sizeLive computes the live sizing formula from §4.5.
func (e *Executor) sizeLive(opp types.Opportunity) decimal.Decimal {
	combinedCost := opp.KCostCents.Add(opp.PCostCents)
	if combinedCost.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	byBudget := e.cfg.MaxTradeUSD.Mul(decimal.NewFromInt(hundred)).Div(combinedCost).Floor()

	units := byBudget
	if opp.TradeableUnits.LessThan(units) {
		units = opp.TradeableUnits
	}
	if e.cfg.MaxUnitsPerMap.LessThan(units) {
		units = e.cfg.MaxUnitsPerMap
	}
	return units
}

func sidesFor(strat types.Strategy) (aSide, bSide venue.Side) {
	if strat == types.StrategyA {
		return venue.SideYes, venue.SideNo
	}
	return venue.SideNo, venue.SideYes
}

func legLadders(strat types.Strategy, quote types.PairQuotes) (aLadder, bLadder []types.PriceLevel) {
	if strat == types.StrategyA {
		return quote.A.YesLadder, quote.B.NoLadder
	}
	return quote.A.NoLadder, quote.B.YesLadder
}
