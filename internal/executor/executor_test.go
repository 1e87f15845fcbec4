package executor

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/EMMoasis/BothMarkets/internal/cooldown"
	"github.com/EMMoasis/BothMarkets/internal/types"
	"github.com/EMMoasis/BothMarkets/internal/venue"
)

// fakeAdapter is a scripted venue.Adapter for exercising executor
// control flow without real network I/O.
type fakeAdapter struct {
	name        types.Venue
	balance     decimal.Decimal
	balanceErr  error
	placeResult *venue.OrderResult
	placeErr    error
	fillResult  *venue.OrderResult
	fillErr     error
	cancelErr   error
	sellResult  *venue.OrderResult
	sellErr     error
	sellCalls   int
}

func (f *fakeAdapter) Name() types.Venue { return f.name }
func (f *fakeAdapter) ListMarkets(ctx context.Context) ([]types.NormalizedMarket, error) {
	return nil, nil
}
func (f *fakeAdapter) GetQuote(ctx context.Context, platformID string) (*venue.Quote, error) {
	return nil, nil
}
func (f *fakeAdapter) PlaceTaker(ctx context.Context, platformID string, side venue.Side, units, limitCents decimal.Decimal) (*venue.OrderResult, error) {
	return f.placeResult, f.placeErr
}
func (f *fakeAdapter) Cancel(ctx context.Context, orderID string) error { return f.cancelErr }
func (f *fakeAdapter) GetFill(ctx context.Context, orderID string) (*venue.OrderResult, error) {
	return f.fillResult, f.fillErr
}
func (f *fakeAdapter) GetBalance(ctx context.Context) (decimal.Decimal, error) {
	return f.balance, f.balanceErr
}
func (f *fakeAdapter) SellAtBid(ctx context.Context, platformID string, side venue.Side, units decimal.Decimal) (*venue.OrderResult, error) {
	f.sellCalls++
	return f.sellResult, f.sellErr
}

func baseCfg() Config {
	return Config{
		MinSpreadCents:     decimal.NewFromFloat(3.3),
		MaxTradeUSD:        decimal.NewFromInt(50),
		MaxUnitsPerMap:     decimal.NewFromInt(1000),
		PolyMinOrderUSD:    decimal.NewFromInt(1),
		Leg1SettleDelay:    time.Millisecond,
		UnwindDelaySeconds: time.Millisecond,
		UnwindMaxAttempts:  3,
		CooldownCycles:     10,
	}
}

func baseOpp() types.Opportunity {
	return types.Opportunity{
		ID:             "opp1",
		Pair:           types.MatchedPair{A: types.NormalizedMarket{Venue: types.VenueA, PlatformID: "a1"}, B: types.NormalizedMarket{Venue: types.VenueB, PlatformID: "b1"}},
		Strategy:       types.StrategyA,
		KCostCents:     decimal.NewFromInt(48),
		PCostCents:     decimal.NewFromInt(49),
		SpreadCents:    decimal.NewFromInt(3),
		TradeableUnits: decimal.NewFromInt(100),
	}
}

func baseQuote(opp types.Opportunity) types.PairQuotes {
	return types.PairQuotes{
		Pair: opp.Pair,
		A:    &types.VenueQuote{YesOK: true, YesAskCents: opp.KCostCents, YesDepth: decimal.NewFromInt(100), YesLadder: []types.PriceLevel{{PriceCents: opp.KCostCents, Size: decimal.NewFromInt(100)}}},
		B:    &types.VenueQuote{NoOK: true, NoAskCents: opp.PCostCents, NoDepth: decimal.NewFromInt(100), NoLadder: []types.PriceLevel{{PriceCents: opp.PCostCents, Size: decimal.NewFromInt(100)}}},
	}
}

func TestExecuteFilled(t *testing.T) {
	a := &fakeAdapter{name: types.VenueA, placeResult: &venue.OrderResult{OrderID: "k1"}, fillResult: &venue.OrderResult{OrderID: "k1", Filled: decimal.NewFromInt(10), PriceCents: decimal.NewFromInt(48)}}
	b := &fakeAdapter{name: types.VenueB, balance: decimal.NewFromInt(100), placeResult: &venue.OrderResult{OrderID: "p1", Filled: decimal.NewFromInt(10), PriceCents: decimal.NewFromInt(49)}}

	opp := baseOpp()
	opp.TradeableUnits = decimal.NewFromInt(10)
	ex := New(a, b, cooldown.NewTable(), baseCfg(), nil)
	trade := ex.Execute(context.Background(), opp, baseQuote(opp))

	if trade.Status != types.StatusFilled {
		t.Fatalf("status = %s, want filled", trade.Status)
	}
	if !trade.KFilled.Equal(decimal.NewFromInt(10)) || !trade.PFilled.Equal(decimal.NewFromInt(10)) {
		t.Errorf("unexpected fill amounts: k=%s p=%s", trade.KFilled, trade.PFilled)
	}
}

func TestExecuteLowBalanceSkipped(t *testing.T) {
	a := &fakeAdapter{name: types.VenueA}
	b := &fakeAdapter{name: types.VenueB, balance: decimal.NewFromFloat(0.1)}

	opp := baseOpp()
	ex := New(a, b, cooldown.NewTable(), baseCfg(), nil)
	trade := ex.Execute(context.Background(), opp, baseQuote(opp))

	if trade.Status != types.StatusSkippedLowBalance {
		t.Fatalf("status = %s, want skipped_low_balance", trade.Status)
	}
}

func TestExecuteNoFillSkipped(t *testing.T) {
	a := &fakeAdapter{name: types.VenueA, placeResult: &venue.OrderResult{OrderID: "k1"}, fillResult: &venue.OrderResult{OrderID: "k1", Filled: decimal.Zero}}
	b := &fakeAdapter{name: types.VenueB, balance: decimal.NewFromInt(100)}

	opp := baseOpp()
	ex := New(a, b, cooldown.NewTable(), baseCfg(), nil)
	trade := ex.Execute(context.Background(), opp, baseQuote(opp))

	if trade.Status != types.StatusSkippedNoFill {
		t.Fatalf("status = %s, want skipped_no_fill", trade.Status)
	}
	if b.sellCalls != 0 {
		t.Errorf("venue B must not be touched on leg-1 no-fill, got %d sell calls", b.sellCalls)
	}
}

func TestExecutePartialFillThenLeg2FailureUnwinds(t *testing.T) {
	a := &fakeAdapter{
		name: types.VenueA, placeResult: &venue.OrderResult{OrderID: "k1"},
		fillResult: &venue.OrderResult{OrderID: "k1", Filled: decimal.NewFromInt(5), PriceCents: decimal.NewFromInt(48)},
		sellResult: &venue.OrderResult{OrderID: "sell1"},
	}
	b := &fakeAdapter{name: types.VenueB, balance: decimal.NewFromInt(100), placeErr: errBoom}

	opp := baseOpp()
	opp.TradeableUnits = decimal.NewFromInt(10)
	ex := New(a, b, cooldown.NewTable(), baseCfg(), nil)
	trade := ex.Execute(context.Background(), opp, baseQuote(opp))

	if trade.Status != types.StatusUnwound {
		t.Fatalf("status = %s, want unwound", trade.Status)
	}
	if a.sellCalls != 1 {
		t.Errorf("expected unwind to call sell_at_bid exactly once on first success, got %d", a.sellCalls)
	}
}

func TestExecuteUnwindExhaustionIsPartialStuck(t *testing.T) {
	a := &fakeAdapter{
		name: types.VenueA, placeResult: &venue.OrderResult{OrderID: "k1"},
		fillResult: &venue.OrderResult{OrderID: "k1", Filled: decimal.NewFromInt(5), PriceCents: decimal.NewFromInt(48)},
		sellErr:    errBoom,
	}
	b := &fakeAdapter{name: types.VenueB, balance: decimal.NewFromInt(100), placeErr: errBoom}

	opp := baseOpp()
	cfg := baseCfg()
	ex := New(a, b, cooldown.NewTable(), cfg, nil)
	trade := ex.Execute(context.Background(), opp, baseQuote(opp))

	if trade.Status != types.StatusPartialStuck {
		t.Fatalf("status = %s, want partial_stuck", trade.Status)
	}
	if a.sellCalls != cfg.UnwindMaxAttempts {
		t.Errorf("expected %d unwind attempts, got %d", cfg.UnwindMaxAttempts, a.sellCalls)
	}
}

var errBoom = &venue.TransportError{Venue: "test", Op: "test", Err: context.DeadlineExceeded}
