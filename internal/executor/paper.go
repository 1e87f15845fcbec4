package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/EMMoasis/BothMarkets/internal/types"
	"github.com/EMMoasis/BothMarkets/internal/venue"
)

const (
	paperStartingBalanceUSD = 10000
	venueATakerFeeRate      = 0.0175 // 1.75% of face value
)

// PaperAdapter wraps a real venue.Adapter's read path (ListMarkets,
// GetQuote) and replaces its write path with a simulator that assumes
// full immediate fills at the best ask, no slippage, and debits a
// virtual per-venue wallet (§4.5 paper mode).
type PaperAdapter struct {
	real       venue.Adapter
	applyFee   bool
	mu         sync.Mutex
	balanceUSD decimal.Decimal
	fills      map[string]*venue.OrderResult
}

// NewPaperAdapter builds a simulator over real for read operations.
// applyFee should be true only for the venue-A wrapper (§4.5: venue-A
// taker fee is 1.75% of face value).
func NewPaperAdapter(real venue.Adapter, applyFee bool) *PaperAdapter {
	return &PaperAdapter{
		real:       real,
		applyFee:   applyFee,
		balanceUSD: decimal.NewFromInt(paperStartingBalanceUSD),
		fills:      make(map[string]*venue.OrderResult),
	}
}

func (p *PaperAdapter) Name() types.Venue { return p.real.Name() }

func (p *PaperAdapter) ListMarkets(ctx context.Context) ([]types.NormalizedMarket, error) {
	return p.real.ListMarkets(ctx)
}

func (p *PaperAdapter) GetQuote(ctx context.Context, platformID string) (*venue.Quote, error) {
	return p.real.GetQuote(ctx, platformID)
}

// PlaceTaker simulates a full fill at limitCents (the best ask the
// caller already observed), debiting the virtual wallet.
func (p *PaperAdapter) PlaceTaker(ctx context.Context, platformID string, side venue.Side, units, limitCents decimal.Decimal) (*venue.OrderResult, error) {
	cost := units.Mul(limitCents).Div(decimal.NewFromInt(hundred))
	if p.applyFee {
		cost = cost.Add(units.Mul(decimal.NewFromFloat(venueATakerFeeRate)))
	}

	p.mu.Lock()
	if p.balanceUSD.LessThan(cost) {
		p.mu.Unlock()
		return nil, &venue.BalanceLowError{Venue: string(p.Name()), Have: p.balanceUSD.String(), Need: cost.String()}
	}
	p.balanceUSD = p.balanceUSD.Sub(cost)
	p.mu.Unlock()

	result := &venue.OrderResult{
		OrderID:    fmt.Sprintf("paper-%s", uuid.NewString()),
		Requested:  units,
		Filled:     units,
		PriceCents: limitCents,
	}
	p.mu.Lock()
	p.fills[result.OrderID] = result
	p.mu.Unlock()
	return result, nil
}

func (p *PaperAdapter) Cancel(ctx context.Context, orderID string) error { return nil }

func (p *PaperAdapter) GetFill(ctx context.Context, orderID string) (*venue.OrderResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	result, ok := p.fills[orderID]
	if !ok {
		return nil, &venue.ValidationError{Reason: "unknown paper order id: " + orderID}
	}
	return result, nil
}

func (p *PaperAdapter) GetBalance(ctx context.Context) (decimal.Decimal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balanceUSD, nil
}

// SellAtBid fetches a fresh quote from the wrapped adapter and credits
// the wallet for units at that quote's current ask on the given side;
// this simulator has no bid-side or slippage model.
func (p *PaperAdapter) SellAtBid(ctx context.Context, platformID string, side venue.Side, units decimal.Decimal) (*venue.OrderResult, error) {
	quote, err := p.real.GetQuote(ctx, platformID)
	if err != nil {
		return nil, err
	}
	priceCents := quote.YesAskCents
	if side == venue.SideNo {
		priceCents = quote.NoAskCents
	}

	proceeds := units.Mul(priceCents).Div(decimal.NewFromInt(hundred))
	p.mu.Lock()
	p.balanceUSD = p.balanceUSD.Add(proceeds)
	p.mu.Unlock()

	return &venue.OrderResult{
		OrderID:    fmt.Sprintf("paper-unwind-%s", uuid.NewString()),
		Requested:  units,
		Filled:     units,
		PriceCents: priceCents,
	}, nil
}

var _ venue.Adapter = (*PaperAdapter)(nil)
