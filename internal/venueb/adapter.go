package venueb

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/EMMoasis/BothMarkets/internal/types"
	"github.com/EMMoasis/BothMarkets/internal/venue"
	"github.com/EMMoasis/BothMarkets/pkg/polymarket/clob"
	"github.com/EMMoasis/BothMarkets/pkg/polymarket/gamma"
)

const (
	// SigTypePolyProxy is the proxy wallet signature scheme: a signer
	// key authorizes trades on behalf of a separate funder address
	// that holds the balance (§ glossary "proxy mode").
	SigTypePolyProxy = 1

	scanWindowHours = 72
)

// Adapter implements venue.Adapter for venue B by composing the Gamma
// read-only client (market discovery) and the CLOB trading client
// (quotes, orders, balance), the same split the teacher's own
// cmd/agentd wiring uses.
type Adapter struct {
	gammaClient *gamma.Client
	clobClient  *clob.Client
	negRisk     bool

	mu      sync.RWMutex
	tokens  map[string]tokenPair // platformID -> yes/no token IDs, populated by ListMarkets
}

type tokenPair struct {
	yes, no string
}

// NewAdapter builds a venue-B adapter. clobClient may be a public
// (read-only) client for scan-only mode, or a fully credentialed
// client (wallet + API key + proxy funder) for paper/live mode.
func NewAdapter(gammaClient *gamma.Client, clobClient *clob.Client, negRisk bool) *Adapter {
	return &Adapter{
		gammaClient: gammaClient,
		clobClient:  clobClient,
		negRisk:     negRisk,
		tokens:      make(map[string]tokenPair),
	}
}

func (a *Adapter) Name() types.Venue { return types.VenueB }

// ListMarkets also refreshes the platformID -> token-pair cache that
// GetQuote/PlaceTaker/SellAtBid use, since venue-B's YES and NO
// outcomes are two distinct CLOB tokens and the venue.Adapter
// interface addresses everything by a single platformID.
func (a *Adapter) ListMarkets(ctx context.Context) ([]types.NormalizedMarket, error) {
	markets, err := a.gammaClient.ListAllTradeableMarkets(ctx)
	if err != nil {
		return nil, wrapTransport(err, "list_markets")
	}
	now := time.Now().UTC()
	var out []types.NormalizedMarket
	for _, m := range markets {
		out = append(out, NormalizeMarkets(m, scanWindowHours*time.Hour, now)...)
	}

	a.mu.Lock()
	for _, nm := range out {
		a.tokens[nm.PlatformID] = tokenPair{yes: nm.YesToken, no: nm.NoToken}
	}
	a.mu.Unlock()

	return out, nil
}

func (a *Adapter) lookupTokens(platformID string) (tokenPair, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	tp, ok := a.tokens[platformID]
	return tp, ok
}

// GetQuote fetches the ask-side book for both outcomes of platformID.
func (a *Adapter) GetQuote(ctx context.Context, platformID string) (*venue.Quote, error) {
	tp, ok := a.lookupTokens(platformID)
	if !ok {
		return nil, &venue.ValidationError{Reason: "unknown platform id: " + platformID}
	}

	q := &venue.Quote{}

	yesBook, err := a.clobClient.GetOrderBook(ctx, tp.yes)
	if err != nil {
		return nil, wrapTransport(err, "get_quote:yes")
	}
	if ladder, ok := ladderFromWireAsks(yesBook.Asks); ok {
		q.YesOK = true
		q.YesAskCents = ladder[0].PriceCents
		q.YesDepth = ladder[0].Size
		q.YesLadder = ladder
	}

	if tp.no != "" {
		noBook, err := a.clobClient.GetOrderBook(ctx, tp.no)
		if err != nil {
			return nil, wrapTransport(err, "get_quote:no")
		}
		if ladder, ok := ladderFromWireAsks(noBook.Asks); ok {
			q.NoOK = true
			q.NoAskCents = ladder[0].PriceCents
			q.NoDepth = ladder[0].Size
			q.NoLadder = ladder
		}
	}

	return q, nil
}

// ladderFromWireAsks converts venue-B's descending-by-price ask array
// (best ask last, per §4.3) into the canonical best-first ladder in
// cents. A CLOB price is a decimal string in [0,1]; this scanner prices
// everything in cents, so values are multiplied by 100.
func ladderFromWireAsks(asks []clob.PriceLevel) ([]types.PriceLevel, bool) {
	if len(asks) == 0 {
		return nil, false
	}
	out := make([]types.PriceLevel, len(asks))
	for i, lvl := range asks {
		price, err := decimal.NewFromString(lvl.Price)
		if err != nil {
			continue
		}
		size, err := decimal.NewFromString(lvl.Size)
		if err != nil {
			continue
		}
		out[len(asks)-1-i] = types.PriceLevel{
			PriceCents: price.Mul(decimal.NewFromInt(100)),
			Size:       size,
		}
	}
	return out, true
}

func (a *Adapter) PlaceTaker(ctx context.Context, platformID string, side venue.Side, units decimal.Decimal, limitCents decimal.Decimal) (*venue.OrderResult, error) {
	tp, ok := a.lookupTokens(platformID)
	if !ok {
		return nil, &venue.ValidationError{Reason: "unknown platform id: " + platformID}
	}
	tokenID := tp.yes
	if side == venue.SideNo {
		tokenID = tp.no
	}

	price := limitCents.Div(decimal.NewFromInt(100))
	priceF, _ := price.Float64()
	unitsF, _ := units.Float64()

	args := &clob.OrderArgs{
		TokenID:   tokenID,
		Side:      clob.OrderSideBuy,
		Price:     priceF,
		Size:      unitsF,
		OrderType: clob.OrderTypeFOK,
	}
	resp, err := a.clobClient.CreateAndPostOrder(ctx, args, "0.01", a.negRisk)
	if err != nil {
		return nil, wrapOrderErr(err)
	}
	if !resp.Success {
		return nil, &venue.OrderRejectedError{Venue: "B", Reason: resp.ErrorMsg}
	}
	return &venue.OrderResult{OrderID: resp.OrderID, Requested: units, Filled: units, PriceCents: limitCents}, nil
}

func (a *Adapter) Cancel(ctx context.Context, orderID string) error {
	if err := a.clobClient.CancelOrder(ctx, orderID); err != nil {
		return wrapTransport(err, "cancel")
	}
	return nil
}

func (a *Adapter) GetFill(ctx context.Context, orderID string) (*venue.OrderResult, error) {
	order, err := a.clobClient.GetOrder(ctx, orderID)
	if err != nil {
		return nil, wrapTransport(err, "get_fill")
	}
	filled, _ := decimal.NewFromString(order.SizeFilled)
	price, _ := decimal.NewFromString(order.Price)
	return &venue.OrderResult{
		OrderID:    order.ID,
		Filled:     filled,
		PriceCents: price.Mul(decimal.NewFromInt(100)),
	}, nil
}

func (a *Adapter) GetBalance(ctx context.Context) (decimal.Decimal, error) {
	bal, err := a.clobClient.GetBalanceAllowance(ctx, "COLLATERAL", "")
	if err != nil {
		return decimal.Zero, wrapTransport(err, "get_balance")
	}
	raw, err := decimal.NewFromString(bal.Balance)
	if err != nil {
		return decimal.Zero, &venue.VenueProtocolError{Venue: "B", Op: "get_balance", Err: err}
	}
	// USDC has 6 decimals on-chain.
	return raw.Div(decimal.NewFromInt(1_000_000)), nil
}

func (a *Adapter) SellAtBid(ctx context.Context, platformID string, side venue.Side, units decimal.Decimal) (*venue.OrderResult, error) {
	tp, ok := a.lookupTokens(platformID)
	if !ok {
		return nil, &venue.ValidationError{Reason: "unknown platform id: " + platformID}
	}
	tokenID := tp.yes
	if side == venue.SideNo {
		tokenID = tp.no
	}

	book, err := a.clobClient.GetOrderBook(ctx, tokenID)
	if err != nil {
		return nil, wrapTransport(err, "sell_at_bid")
	}
	if len(book.Bids) == 0 {
		return nil, &venue.InsufficientLiquidityError{Venue: "B", Wanted: units.String(), Walked: "0"}
	}
	bestBid := book.Bids[len(book.Bids)-1]
	priceF, err := strconv.ParseFloat(bestBid.Price, 64)
	if err != nil {
		return nil, &venue.VenueProtocolError{Venue: "B", Op: "sell_at_bid", Err: err}
	}
	unitsF, _ := units.Float64()

	args := &clob.OrderArgs{
		TokenID:   tokenID,
		Side:      clob.OrderSideSell,
		Price:     priceF,
		Size:      unitsF,
		OrderType: clob.OrderTypeFOK,
	}
	resp, err := a.clobClient.CreateAndPostOrder(ctx, args, "0.01", a.negRisk)
	if err != nil {
		return nil, wrapOrderErr(err)
	}
	if !resp.Success {
		return nil, &venue.OrderRejectedError{Venue: "B", Reason: resp.ErrorMsg}
	}
	bidCents, _ := decimal.NewFromString(bestBid.Price)
	return &venue.OrderResult{OrderID: resp.OrderID, Requested: units, Filled: units, PriceCents: bidCents.Mul(decimal.NewFromInt(100))}, nil
}

func wrapTransport(err error, op string) error {
	return &venue.TransportError{Venue: "B", Op: op, Err: err}
}

func wrapOrderErr(err error) error {
	return fmt.Errorf("venueb: place order: %w", err)
}

var _ venue.Adapter = (*Adapter)(nil)
