package venue

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/EMMoasis/BothMarkets/internal/types"
)

// Side is which leg of a binary contract an order trades.
type Side string

const (
	SideYes Side = "YES"
	SideNo  Side = "NO"
)

// Quote is a single-venue snapshot of one contract's ask side, keyed by
// the venue-native market/token handle the caller passed to GetQuote.
type Quote = types.VenueQuote

// OrderResult is returned by PlaceTaker; Filled may be less than
// Requested for an IOC order on venue A, and must equal either 0 or
// Requested for a FOK order on venue B.
type OrderResult struct {
	OrderID  string
	Requested decimal.Decimal
	Filled    decimal.Decimal
	PriceCents decimal.Decimal
}

// Adapter is the capability set both venues implement. The scanner and
// executor depend only on this interface; RSA-PS256/EIP-712 signing,
// credential loading, and HTTP transport specifics live entirely behind
// concrete implementations (internal/venuea, internal/venueb).
type Adapter interface {
	// Name identifies the venue for logging/metrics ("A" or "B").
	Name() types.Venue

	// ListMarkets returns every open/tradeable market, fully paginated.
	ListMarkets(ctx context.Context) ([]types.NormalizedMarket, error)

	// GetQuote fetches the current ask-side book for one market.
	GetQuote(ctx context.Context, platformID string) (*Quote, error)

	// PlaceTaker places an immediate-or-cancel (venue A) or
	// fill-or-kill (venue B) taker order against the given side.
	PlaceTaker(ctx context.Context, platformID string, side Side, units decimal.Decimal, limitCents decimal.Decimal) (*OrderResult, error)

	// Cancel cancels any resting remainder of a partially filled IOC
	// order. The paper simulator's Cancel is a no-op; venue B's forwards
	// the order ID to the CLOB cancel endpoint.
	Cancel(ctx context.Context, orderID string) error

	// GetFill returns the current fill state of a previously placed
	// order.
	GetFill(ctx context.Context, orderID string) (*OrderResult, error)

	// GetBalance returns the venue's available USD (or USD-equivalent)
	// balance for the credentials in use.
	GetBalance(ctx context.Context) (decimal.Decimal, error)

	// SellAtBid immediately sells units of a filled position at the
	// current best bid, used by the executor's unwind path.
	SellAtBid(ctx context.Context, platformID string, side Side, units decimal.Decimal) (*OrderResult, error)
}
