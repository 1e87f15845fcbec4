// Package types holds the shared, venue-agnostic record types that flow
// through the scanner: normalized markets, matched pairs, quotes,
// opportunities, and trades. All values are immutable once constructed.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Venue identifies one of the two exchanges a market was sourced from.
type Venue string

const (
	VenueA Venue = "A"
	VenueB Venue = "B"
)

// AssetClass distinguishes the two families of binary contract this
// system understands.
type AssetClass string

const (
	AssetSports AssetClass = "SPORTS"
	AssetCrypto AssetClass = "CRYPTO"
)

// SportSubtype distinguishes a single-map/game contract from a
// best-of-series contract.
type SportSubtype string

const (
	SubtypeMap    SportSubtype = "map"
	SubtypeSeries SportSubtype = "series"
)

// Direction is the side of a crypto threshold contract.
type Direction string

const (
	DirectionAbove Direction = "ABOVE"
	DirectionBelow Direction = "BELOW"
)

// NormalizedMarket is one tradable binary contract on one venue, reduced
// to the common schema the matcher and pricing layers operate on.
type NormalizedMarket struct {
	Venue      Venue
	PlatformID string
	AssetClass AssetClass

	// SPORTS fields.
	Sport        string
	Team         string
	Opponent     string
	SportSubtype SportSubtype
	MapNumber    *int

	// CRYPTO fields.
	CryptoAsset string
	Direction   Direction
	Threshold   decimal.Decimal

	ResolutionDT time.Time

	YesToken string
	NoToken  string

	RawTitle string
}

// Key returns the venue/platform-id join key; NormalizedMarket rows are
// jointly unique on (Venue, PlatformID).
func (m NormalizedMarket) Key() string {
	return string(m.Venue) + ":" + m.PlatformID
}

// MatchedPair is an exclusive pairing of one venue-A market to one
// venue-B market believed to describe the same real-world event.
type MatchedPair struct {
	A NormalizedMarket
	B NormalizedMarket
}

// Key returns a stable identifier for the pair, used for cooldown
// lookups and persistence foreign keys.
func (p MatchedPair) Key() string {
	return p.A.Key() + "|" + p.B.Key()
}

// PriceLevel is one rung of a best-to-worst ask ladder.
type PriceLevel struct {
	PriceCents decimal.Decimal
	Size       decimal.Decimal
}

// VenueQuote is the ask side of one contract on one venue: best price,
// depth at that price, and the full ladder behind it (best-first,
// regardless of how the venue's wire format orders it).
type VenueQuote struct {
	YesAskCents decimal.Decimal
	YesDepth    decimal.Decimal
	YesLadder   []PriceLevel
	NoAskCents  decimal.Decimal
	NoDepth     decimal.Decimal
	NoLadder    []PriceLevel

	// YesOK/NoOK are false when the corresponding ask is absent (empty
	// book side); callers must treat an absent ask as infinite cost,
	// never as zero.
	YesOK bool
	NoOK  bool
}

// PairQuotes is one tick's worth of quotes for both legs of a matched
// pair.
type PairQuotes struct {
	Pair MatchedPair
	A    *VenueQuote // nil if venue A's quote failed or timed out this tick
	B    *VenueQuote // nil if venue B's quote failed or timed out this tick
}

// Strategy identifies which leg combination an Opportunity represents.
type Strategy string

const (
	// StrategyA buys YES on venue A and NO on venue B.
	StrategyA Strategy = "A"
	// StrategyB buys NO on venue A and YES on venue B.
	StrategyB Strategy = "B"
)

// Tier buckets an opportunity's spread into a coarse quality bucket.
type Tier string

const (
	TierUltraHigh Tier = "ULTRA_HIGH"
	TierHigh      Tier = "HIGH"
	TierMid       Tier = "MID"
	TierLow       Tier = "LOW"
)

// Opportunity is a detected, not-yet-executed arbitrage candidate for
// one strategy on one matched pair in one tick.
type Opportunity struct {
	ID                 string
	Pair               MatchedPair
	Strategy           Strategy
	KCostCents         decimal.Decimal // venue-A leg cost, cents
	PCostCents         decimal.Decimal // venue-B leg cost, cents
	SpreadCents        decimal.Decimal
	Tier               Tier
	TradeableUnits     decimal.Decimal
	MaxLockedProfitUSD decimal.Decimal
	DetectedAt         time.Time
}

// TradeStatus is the terminal (or in-flight) state of one execution
// attempt.
type TradeStatus string

const (
	StatusSkippedLowBalance TradeStatus = "skipped_low_balance"
	StatusSkippedNoFill     TradeStatus = "skipped_no_fill"
	StatusSkippedError      TradeStatus = "skipped_error"
	StatusFilled            TradeStatus = "filled"
	StatusUnwound           TradeStatus = "unwound"
	StatusPartialStuck      TradeStatus = "partial_stuck"
)

// Trade is the persisted record of one execution attempt against an
// Opportunity.
type Trade struct {
	ID               string
	OpportunityID    string
	TradedAt         time.Time
	RequestedUnits   decimal.Decimal
	KFilled          decimal.Decimal
	PFilled          decimal.Decimal
	KPriceCents      decimal.Decimal
	PPriceCents      decimal.Decimal
	KCostUSD         decimal.Decimal
	PCostUSD         decimal.Decimal
	TotalCostUSD     decimal.Decimal
	LockedProfitUSD  decimal.Decimal
	KFeeUSD          decimal.Decimal
	NetProfitUSD     decimal.Decimal
	KOrderID         string
	POrderID         string
	Status           TradeStatus
	Reason           string
	PBalanceBeforeUSD decimal.Decimal
}
