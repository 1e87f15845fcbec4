package store

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/EMMoasis/BothMarkets/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scanner.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleOpp() types.Opportunity {
	return types.Opportunity{
		ID:                 "opp1",
		Pair:               types.MatchedPair{A: types.NormalizedMarket{Venue: types.VenueA, PlatformID: "a1"}, B: types.NormalizedMarket{Venue: types.VenueB, PlatformID: "b1"}},
		Strategy:           types.StrategyA,
		KCostCents:         decimal.NewFromInt(48),
		PCostCents:         decimal.NewFromInt(49),
		SpreadCents:        decimal.NewFromInt(3),
		Tier:               types.TierLow,
		TradeableUnits:     decimal.NewFromInt(100),
		MaxLockedProfitUSD: decimal.NewFromInt(3),
		DetectedAt:         time.Now().UTC(),
	}
}

func TestPutOpportunityAndTrade(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	opp := sampleOpp()
	if err := s.PutOpportunity(ctx, opp, true); err != nil {
		t.Fatalf("PutOpportunity: %v", err)
	}

	trade := types.Trade{
		ID: "t1", OpportunityID: opp.ID, TradedAt: time.Now().UTC(),
		RequestedUnits: decimal.NewFromInt(10), KFilled: decimal.NewFromInt(10), PFilled: decimal.NewFromInt(10),
		KPriceCents: decimal.NewFromInt(48), PPriceCents: decimal.NewFromInt(49),
		Status: types.StatusFilled, PBalanceBeforeUSD: decimal.NewFromInt(100),
	}
	if err := s.PutTrade(ctx, trade); err != nil {
		t.Fatalf("PutTrade: %v", err)
	}
}

func TestStreamWriterSkipsEmptyTicks(t *testing.T) {
	var buf bytes.Buffer
	sw := NewStreamWriter(&buf)

	if err := sw.WriteTick(time.Now(), nil); err != nil {
		t.Fatalf("WriteTick: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output for a tick with zero opportunities, got %q", buf.String())
	}

	if err := sw.WriteTick(time.Now(), []types.Opportunity{sampleOpp()}); err != nil {
		t.Fatalf("WriteTick: %v", err)
	}
	if !strings.Contains(buf.String(), "opp1") {
		t.Errorf("expected emitted line to contain opportunity id, got %q", buf.String())
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Errorf("expected NDJSON line to end with newline")
	}
}
