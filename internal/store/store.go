// Package store persists opportunities and trades to SQLite and
// mirrors each tick's opportunities to an NDJSON stream (§6).
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/EMMoasis/BothMarkets/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS opportunities (
	id TEXT PRIMARY KEY,
	scanned_at TIMESTAMP NOT NULL,
	pair_key TEXT NOT NULL,
	strategy TEXT NOT NULL,
	k_cost TEXT NOT NULL,
	p_cost TEXT NOT NULL,
	spread TEXT NOT NULL,
	tier TEXT NOT NULL,
	k_depth TEXT NOT NULL,
	p_depth TEXT NOT NULL,
	tradeable_units TEXT NOT NULL,
	max_locked_profit_usd TEXT NOT NULL,
	hours_to_close REAL NOT NULL,
	executed INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	opp_fk TEXT NOT NULL REFERENCES opportunities(id),
	traded_at TIMESTAMP NOT NULL,
	requested_units TEXT NOT NULL,
	k_filled TEXT NOT NULL,
	p_filled TEXT NOT NULL,
	k_price TEXT NOT NULL,
	p_price TEXT NOT NULL,
	k_cost_usd TEXT NOT NULL,
	p_cost_usd TEXT NOT NULL,
	total_cost_usd TEXT NOT NULL,
	locked_profit_usd TEXT NOT NULL,
	k_fee_usd TEXT NOT NULL,
	net_profit_usd TEXT NOT NULL,
	k_order_id TEXT,
	p_order_id TEXT,
	status TEXT NOT NULL,
	reason TEXT,
	p_balance_before TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_opp_fk ON trades(opp_fk);
`

// Store is the single-writer persistence layer for opportunities and
// trades. Safe for concurrent use; writes serialize through db's own
// connection pool plus an internal mutex matching the spec's
// single-writer policy for persistence.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if absent) a SQLite database at path and
// applies the schema.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL&_fk=1", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// PutOpportunity persists one opportunity row. executed is set true by
// the caller once an execution attempt was made for it.
func (s *Store) PutOpportunity(ctx context.Context, opp types.Opportunity, executed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hoursToClose := time.Until(opp.Pair.A.ResolutionDT).Hours()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO opportunities
		(id, scanned_at, pair_key, strategy, k_cost, p_cost, spread, tier, k_depth, p_depth, tradeable_units, max_locked_profit_usd, hours_to_close, executed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		opp.ID, opp.DetectedAt, opp.Pair.Key(), string(opp.Strategy),
		opp.KCostCents.String(), opp.PCostCents.String(), opp.SpreadCents.String(), string(opp.Tier),
		"", "", opp.TradeableUnits.String(), opp.MaxLockedProfitUSD.String(), hoursToClose, boolToInt(executed),
	)
	if err != nil {
		return fmt.Errorf("store: insert opportunity: %w", err)
	}
	return nil
}

// PutTrade persists one trade row.
func (s *Store) PutTrade(ctx context.Context, t types.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trades
		(id, opp_fk, traded_at, requested_units, k_filled, p_filled, k_price, p_price, k_cost_usd, p_cost_usd,
		 total_cost_usd, locked_profit_usd, k_fee_usd, net_profit_usd, k_order_id, p_order_id, status, reason, p_balance_before)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OpportunityID, t.TradedAt, t.RequestedUnits.String(), t.KFilled.String(), t.PFilled.String(),
		t.KPriceCents.String(), t.PPriceCents.String(), t.KCostUSD.String(), t.PCostUSD.String(),
		t.TotalCostUSD.String(), t.LockedProfitUSD.String(), t.KFeeUSD.String(), t.NetProfitUSD.String(),
		t.KOrderID, t.POrderID, string(t.Status), t.Reason, t.PBalanceBeforeUSD.String(),
	)
	if err != nil {
		return fmt.Errorf("store: insert trade: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// StreamWriter emits one NDJSON line per tick that produced at least
// one opportunity.
type StreamWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewStreamWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{w: w}
}

type tickLine struct {
	TickAt        time.Time            `json:"tick_at"`
	Opportunities []types.Opportunity  `json:"opportunities"`
}

func (s *StreamWriter) WriteTick(tickAt time.Time, opps []types.Opportunity) error {
	if len(opps) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	line := tickLine{TickAt: tickAt, Opportunities: opps}
	b, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("store: marshal tick: %w", err)
	}
	b = append(b, '\n')
	_, err = s.w.Write(b)
	return err
}
