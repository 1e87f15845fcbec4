// Package config loads the scanner's CLI flags and environment
// credentials once at startup into a single immutable Config value,
// following the flag-plus-env-fallback pattern used throughout the
// teacher's cmd entrypoints.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// Mode selects the CLI's execution mode (§6: exactly three,
// mutually exclusive).
type Mode string

const (
	ModeScanOnly Mode = "scan"
	ModePaper    Mode = "paper"
	ModeLive     Mode = "live"
)

// Config holds every operational tunable and credential the scanner
// needs, resolved once at process startup.
type Config struct {
	Mode Mode

	MinSpreadCents   decimal.Decimal
	MaxTradeUSD      decimal.Decimal
	MaxUnitsPerMap   decimal.Decimal
	PolyMinOrderUSD  decimal.Decimal
	MarketRefresh    time.Duration
	PricePoll        time.Duration
	FetchWorkers     int
	ScanWindowHours  int
	Leg1SettleDelay  time.Duration
	UnwindDelay      time.Duration
	CooldownCycles   int64
	MatchCrypto      bool

	DBPath     string
	StreamPath string
	MetricsAddr string

	VenueAKey      string
	VenueASecret   string
	VenueBPrivKey  string
	VenueBAPIKey   string
	VenueBAPISecret string
	VenueBAPIPassphrase string
	VenueBFunder   string
}

// Load parses args (normally os.Args[1:]) and environment variables
// into a Config. Returns an error on conflicting mode flags or other
// fatal misconfiguration (caller should exit non-zero, per §6).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("arb-scanner", flag.ContinueOnError)

	paper := fs.Bool("paper", false, "run in simulated paper-trading execution mode")
	live := fs.Bool("live", false, "run in live execution mode (requires credentials)")

	minSpread := fs.Float64("min-spread-cents", 3.3, "minimum spread in cents to qualify as an opportunity")
	maxTradeUSD := fs.Float64("exec-max-trade-usd", 50, "maximum USD notional per execution")
	maxUnitsPerMap := fs.Float64("exec-max-units-per-map", 500, "maximum contract units per execution")
	polyMinOrderUSD := fs.Float64("exec-poly-min-order-usd", 1, "venue-B minimum order size in USD")
	marketRefreshSeconds := fs.Int("market-refresh-seconds", 7200, "slow match-set refresh period")
	pricePollSeconds := fs.Int("price-poll-seconds", 2, "fast quote/opportunity tick period")
	fetchWorkers := fs.Int("fetch-workers", 20, "bounded worker pool size for quote fan-out")
	scanWindowHours := fs.Int("scan-window-hours", 72, "scan window in hours; stored in Config.ScanWindowHours but not read by the venue adapters (venue B uses a fixed 72-hour window, venue A listings are not window-filtered)")
	leg1SettleMillis := fs.Int("leg1-settle-delay-ms", 500, "delay between placing leg 1 and checking its fill")
	unwindDelaySeconds := fs.Int("exec-unwind-delay-seconds", 2, "delay between unwind attempts")
	cooldownCycles := fs.Int64("exec-cooldown-cycles", 5, "price cycles a pair cools down for after a terminal trade")
	matchCrypto := fs.Bool("match-crypto", false, "enable the crypto matching criteria (off by default)")

	dbPath := fs.String("db", "arb-scanner.db", "SQLite database path")
	streamPath := fs.String("stream", "", "NDJSON opportunity stream path (stdout if empty)")
	metricsAddr := fs.String("metrics-addr", ":9090", "address to serve /metrics on")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *paper && *live {
		return nil, fmt.Errorf("config: --paper and --live are mutually exclusive")
	}

	mode := ModeScanOnly
	if *paper {
		mode = ModePaper
	} else if *live {
		mode = ModeLive
	}

	cfg := &Config{
		Mode:            mode,
		MinSpreadCents:  decimal.NewFromFloat(*minSpread),
		MaxTradeUSD:     decimal.NewFromFloat(*maxTradeUSD),
		MaxUnitsPerMap:  decimal.NewFromFloat(*maxUnitsPerMap),
		PolyMinOrderUSD: decimal.NewFromFloat(*polyMinOrderUSD),
		MarketRefresh:   time.Duration(*marketRefreshSeconds) * time.Second,
		PricePoll:       time.Duration(*pricePollSeconds) * time.Second,
		FetchWorkers:    *fetchWorkers,
		ScanWindowHours: *scanWindowHours,
		Leg1SettleDelay: time.Duration(*leg1SettleMillis) * time.Millisecond,
		UnwindDelay:     time.Duration(*unwindDelaySeconds) * time.Second,
		CooldownCycles:  *cooldownCycles,
		MatchCrypto:     *matchCrypto,
		DBPath:          *dbPath,
		StreamPath:      *streamPath,
		MetricsAddr:     *metricsAddr,

		VenueAKey:           os.Getenv("VENUE_A_KEY"),
		VenueASecret:        os.Getenv("VENUE_A_SECRET"),
		VenueBPrivKey:       os.Getenv("VENUE_B_PRIV_KEY"),
		VenueBAPIKey:        os.Getenv("VENUE_B_API_KEY"),
		VenueBAPISecret:     os.Getenv("VENUE_B_API_SECRET"),
		VenueBAPIPassphrase: os.Getenv("VENUE_B_API_PASSPHRASE"),
		VenueBFunder:        os.Getenv("VENUE_B_FUNDER"),
	}

	if mode == ModeLive && (cfg.VenueAKey == "" || cfg.VenueASecret == "" || cfg.VenueBPrivKey == "") {
		return nil, fmt.Errorf("config: --live requires VENUE_A_KEY, VENUE_A_SECRET, and VENUE_B_PRIV_KEY")
	}

	return cfg, nil
}
