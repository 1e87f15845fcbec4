// Command scanner runs the cross-venue arbitrage scanner: it discovers
// matching markets on venue A and venue B, watches their quotes, and
// in paper or live mode executes the two-leg arbitrage when a spread
// clears the configured minimum.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/EMMoasis/BothMarkets/internal/config"
	"github.com/EMMoasis/BothMarkets/internal/cooldown"
	"github.com/EMMoasis/BothMarkets/internal/executor"
	"github.com/EMMoasis/BothMarkets/internal/metrics"
	"github.com/EMMoasis/BothMarkets/internal/orchestrator"
	"github.com/EMMoasis/BothMarkets/internal/store"
	"github.com/EMMoasis/BothMarkets/internal/venue"
	"github.com/EMMoasis/BothMarkets/internal/venuea"
	"github.com/EMMoasis/BothMarkets/internal/venueb"
	"github.com/EMMoasis/BothMarkets/pkg/polymarket/clob"
	"github.com/EMMoasis/BothMarkets/pkg/polymarket/gamma"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	log.Info("starting scanner", zap.String("mode", string(cfg.Mode)))

	a, b, err := buildAdapters(cfg)
	if err != nil {
		return fmt.Errorf("build adapters: %w", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer st.Close()

	streamOut := os.Stdout
	var streamFile *os.File
	if cfg.StreamPath != "" {
		streamFile, err = os.OpenFile(cfg.StreamPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("stream: %w", err)
		}
		defer streamFile.Close()
	}
	sw := store.NewStreamWriter(streamWriterTarget(streamFile, streamOut))

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	cool := cooldown.NewTable()

	var exec *executor.Executor
	if cfg.Mode != config.ModeScanOnly {
		exec = executor.New(a, b, cool, executor.Config{
			MinSpreadCents:     cfg.MinSpreadCents,
			MaxTradeUSD:        cfg.MaxTradeUSD,
			MaxUnitsPerMap:     cfg.MaxUnitsPerMap,
			PolyMinOrderUSD:    cfg.PolyMinOrderUSD,
			Leg1SettleDelay:    cfg.Leg1SettleDelay,
			UnwindDelaySeconds: cfg.UnwindDelay,
			UnwindMaxAttempts:  3,
			CooldownCycles:     cfg.CooldownCycles,
		}, log)
	}

	orch := orchestrator.New(a, b, exec, cool, st, sw, m, orchestrator.Config{
		MarketRefresh:   cfg.MarketRefresh,
		PricePoll:       cfg.PricePoll,
		FetchWorkers:    cfg.FetchWorkers,
		MinSpreadCents:  cfg.MinSpreadCents,
		MatchCrypto:     cfg.MatchCrypto,
		RefreshMaxFails: 3,
		RefreshBackoff:  30 * time.Second,
	}, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn("metrics server stopped", zap.Error(err))
		}
	}()

	go orch.Run(ctx)

	<-sigCh
	log.Info("shutdown signal received, stopping")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	return nil
}

func buildAdapters(cfg *config.Config) (venue.Adapter, venue.Adapter, error) {
	var a venue.Adapter
	if cfg.VenueAKey != "" && cfg.VenueASecret != "" {
		signer, err := venuea.NewSigner(cfg.VenueAKey, cfg.VenueASecret)
		if err != nil {
			return nil, nil, fmt.Errorf("venue-a signer: %w", err)
		}
		a = venuea.NewClient(signer)
	} else {
		a = venuea.NewClient(nil)
	}

	gammaClient := gamma.NewClient()
	var clobClient *clob.Client
	if cfg.VenueBPrivKey != "" {
		var opts []clob.ClientOption
		if cfg.VenueBFunder != "" {
			opts = append(opts, clob.WithSignatureType(venueb.SigTypePolyProxy), clob.WithFunder(cfg.VenueBFunder))
		}
		if cfg.VenueBAPIKey != "" {
			opts = append(opts, clob.WithCredentials(&clob.APICredentials{
				APIKey:     cfg.VenueBAPIKey,
				Secret:     cfg.VenueBAPISecret,
				Passphrase: cfg.VenueBAPIPassphrase,
			}))
		}
		var err error
		clobClient, err = clob.NewClient(cfg.VenueBPrivKey, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("venue-b clob client: %w", err)
		}
	} else {
		clobClient = clob.NewPublicClient()
	}
	b := venueb.NewAdapter(gammaClient, clobClient, false)

	switch cfg.Mode {
	case config.ModePaper:
		return executor.NewPaperAdapter(a, true), executor.NewPaperAdapter(b, false), nil
	default:
		return a, b, nil
	}
}

func streamWriterTarget(f *os.File, fallback *os.File) *os.File {
	if f != nil {
		return f
	}
	return fallback
}
