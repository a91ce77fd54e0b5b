// Command dlob is the DLOB market-data service's process entrypoint: it
// wires every internal package into one running server and keeps it
// running under internal/supervisor's crash-and-rebuild loop, in the style
// of the teacher's cmd/pincex/main.go composition root.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/litebittech/cex/services/dlob/common/cfg"
	"github.com/litebittech/cex/services/dlob/common/logger"
	"github.com/litebittech/cex/services/dlob/internal/accountstream"
	"github.com/litebittech/cex/services/dlob/internal/book"
	"github.com/litebittech/cex/services/dlob/internal/fallback"
	"github.com/litebittech/cex/services/dlob/internal/httpapi"
	"github.com/litebittech/cex/services/dlob/internal/market"
	"github.com/litebittech/cex/services/dlob/internal/oracle"
	"github.com/litebittech/cex/services/dlob/internal/orderindex"
	"github.com/litebittech/cex/services/dlob/internal/ratelimit"
	redisclient "github.com/litebittech/cex/services/dlob/internal/redis"
	"github.com/litebittech/cex/services/dlob/internal/slotsource"
	"github.com/litebittech/cex/services/dlob/internal/supervisor"
	"github.com/litebittech/cex/services/dlob/internal/userstats"
	"github.com/litebittech/cex/services/dlob/internal/vamm"
)

func main() {
	config, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	log, zapLog, flush := logger.New(config.Env == "mainnet-beta" || config.Env == "prod")
	defer flush()

	registry, err := market.ParseRegistryJSON(config.MarketsJSON)
	if err != nil {
		log.Error("failed to parse MARKETS_JSON, cannot start", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var rdb redis.UniversalClient
	if config.RedisAddr != "" {
		rdb, err = redisclient.NewClient(ctx, redisclient.DefaultConfig(config.RedisAddr))
		if err != nil {
			log.Error("failed to connect to redis, continuing with local-only user stats cache", "error", err)
			rdb = nil
		}
	}

	supervisor.Run(ctx, log, func(ctx context.Context) error {
		return bootAndServe(ctx, config, registry, rdb, log, zapLog)
	})
}

// bootAndServe rebuilds every in-memory structure from scratch and runs
// the service until ctx is canceled or a component's loop returns an
// error — the unit internal/supervisor restarts as a whole, per spec.md
// §4.7's "rebuild everything" restart semantics.
func bootAndServe(
	ctx context.Context,
	config *cfg.Config,
	registry *market.Registry,
	rdb redis.UniversalClient,
	log *slog.Logger,
	zapLog *zap.Logger,
) error {
	orders := orderindex.New()
	oracles := oracle.NewStore()
	slots := slotsource.New()

	tickInterval := time.Duration(config.TickIntervalMs) * time.Millisecond
	bookBuilder := book.New(orders, slots, oracles, registry, tickInterval, log)

	stats := userstats.New(zeroStatsLoader, rdb, 15*time.Minute)

	var provider accountstream.Provider
	if config.UseOrderSubscriber {
		provider = accountstream.NewOrderSubscriberProvider(orders, idleOrderSource{}, log)
	} else {
		provider = accountstream.NewUserMapProvider(orders, idleUserMapSource{}, log)
	}

	vammCurves := buildVammCurves(registry)
	phoenixMirrors, serumMirrors := buildFallbackMirrors(registry, log)

	subscribed := &atomic.Bool{}
	limiter := ratelimit.New(config.RateLimitCallsPerSecond)

	deps := &httpapi.Deps{
		Markets:        registry,
		Book:           bookBuilder,
		Oracles:        oracles,
		Slots:          slots,
		Orders:         orders,
		Stats:          stats,
		Provider:       provider,
		VammCurves:     vammCurves,
		PhoenixMirrors: phoenixMirrors,
		SerumMirrors:   serumMirrors,
		Subscribed:     subscribed,
		Commit:         config.Commit,
		AllowLoadTest:  config.AllowLoadTest,
		RateLimiter:    limiter,
		Log:            log,
		ZapLog:         zapLog,
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Port),
		Handler: deps.Router(),
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	var (
		wg      sync.WaitGroup
		errOnce sync.Once
		firstErr error
	)
	fail := func(err error) {
		if err == nil {
			return
		}
		errOnce.Do(func() { firstErr = err })
		cancelRun()
	}

	run := func(f func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fail(f())
		}()
	}

	run(func() error { return bookBuilder.Run(runCtx) })
	run(func() error {
		subscribed.Store(true)
		return provider.Subscribe(runCtx)
	})
	for _, m := range phoenixMirrors {
		m := m
		run(func() error { m.Run(runCtx, 5*time.Second); return nil })
	}
	for _, m := range serumMirrors {
		m := m
		run(func() error { m.Run(runCtx, 5*time.Second); return nil })
	}
	run(func() error {
		log.Info("dlob listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	run(func() error {
		<-runCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	wg.Wait()
	return firstErr
}

// buildVammCurves instantiates one constant-product curve per perp
// market. Reserve/peg parameters are placeholders until the chain
// collaborator supplies per-market AMM state (spec.md §1's scope note);
// the shape — decimal reserves rebased onto chain-precision levels — is
// what spec.md §4.6 actually asks this package to provide.
func buildVammCurves(registry *market.Registry) map[string]*vamm.Curve {
	curves := make(map[string]*vamm.Curve)
	for _, m := range registry.All() {
		if m.Type != market.Perp {
			continue
		}
		curves[m.Key()] = vamm.NewCurve(
			big.NewInt(1_000_000_000_000),
			big.NewInt(1_000_000_000_000),
			big.NewInt(1),
			big.NewInt(1_000_000),
			big.NewInt(1_000_000_000),
			big.NewInt(100_000_000),
		)
	}
	return curves
}

// buildFallbackMirrors wires one Mirror per spot market per configured
// venue address. A market with no PhoenixAddr/SerumAddr configured simply
// has no mirror for that venue — BuildL2 skips an absent FallbackSource.
func buildFallbackMirrors(registry *market.Registry, log *slog.Logger) (map[string]*fallback.Mirror, map[string]*fallback.Mirror) {
	phoenix := make(map[string]*fallback.Mirror)
	serum := make(map[string]*fallback.Mirror)
	for _, m := range registry.All() {
		if m.Type != market.Spot {
			continue
		}
		if m.PhoenixAddr != "" {
			phoenix[m.Key()] = fallback.NewMirror(fallback.SourcePhoenix, idleVenueClient{}, log)
		}
		if m.SerumAddr != "" {
			serum[m.Key()] = fallback.NewMirror(fallback.SourceSerum, idleVenueClient{}, log)
		}
	}
	return phoenix, serum
}
