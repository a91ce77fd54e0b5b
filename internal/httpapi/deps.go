// Package httpapi wires the DLOB engine to HTTP, per spec.md §6: gin
// router, all endpoints, middleware stack, and the apierr-to-status
// mapping. Grounded on the teacher's internal/server.Server/Router shape
// (ginzap logging+recovery, otelgin tracing, cors, a rate-limit
// middleware) generalized from the monolith's many service groups down to
// this service's eleven read-only endpoints.
package httpapi

import (
	"log/slog"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/litebittech/cex/services/dlob/internal/accountstream"
	"github.com/litebittech/cex/services/dlob/internal/book"
	"github.com/litebittech/cex/services/dlob/internal/fallback"
	"github.com/litebittech/cex/services/dlob/internal/market"
	"github.com/litebittech/cex/services/dlob/internal/oracle"
	"github.com/litebittech/cex/services/dlob/internal/orderindex"
	"github.com/litebittech/cex/services/dlob/internal/pubkey"
	"github.com/litebittech/cex/services/dlob/internal/ratelimit"
	"github.com/litebittech/cex/services/dlob/internal/slotsource"
	"github.com/litebittech/cex/services/dlob/internal/userstats"
	"github.com/litebittech/cex/services/dlob/internal/vamm"
)

// VammCurves and fallback mirrors are keyed by market.Market.Key().
type Deps struct {
	Markets  *market.Registry
	Book     *book.Builder
	Oracles  oracle.View
	Slots    *slotsource.SlotSource
	Orders   *orderindex.Index
	Stats    *userstats.Index
	Provider accountstream.Provider

	VammCurves     map[string]*vamm.Curve
	PhoenixMirrors map[string]*fallback.Mirror
	SerumMirrors   map[string]*fallback.Mirror

	Subscribed *atomic.Bool // set when the account stream subscription starts

	Commit        string
	AllowLoadTest bool
	RateLimiter   *ratelimit.Limiter

	Log    *slog.Logger
	ZapLog *zap.Logger
}

func (d *Deps) vammFor(m market.Market) *vamm.Curve {
	return d.VammCurves[m.Key()]
}

func (d *Deps) phoenixFor(m market.Market) *fallback.Mirror {
	return d.PhoenixMirrors[m.Key()]
}

func (d *Deps) serumFor(m market.Market) *fallback.Mirror {
	return d.SerumMirrors[m.Key()]
}

// authorityOf resolves a maker's user-account pubkey to its authority,
// the key UserStatsIndex is keyed by — falling back to the maker's own
// pubkey if OrderIndex no longer holds that account (evicted between tick
// and request).
func (d *Deps) authorityOf(maker pubkey.PublicKey) pubkey.PublicKey {
	if account, ok := d.Orders.Get(maker); ok {
		return account.Authority
	}
	return maker
}
