// Package topmakers implements TopMakers (spec.md §4.5): walks a market's
// resting-limit bids or asks in book order, emitting up to `limit` distinct
// maker accounts.
package topmakers

import (
	"context"
	"math/big"

	"github.com/litebittech/cex/services/dlob/internal/book"
	"github.com/litebittech/cex/services/dlob/internal/dlobtypes"
	"github.com/litebittech/cex/services/dlob/internal/market"
	"github.com/litebittech/cex/services/dlob/internal/pubkey"
	"github.com/litebittech/cex/services/dlob/internal/userstats"
)

type Entry struct {
	Maker        pubkey.PublicKey
	Price        *big.Int
	Size         *big.Int
	StatsAccount *pubkey.PublicKey // nil unless includeUserStats
}

type Request struct {
	Market           market.Market
	Side             dlobtypes.Direction
	Limit            int // 0 means no cap
	IncludeUserStats bool
}

// Build returns up to req.Limit distinct makers resting on req.Side, in
// book order, deduped by pubkey (scenario S6).
func Build(ctx context.Context, snap *book.MarketSnapshot, req Request, od dlobtypes.OraclePriceData, hasOracle bool, stats *userstats.Index, authorityOf func(maker pubkey.PublicKey) pubkey.PublicKey) []Entry {
	isBid := req.Side.IsBid()
	orders := snap.Asks
	if isBid {
		orders = snap.Bids
	}

	seen := make(map[pubkey.PublicKey]bool)
	out := make([]Entry, 0, len(orders))

	for _, ro := range orders {
		if req.Limit > 0 && len(out) >= req.Limit {
			break
		}
		if !book.IsRestingMaker(ro, isBid, req.Market, od, hasOracle) {
			continue
		}
		if seen[ro.Maker] {
			continue
		}
		seen[ro.Maker] = true

		entry := Entry{
			Maker: ro.Maker,
			Price: ro.EffectivePrice,
			Size:  new(big.Int).Sub(ro.Order.BaseAssetAmount, ro.Order.BaseAssetAmountFilled),
		}
		if req.IncludeUserStats && stats != nil && authorityOf != nil {
			authority := authorityOf(ro.Maker)
			if s, err := stats.Get(ctx, authority); err == nil {
				entry.StatsAccount = &s.StatsAccount
			}
		}
		out = append(out, entry)
	}
	return out
}
