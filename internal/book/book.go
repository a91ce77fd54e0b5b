// Package book implements BookBuilder (spec.md §4.2): on each tick,
// rebuilds per-market sorted bid/ask sequences from OrderIndex, handling
// resting-limit / auction / trigger order-type semantics and per-slot
// activation. Publication is copy-on-publish via atomic.Pointer per
// market, grounded on the teacher's tidwall/btree order book
// (internal/trading/orderbook) generalized from a matching-engine book to
// a read-only reconstruction.
package book

import (
	"bytes"
	"context"
	"log/slog"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/tidwall/btree"

	"github.com/litebittech/cex/services/dlob/internal/dlobtypes"
	"github.com/litebittech/cex/services/dlob/internal/market"
	"github.com/litebittech/cex/services/dlob/internal/oracle"
	"github.com/litebittech/cex/services/dlob/internal/orderindex"
	"github.com/litebittech/cex/services/dlob/internal/pubkey"
	"github.com/litebittech/cex/services/dlob/internal/slotsource"
)

// RestingOrder is one order placed within a market's sorted sequence.
type RestingOrder struct {
	Maker          pubkey.PublicKey
	Order          *dlobtypes.Order
	EffectivePrice *big.Int
	InAuction      bool
}

// MarketSnapshot is the DLOB Snapshot for one market (spec.md §3):
// bids sorted descending by effective price, asks ascending.
type MarketSnapshot struct {
	Slot            uint64
	Bids            []RestingOrder
	Asks            []RestingOrder
	HasOracleOrders bool
}

// Builder owns the per-market tick loop and published snapshots.
type Builder struct {
	idx      *orderindex.Index
	slots    *slotsource.SlotSource
	oracles  oracle.View
	markets  *market.Registry
	interval time.Duration
	log      *slog.Logger

	snapshots map[string]*atomic.Pointer[MarketSnapshot]
}

func New(idx *orderindex.Index, slots *slotsource.SlotSource, oracles oracle.View, markets *market.Registry, interval time.Duration, log *slog.Logger) *Builder {
	b := &Builder{
		idx:       idx,
		slots:     slots,
		oracles:   oracles,
		markets:   markets,
		interval:  interval,
		log:       log,
		snapshots: make(map[string]*atomic.Pointer[MarketSnapshot]),
	}
	for _, m := range markets.All() {
		ptr := &atomic.Pointer[MarketSnapshot]{}
		ptr.Store(&MarketSnapshot{})
		b.snapshots[m.Key()] = ptr
	}
	return b
}

// Snapshot returns the currently published snapshot for a market. Never
// nil — an un-ticked market starts with an empty snapshot.
func (b *Builder) Snapshot(m market.Market) *MarketSnapshot {
	ptr, ok := b.snapshots[m.Key()]
	if !ok {
		return &MarketSnapshot{}
	}
	return ptr.Load()
}

// Run drives the periodic tick loop until ctx is canceled.
func (b *Builder) Run(ctx context.Context) error {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			b.Tick()
		}
	}
}

// Tick performs one rebuild pass across every market, per spec.md §4.2.
// A single malformed order is logged and skipped; the tick proceeds. A
// panic during a market's publish is recovered — the previous snapshot
// for that market remains authoritative.
func (b *Builder) Tick() {
	slot := b.slots.Current()
	now := time.Now().Unix()
	accounts := b.idx.Iterate()

	for _, m := range b.markets.All() {
		b.tickMarket(m, slot, now, accounts)
	}
}

func (b *Builder) tickMarket(m market.Market, slot uint64, now int64, accounts []struct {
	Pubkey  pubkey.PublicKey
	Account *dlobtypes.UserAccount
}) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("book tick panicked, previous snapshot stays authoritative", "market", m.Name, "panic", r)
		}
	}()

	od, hasOracle := b.oracles.Get(m)

	bidTree := btree.NewBTreeG[RestingOrder](bidLess)
	askTree := btree.NewBTreeG[RestingOrder](askLess)
	hasOracleOrders := false

	for _, entry := range accounts {
		account := entry.Account
		for i := range account.Orders {
			order := &account.Orders[i]
			if order.IsEmpty() {
				continue
			}
			if order.MarketType != m.Type || order.MarketIndex != m.Index {
				continue
			}
			if order.MaxTs != 0 && order.MaxTs < now {
				continue
			}

			price, inAuction, ok := func() (p *big.Int, in bool, ok bool) {
				defer func() {
					if r := recover(); r != nil {
						b.log.Warn("skipping malformed order", "market", m.Name, "user", entry.Pubkey.String(), "orderId", order.OrderId, "panic", r)
						p, in, ok = nil, false, false
					}
				}()
				return effectivePrice(order, slot, od, hasOracle)
			}()
			if !ok {
				continue // trigger pending, or malformed order skipped
			}
			if order.OrderType.IsOracleOffset() {
				hasOracleOrders = true
			}

			ro := RestingOrder{
				Maker:          entry.Pubkey,
				Order:          order,
				EffectivePrice: price,
				InAuction:      inAuction,
			}
			if order.Direction.IsBid() {
				bidTree.Set(ro)
			} else {
				askTree.Set(ro)
			}
		}
	}

	bids := make([]RestingOrder, 0, bidTree.Len())
	bidTree.Scan(func(ro RestingOrder) bool {
		bids = append(bids, ro)
		return true
	})
	asks := make([]RestingOrder, 0, askTree.Len())
	askTree.Scan(func(ro RestingOrder) bool {
		asks = append(asks, ro)
		return true
	})

	snap := &MarketSnapshot{Slot: slot, Bids: bids, Asks: asks, HasOracleOrders: hasOracleOrders}
	b.snapshots[m.Key()].Store(snap)
}

func bidLess(a, b RestingOrder) bool {
	if c := a.EffectivePrice.Cmp(b.EffectivePrice); c != 0 {
		return c > 0 // higher price sorts first for bids
	}
	return tiebreakLess(a, b)
}

func askLess(a, b RestingOrder) bool {
	if c := a.EffectivePrice.Cmp(b.EffectivePrice); c != 0 {
		return c < 0 // lower price sorts first for asks
	}
	return tiebreakLess(a, b)
}

func tiebreakLess(a, b RestingOrder) bool {
	if a.Order.Slot != b.Order.Slot {
		return a.Order.Slot < b.Order.Slot
	}
	if a.Order.OrderId != b.Order.OrderId {
		return a.Order.OrderId < b.Order.OrderId
	}
	return bytes.Compare(a.Maker[:], b.Maker[:]) < 0
}

// effectivePrice computes an order's effective price at slot, along with
// whether it is currently inside its auction window, and whether it
// should appear in the book at all (false for an untriggered trigger
// order).
func effectivePrice(o *dlobtypes.Order, slot uint64, od dlobtypes.OraclePriceData, hasOracle bool) (*big.Int, bool, bool) {
	if o.OrderType.IsTrigger() {
		if !hasOracle || od.Price == nil {
			return nil, false, false
		}
		if !triggerSatisfied(o, od.Price) {
			return nil, false, false
		}
		return new(big.Int).Set(o.Price), false, true
	}

	inAuction := o.AuctionDuration > 0 && slot >= o.Slot && slot-o.Slot < uint64(o.AuctionDuration)
	if inAuction {
		return interpolateAuctionPrice(o, slot), true, true
	}

	if o.OrderType.IsOracleOffset() && hasOracle && od.Price != nil {
		return new(big.Int).Add(od.Price, o.OraclePriceOffset), false, true
	}

	return new(big.Int).Set(o.Price), false, true
}

func triggerSatisfied(o *dlobtypes.Order, oraclePrice *big.Int) bool {
	if o.TriggerCondition == dlobtypes.TriggerAbove {
		return oraclePrice.Cmp(o.TriggerPrice) > 0
	}
	return oraclePrice.Cmp(o.TriggerPrice) < 0
}

func interpolateAuctionPrice(o *dlobtypes.Order, slot uint64) *big.Int {
	elapsed := slot - o.Slot
	diff := new(big.Int).Sub(o.AuctionEndPrice, o.AuctionStartPrice)
	num := new(big.Int).Mul(diff, new(big.Int).SetUint64(elapsed))
	delta := new(big.Int).Quo(num, new(big.Int).SetUint64(uint64(o.AuctionDuration)))
	return new(big.Int).Add(o.AuctionStartPrice, delta)
}

// IsRestingMaker implements the "resting-only semantics for makers" rule
// of spec.md §4.2: past the auction window, and (for perps, when an
// oracle is wired) on the passive side of the oracle price — a bid at or
// below it, an ask at or above it.
func IsRestingMaker(ro RestingOrder, isBid bool, m market.Market, od dlobtypes.OraclePriceData, hasOracle bool) bool {
	if ro.InAuction {
		return false
	}
	if m.Type != market.Perp || !hasOracle || od.Price == nil {
		return true
	}
	if isBid {
		return ro.EffectivePrice.Cmp(od.Price) <= 0
	}
	return ro.EffectivePrice.Cmp(od.Price) >= 0
}
