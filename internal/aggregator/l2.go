// Package aggregator implements the L2 and L3 Aggregator components
// (spec.md §4.3, §4.4): merging resting orders, vAMM, and fallback venue
// liquidity into depth-limited, optionally price-bucketed snapshots.
package aggregator

import (
	"math/big"
	"sort"

	"github.com/litebittech/cex/services/dlob/internal/book"
	"github.com/litebittech/cex/services/dlob/internal/dlobtypes"
	"github.com/litebittech/cex/services/dlob/internal/levelgen"
	"github.com/litebittech/cex/services/dlob/internal/market"
)

// L2Level is one aggregated price bucket, sources tracking each venue's
// contribution (spec.md §4.3 step 4).
type L2Level struct {
	Price   *big.Int
	Size    *big.Int
	Sources map[string]*big.Int
}

type FallbackSource struct {
	Name string
	Bids levelgen.Generator
	Asks levelgen.Generator
}

// L2Request mirrors the getL2 input of spec.md §4.3. Depth -1 means
// unlimited.
type L2Request struct {
	Depth         int
	IncludeVamm   bool
	NumVammOrders int
	Fallbacks     []FallbackSource
	Grouping      *big.Int // nil = no grouping
}

type L2Response struct {
	Slot uint64
	Bids []L2Level
	Asks []L2Level
}

const sourceDLOB = "dlob"
const sourceVamm = "vamm"

// BuildL2 runs the algorithm of spec.md §4.3 against one market's
// published snapshot.
func BuildL2(snap *book.MarketSnapshot, m market.Market, req L2Request, vammBids, vammAsks levelgen.Generator) L2Response {
	drawDepth := req.Depth
	if req.Grouping != nil {
		drawDepth = -1 // grouping always draws the full book first
	}

	bidAcc := collectSide(snap.Bids, drawDepth)
	askAcc := collectSide(snap.Asks, drawDepth)

	if req.IncludeVamm && m.Type == market.Perp && vammBids != nil && vammAsks != nil {
		mergeGenerator(bidAcc, vammBids, sourceVamm, req.NumVammOrders)
		mergeGenerator(askAcc, vammAsks, sourceVamm, req.NumVammOrders)
	}
	for _, fb := range req.Fallbacks {
		if fb.Bids != nil {
			mergeGenerator(bidAcc, fb.Bids, fb.Name, -1)
		}
		if fb.Asks != nil {
			mergeGenerator(askAcc, fb.Asks, fb.Name, -1)
		}
	}

	bids := flatten(bidAcc, true)
	asks := flatten(askAcc, false)

	if req.Grouping != nil {
		bids = groupLevels(bids, req.Grouping, true)
		asks = groupLevels(asks, req.Grouping, false)
		if req.Depth >= 0 {
			bids = trim(bids, req.Depth)
			asks = trim(asks, req.Depth)
		}
	}

	return L2Response{Slot: snap.Slot, Bids: bids, Asks: asks}
}

func remainingSize(o *dlobtypes.Order) *big.Int {
	return new(big.Int).Sub(o.BaseAssetAmount, o.BaseAssetAmountFilled)
}

type levelAcc struct {
	order []*L2Level
	index map[string]*L2Level
}

func newLevelAcc() *levelAcc {
	return &levelAcc{index: make(map[string]*L2Level)}
}

func (a *levelAcc) add(price, size *big.Int, source string) {
	if size.Sign() <= 0 {
		return
	}
	key := price.String()
	lvl, ok := a.index[key]
	if !ok {
		lvl = &L2Level{Price: new(big.Int).Set(price), Size: big.NewInt(0), Sources: map[string]*big.Int{}}
		a.index[key] = lvl
		a.order = append(a.order, lvl)
	}
	lvl.Size.Add(lvl.Size, size)
	if s, ok := lvl.Sources[source]; ok {
		s.Add(s, size)
	} else {
		lvl.Sources[source] = new(big.Int).Set(size)
	}
}

// collectSide draws resting orders from the book side, stopping only on a
// price boundary once `depth` distinct levels have been collected (depth
// -1 means unlimited).
func collectSide(orders []book.RestingOrder, depth int) *levelAcc {
	acc := newLevelAcc()
	for _, ro := range orders {
		key := ro.EffectivePrice.String()
		if depth >= 0 {
			if _, exists := acc.index[key]; !exists && len(acc.order) >= depth {
				break
			}
		}
		acc.add(ro.EffectivePrice, remainingSize(ro.Order), sourceDLOB)
	}
	return acc
}

// mergeGenerator drains up to `limit` levels from a generator into the
// accumulator (limit -1 means drain fully).
func mergeGenerator(acc *levelAcc, gen levelgen.Generator, source string, limit int) {
	for i := 0; limit < 0 || i < limit; i++ {
		lvl, ok := gen.Next()
		if !ok {
			return
		}
		acc.add(lvl.Price, lvl.Size, source)
	}
}

func flatten(acc *levelAcc, isBid bool) []L2Level {
	levels := acc.order
	sort.Slice(levels, func(i, j int) bool {
		c := levels[i].Price.Cmp(levels[j].Price)
		if isBid {
			return c > 0
		}
		return c < 0
	})
	out := make([]L2Level, len(levels))
	for i, l := range levels {
		out[i] = *l
	}
	return out
}

func trim(levels []L2Level, depth int) []L2Level {
	if depth >= 0 && len(levels) > depth {
		return levels[:depth]
	}
	return levels
}

// groupLevels buckets prices into intervals of width g — bids round down,
// asks round up — summing sizes and per-source contributions, per
// spec.md §4.3 step 5 / scenario S5.
func groupLevels(levels []L2Level, g *big.Int, isBid bool) []L2Level {
	acc := newLevelAcc()
	for _, l := range levels {
		bucket := bucketPrice(l.Price, g, isBid)
		for source, size := range l.Sources {
			acc.add(bucket, size, source)
		}
	}
	return flatten(acc, isBid)
}

func bucketPrice(price, g *big.Int, roundDown bool) *big.Int {
	q, r := new(big.Int).QuoRem(price, g, new(big.Int))
	if roundDown {
		return new(big.Int).Mul(q, g)
	}
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return new(big.Int).Mul(q, g)
}
