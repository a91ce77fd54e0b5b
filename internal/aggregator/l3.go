package aggregator

import (
	"math/big"

	"github.com/litebittech/cex/services/dlob/internal/book"
	"github.com/litebittech/cex/services/dlob/internal/dlobtypes"
	"github.com/litebittech/cex/services/dlob/internal/pubkey"
)

// L3Entry is one individual resting order (spec.md §4.4) — no coalescing,
// no vAMM, no fallbacks, just the book as-is.
type L3Entry struct {
	Maker     pubkey.PublicKey
	OrderId   uint32
	Price     *big.Int
	Size      *big.Int
	Side      dlobtypes.Direction
	InAuction bool
}

type L3Response struct {
	Slot uint64
	Bids []L3Entry
	Asks []L3Entry
}

// BuildL3 returns every resting order individually, in book order.
func BuildL3(snap *book.MarketSnapshot) L3Response {
	return L3Response{
		Slot: snap.Slot,
		Bids: toEntries(snap.Bids),
		Asks: toEntries(snap.Asks),
	}
}

func toEntries(orders []book.RestingOrder) []L3Entry {
	out := make([]L3Entry, len(orders))
	for i, ro := range orders {
		out[i] = L3Entry{
			Maker:     ro.Maker,
			OrderId:   ro.Order.OrderId,
			Price:     ro.EffectivePrice,
			Size:      remainingSize(ro.Order),
			Side:      ro.Order.Direction,
			InAuction: ro.InAuction,
		}
	}
	return out
}
