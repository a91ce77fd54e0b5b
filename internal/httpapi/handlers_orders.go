package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/litebittech/cex/services/dlob/internal/codec"
	"github.com/litebittech/cex/services/dlob/internal/dlobtypes"
	"github.com/litebittech/cex/services/dlob/internal/market"
	"github.com/litebittech/cex/services/dlob/internal/pubkey"
)

type orderPair struct {
	User  pubkey.PublicKey
	Order *dlobtypes.Order
}

type orderPairRaw struct {
	User  string           `json:"user"`
	Order *dlobtypes.Order `json:"order"`
}

type oracleEntryRaw struct {
	Market market.Market             `json:"market"`
	Oracle dlobtypes.OraclePriceData `json:"oracle"`
}

// collectOrders gathers every non-init order across OrderIndex, optionally
// filtered to one market.
func (d *Deps) collectOrders(filter *market.Market) []orderPair {
	entries := d.Orders.Iterate()
	out := make([]orderPair, 0, len(entries))
	for _, e := range entries {
		for i := range e.Account.Orders {
			o := &e.Account.Orders[i]
			if o.IsEmpty() {
				continue // status=init, excluded from all outputs (invariant 1)
			}
			if filter != nil && (o.MarketType != filter.Type || o.MarketIndex != filter.Index) {
				continue
			}
			out = append(out, orderPair{User: e.Pubkey, Order: o})
		}
	}
	return out
}

func (d *Deps) collectOracles() []oracleEntryRaw {
	markets := d.Markets.All()
	out := make([]oracleEntryRaw, 0, len(markets))
	for _, m := range markets {
		if od, ok := d.Oracles.Get(m); ok {
			out = append(out, oracleEntryRaw{Market: m, Oracle: od})
		}
	}
	return out
}

// handleOrdersJSONRaw emits big.Int fields with default json.Marshal
// numeric behavior — an intentional wire-compatibility leak, preserved
// verbatim per spec.md §9's open questions.
func (d *Deps) handleOrdersJSONRaw(c *gin.Context) {
	orders := d.collectOrders(nil)
	pairs := make([]orderPairRaw, len(orders))
	for i, o := range orders {
		pairs[i] = orderPairRaw{User: o.User.String(), Order: o.Order}
	}
	c.JSON(http.StatusOK, gin.H{
		"slot":    d.Slots.Current(),
		"oracles": d.collectOracles(),
		"orders":  pairs,
	})
}

// handleOrdersJSON is the same data as the raw endpoint, but every bigint
// stringified and every enum named (spec.md §6).
func (d *Deps) handleOrdersJSON(c *gin.Context) {
	orders := d.collectOrders(nil)
	pairs := make([]gin.H, len(orders))
	for i, o := range orders {
		pairs[i] = gin.H{"user": o.User.String(), "order": orderToJSON(o.Order)}
	}
	c.JSON(http.StatusOK, gin.H{
		"slot":    d.Slots.Current(),
		"oracles": d.collectOracles(),
		"orders":  pairs,
	})
}

func orderToJSON(o *dlobtypes.Order) gin.H {
	return gin.H{
		"orderId":                   o.OrderId,
		"userOrderId":               o.UserOrderId,
		"marketType":                string(o.MarketType),
		"marketIndex":               o.MarketIndex,
		"status":                    o.Status.String(),
		"orderType":                 o.OrderType.String(),
		"direction":                 o.Direction.String(),
		"price":                     bigStr(o.Price),
		"triggerPrice":              bigStr(o.TriggerPrice),
		"oraclePriceOffset":         bigStr(o.OraclePriceOffset),
		"baseAssetAmount":           bigStr(o.BaseAssetAmount),
		"baseAssetAmountFilled":     bigStr(o.BaseAssetAmountFilled),
		"quoteAssetAmount":          bigStr(o.QuoteAssetAmount),
		"quoteAssetAmountFilled":    bigStr(o.QuoteAssetAmountFilled),
		"slot":                      o.Slot,
		"auctionStartPrice":         bigStr(o.AuctionStartPrice),
		"auctionEndPrice":           bigStr(o.AuctionEndPrice),
		"auctionDuration":           o.AuctionDuration,
		"maxTs":                     o.MaxTs,
		"triggerCondition":          triggerConditionName(o.TriggerCondition),
		"postOnly":                  o.PostOnly,
		"reduceOnly":                o.ReduceOnly,
		"immediateOrCancel":         o.ImmediateOrCancel,
		"existingPositionDirection": o.ExistingPositionDirection.String(),
	}
}

func triggerConditionName(t dlobtypes.TriggerCondition) string {
	if t == dlobtypes.TriggerBelow {
		return "below"
	}
	return "above"
}

// handleOrdersIDL returns the raw concatenated codec buffer — the
// self-consistent stand-in for the chain program's binary IDL (spec.md §6,
// §1's scope note on why bit-identical reproduction isn't attempted here).
func (d *Deps) handleOrdersIDL(c *gin.Context) {
	orders := d.collectOrders(nil)
	buf := make([]byte, 0, len(orders)*codec.RecordSize)
	for _, o := range orders {
		record, err := codec.EncodeRecord(o.User, o.Order)
		if err != nil {
			d.Log.Warn("skipping order that failed to encode", "error", err)
			continue
		}
		buf = append(buf, record...)
	}
	c.Data(http.StatusOK, "application/octet-stream", buf)
}

// handleOrdersIDLWithSlot returns {slot, data: base64}, optionally filtered
// to one market.
func (d *Deps) handleOrdersIDLWithSlot(c *gin.Context) {
	var filter *market.Market
	if c.Query("marketName") != "" || (c.Query("marketIndex") != "" && c.Query("marketType") != "") {
		m, err := resolveMarket(d.Markets, c.Query("marketName"), c.Query("marketIndex"), c.Query("marketType"))
		if err != nil {
			respondError(c, err)
			return
		}
		filter = &m
	}

	orders := d.collectOrders(filter)
	records := make([][]byte, 0, len(orders))
	for _, o := range orders {
		record, err := codec.EncodeRecord(o.User, o.Order)
		if err != nil {
			d.Log.Warn("skipping order that failed to encode", "error", err)
			continue
		}
		records = append(records, record)
	}
	slot, data := codec.EncodeIDLWithSlot(d.Slots.Current(), records)
	c.JSON(http.StatusOK, gin.H{"slot": slot, "data": data})
}
