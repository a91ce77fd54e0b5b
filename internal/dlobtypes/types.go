// Package dlobtypes defines the on-chain-shaped data model the DLOB engine
// reconstructs: orders embedded in user accounts, all numeric fields
// arbitrary-precision (math/big.Int per spec mandate — never floats).
//
// Grounded on the Drift SDK reference fragments under other_examples/
// (types.go, DLOBOrder.go) for field shape and enum vocabulary.
package dlobtypes

import (
	"math/big"

	"github.com/litebittech/cex/services/dlob/internal/market"
	"github.com/litebittech/cex/services/dlob/internal/pubkey"
)

type OrderStatus int

const (
	StatusInit OrderStatus = iota // empty slot — excluded from all outputs
	StatusOpen
	StatusCanceled
	StatusFilled
)

func (s OrderStatus) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusCanceled:
		return "canceled"
	case StatusFilled:
		return "filled"
	default:
		return "init"
	}
}

type OrderType int

const (
	OrderTypeLimit OrderType = iota
	OrderTypeMarket
	OrderTypeTriggerLimit
	OrderTypeTriggerMarket
	OrderTypeOracle
)

func (t OrderType) String() string {
	switch t {
	case OrderTypeMarket:
		return "market"
	case OrderTypeTriggerLimit:
		return "triggerLimit"
	case OrderTypeTriggerMarket:
		return "triggerMarket"
	case OrderTypeOracle:
		return "oracle"
	default:
		return "limit"
	}
}

func (t OrderType) IsTrigger() bool {
	return t == OrderTypeTriggerLimit || t == OrderTypeTriggerMarket
}

func (t OrderType) IsOracleOffset() bool {
	return t == OrderTypeOracle
}

type Direction int

const (
	Long Direction = iota
	Short
)

func (d Direction) String() string {
	if d == Short {
		return "short"
	}
	return "long"
}

// IsBid reports whether this direction sits on the bid (buy) side.
func (d Direction) IsBid() bool { return d == Long }

type TriggerCondition int

const (
	TriggerAbove TriggerCondition = iota
	TriggerBelow
)

// PositionDirection mirrors Direction for an order's existing-position hint.
type PositionDirection = Direction

// Order is embedded in a UserAccount; matches spec.md §3 field-for-field.
type Order struct {
	OrderId     uint32
	UserOrderId uint8

	MarketType  market.Type
	MarketIndex uint16

	Status    OrderStatus
	OrderType OrderType
	Direction Direction

	Price                  *big.Int
	TriggerPrice           *big.Int
	OraclePriceOffset      *big.Int
	BaseAssetAmount        *big.Int
	BaseAssetAmountFilled  *big.Int
	QuoteAssetAmount       *big.Int
	QuoteAssetAmountFilled *big.Int

	Slot            uint64 // posting slot
	AuctionStartPrice *big.Int
	AuctionEndPrice   *big.Int
	AuctionDuration   uint32 // in slots
	MaxTs             int64  // expiry, unix seconds; 0 means no expiry

	TriggerCondition          TriggerCondition
	PostOnly                  bool
	ReduceOnly                bool
	ImmediateOrCancel         bool
	ExistingPositionDirection PositionDirection

	// TriggeredAt holds the slot at which a trigger order's condition was
	// satisfied. Nothing in this module sets it, so it stays 0; it appears
	// in /orders/json/raw as part of the raw order, and /orders/json does
	// not include it.
	TriggeredAt uint64
}

func (o *Order) IsEmpty() bool { return o.Status == StatusInit }

// UserAccount holds a fixed-size array of orders plus bookkeeping fields.
type UserAccount struct {
	Pubkey    pubkey.PublicKey
	Authority pubkey.PublicKey
	Orders    []Order

	// Slot is the slot at which this account state was last observed.
	Slot uint64
}

type OracleSource int

const (
	OracleSourcePyth OracleSource = iota
	OracleSourceSwitchboard
	OracleSourcePrelaunch
)

func (s OracleSource) String() string {
	switch s {
	case OracleSourceSwitchboard:
		return "switchboard"
	case OracleSourcePrelaunch:
		return "prelaunch"
	default:
		return "pyth"
	}
}

// OraclePriceData is the per-market reference price OracleView exposes.
type OraclePriceData struct {
	Price      *big.Int
	Confidence *big.Int
	TWAP       *big.Int
	Source     OracleSource
	Slot       uint64
}
