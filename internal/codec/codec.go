// Package codec implements the DLOB order wire encoding of spec.md §6.
// Bit-identical reproduction of the real chain program's IDL layout is
// explicitly not required (the chain program's IDL definition is an
// external collaborator this repo has no binding to) — this is a
// self-consistent, round-trip-correct binary encoder for
// `{user pubkey, order}` tuples, fixed-width so /orders/idl's concatenated
// buffer can be split back into records without a length prefix.
package codec

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/litebittech/cex/services/dlob/internal/dlobtypes"
	"github.com/litebittech/cex/services/dlob/internal/market"
	"github.com/litebittech/cex/services/dlob/internal/pubkey"
)

// bigIntWidth is the fixed byte width every big.Int field is packed to.
// Chain-native amounts fit comfortably in 16 bytes (128 bits); a value that
// doesn't is a programming error, not a legitimate order.
const bigIntWidth = 16

// RecordSize is the fixed size in bytes of one encoded {user, order} tuple.
const RecordSize = 32 + // user pubkey
	4 + 1 + 2 + 2 + 1 + 1 + 1 + // orderId, userOrderId, marketType, marketIndex, status, orderType, direction
	bigIntWidth*9 + // price, triggerPrice, oraclePriceOffset, baseAssetAmount, baseAssetAmountFilled, quoteAssetAmount, quoteAssetAmountFilled, auctionStartPrice, auctionEndPrice
	8 + 4 + 8 + // slot, auctionDuration, maxTs
	1 + 1 + 1 + 1 + 1 // triggerCondition, postOnly, reduceOnly, immediateOrCancel, existingPositionDirection

// EncodeRecord packs one {user, order} tuple into a RecordSize-byte buffer.
func EncodeRecord(user pubkey.PublicKey, o *dlobtypes.Order) ([]byte, error) {
	buf := make([]byte, RecordSize)
	pos := 0

	copy(buf[pos:pos+32], user[:])
	pos += 32

	binary.BigEndian.PutUint32(buf[pos:], o.OrderId)
	pos += 4
	buf[pos] = o.UserOrderId
	pos++

	marketType, err := encodeMarketType(o.MarketType)
	if err != nil {
		return nil, err
	}
	binary.BigEndian.PutUint16(buf[pos:], marketType)
	pos += 2
	binary.BigEndian.PutUint16(buf[pos:], o.MarketIndex)
	pos += 2

	buf[pos] = byte(o.Status)
	pos++
	buf[pos] = byte(o.OrderType)
	pos++
	buf[pos] = byte(o.Direction)
	pos++

	for _, v := range []*big.Int{
		o.Price, o.TriggerPrice, o.OraclePriceOffset, o.BaseAssetAmount,
		o.BaseAssetAmountFilled, o.QuoteAssetAmount, o.QuoteAssetAmountFilled,
		o.AuctionStartPrice, o.AuctionEndPrice,
	} {
		if err := putBigInt(buf[pos:pos+bigIntWidth], v); err != nil {
			return nil, err
		}
		pos += bigIntWidth
	}

	binary.BigEndian.PutUint64(buf[pos:], o.Slot)
	pos += 8
	binary.BigEndian.PutUint32(buf[pos:], o.AuctionDuration)
	pos += 4
	binary.BigEndian.PutUint64(buf[pos:], uint64(o.MaxTs))
	pos += 8

	buf[pos] = byte(o.TriggerCondition)
	pos++
	buf[pos] = boolByte(o.PostOnly)
	pos++
	buf[pos] = boolByte(o.ReduceOnly)
	pos++
	buf[pos] = boolByte(o.ImmediateOrCancel)
	pos++
	buf[pos] = byte(o.ExistingPositionDirection)
	pos++

	return buf, nil
}

// DecodeRecord is the inverse of EncodeRecord; used by tests to assert the
// round trip and available to callers needing to verify a buffer.
func DecodeRecord(buf []byte) (pubkey.PublicKey, *dlobtypes.Order, error) {
	if len(buf) != RecordSize {
		return pubkey.PublicKey{}, nil, fmt.Errorf("codec: record must be %d bytes, got %d", RecordSize, len(buf))
	}
	var user pubkey.PublicKey
	pos := 0
	copy(user[:], buf[pos:pos+32])
	pos += 32

	o := &dlobtypes.Order{}
	o.OrderId = binary.BigEndian.Uint32(buf[pos:])
	pos += 4
	o.UserOrderId = buf[pos]
	pos++

	marketType, err := decodeMarketType(binary.BigEndian.Uint16(buf[pos:]))
	if err != nil {
		return pubkey.PublicKey{}, nil, err
	}
	o.MarketType = marketType
	pos += 2
	o.MarketIndex = binary.BigEndian.Uint16(buf[pos:])
	pos += 2

	o.Status = dlobtypes.OrderStatus(buf[pos])
	pos++
	o.OrderType = dlobtypes.OrderType(buf[pos])
	pos++
	o.Direction = dlobtypes.Direction(buf[pos])
	pos++

	fields := []**big.Int{
		&o.Price, &o.TriggerPrice, &o.OraclePriceOffset, &o.BaseAssetAmount,
		&o.BaseAssetAmountFilled, &o.QuoteAssetAmount, &o.QuoteAssetAmountFilled,
		&o.AuctionStartPrice, &o.AuctionEndPrice,
	}
	for _, f := range fields {
		*f = getBigInt(buf[pos : pos+bigIntWidth])
		pos += bigIntWidth
	}

	o.Slot = binary.BigEndian.Uint64(buf[pos:])
	pos += 8
	o.AuctionDuration = binary.BigEndian.Uint32(buf[pos:])
	pos += 4
	o.MaxTs = int64(binary.BigEndian.Uint64(buf[pos:]))
	pos += 8

	o.TriggerCondition = dlobtypes.TriggerCondition(buf[pos])
	pos++
	o.PostOnly = buf[pos] != 0
	pos++
	o.ReduceOnly = buf[pos] != 0
	pos++
	o.ImmediateOrCancel = buf[pos] != 0
	pos++
	o.ExistingPositionDirection = dlobtypes.Direction(buf[pos])
	pos++

	return user, o, nil
}

// EncodeIDLWithSlot returns the {slot, data} payload of /orders/idlWithSlot:
// data is the base64 encoding of the concatenated record buffer.
func EncodeIDLWithSlot(slot uint64, records [][]byte) (uint64, string) {
	total := 0
	for _, r := range records {
		total += len(r)
	}
	buf := make([]byte, 0, total)
	for _, r := range records {
		buf = append(buf, r...)
	}
	return slot, base64.StdEncoding.EncodeToString(buf)
}

func putBigInt(dst []byte, v *big.Int) error {
	if v == nil {
		return nil
	}
	if v.Sign() < 0 {
		return fmt.Errorf("codec: negative value %s cannot be encoded", v)
	}
	b := v.Bytes()
	if len(b) > len(dst) {
		return fmt.Errorf("codec: value %s exceeds %d-byte field width", v, len(dst))
	}
	copy(dst[len(dst)-len(b):], b)
	return nil
}

func getBigInt(src []byte) *big.Int {
	return new(big.Int).SetBytes(src)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func encodeMarketType(t market.Type) (uint16, error) {
	switch t {
	case market.Perp:
		return 0, nil
	case market.Spot:
		return 1, nil
	default:
		return 0, fmt.Errorf("codec: unknown market type %q", t)
	}
}

func decodeMarketType(v uint16) (market.Type, error) {
	switch v {
	case 0:
		return market.Perp, nil
	case 1:
		return market.Spot, nil
	default:
		return "", fmt.Errorf("codec: unknown encoded market type %d", v)
	}
}
