package codec_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litebittech/cex/services/dlob/internal/codec"
	"github.com/litebittech/cex/services/dlob/internal/dlobtypes"
	"github.com/litebittech/cex/services/dlob/internal/market"
	"github.com/litebittech/cex/services/dlob/internal/pubkey"
)

func sampleOrder() *dlobtypes.Order {
	return &dlobtypes.Order{
		OrderId:                   123,
		UserOrderId:               7,
		MarketType:                market.Spot,
		MarketIndex:               1,
		Status:                    dlobtypes.StatusOpen,
		OrderType:                 dlobtypes.OrderTypeTriggerLimit,
		Direction:                 dlobtypes.Short,
		Price:                     big.NewInt(123_456_789),
		TriggerPrice:              big.NewInt(1),
		OraclePriceOffset:         big.NewInt(2),
		BaseAssetAmount:           big.NewInt(5_000_000_000),
		BaseAssetAmountFilled:     big.NewInt(1_000_000_000),
		QuoteAssetAmount:          big.NewInt(9),
		QuoteAssetAmountFilled:    big.NewInt(3),
		Slot:                      9001,
		AuctionStartPrice:         big.NewInt(10),
		AuctionEndPrice:           big.NewInt(20),
		AuctionDuration:           30,
		MaxTs:                     1_700_000_000,
		TriggerCondition:          dlobtypes.TriggerBelow,
		PostOnly:                  true,
		ReduceOnly:                false,
		ImmediateOrCancel:         true,
		ExistingPositionDirection: dlobtypes.Long,
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	user := pubkey.FromBytes([]byte{1, 2, 3, 4})
	o := sampleOrder()

	buf, err := codec.EncodeRecord(user, o)
	require.NoError(t, err)
	assert.Len(t, buf, codec.RecordSize)

	gotUser, got, err := codec.DecodeRecord(buf)
	require.NoError(t, err)
	assert.Equal(t, user, gotUser)
	assert.Equal(t, o.OrderId, got.OrderId)
	assert.Equal(t, o.MarketType, got.MarketType)
	assert.Equal(t, o.MarketIndex, got.MarketIndex)
	assert.Equal(t, o.Price.String(), got.Price.String())
	assert.Equal(t, o.BaseAssetAmount.String(), got.BaseAssetAmount.String())
	assert.Equal(t, o.BaseAssetAmountFilled.String(), got.BaseAssetAmountFilled.String())
	assert.Equal(t, o.Slot, got.Slot)
	assert.Equal(t, o.AuctionDuration, got.AuctionDuration)
	assert.Equal(t, o.MaxTs, got.MaxTs)
	assert.Equal(t, o.TriggerCondition, got.TriggerCondition)
	assert.True(t, got.PostOnly)
	assert.False(t, got.ReduceOnly)
	assert.True(t, got.ImmediateOrCancel)
	assert.Equal(t, o.ExistingPositionDirection, got.ExistingPositionDirection)
}

func TestEncodeRejectsNegativeValue(t *testing.T) {
	user := pubkey.FromBytes([]byte{1})
	o := sampleOrder()
	o.Price = big.NewInt(-1)

	_, err := codec.EncodeRecord(user, o)
	assert.Error(t, err)
}

func TestEncodeRejectsOversizedValue(t *testing.T) {
	user := pubkey.FromBytes([]byte{1})
	o := sampleOrder()
	huge := new(big.Int).Lsh(big.NewInt(1), 200) // far past the 16-byte field width
	o.Price = huge

	_, err := codec.EncodeRecord(user, o)
	assert.Error(t, err)
}

func TestEncodeIDLWithSlotConcatenatesAndBase64Encodes(t *testing.T) {
	user := pubkey.FromBytes([]byte{1})
	record, err := codec.EncodeRecord(user, sampleOrder())
	require.NoError(t, err)

	slot, data := codec.EncodeIDLWithSlot(777, [][]byte{record, record})
	assert.Equal(t, uint64(777), slot)
	assert.NotEmpty(t, data)
}
