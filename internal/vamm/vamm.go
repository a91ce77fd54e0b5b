// Package vamm implements the virtual-AMM synthetic liquidity generator
// (spec.md §4.6, §9): a deterministic constant-product curve contributing
// additional price levels to perp markets' L2 depth. Reserve math is done
// in shopspring/decimal (the corpus's dominant human-decimal numeric
// type) before the result is rebased onto chain-precision big integers —
// canonical Order fields stay math/big.Int throughout, per spec mandate.
package vamm

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/litebittech/cex/services/dlob/internal/levelgen"
)

// Curve is a constant-product (x*y=k) virtual AMM: baseAssetReserve *
// quoteAssetReserve = invariant, pegMultiplier rescales the quote side to
// the market's real-world price magnitude.
type Curve struct {
	BaseAssetReserve  decimal.Decimal
	QuoteAssetReserve decimal.Decimal
	PegMultiplier     decimal.Decimal

	PricePrecision decimal.Decimal
	BasePrecision  decimal.Decimal

	// StepSize is the base-asset quantity each synthetic level represents.
	StepSize decimal.Decimal
}

func NewCurve(baseReserve, quoteReserve, peg, pricePrecision, basePrecision, stepSize *big.Int) *Curve {
	return &Curve{
		BaseAssetReserve:  decimal.NewFromBigInt(baseReserve, 0),
		QuoteAssetReserve: decimal.NewFromBigInt(quoteReserve, 0),
		PegMultiplier:     decimal.NewFromBigInt(peg, 0),
		PricePrecision:    decimal.NewFromBigInt(pricePrecision, 0),
		BasePrecision:     decimal.NewFromBigInt(basePrecision, 0),
		StepSize:          decimal.NewFromBigInt(stepSize, 0),
	}
}

func (c *Curve) markPrice() decimal.Decimal {
	if c.BaseAssetReserve.IsZero() {
		return decimal.Zero
	}
	return c.QuoteAssetReserve.Mul(c.PegMultiplier).Div(c.BaseAssetReserve)
}

// Generate produces up to numLevels synthetic levels walking the curve
// away from the mark price: bids below mark, asks above, each level's
// size a constant StepSize of base asset, price moving along the
// constant-product curve as if that size were traded against the curve.
func (c *Curve) Generate(isBid bool, numLevels int) levelgen.Generator {
	levels := make([]levelgen.Level, 0, numLevels)
	base := c.BaseAssetReserve
	quote := c.QuoteAssetReserve
	k := base.Mul(quote)

	for i := 0; i < numLevels; i++ {
		var newBase decimal.Decimal
		if isBid {
			// curve buys base from the trader: base reserve grows.
			newBase = base.Add(c.StepSize)
		} else {
			newBase = base.Sub(c.StepSize)
			if newBase.Sign() <= 0 {
				break
			}
		}
		newQuote := k.Div(newBase)
		price := newQuote.Mul(c.PegMultiplier).Div(newBase)

		priceScaled := price.Mul(c.PricePrecision).Truncate(0)
		sizeScaled := c.StepSize.Mul(c.BasePrecision).Truncate(0)

		levels = append(levels, levelgen.Level{
			Price: priceScaled.BigInt(),
			Size:  sizeScaled.BigInt(),
		})

		base = newBase
		quote = newQuote
	}

	return levelgen.NewSlice(levels)
}
