package vamm_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litebittech/cex/services/dlob/internal/levelgen"
	"github.com/litebittech/cex/services/dlob/internal/vamm"
)

func testCurve() *vamm.Curve {
	return vamm.NewCurve(
		big.NewInt(1_000_000_000_000),
		big.NewInt(1_000_000_000_000),
		big.NewInt(1),
		big.NewInt(1_000_000),
		big.NewInt(1_000_000_000),
		big.NewInt(100_000_000),
	)
}

func drain(g levelgen.Generator) []levelgen.Level {
	var out []levelgen.Level
	for {
		l, ok := g.Next()
		if !ok {
			return out
		}
		out = append(out, l)
	}
}

func TestGenerateBidsProduceRequestedCount(t *testing.T) {
	c := testCurve()
	levels := drain(c.Generate(true, 5))
	assert.Len(t, levels, 5)
}

func TestGenerateBidsDescendInPrice(t *testing.T) {
	c := testCurve()
	levels := drain(c.Generate(true, 5))
	require.Len(t, levels, 5)
	for i := 1; i < len(levels); i++ {
		assert.True(t, levels[i].Price.Cmp(levels[i-1].Price) < 0, "bid levels must walk away from mark price downward")
	}
}

func TestGenerateAsksAscendInPrice(t *testing.T) {
	c := testCurve()
	levels := drain(c.Generate(false, 5))
	require.Len(t, levels, 5)
	for i := 1; i < len(levels); i++ {
		assert.True(t, levels[i].Price.Cmp(levels[i-1].Price) > 0, "ask levels must walk away from mark price upward")
	}
}

func TestGenerateAllSizesArePositive(t *testing.T) {
	c := testCurve()
	for _, l := range drain(c.Generate(true, 3)) {
		assert.True(t, l.Size.Sign() > 0)
	}
}
