package httpapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseL2QueryDefaultDepth(t *testing.T) {
	p, err := parseL2Query(testRegistry(), l2Query{marketName: "SOL-PERP"})
	require.NoError(t, err)
	assert.Equal(t, 10, p.Depth)
	assert.Nil(t, p.Grouping)
}

// grouping set, no explicit depth -> depth defaults to -1 (unlimited).
func TestParseL2QueryGroupingWithoutDepthDefaultsUnlimited(t *testing.T) {
	p, err := parseL2Query(testRegistry(), l2Query{marketName: "SOL-PERP", grouping: "10"})
	require.NoError(t, err)
	assert.Equal(t, -1, p.Depth)
}

// grouping set AND an explicit depth -> the caller's depth is honored as
// the post-grouping trim, not overridden to -1.
func TestParseL2QueryGroupingWithExplicitDepthIsHonored(t *testing.T) {
	p, err := parseL2Query(testRegistry(), l2Query{marketName: "SOL-PERP", grouping: "10", depth: "5"})
	require.NoError(t, err)
	assert.Equal(t, 5, p.Depth)
}

func TestParseL2QueryForcesVammOffForSpot(t *testing.T) {
	p, err := parseL2Query(testRegistry(), l2Query{marketName: "USDC-SPOT", includeVamm: "true"})
	require.NoError(t, err)
	assert.False(t, p.IncludeVamm, "isSpot must force includeVamm=false even when the caller asks for it")
}

func TestParseL2QueryRejectsNonPositiveGrouping(t *testing.T) {
	_, err := parseL2Query(testRegistry(), l2Query{marketName: "SOL-PERP", grouping: "0"})
	assert.Error(t, err)
	_, err = parseL2Query(testRegistry(), l2Query{marketName: "SOL-PERP", grouping: "-5"})
	assert.Error(t, err)
}

func TestParseL2QueryPropagatesMarketResolutionError(t *testing.T) {
	_, err := parseL2Query(testRegistry(), l2Query{})
	assert.Error(t, err)
}
