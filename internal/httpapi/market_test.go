package httpapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litebittech/cex/services/dlob/internal/market"
)

func testRegistry() *market.Registry {
	return market.NewRegistry([]market.Market{
		{Type: market.Perp, Index: 0, Name: "SOL-PERP"},
		{Type: market.Spot, Index: 1, Name: "USDC-SPOT"},
	})
}

func TestResolveMarketByName(t *testing.T) {
	m, err := resolveMarket(testRegistry(), "sol-perp", "", "")
	require.NoError(t, err)
	assert.Equal(t, market.Perp, m.Type)
}

func TestResolveMarketByIndexAndType(t *testing.T) {
	m, err := resolveMarket(testRegistry(), "", "1", "spot")
	require.NoError(t, err)
	assert.Equal(t, uint16(1), m.Index)
}

func TestResolveMarketRequiresSelector(t *testing.T) {
	_, err := resolveMarket(testRegistry(), "", "", "")
	assert.Error(t, err)
}

func TestResolveMarketUnknownName(t *testing.T) {
	_, err := resolveMarket(testRegistry(), "DOES-NOT-EXIST", "", "")
	assert.Error(t, err)
}

type fakeParamSource map[string][]string

func (f fakeParamSource) Query(key string) string {
	v := f[key]
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

func (f fakeParamSource) QueryArray(key string) []string {
	return f[key]
}

func TestGetParamListRepeated(t *testing.T) {
	src := fakeParamSource{"depth": {"1", "2", "3"}}
	assert.Equal(t, []string{"1", "2", "3"}, getParamList(src, "depth"))
}

func TestGetParamListCommaJoined(t *testing.T) {
	src := fakeParamSource{"depth": {"1,2,3"}}
	assert.Equal(t, []string{"1", "2", "3"}, getParamList(src, "depth"))
}

func TestGetParamListScalar(t *testing.T) {
	src := fakeParamSource{"depth": {"5"}}
	assert.Equal(t, []string{"5"}, getParamList(src, "depth"))
}

func TestGetParamListMissing(t *testing.T) {
	src := fakeParamSource{}
	assert.Nil(t, getParamList(src, "depth"))
}
