package httpapi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/litebittech/cex/services/dlob/internal/market"
)

// resolveMarket implements spec.md §6's "market selection" rule: either
// marketName, or both marketIndex and marketType.
func resolveMarket(registry *market.Registry, name, indexStr, typeStr string) (market.Market, error) {
	name = strings.TrimSpace(name)
	if name != "" {
		m, ok := registry.ByName(name)
		if !ok {
			return market.Market{}, fmt.Errorf("unknown marketName %q", name)
		}
		return m, nil
	}

	indexStr = strings.TrimSpace(indexStr)
	typeStr = strings.TrimSpace(typeStr)
	if indexStr == "" || typeStr == "" {
		return market.Market{}, fmt.Errorf("must supply marketName, or both marketIndex and marketType")
	}
	mt, err := market.ParseType(typeStr)
	if err != nil {
		return market.Market{}, err
	}
	idx, err := strconv.ParseUint(indexStr, 10, 16)
	if err != nil {
		return market.Market{}, fmt.Errorf("invalid marketIndex %q: %w", indexStr, err)
	}
	m, ok := registry.ByKey(mt, uint16(idx))
	if !ok {
		return market.Market{}, fmt.Errorf("no market for marketType=%s marketIndex=%d", mt, idx)
	}
	return m, nil
}

func parseBoolDefault(s string, def bool) (bool, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", s)
	}
	return b, nil
}

func parseIntDefault(s string, def int) (int, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return n, nil
}

// getParamList reads a batch-style query param, per spec.md §6's "batch
// normalization" rule: either repeated `key=a&key=b` values, or one
// comma-joined value, or a single scalar (treated as a length-1 list), or
// absent entirely (nil — padded to the batch length by the caller).
func getParamList(c paramSource, key string) []string {
	if arr := c.QueryArray(key); len(arr) > 1 {
		return arr
	}
	v := c.Query(key)
	if v == "" {
		return nil
	}
	if strings.Contains(v, ",") {
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return []string{v}
}

// paramSource abstracts the subset of *gin.Context this file needs, kept
// narrow so it's trivially testable without spinning up gin.
type paramSource interface {
	Query(key string) string
	QueryArray(key string) []string
}
