package httpapi

import (
	"fmt"
	"math/big"

	"github.com/litebittech/cex/services/dlob/internal/market"
)

const (
	defaultDepth         = 10
	defaultNumVammOrders = 100
)

// l2Query is the raw string form of one /l2 (or one /batchL2 element)
// request, before parsing/validation.
type l2Query struct {
	marketName     string
	marketIndex    string
	marketType     string
	depth          string
	numVammOrders  string
	includeVamm    string
	includePhoenix string
	includeSerum   string
	grouping       string
	includeOracle  string
}

// l2Params is the parsed, validated request.
type l2Params struct {
	Market         market.Market
	Depth          int
	NumVammOrders  int
	IncludeVamm    bool
	IncludePhoenix bool
	IncludeSerum   bool
	Grouping       *big.Int // nil = no grouping
	IncludeOracle  bool
}

// parseL2Query resolves and validates one /l2-shaped request, applying
// spec.md §9's open questions: includeVamm is silently forced false on
// spot markets, and an unset depth under grouping defaults to -1
// (unlimited) rather than defaultDepth.
func parseL2Query(registry *market.Registry, q l2Query) (l2Params, error) {
	m, err := resolveMarket(registry, q.marketName, q.marketIndex, q.marketType)
	if err != nil {
		return l2Params{}, err
	}

	var grouping *big.Int
	if q.grouping != "" {
		g, ok := new(big.Int).SetString(q.grouping, 10)
		if !ok || g.Sign() <= 0 {
			return l2Params{}, fmt.Errorf("invalid grouping %q: must be a positive integer", q.grouping)
		}
		grouping = g
	}

	depthDefault := defaultDepth
	if grouping != nil && q.depth == "" {
		depthDefault = -1
	}
	depth, err := parseIntDefault(q.depth, depthDefault)
	if err != nil {
		return l2Params{}, err
	}

	numVamm, err := parseIntDefault(q.numVammOrders, defaultNumVammOrders)
	if err != nil {
		return l2Params{}, err
	}

	includeVamm, err := parseBoolDefault(q.includeVamm, false)
	if err != nil {
		return l2Params{}, err
	}
	if m.Type == market.Spot {
		includeVamm = false // isSpot ⇒ includeVamm=false, preserved verbatim
	}

	includePhoenix, err := parseBoolDefault(q.includePhoenix, false)
	if err != nil {
		return l2Params{}, err
	}
	includeSerum, err := parseBoolDefault(q.includeSerum, false)
	if err != nil {
		return l2Params{}, err
	}
	includeOracle, err := parseBoolDefault(q.includeOracle, false)
	if err != nil {
		return l2Params{}, err
	}

	return l2Params{
		Market:         m,
		Depth:          depth,
		NumVammOrders:  numVamm,
		IncludeVamm:    includeVamm,
		IncludePhoenix: includePhoenix,
		IncludeSerum:   includeSerum,
		Grouping:       grouping,
		IncludeOracle:  includeOracle,
	}, nil
}
