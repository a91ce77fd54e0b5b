// Package oracle exposes per-market reference prices. The real feed (Pyth,
// Switchboard) is an external collaborator; this package defines the
// contract BookBuilder and the aggregators consume, plus an in-memory
// implementation any ingestion loop can push into.
package oracle

import (
	"math/big"
	"sync"

	"github.com/litebittech/cex/services/dlob/internal/dlobtypes"
	"github.com/litebittech/cex/services/dlob/internal/market"
)

// View is the read contract BookBuilder and the aggregators depend on.
type View interface {
	Get(m market.Market) (dlobtypes.OraclePriceData, bool)
}

// Store is an in-memory OracleView, updated by whatever feed loop is wired
// in (push or poll — the spec treats both as external collaborators).
type Store struct {
	mu     sync.RWMutex
	prices map[string]dlobtypes.OraclePriceData
}

func NewStore() *Store {
	return &Store{prices: make(map[string]dlobtypes.OraclePriceData)}
}

func (s *Store) Update(m market.Market, data dlobtypes.OraclePriceData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[m.Key()] = data
}

func (s *Store) Get(m market.Market) (dlobtypes.OraclePriceData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.prices[m.Key()]
	return v, ok
}

var _ View = (*Store)(nil)

// Zero is a convenience zero-value oracle reading used when a market has
// no oracle feed wired (e.g. in tests).
func Zero() dlobtypes.OraclePriceData {
	return dlobtypes.OraclePriceData{Price: big.NewInt(0), Confidence: big.NewInt(0), TWAP: big.NewInt(0)}
}
