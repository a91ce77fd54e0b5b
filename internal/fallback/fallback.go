// Package fallback implements the external venue subscribers of spec.md
// §4.6: Phoenix and Serum, each maintaining a local mirror of one external
// CLOB market and exposing a restartable L2Generator per side. Grounded on
// the teacher's services/marketfeeds aggregator.ConsumerManager
// reconnect-with-sleep loop, generalized from a Kafka/Consul consumer to a
// generic subscribe-and-mirror venue client.
package fallback

import (
	"context"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/litebittech/cex/services/dlob/internal/levelgen"
)

// Venue names used as L2 "sources" keys (spec.md §4.3).
const (
	SourcePhoenix = "phoenix"
	SourceSerum   = "serum"
)

// Client is implemented by a venue-specific wire client; Subscribe blocks
// until the connection drops or ctx is canceled, invoking onUpdate with
// freshly observed levels.
type Client interface {
	Subscribe(ctx context.Context, onUpdate func(bids, asks []levelgen.Level)) error
}

// Mirror holds the most recently observed book for one venue/market pair.
// A subscribe failure downgrades that market's L2 (fallback simply
// omitted) without failing the tick, per spec.md §4.6.
type Mirror struct {
	source string
	client Client
	log    *slog.Logger

	mu   sync.RWMutex
	bids []levelgen.Level
	asks []levelgen.Level
}

func NewMirror(source string, client Client, log *slog.Logger) *Mirror {
	return &Mirror{source: source, client: client, log: log}
}

// Run subscribes at startup and remains subscribed for the process
// lifetime, reconnecting with a fixed backoff on drop — no exponential
// backoff, matching the restart posture spec.md §4.7 uses for the whole
// process.
func (m *Mirror) Run(ctx context.Context, backoff time.Duration) {
	for {
		if ctx.Err() != nil {
			return
		}
		err := m.client.Subscribe(ctx, m.update)
		if err != nil {
			m.log.Warn("fallback venue subscription dropped", "source", m.source, "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

func (m *Mirror) update(bids, asks []levelgen.Level) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bids = bids
	m.asks = asks
}

func (m *Mirror) Bids() levelgen.Generator {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return levelgen.NewSlice(append([]levelgen.Level{}, m.bids...))
}

func (m *Mirror) Asks() levelgen.Generator {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return levelgen.NewSlice(append([]levelgen.Level{}, m.asks...))
}

func (m *Mirror) Source() string { return m.source }

// DecimalLevel converts a venue's human-decimal (price, size) quote into
// a chain-precision level, the point at which shopspring/decimal hands
// off to math/big.Int for anything that reaches an Order-shaped output.
func DecimalLevel(price, size decimal.Decimal, pricePrecision, basePrecision *big.Int) levelgen.Level {
	p := price.Mul(decimal.NewFromBigInt(pricePrecision, 0)).Truncate(0)
	s := size.Mul(decimal.NewFromBigInt(basePrecision, 0)).Truncate(0)
	return levelgen.Level{Price: p.BigInt(), Size: s.BigInt()}
}
