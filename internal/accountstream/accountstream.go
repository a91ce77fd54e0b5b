// Package accountstream implements AccountStream (spec.md §2) as the
// DLOBProvider abstraction spec.md §9's Design Notes call for: one
// interface, two concrete variants selected by USE_ORDER_SUBSCRIBER — a
// full user-map subscriber and a compact order subscriber. The RPC client
// and wire decoder that actually talk to the chain are external
// collaborators (spec.md §1's Non-goals); this package only owns what
// happens once an update has already been decoded into our types.
package accountstream

import (
	"context"
	"log/slog"
	"time"

	"github.com/litebittech/cex/services/dlob/internal/dlobtypes"
	"github.com/litebittech/cex/services/dlob/internal/orderindex"
	"github.com/litebittech/cex/services/dlob/internal/pubkey"
	"github.com/litebittech/cex/services/dlob/services/marketfeeds/common/set"
)

// Provider is the DLOBProvider contract of spec.md §9.
type Provider interface {
	Subscribe(ctx context.Context) error
	Size() int
	GetUserAccounts() []*dlobtypes.UserAccount
	GetUserAccount(pk pubkey.PublicKey) (*dlobtypes.UserAccount, bool)
	GetUniqueAuthorities() set.Set[pubkey.PublicKey]
}

// RawAccountUpdate is one decoded full user-account observation.
type RawAccountUpdate struct {
	Pubkey  pubkey.PublicKey
	Account *dlobtypes.UserAccount
}

// UserMapSource is the external collaborator for the "full user map" mode:
// it decodes and yields whole account snapshots.
type UserMapSource interface {
	Subscribe(ctx context.Context, onUpdate func(RawAccountUpdate)) error
}

// RawOrderUpdate is one decoded order-level observation for the compact
// "order subscriber" mode — it carries just enough to patch a single order
// slot into the account OrderIndex already holds (or a newly seen one).
type RawOrderUpdate struct {
	UserPubkey pubkey.PublicKey
	Authority  pubkey.PublicKey
	Order      dlobtypes.Order
	Slot       uint64
}

type OrderSource interface {
	Subscribe(ctx context.Context, onUpdate func(RawOrderUpdate)) error
}

// reconnectBackoff matches internal/fallback's fixed-backoff reconnect
// posture — no exponential backoff anywhere in this system.
const reconnectBackoff = 5 * time.Second

// UserMapProvider is the full-user-map DLOBProvider variant: every update
// replaces the whole account OrderIndex holds for that pubkey.
type UserMapProvider struct {
	idx    *orderindex.Index
	source UserMapSource
	log    *slog.Logger
}

func NewUserMapProvider(idx *orderindex.Index, source UserMapSource, log *slog.Logger) *UserMapProvider {
	return &UserMapProvider{idx: idx, source: source, log: log}
}

func (p *UserMapProvider) Subscribe(ctx context.Context) error {
	return runReconnecting(ctx, p.log, "user-map", func() error {
		return p.source.Subscribe(ctx, func(u RawAccountUpdate) {
			p.idx.Upsert(u.Pubkey, u.Account)
		})
	})
}

func (p *UserMapProvider) Size() int { return p.idx.Size() }

func (p *UserMapProvider) GetUserAccounts() []*dlobtypes.UserAccount {
	entries := p.idx.Iterate()
	out := make([]*dlobtypes.UserAccount, len(entries))
	for i, e := range entries {
		out[i] = e.Account
	}
	return out
}

func (p *UserMapProvider) GetUserAccount(pk pubkey.PublicKey) (*dlobtypes.UserAccount, bool) {
	return p.idx.Get(pk)
}

func (p *UserMapProvider) GetUniqueAuthorities() set.Set[pubkey.PublicKey] {
	return p.idx.UniqueAuthorities()
}

// OrderSubscriberProvider is the compact order-stream DLOBProvider
// variant: it patches individual order slots into whatever UserAccount is
// already resident in OrderIndex, synthesizing one on first sight of a
// pubkey.
type OrderSubscriberProvider struct {
	idx    *orderindex.Index
	source OrderSource
	log    *slog.Logger
}

func NewOrderSubscriberProvider(idx *orderindex.Index, source OrderSource, log *slog.Logger) *OrderSubscriberProvider {
	return &OrderSubscriberProvider{idx: idx, source: source, log: log}
}

func (p *OrderSubscriberProvider) Subscribe(ctx context.Context) error {
	return runReconnecting(ctx, p.log, "order-subscriber", func() error {
		return p.source.Subscribe(ctx, func(u RawOrderUpdate) {
			p.applyOrderUpdate(u)
		})
	})
}

func (p *OrderSubscriberProvider) applyOrderUpdate(u RawOrderUpdate) {
	account, ok := p.idx.Get(u.UserPubkey)
	if !ok {
		account = &dlobtypes.UserAccount{
			Pubkey:    u.UserPubkey,
			Authority: u.Authority,
			Orders:    make([]dlobtypes.Order, 0, 32),
		}
	}
	account.Slot = u.Slot

	for i := range account.Orders {
		if account.Orders[i].OrderId == u.Order.OrderId && !account.Orders[i].IsEmpty() {
			account.Orders[i] = u.Order
			p.idx.Upsert(u.UserPubkey, account)
			return
		}
	}
	account.Orders = append(account.Orders, u.Order)
	p.idx.Upsert(u.UserPubkey, account)
}

func (p *OrderSubscriberProvider) Size() int { return p.idx.Size() }

func (p *OrderSubscriberProvider) GetUserAccounts() []*dlobtypes.UserAccount {
	entries := p.idx.Iterate()
	out := make([]*dlobtypes.UserAccount, len(entries))
	for i, e := range entries {
		out[i] = e.Account
	}
	return out
}

func (p *OrderSubscriberProvider) GetUserAccount(pk pubkey.PublicKey) (*dlobtypes.UserAccount, bool) {
	return p.idx.Get(pk)
}

func (p *OrderSubscriberProvider) GetUniqueAuthorities() set.Set[pubkey.PublicKey] {
	return p.idx.UniqueAuthorities()
}

// runReconnecting mirrors internal/fallback.Mirror.Run's reconnect loop:
// a dropped subscription logs and retries after a fixed backoff rather
// than failing the process (the supervisor's restart-on-crash policy is
// reserved for truly unrecoverable failures).
func runReconnecting(ctx context.Context, log *slog.Logger, name string, subscribe func() error) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := subscribe(); err != nil {
			log.Warn("account stream subscription dropped", "provider", name, "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectBackoff):
		}
	}
}
