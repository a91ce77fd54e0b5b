// Package orderindex implements the OrderIndex component (spec.md §4.1):
// a flat, diff-driven keyed store mapping user public key to decoded user
// account. Ordering is not maintained here — BookBuilder is the sole
// consumer that sorts.
package orderindex

import (
	"sync"

	"github.com/litebittech/cex/services/dlob/internal/dlobtypes"
	"github.com/litebittech/cex/services/dlob/internal/pubkey"
	"github.com/litebittech/cex/services/dlob/services/marketfeeds/common/set"
)

// Index is a sync.RWMutex-guarded flat map, written only by the
// account-stream consumer and read by BookBuilder and the /orders/*
// handlers (eventual consistency within one tick, per spec.md §5).
type Index struct {
	mu       sync.RWMutex
	accounts map[pubkey.PublicKey]*dlobtypes.UserAccount
}

func New() *Index {
	return &Index{accounts: make(map[pubkey.PublicKey]*dlobtypes.UserAccount)}
}

func (idx *Index) Upsert(pk pubkey.PublicKey, account *dlobtypes.UserAccount) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.accounts[pk] = account
}

func (idx *Index) Delete(pk pubkey.PublicKey) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.accounts, pk)
}

// Get is a soft failure on a miss — no error path, per spec.md §4.1.
func (idx *Index) Get(pk pubkey.PublicKey) (*dlobtypes.UserAccount, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	a, ok := idx.accounts[pk]
	return a, ok
}

// Iterate returns a point-in-time snapshot of (pubkey, account) pairs.
// Iteration order is unspecified.
func (idx *Index) Iterate() []struct {
	Pubkey  pubkey.PublicKey
	Account *dlobtypes.UserAccount
} {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]struct {
		Pubkey  pubkey.PublicKey
		Account *dlobtypes.UserAccount
	}, 0, len(idx.accounts))
	for pk, a := range idx.accounts {
		out = append(out, struct {
			Pubkey  pubkey.PublicKey
			Account *dlobtypes.UserAccount
		}{pk, a})
	}
	return out
}

// UniqueAuthorities returns the de-duplicated set of authority pubkeys
// across every account currently indexed, grounded on the teacher's
// generic Set[T].
func (idx *Index) UniqueAuthorities() set.Set[pubkey.PublicKey] {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	s := make(set.Set[pubkey.PublicKey], len(idx.accounts))
	for _, a := range idx.accounts {
		s.Insert(a.Authority)
	}
	return s
}

func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.accounts)
}
