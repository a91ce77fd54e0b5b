package orderindex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litebittech/cex/services/dlob/internal/dlobtypes"
	"github.com/litebittech/cex/services/dlob/internal/orderindex"
	"github.com/litebittech/cex/services/dlob/internal/pubkey"
)

func pk(b byte) pubkey.PublicKey {
	var p pubkey.PublicKey
	p[0] = b
	return p
}

func TestGetMissReturnsFalse(t *testing.T) {
	idx := orderindex.New()
	_, ok := idx.Get(pk(1))
	assert.False(t, ok)
}

func TestUpsertThenGet(t *testing.T) {
	idx := orderindex.New()
	account := &dlobtypes.UserAccount{Pubkey: pk(1), Authority: pk(9)}
	idx.Upsert(pk(1), account)

	got, ok := idx.Get(pk(1))
	require.True(t, ok)
	assert.Equal(t, pk(9), got.Authority)
}

func TestDeleteRemovesEntry(t *testing.T) {
	idx := orderindex.New()
	idx.Upsert(pk(1), &dlobtypes.UserAccount{Pubkey: pk(1)})
	idx.Delete(pk(1))

	_, ok := idx.Get(pk(1))
	assert.False(t, ok)
}

func TestSizeReflectsDistinctKeys(t *testing.T) {
	idx := orderindex.New()
	idx.Upsert(pk(1), &dlobtypes.UserAccount{Pubkey: pk(1)})
	idx.Upsert(pk(2), &dlobtypes.UserAccount{Pubkey: pk(2)})
	assert.Equal(t, 2, idx.Size())
}

func TestIterateReturnsAllEntries(t *testing.T) {
	idx := orderindex.New()
	idx.Upsert(pk(1), &dlobtypes.UserAccount{Pubkey: pk(1)})
	idx.Upsert(pk(2), &dlobtypes.UserAccount{Pubkey: pk(2)})
	assert.Len(t, idx.Iterate(), 2)
}

func TestUniqueAuthoritiesDedupsAcrossAccounts(t *testing.T) {
	idx := orderindex.New()
	idx.Upsert(pk(1), &dlobtypes.UserAccount{Pubkey: pk(1), Authority: pk(9)})
	idx.Upsert(pk(2), &dlobtypes.UserAccount{Pubkey: pk(2), Authority: pk(9)})
	idx.Upsert(pk(3), &dlobtypes.UserAccount{Pubkey: pk(3), Authority: pk(8)})

	authorities := idx.UniqueAuthorities()
	assert.Len(t, authorities, 2)
	assert.True(t, authorities.Include(pk(9)))
	assert.True(t, authorities.Include(pk(8)))
}
