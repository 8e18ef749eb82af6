package credstore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/core/domain"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, domain.CredentialAccess)
	assert.ErrorIs(t, err, domain.ErrNoCredential)

	require.NoError(t, store.SetPair(ctx, domain.CredentialPair{Access: "a1", Refresh: "r1"}))

	access, err := store.Get(ctx, domain.CredentialAccess)
	require.NoError(t, err)
	assert.Equal(t, "a1", access)

	refresh, err := store.Get(ctx, domain.CredentialRefresh)
	require.NoError(t, err)
	assert.Equal(t, "r1", refresh)

	require.NoError(t, store.Set(ctx, domain.CredentialAccess, "a2"))
	access, err = store.Get(ctx, domain.CredentialAccess)
	require.NoError(t, err)
	assert.Equal(t, "a2", access)
}

func TestMemoryStore_Clear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.SetPair(ctx, domain.CredentialPair{Access: "a", Refresh: "r"}))

	require.NoError(t, store.Clear(ctx))

	_, err := store.Get(ctx, domain.CredentialAccess)
	assert.ErrorIs(t, err, domain.ErrNoCredential)
	_, err = store.Get(ctx, domain.CredentialRefresh)
	assert.ErrorIs(t, err, domain.ErrNoCredential)
}

func TestMemoryStore_UnknownKind(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "bearer")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNoCredential)

	assert.Error(t, store.Set(ctx, "bearer", "x"))
}

// Concurrent writers and readers must never observe a torn value. Run with
// -race; the assertion is that every read returns one of the written
// values in full.
func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.SetPair(ctx, domain.CredentialPair{Access: "old", Refresh: "old"}))

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			store.SetPair(ctx, domain.CredentialPair{Access: "new", Refresh: "new"})
			store.Clear(ctx)
		}
	}()

	var bad bool
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			access, err := store.Get(ctx, domain.CredentialAccess)
			if err == nil && access != "old" && access != "new" {
				bad = true
			}
		}
	}()

	wg.Wait()
	assert.False(t, bad)
}
