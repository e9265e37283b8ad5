package anubis

import (
	"testing"
	"time"

	"github.com/riskibarqy/asset-draft/internal/domain/user"
	"github.com/stretchr/testify/require"
)

func TestPrincipalCache_SetGet(t *testing.T) {
	t.Parallel()

	cache := newPrincipalCache(time.Minute, 10)
	cache.Set("k1", user.Principal{UserID: "u-1"})

	principal, ok := cache.Get("k1")
	require.True(t, ok)
	require.Equal(t, "u-1", principal.UserID)
}

func TestPrincipalCache_Expires(t *testing.T) {
	t.Parallel()

	cache := newPrincipalCache(20*time.Millisecond, 10)
	cache.Set("k1", user.Principal{UserID: "u-1"})

	require.Eventually(t, func() bool {
		_, ok := cache.Get("k1")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestPrincipalCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	cache := newPrincipalCache(time.Minute, 2)
	cache.Set("first", user.Principal{UserID: "u-1"})
	cache.Set("second", user.Principal{UserID: "u-2"})

	_, ok := cache.Get("first")
	require.True(t, ok)

	cache.Set("third", user.Principal{UserID: "u-3"})

	_, ok = cache.Get("second")
	require.False(t, ok, "second was least recently used")
	for _, key := range []string{"first", "third"} {
		_, ok := cache.Get(key)
		require.True(t, ok, key)
	}
	require.Equal(t, 2, cache.Len())
}

func TestPrincipalCache_DisabledWithoutTTL(t *testing.T) {
	t.Parallel()

	cache := newPrincipalCache(-1, 10)
	require.Nil(t, cache)

	cache.Set("k1", user.Principal{UserID: "u-1"})
	_, ok := cache.Get("k1")
	require.False(t, ok)
	require.Zero(t, cache.Len())
}
