package anubis

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/riskibarqy/asset-draft/internal/domain/user"
)

// principalCache is a size-bounded LRU of verified principals keyed by token
// hash. Entries expire ttl after they were stored. A nil cache never hits.
type principalCache struct {
	lru *expirable.LRU[string, user.Principal]
}

// newPrincipalCache returns nil when ttl is not positive. maxEntries <= 0
// leaves the cache unbounded.
func newPrincipalCache(ttl time.Duration, maxEntries int) *principalCache {
	if ttl <= 0 {
		return nil
	}
	if maxEntries < 0 {
		maxEntries = 0
	}
	return &principalCache{lru: expirable.NewLRU[string, user.Principal](maxEntries, nil, ttl)}
}

func (c *principalCache) Get(key string) (user.Principal, bool) {
	if c == nil {
		return user.Principal{}, false
	}
	return c.lru.Get(key)
}

func (c *principalCache) Set(key string, principal user.Principal) {
	if c == nil {
		return
	}
	c.lru.Add(key, principal)
}

func (c *principalCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
