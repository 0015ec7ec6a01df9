package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	domainCacheTTL     = 5 * time.Minute
	negativeCacheTTL   = 30 * time.Second
	maxCacheEntries    = 10000
	cacheCleanupPeriod = 60 * time.Second
)

// errCachedNotFound is returned for negative cache hits.
var errCachedNotFound = errors.New("domain not found (cached)")

type cachedDomain struct {
	domainID  uuid.UUID
	negative  bool
	fetchedAt time.Time
}

// ttl returns the appropriate TTL for this entry.
func (cd cachedDomain) ttl() time.Duration {
	if cd.negative {
		return negativeCacheTTL
	}
	return domainCacheTTL
}

// hashKey returns a hex-encoded SHA-256 hash of the API key so raw keys
// are never stored in memory.
func hashKey(apiKey string) string {
	h := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(h[:])
}

// CachedDomainLookup wraps a DomainLookup with a bounded in-memory cache.
type CachedDomainLookup struct {
	inner DomainLookup
	mu    sync.RWMutex
	cache map[string]cachedDomain
}

// NewCachedDomainLookup creates a caching wrapper around the given DomainLookup.
// The provided context controls the lifetime of the background eviction goroutine.
func NewCachedDomainLookup(ctx context.Context, inner DomainLookup) *CachedDomainLookup {
	c := &CachedDomainLookup{
		inner: inner,
		cache: make(map[string]cachedDomain),
	}
	go c.evictLoop(ctx)
	return c
}

// evictLoop periodically removes expired entries from the cache.
func (c *CachedDomainLookup) evictLoop(ctx context.Context) {
	ticker := time.NewTicker(cacheCleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for k, v := range c.cache {
				if now.Sub(v.fetchedAt) >= v.ttl() {
					delete(c.cache, k)
				}
			}
			c.mu.Unlock()
		}
	}
}

// ResolveAPIKey returns a cached domain ID or delegates to the inner lookup.
// Failed lookups are negatively cached for 30s to prevent brute-force DB hammering.
func (c *CachedDomainLookup) ResolveAPIKey(ctx context.Context, apiKey string) (uuid.UUID, error) {
	hk := hashKey(apiKey)

	// Read path — RLock for concurrent cache hits.
	c.mu.RLock()
	entry, ok := c.cache[hk]
	if ok && time.Since(entry.fetchedAt) < entry.ttl() {
		c.mu.RUnlock()
		if entry.negative {
			return uuid.Nil, errCachedNotFound
		}
		return entry.domainID, nil
	}
	c.mu.RUnlock()

	// Cache miss or expired — fetch from inner.
	domainID, err := c.inner.ResolveAPIKey(ctx, apiKey)
	if err != nil {
		// Negative cache: store failed lookup with short TTL.
		c.mu.Lock()
		c.cache[hk] = cachedDomain{negative: true, fetchedAt: time.Now()}
		c.mu.Unlock()
		return uuid.Nil, err
	}

	c.mu.Lock()
	if len(c.cache) >= maxCacheEntries {
		// Evict expired entries, then trim if still over limit.
		now := time.Now()
		for k, v := range c.cache {
			if now.Sub(v.fetchedAt) >= v.ttl() {
				delete(c.cache, k)
			}
		}
		for k := range c.cache {
			if len(c.cache) < maxCacheEntries {
				break
			}
			delete(c.cache, k)
		}
	}
	c.cache[hk] = cachedDomain{domainID: domainID, fetchedAt: time.Now()}
	c.mu.Unlock()

	return domainID, nil
}
