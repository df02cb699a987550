// Package cache wraps stores with in-memory caches.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/unkani/unkani/pkg/model"
	"github.com/unkani/unkani/pkg/server/store"
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unkani_value_set_cache_hits_total",
		Help: "Total number of ValueSet cache hits.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unkani_value_set_cache_misses_total",
		Help: "Total number of ValueSet cache misses.",
	})
	cacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "unkani_value_set_cache_entries",
		Help: "Number of ValueSets currently cached.",
	})
)

// Ensure ValueSets implements store.ValueSetsStore
var _ store.ValueSetsStore = (*ValueSets)(nil)

// ValueSets caches ValueSets by resource id in front of another store.
// Cached records are shared between callers and must not be modified.
type ValueSets struct {
	store.ValueSetsStore
	cache *expirable.LRU[string, *model.ValueSet]
}

// NewValueSets creates a cache holding at most size value sets for ttl
func NewValueSets(next store.ValueSetsStore, size int, ttl time.Duration) *ValueSets {
	return &ValueSets{
		ValueSetsStore: next,
		cache:          expirable.NewLRU[string, *model.ValueSet](size, nil, ttl),
	}
}

// FindByResourceID returns the cached value set or loads it from the wrapped store
func (c *ValueSets) FindByResourceID(ctx context.Context, resourceID string) (*model.ValueSet, error) {
	if vs, ok := c.cache.Get(resourceID); ok {
		cacheHitsTotal.Inc()
		return vs, nil
	}
	cacheMissesTotal.Inc()

	vs, err := c.ValueSetsStore.FindByResourceID(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	c.cache.Add(resourceID, vs)
	cacheEntries.Set(float64(c.Len()))
	return vs, nil
}

// Upsert writes through and drops the cached entry before and after the
// write, so a read racing the write cannot keep the previous row.
func (c *ValueSets) Upsert(ctx context.Context, vs *model.ValueSet) error {
	c.cache.Remove(vs.ResourceID)
	err := c.ValueSetsStore.Upsert(ctx, vs)
	c.cache.Remove(vs.ResourceID)
	cacheEntries.Set(float64(c.Len()))
	return err
}

// Len returns the number of cached value sets
func (c *ValueSets) Len() int {
	return c.cache.Len()
}
