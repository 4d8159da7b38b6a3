// Package entitycache caches the business entity snapshot so a batch run
// over thousands of messages does not re-query reference data per message.
package entitycache

import (
	"time"

	"github.com/atelierops/maillink-go/internal/datastore"
	gocache "github.com/patrickmn/go-cache"
)

const snapshotKey = "entities"

// Cache is a TTL-based read-through cache over the entity store's
// reference data. Entities are owned by an external import process and
// change rarely, so a short TTL is plenty.
type Cache struct {
	store datastore.Interface
	cache *gocache.Cache
}

// New creates an entity cache with the given TTL.
func New(store datastore.Interface, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cache{
		store: store,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Snapshot returns all entities, hitting the database only on cache miss.
func (c *Cache) Snapshot() ([]datastore.BusinessEntity, error) {
	if cached, found := c.cache.Get(snapshotKey); found {
		if entities, ok := cached.([]datastore.BusinessEntity); ok {
			return entities, nil
		}
	}

	entities, err := c.store.GetAllEntities()
	if err != nil {
		return nil, err
	}
	c.cache.Set(snapshotKey, entities, gocache.DefaultExpiration)
	return entities, nil
}

// Invalidate drops the cached snapshot, forcing the next read to hit the
// database. Used after an external import is known to have run.
func (c *Cache) Invalidate() {
	c.cache.Delete(snapshotKey)
}
