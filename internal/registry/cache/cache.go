// Package cache is a Redis-backed cache of resolved module sources (and
// their provenance signatures), sitting between the evaluator's
// include/import dispatch hook and the module registry so that repeated
// resolutions, and multiple dev-server instances sharing one Redis, skip
// the registry round trip.
package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache stores module source and signature under a namespaced key pair.
type Cache struct {
	client *redis.Client
	ns     string
	ttl    time.Duration
}

// Option configures a Cache; see New.
type Option func(*Cache)

// WithTTL overrides the default 5-minute entry lifetime.
func WithTTL(ttl time.Duration) Option { return func(c *Cache) { c.ttl = ttl } }

// WithNamespace pins the key namespace. Without it each Cache instance gets
// a random UUID namespace, which isolates unrelated registries sharing one
// Redis but forfeits cross-instance sharing; deployments that want sharing
// configure a common namespace.
func WithNamespace(ns string) Option { return func(c *Cache) { c.ns = ns } }

// New creates a Cache over a Redis address.
func New(addr string, opts ...Option) *Cache {
	c := &Cache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ns:     uuid.NewString(),
		ttl:    5 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) sourceKey(name string) string { return "vivjson:" + c.ns + ":src:" + name }
func (c *Cache) sigKey(name string) string    { return "vivjson:" + c.ns + ":sig:" + name }

// Get returns a cached module, if present. A miss, or any Redis failure
// (the cache is best-effort), reports ok=false and the caller falls
// through to the registry.
func (c *Cache) Get(ctx context.Context, name string) (string, []byte, bool) {
	source, err := c.client.Get(ctx, c.sourceKey(name)).Result()
	if err != nil {
		return "", nil, false
	}
	signature, err := c.client.Get(ctx, c.sigKey(name)).Bytes()
	if err != nil {
		return "", nil, false
	}
	return source, signature, true
}

// Put stores a resolved module. Failures are ignored; the next Get simply
// misses.
func (c *Cache) Put(ctx context.Context, name, source string, signature []byte) {
	c.client.Set(ctx, c.sourceKey(name), source, c.ttl)
	c.client.Set(ctx, c.sigKey(name), signature, c.ttl)
}

// Invalidate drops a module's cache entry, for use after a re-publish.
func (c *Cache) Invalidate(ctx context.Context, name string) {
	c.client.Del(ctx, c.sourceKey(name), c.sigKey(name))
}

// Close releases the Redis connection.
func (c *Cache) Close() error { return c.client.Close() }
