// Package cache provides result caching for the optimize pipeline.
//
// Placement and routing are deterministic functions of their inputs, so a
// complete engine result can be cached under a hash of the board, instances,
// chain, and options. Backends:
//   - NullCache: caching disabled (tests, one-shot CLI runs)
//   - FileCache: on-disk cache for CLI usage
//   - RedisCache: shared cache for the API deployment
package cache

import (
	"context"
	"time"
)

// TTLs per entry type.
const (
	// TTLResult is how long full optimize results stay cached. Catalog
	// records can change between sessions, so results do not live long.
	TTLResult = 24 * time.Hour

	// TTLCatalog is how long normalized catalog records stay cached.
	TTLCatalog = 7 * 24 * time.Hour
)

// Cache stores opaque byte values under string keys with per-entry TTLs.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys for the engine's cacheable artifacts.
type Keyer interface {
	// ResultKey keys a complete optimize result by the hash of its inputs.
	ResultKey(inputHash string) string

	// CatalogKey keys a normalized catalog record.
	CatalogKey(kind, id string) string
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ResultKey implements Keyer. The input hash is already collision
// resistant, so the key just carries a type prefix.
func (k *DefaultKeyer) ResultKey(inputHash string) string {
	return "result:" + inputHash
}

// CatalogKey implements Keyer.
func (k *DefaultKeyer) CatalogKey(kind, id string) string {
	return "catalog:" + kind + ":" + id
}

// ScopedKeyer wraps a Keyer with a prefix for per-user or per-deployment
// isolation.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer whose keys carry the given prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ResultKey implements Keyer.
func (k *ScopedKeyer) ResultKey(inputHash string) string {
	return k.prefix + k.inner.ResultKey(inputHash)
}

// CatalogKey implements Keyer.
func (k *ScopedKeyer) CatalogKey(kind, id string) string {
	return k.prefix + k.inner.CatalogKey(kind, id)
}
