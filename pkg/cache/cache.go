// Package cache stores serialized sessions and layouts behind a small byte
// cache interface.
//
// Three backends are provided:
//
//   - [FileCache] keeps entries as files under a directory, for the CLI.
//   - [RedisCache] shares entries between server replicas.
//   - [NullCache] stores nothing, for --no-cache runs and tests.
//
// Keys are built by a [Keyer] so callers never format them by hand.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A ttl of zero means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default expiries for cached entries.
const (
	TTLSession = 24 * time.Hour
	TTLLayout  = 7 * 24 * time.Hour
)

// Keyer builds cache keys.
type Keyer interface {
	// SessionKey is the key of a persisted grid session.
	SessionKey(id string) string

	// LayoutKey is the key of a stateless layout result for a document hash.
	LayoutKey(docHash string, opts LayoutKeyOpts) string
}

// LayoutKeyOpts are the inputs besides the document that change a layout.
type LayoutKeyOpts struct {
	Width   float64 `json:"width,omitempty"`
	Justify string  `json:"justify,omitempty"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key layout.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SessionKey returns "session:<id>".
func (DefaultKeyer) SessionKey(id string) string {
	return "session:" + id
}

// LayoutKey hashes the document hash together with opts.
func (DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", docHash, opts)
}
