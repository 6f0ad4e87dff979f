// Package cache stores computed tilings and rendered artifacts.
//
// Enumerating a deep tiling dominates the cost of a run, so the pipeline
// caches the placed tiles (as the JSON document of render/sink) under a key
// derived from every input that affects them, and each rendered artifact
// under a key derived from the tiling key and the render options.
//
// # Backends
//
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: Redis, for servers sharing a cache
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [NullCache]: stores nothing
//
// [Open] builds a backend from a [Config].
package cache

import (
	"context"
	"time"
)

// Default time-to-live values.
const (
	TilingTTL   = 7 * 24 * time.Hour
	ArtifactTTL = 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// TilingKeyOpts are the inputs that determine a placed tiling.
type TilingKeyOpts struct {
	TilesPerVertex int      `json:"n"`
	Depth          int      `json:"depth"`
	RuleSetHash    string   `json:"rules"`
	Moves          []string `json:"moves,omitempty"`
	Exclude        []string `json:"exclude,omitempty"`
	Special        []string `json:"special,omitempty"` // "word=kind"
}

// ArtifactKeyOpts are the render options that determine an artifact.
type ArtifactKeyOpts struct {
	Format     string            `json:"format"`
	Projection string            `json:"projection,omitempty"`
	Size       float64           `json:"size,omitempty"`
	Scale      float64           `json:"scale,omitempty"`
	Labels     bool              `json:"labels,omitempty"`
	Colors     map[string]string `json:"colors,omitempty"`
	Detailed   bool              `json:"detailed,omitempty"`
	TreeOnly   bool              `json:"tree_only,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	TilingKey(opts TilingKeyOpts) string
	ArtifactKey(tilingHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default Keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// TilingKey returns "tiling:<sha256>".
func (DefaultKeyer) TilingKey(opts TilingKeyOpts) string {
	return hashKey("tiling", opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(tilingHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", tilingHash, opts)
}
