package cache

// ScopedKeyer wraps a Keyer with a prefix, giving a separate namespace to
// every caller that shares a backend, e.g. several servers on one Redis.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// TilingKey generates a prefixed tiling key.
func (k *ScopedKeyer) TilingKey(opts TilingKeyOpts) string {
	return k.prefix + k.inner.TilingKey(opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(tilingHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(tilingHash, opts)
}
