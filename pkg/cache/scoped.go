package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation, so
// that several workspaces can share one Redis instance.
//
//	teamKeyer := NewScopedKeyer(NewDefaultKeyer(), "team:design:")
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

// AssetKey generates a prefixed key for preview lookups.
func (k *ScopedKeyer) AssetKey(baseURL, refID string) string {
	return k.prefix + k.inner.AssetKey(baseURL, refID)
}

// RenderKey generates a prefixed key for rendered output.
func (k *ScopedKeyer) RenderKey(layoutHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(layoutHash, opts)
}
