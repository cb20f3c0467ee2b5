package cache

// ScopedKeyer prefixes every key produced by an inner Keyer, so several
// deployments can share one Redis instance without colliding.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner. A nil inner uses DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ConesKey returns the prefixed cone key.
func (k *ScopedKeyer) ConesKey(pedigreeHash string, ids []int64) string {
	return k.prefix + k.inner.ConesKey(pedigreeHash, ids)
}

// ClimbKey returns the prefixed climb key.
func (k *ScopedKeyer) ClimbKey(pedigreeHash string, opts ClimbKeyOpts) string {
	return k.prefix + k.inner.ClimbKey(pedigreeHash, opts)
}
