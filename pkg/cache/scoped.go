package cache

// ScopedKeyer prefixes every key of an inner [Keyer]. The engine scopes keys
// by build version so that entries written by an older algorithm are never
// served:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "pipemerge:v1.2.0:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or a [DefaultKeyer] when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// AlignKey implements [Keyer].
func (k *ScopedKeyer) AlignKey(g1Hash, g2Hash string, opts AlignKeyOpts) string {
	return k.prefix + k.inner.AlignKey(g1Hash, g2Hash, opts)
}
