package cache

// AlignKeyOpts holds every option that changes an alignment result.
type AlignKeyOpts struct {
	Alpha      float64 `json:"alpha"`
	Iterations int     `json:"iterations"`
	AddCost    float64 `json:"add_cost"`
	DelCost    float64 `json:"del_cost"`
}

// Keyer derives cache keys.
type Keyer interface {
	// AlignKey identifies the alignment of two graphs, given the content
	// hashes of both. The order of the graphs matters.
	AlignKey(g1Hash, g2Hash string, opts AlignKeyOpts) string
}

// DefaultKeyer hashes all key components.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// AlignKey implements [Keyer].
func (DefaultKeyer) AlignKey(g1Hash, g2Hash string, opts AlignKeyOpts) string {
	return hashKey("align", g1Hash, g2Hash, opts)
}
