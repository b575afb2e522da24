package similarity

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/pipemerge/pkg/dag"
)

// Defaults for [FloodOptions].
const (
	DefaultAlpha      = 0.1
	DefaultIterations = 50
)

var (
	// ErrEmptyPCG is returned by Flood when no pair of edges shares a type,
	// typically because one graph has no edges.
	ErrEmptyPCG = errors.New("pairwise connectivity graph has no nodes or edges")

	// ErrZeroSimilarity is returned by Flood when the similarity vector has
	// no positive entry to normalize by.
	ErrZeroSimilarity = errors.New("similarity vector has no positive entry")
)

// FloodOptions configures [Flood].
type FloodOptions struct {
	// Alpha is the share of each round's score taken from neighbours.
	Alpha float64
	// Iterations is the fixed number of propagation rounds.
	Iterations int
}

// DefaultFloodOptions returns Alpha 0.1 and 50 iterations.
func DefaultFloodOptions() FloodOptions {
	return FloodOptions{Alpha: DefaultAlpha, Iterations: DefaultIterations}
}

// Flood returns a copy of base in which every entry (i, j) whose node pair is
// a PCG vertex holds the propagated score; all other entries keep their base
// value. base is not modified.
//
// Flood returns [ErrEmptyPCG] or [ErrZeroSimilarity] when there is nothing to
// propagate. Both are recoverable: the base matrix is still valid.
func Flood(base *mat.Dense, g1, g2 *dag.DAG, opts FloodOptions) (*mat.Dense, error) {
	pcg, err := NewPCG(g1, g2)
	if err != nil {
		return nil, err
	}
	if pcg.Len() == 0 || pcg.EdgeCount() == 0 {
		return nil, ErrEmptyPCG
	}
	op, err := pcg.operator()
	if err != nil {
		return nil, err
	}

	idx1, idx2 := g1.Index(), g2.Index()
	n := pcg.Len()
	v := mat.NewVecDense(n, nil)
	for i, pr := range pcg.pairs {
		v.SetVec(i, base.At(idx1[pr.G1], idx2[pr.G2]))
	}
	if err := normalize(v); err != nil {
		return nil, err
	}

	next := mat.NewVecDense(n, nil)
	spread := mat.NewVecDense(n, nil)
	for range opts.Iterations {
		if err := propagate(op, v, next, spread, opts.Alpha); err != nil {
			return nil, err
		}
		v, next = next, v
	}

	out := mat.DenseCopyOf(base)
	for i, pr := range pcg.pairs {
		out.Set(idx1[pr.G1], idx2[pr.G2], v.AtVec(i))
	}
	return out, nil
}

// propagate writes one normalized round of flooding from v into next, using
// spread as scratch space for A·v.
func propagate(op [][]weighted, v, next, spread *mat.VecDense, alpha float64) error {
	for i, row := range op {
		var s float64
		for _, w := range row {
			s += w.weight * v.AtVec(w.col)
		}
		spread.SetVec(i, s)
	}
	next.ScaleVec(1-alpha, v)
	next.AddScaledVec(next, alpha, spread)
	return normalize(next)
}

// normalize divides v by its maximum entry.
func normalize(v *mat.VecDense) error {
	m := mat.Max(v)
	if !(m > 0) || math.IsInf(m, 0) {
		return ErrZeroSimilarity
	}
	for i := range v.Len() {
		v.SetVec(i, v.AtVec(i)/m)
	}
	return nil
}
