// Package align computes which nodes of two pipeline graphs play the same
// role.
//
// [Align] chains the whole correspondence pipeline: base similarity,
// similarity flooding, the padded edit cost matrix and its optimal
// assignment. Assigned pairs are then accepted greedily in row order, each
// one contracted into a helper graph that unions both inputs; a pair whose
// contraction would close a cycle is rejected and never revisited.
//
// When flooding has nothing to propagate over (one graph without edges),
// Align keeps the base similarity, logs a warning and reports
// [Result.Degenerate].
package align

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/pipemerge/pkg/assign"
	"github.com/matzehuels/pipemerge/pkg/dag"
	"github.com/matzehuels/pipemerge/pkg/dag/transform"
	perrors "github.com/matzehuels/pipemerge/pkg/errors"
	"github.com/matzehuels/pipemerge/pkg/similarity"
)

// Prefixes that keep both graphs apart inside the helper graph.
const (
	helperPrefix1 = "g1-"
	helperPrefix2 = "g2-"
)

// MaxIterations bounds the flooding rounds a caller may request. Scores
// settle well before it.
const MaxIterations = 10000

// Options configures [Align]. The zero value is not usable; start from
// [DefaultOptions].
type Options struct {
	Alpha      float64     // flooding damping factor in [0, 1]
	Iterations int         // flooding rounds
	AddCost    float64     // cost of leaving a first-graph node unmatched
	DelCost    float64     // cost of leaving a second-graph node unmatched
	Logger     *log.Logger // nil discards
}

// DefaultOptions returns alpha 0.1, 50 iterations and 0.4 for both
// unmatched-node costs.
func DefaultOptions() Options {
	return Options{
		Alpha:      similarity.DefaultAlpha,
		Iterations: similarity.DefaultIterations,
		AddCost:    assign.DefaultAddCost,
		DelCost:    assign.DefaultDelCost,
	}
}

// Validate reports the first out-of-range parameter as an INVALID_INPUT error.
func (o Options) Validate() error {
	if err := perrors.ValidateFraction("alpha", o.Alpha); err != nil {
		return err
	}
	if o.Iterations < 0 || o.Iterations > MaxIterations {
		return perrors.New(perrors.ErrCodeInvalidInput, "iterations must be in [0, %d], got %d", MaxIterations, o.Iterations)
	}
	if err := perrors.ValidateCost("add_cost", o.AddCost); err != nil {
		return err
	}
	return perrors.ValidateCost("del_cost", o.DelCost)
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}

// Pair is a candidate correspondence between a first-graph node and a
// second-graph node.
type Pair = similarity.Pair

// Result is the outcome of [Align].
type Result struct {
	Correspondence

	// Degenerate is set when flooding was skipped and the base similarity
	// matrix was used as is.
	Degenerate bool `json:"degenerate"`

	// Rejected lists assigned pairs dropped because contracting them would
	// have created a cycle, in the order they were considered.
	Rejected []Pair `json:"rejected,omitempty"`

	// Similarity is the matrix the assignment was solved on. Rows follow the
	// node order of the first graph, columns that of the second.
	Similarity *mat.Dense `json:"-"`
}

// Align computes the correspondence between g1 and g2. Neither graph is
// modified.
func Align(g1, g2 *dag.DAG, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if g1.NodeCount() == 0 || g2.NodeCount() == 0 {
		return nil, perrors.New(perrors.ErrCodeInvalidInput,
			"cannot align empty graph (%q has %d nodes, %q has %d)",
			g1.Name(), g1.NodeCount(), g2.Name(), g2.NodeCount())
	}
	logger := opts.logger()

	base, err := similarity.Base(g1, g2)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "base similarity")
	}

	res := &Result{Similarity: base}
	flooded, err := similarity.Flood(base, g1, g2, similarity.FloodOptions{
		Alpha:      opts.Alpha,
		Iterations: opts.Iterations,
	})
	switch {
	case errors.Is(err, similarity.ErrEmptyPCG), errors.Is(err, similarity.ErrZeroSimilarity):
		logger.Warn("similarity flooding skipped, using base similarity",
			"g1", g1.Name(), "g2", g2.Name(), "code", perrors.ErrCodeDegeneratePropagation, "reason", err)
		res.Degenerate = true
	case err != nil:
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "similarity flooding")
	default:
		res.Similarity = flooded
	}

	cost := assign.EditCostMatrix(res.Similarity, opts.AddCost, opts.DelCost)
	cols, err := assign.Solve(cost)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeAssignmentInfeasible, err,
			"assignment for %q and %q", g1.Name(), g2.Name())
	}

	if err := accept(res, g1, g2, cols, logger); err != nil {
		return nil, err
	}
	logger.Debug("aligned graphs",
		"g1", g1.Name(), "g2", g2.Name(),
		"matched", res.Len(), "rejected", len(res.Rejected), "degenerate", res.Degenerate)
	return res, nil
}

// accept walks the assignment in row order and keeps every substitution
// whose contraction leaves the helper graph acyclic.
func accept(res *Result, g1, g2 *dag.DAG, cols []int, logger *log.Logger) error {
	helper, err := transform.Union(g1, g2, helperPrefix1, helperPrefix2)
	if err != nil {
		return perrors.Wrap(perrors.ErrCodeInternal, err, "helper graph")
	}
	sources := helperSources(g1, g2)

	ids1, ids2 := g1.NodeIDs(), g2.NodeIDs()
	res.Correspondence = NewCorrespondence()
	for row, col := range cols {
		if row >= len(ids1) || col >= len(ids2) {
			continue
		}
		a, b := ids1[row], ids2[col]

		candidate := helper.Clone()
		if err := transform.Contract(candidate, helperPrefix1+a, helperPrefix2+b); err != nil {
			return perrors.Wrap(perrors.ErrCodeInternal, err, "contract %s with %s", a, b)
		}
		if cycle := transform.FindCycleFrom(candidate, sources...); cycle != nil {
			logger.Debug("rejected correspondence", "g1", a, "g2", b, "cycle", cycle)
			res.Rejected = append(res.Rejected, Pair{G1: a, G2: b})
			continue
		}
		helper = candidate
		res.add(a, b)
	}
	return nil
}

// helperSources returns the helper-graph IDs of every source of both graphs.
// For pipeline graphs these are the input sentinels.
func helperSources(g1, g2 *dag.DAG) []string {
	var ids []string
	for _, n := range g1.Sources() {
		ids = append(ids, helperPrefix1+n.ID)
	}
	for _, n := range g2.Sources() {
		ids = append(ids, helperPrefix2+n.ID)
	}
	return ids
}

// ErrNotInjective is returned by [Correspondence.Validate].
var ErrNotInjective = errors.New("correspondence is not a bijection between its domains")

// Correspondence holds a partial one-to-one node mapping in both directions.
type Correspondence struct {
	G1ToG2 map[string]string `json:"g1_to_g2"`
	G2ToG1 map[string]string `json:"g2_to_g1"`
}

// NewCorrespondence returns an empty correspondence.
func NewCorrespondence() Correspondence {
	return Correspondence{G1ToG2: map[string]string{}, G2ToG1: map[string]string{}}
}

func (c Correspondence) add(a, b string) {
	c.G1ToG2[a] = b
	c.G2ToG1[b] = a
}

// Len returns the number of corresponding pairs.
func (c Correspondence) Len() int { return len(c.G1ToG2) }

// Validate checks that both maps are inverse to each other.
func (c Correspondence) Validate() error {
	if len(c.G1ToG2) != len(c.G2ToG1) {
		return fmt.Errorf("%w: %d vs %d entries", ErrNotInjective, len(c.G1ToG2), len(c.G2ToG1))
	}
	for a, b := range c.G1ToG2 {
		if c.G2ToG1[b] != a {
			return fmt.Errorf("%w: %s -> %s -> %s", ErrNotInjective, a, b, c.G2ToG1[b])
		}
	}
	return nil
}
