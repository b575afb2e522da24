package similarity

import (
	"errors"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/pipemerge/pkg/dag"
)

// Scores used by the base estimator.
const (
	// SamePath is the score of two records running the same primitive.
	SamePath = 1.0
	// SameFamily is the score of two records whose primitives share a family.
	SameFamily = 0.5
	// StructuralBonus is added when two nodes occupy the same position.
	StructuralBonus = 0.05
)

// familySegment is the index of the family in a dot-separated path
// ("d3m.primitives.<family>.<kind>.<impl>").
const familySegment = 2

// ErrEmptyGraph is returned when a similarity matrix would have no rows or
// no columns.
var ErrEmptyGraph = errors.New("graph has no nodes")

// Family returns the family segment of path and whether path has one.
func Family(path string) (string, bool) {
	parts := strings.Split(path, ".")
	if len(parts) <= familySegment {
		return "", false
	}
	return parts[familySegment], true
}

// PathSimilarity scores two primitive paths: [SamePath] when identical,
// [SameFamily] when both have a family and it matches, 0 otherwise.
func PathSimilarity(p1, p2 string) float64 {
	if p1 == p2 {
		return SamePath
	}
	f1, ok1 := Family(p1)
	f2, ok2 := Family(p2)
	if ok1 && ok2 && f1 == f2 {
		return SameFamily
	}
	return 0
}

// Position reduces a node ID to its last two dot-separated segments, so that
// "G2.G1.steps.3" and "steps.3" compare equal.
func Position(id string) string {
	parts := strings.Split(id, ".")
	if len(parts) <= 2 {
		return id
	}
	return strings.Join(parts[len(parts)-2:], ".")
}

// NodeType is the family of the node's first record, or the whole path when
// the path has no family (sentinels: "Input", "Output").
func NodeType(n *dag.Node) string {
	path := n.Path()
	if f, ok := Family(path); ok {
		return f
	}
	return path
}

// EdgeType joins the types of both endpoints of e.
func EdgeType(g *dag.DAG, e dag.Edge) string {
	from, _ := g.Node(e.From)
	to, _ := g.Node(e.To)
	return NodeType(from) + "." + NodeType(to)
}

// Base computes the |g1| x |g2| base similarity matrix. Rows and columns
// follow the node order of g1 and g2.
func Base(g1, g2 *dag.DAG) (*mat.Dense, error) {
	if g1.NodeCount() == 0 || g2.NodeCount() == 0 {
		return nil, ErrEmptyGraph
	}

	sim := mat.NewDense(g1.NodeCount(), g2.NodeCount(), nil)
	nodes2 := g2.Nodes()
	for i, a := range g1.Nodes() {
		pos := Position(a.ID)
		for j, b := range nodes2 {
			bonus := 0.0
			if pos == Position(b.ID) {
				bonus = StructuralBonus
			}
			var sum float64
			var count int
			for _, ra := range a.Records {
				for _, rb := range b.Records {
					sum += PathSimilarity(ra.Path, rb.Path) + bonus
					count++
				}
			}
			if count > 0 {
				sim.Set(i, j, sum/float64(count))
			}
		}
	}
	return sim, nil
}
