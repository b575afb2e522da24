package similarity

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dominikbraun/graph"

	"github.com/matzehuels/pipemerge/pkg/dag"
)

// edgeTypeAttr is the PCG edge attribute holding the originating edge type.
const edgeTypeAttr = "edge_type"

// Pair is a PCG vertex: one node of the first graph with one of the second.
type Pair struct {
	G1 string `json:"g1"`
	G2 string `json:"g2"`
}

func pairHash(p Pair) string { return p.G1 + "\x1f" + p.G2 }

// PCG is the pairwise connectivity graph of two graphs. Vertices keep the
// order in which they were first reached.
type PCG struct {
	g     graph.Graph[string, Pair]
	pairs []Pair
	index map[string]int
}

// weighted is one non-zero entry of a propagation operator row.
type weighted struct {
	col    int
	weight float64
}

// NewPCG links (a, b) → (a', b') and (a', b') → (a, b) for every edge a→a'
// of g1 and b→b' of g2 that share an [EdgeType].
func NewPCG(g1, g2 *dag.DAG) (*PCG, error) {
	p := &PCG{
		g:     graph.New(pairHash, graph.Directed()),
		index: make(map[string]int),
	}

	edges2 := g2.Edges()
	types2 := make([]string, len(edges2))
	for i, e := range edges2 {
		types2[i] = EdgeType(g2, e)
	}

	for _, e1 := range g1.Edges() {
		t := EdgeType(g1, e1)
		for i, e2 := range edges2 {
			if types2[i] != t {
				continue
			}
			src := Pair{G1: e1.From, G2: e2.From}
			dst := Pair{G1: e1.To, G2: e2.To}
			if err := p.link(src, dst, t); err != nil {
				return nil, err
			}
			if err := p.link(dst, src, t); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

// Len returns the number of PCG vertices.
func (p *PCG) Len() int { return len(p.pairs) }

// Pairs returns the PCG vertices in discovery order.
func (p *PCG) Pairs() []Pair { return slices.Clone(p.pairs) }

// EdgeCount returns the number of PCG edges.
func (p *PCG) EdgeCount() int {
	n, err := p.g.Size()
	if err != nil {
		return 0
	}
	return n
}

func (p *PCG) addVertex(v Pair) error {
	err := p.g.AddVertex(v)
	if errors.Is(err, graph.ErrVertexAlreadyExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("pcg vertex %v: %w", v, err)
	}
	p.index[pairHash(v)] = len(p.pairs)
	p.pairs = append(p.pairs, v)
	return nil
}

func (p *PCG) link(from, to Pair, edgeType string) error {
	if err := p.addVertex(from); err != nil {
		return err
	}
	if err := p.addVertex(to); err != nil {
		return err
	}
	err := p.g.AddEdge(pairHash(from), pairHash(to), graph.EdgeAttribute(edgeTypeAttr, edgeType))
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return fmt.Errorf("pcg edge %v->%v: %w", from, to, err)
	}
	return nil
}

// operator returns the rows of the propagation matrix A, where A[i][j] is
// 1/k for each of the k out-neighbours j of i reached through the same edge
// type. Entries within a row are sorted by column.
func (p *PCG) operator() ([][]weighted, error) {
	adj, err := p.g.AdjacencyMap()
	if err != nil {
		return nil, fmt.Errorf("pcg adjacency: %w", err)
	}

	rows := make([][]weighted, len(p.pairs))
	for i, v := range p.pairs {
		byType := make(map[string][]int)
		for target, e := range adj[pairHash(v)] {
			t := e.Properties.Attributes[edgeTypeAttr]
			byType[t] = append(byType[t], p.index[target])
		}
		for _, cols := range byType {
			w := 1 / float64(len(cols))
			for _, c := range cols {
				rows[i] = append(rows[i], weighted{col: c, weight: w})
			}
		}
		slices.SortFunc(rows[i], func(a, b weighted) int { return a.col - b.col })
	}
	return rows, nil
}
