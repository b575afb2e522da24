package transform

import (
	"fmt"

	"github.com/matzehuels/pipemerge/pkg/dag"
)

// Union returns a new graph holding the nodes of g1 and g2 with their IDs
// prefixed by p1 and p2, followed by the edges of both. Records are copied.
// The prefixes must make the two ID sets disjoint.
func Union(g1, g2 *dag.DAG, p1, p2 string) (*dag.DAG, error) {
	u := dag.New(g1.Name() + "+" + g2.Name())
	for _, part := range []struct {
		g      *dag.DAG
		prefix string
	}{{g1, p1}, {g2, p2}} {
		for _, n := range part.g.Nodes() {
			if err := u.AddNode(dag.Node{ID: part.prefix + n.ID, Records: n.Records}); err != nil {
				return nil, fmt.Errorf("node %s%s: %w", part.prefix, n.ID, err)
			}
		}
	}
	for _, part := range []struct {
		g      *dag.DAG
		prefix string
	}{{g1, p1}, {g2, p2}} {
		for _, e := range part.g.Edges() {
			if err := u.AddEdge(dag.Edge{From: part.prefix + e.From, To: part.prefix + e.To}); err != nil {
				return nil, fmt.Errorf("edge %s%s->%s%s: %w", part.prefix, e.From, part.prefix, e.To, err)
			}
		}
	}
	return u, nil
}

// Contract merges node drop into node keep: every edge touching drop is
// redirected to keep, self-loops produced by the redirection are discarded,
// drop's records are appended to keep's and drop is removed.
//
// Contract mutates g. Callers that may need to undo the contraction should
// work on a [dag.DAG.Clone].
func Contract(g *dag.DAG, keep, drop string) error {
	if keep == drop {
		return nil
	}
	if _, ok := g.Node(keep); !ok {
		return fmt.Errorf("contract %s: %w", keep, dag.ErrUnknownNode)
	}
	dn, ok := g.Node(drop)
	if !ok {
		return fmt.Errorf("contract %s: %w", drop, dag.ErrUnknownNode)
	}

	var redirected []dag.Edge
	for _, p := range g.Parents(drop) {
		if p != keep {
			redirected = append(redirected, dag.Edge{From: p, To: keep})
		}
	}
	for _, c := range g.Children(drop) {
		if c != keep {
			redirected = append(redirected, dag.Edge{From: keep, To: c})
		}
	}
	records := dn.Records

	if err := g.RemoveNode(drop); err != nil {
		return err
	}
	for _, e := range redirected {
		if err := g.AddEdge(e); err != nil {
			return fmt.Errorf("redirect %s->%s: %w", e.From, e.To, err)
		}
	}
	return g.AppendRecords(keep, records...)
}
