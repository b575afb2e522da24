// Package merge fuses pipeline graphs along their node correspondences.
//
// A merged graph keeps every node of both inputs. Corresponding nodes
// collapse into the first graph's node, which then carries the records of
// both; unmatched nodes are prefixed with their side ("G1." or "G2."),
// repeating the prefix while the ID is taken, so IDs stay unique across
// repeated merges. [MergeAll] folds a list of graphs from the left, aligning
// each new graph against the running result only.
package merge

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/pipemerge/pkg/align"
	"github.com/matzehuels/pipemerge/pkg/dag"
	perrors "github.com/matzehuels/pipemerge/pkg/errors"
)

// ID prefixes for unmatched nodes.
const (
	Prefix1 = "G1."
	Prefix2 = "G2."
)

// AlignFunc computes the correspondence between the running merged graph and
// the next graph of a fold.
type AlignFunc func(merged, next *dag.DAG) (*align.Result, error)

// Merge returns a new graph combining g1 and g2 under c. Nodes of g1 come
// first in their original order, followed by the unmatched nodes of g2.
// Neither input is modified.
func Merge(g1, g2 *dag.DAG, c align.Correspondence) (*dag.DAG, error) {
	if err := checkCorrespondence(g1, g2, c); err != nil {
		return nil, err
	}

	out := dag.New(joinNames(g1.Name(), g2.Name()))
	ids1, ids2 := renames(g1, g2, c)

	for _, n := range g1.Nodes() {
		if err := out.AddNode(dag.Node{ID: ids1[n.ID], Records: n.Records}); err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "merge node %s", n.ID)
		}
	}
	for _, n := range g2.Nodes() {
		var err error
		if _, ok := c.G2ToG1[n.ID]; ok {
			err = out.AppendRecords(ids2[n.ID], n.Records...)
		} else {
			err = out.AddNode(dag.Node{ID: ids2[n.ID], Records: n.Records})
		}
		if err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "merge node %s", n.ID)
		}
	}

	for _, side := range []struct {
		g   *dag.DAG
		ids map[string]string
	}{{g1, ids1}, {g2, ids2}} {
		for _, e := range side.g.Edges() {
			from, to := side.ids[e.From], side.ids[e.To]
			if err := out.AddEdge(dag.Edge{From: from, To: to}); err != nil {
				return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "merge edge %s->%s", from, to)
			}
		}
	}

	if err := out.Validate(); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "merged graph %q", out.Name())
	}
	return out, nil
}

// renames maps the node IDs of g1 and g2 to their IDs in the merged graph.
// Matched nodes keep their g1 ID. Unmatched nodes get their side's prefix,
// repeated until the ID is free, so IDs stay unique across repeated merges.
func renames(g1, g2 *dag.DAG, c align.Correspondence) (ids1, ids2 map[string]string) {
	ids1 = make(map[string]string, g1.NodeCount())
	ids2 = make(map[string]string, g2.NodeCount())
	taken := make(map[string]bool, g1.NodeCount()+g2.NodeCount())

	for _, id := range g1.NodeIDs() {
		if _, ok := c.G1ToG2[id]; ok {
			ids1[id] = id
			taken[id] = true
		}
	}
	free := func(prefix, id string) string {
		out := prefix + id
		for taken[out] {
			out = prefix + out
		}
		taken[out] = true
		return out
	}
	for _, id := range g1.NodeIDs() {
		if _, ok := ids1[id]; !ok {
			ids1[id] = free(Prefix1, id)
		}
	}
	for _, id := range g2.NodeIDs() {
		if a, ok := c.G2ToG1[id]; ok {
			ids2[id] = a
		} else {
			ids2[id] = free(Prefix2, id)
		}
	}
	return ids1, ids2
}

// MergeAll aligns and merges graphs from left to right:
// merge(merge(g1, g2), g3) and so on. A single graph comes back with every
// node prefixed as unmatched.
func MergeAll(graphs []*dag.DAG, opts align.Options) (*dag.DAG, error) {
	return Fold(graphs, func(merged, next *dag.DAG) (*align.Result, error) {
		return align.Align(merged, next, opts)
	})
}

// Fold is [MergeAll] with a caller-supplied alignment step.
func Fold(graphs []*dag.DAG, fn AlignFunc) (*dag.DAG, error) {
	switch len(graphs) {
	case 0:
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "no graphs to merge")
	case 1:
		return Merge(graphs[0], dag.New(""), align.NewCorrespondence())
	}

	merged := graphs[0]
	for i, g := range graphs[1:] {
		res, err := fn(merged, g)
		if err != nil {
			return nil, fmt.Errorf("align graph %d (%s): %w", i+1, g.Name(), err)
		}
		if merged, err = Merge(merged, g, res.Correspondence); err != nil {
			return nil, fmt.Errorf("merge graph %d (%s): %w", i+1, g.Name(), err)
		}
	}
	return merged, nil
}

func checkCorrespondence(g1, g2 *dag.DAG, c align.Correspondence) error {
	if err := c.Validate(); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidInput, err, "correspondence")
	}
	for a, b := range c.G1ToG2 {
		if _, ok := g1.Node(a); !ok {
			return perrors.New(perrors.ErrCodeInvalidInput, "correspondence names unknown node %q of %q", a, g1.Name())
		}
		if _, ok := g2.Node(b); !ok {
			return perrors.New(perrors.ErrCodeInvalidInput, "correspondence names unknown node %q of %q", b, g2.Name())
		}
	}
	return nil
}

// joinNames joins graph names with "+". Names that would exceed
// [perrors.MaxGraphNameLen] collapse to "<first>+<n> more" so merged graphs
// can always be read back.
func joinNames(names ...string) string {
	var parts []string
	for _, n := range names {
		if n != "" {
			parts = append(parts, strings.Split(n, "+")...)
		}
	}
	joined := strings.Join(parts, "+")
	if len(joined) <= perrors.MaxGraphNameLen {
		return joined
	}

	more := 0
	for _, p := range parts[1:] {
		more += collapsedCount(p)
	}
	suffix := "+" + strconv.Itoa(more) + " more"
	first := parts[0]
	for len(first)+len(suffix) > perrors.MaxGraphNameLen {
		_, size := utf8.DecodeLastRuneInString(first)
		first = first[:len(first)-size]
	}
	return first + suffix
}

// collapsedCount is the number of graphs a name part stands for: n for a
// collapsed "<n> more" part, else 1.
func collapsedCount(part string) int {
	if s, ok := strings.CutSuffix(part, " more"); ok {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1
}
