package transform

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/pipemerge/pkg/dag"
)

func chain(ids ...string) *dag.DAG {
	g := dag.New("chain")
	for _, id := range ids {
		g.AddNode(dag.Node{ID: id})
	}
	for i := 1; i < len(ids); i++ {
		g.AddEdge(dag.Edge{From: ids[i-1], To: ids[i]})
	}
	return g
}

func TestFindCycleFrom_NoCycles(t *testing.T) {
	g := chain("a", "b", "c")

	if cycle := FindCycleFrom(g, "a"); cycle != nil {
		t.Errorf("FindCycleFrom() = %v, want nil", cycle)
	}
}

func TestFindCycleFrom_SimpleCycle(t *testing.T) {
	g := chain("a", "b", "c")
	g.AddEdge(dag.Edge{From: "c", To: "b"})

	got := FindCycleFrom(g, "a")
	want := []string{"b", "c", "b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FindCycleFrom() mismatch (-want +got):\n%s", diff)
	}
}

func TestFindCycleFrom_UnreachableCycle(t *testing.T) {
	g := chain("a", "b")
	g.AddNode(dag.Node{ID: "x"})
	g.AddNode(dag.Node{ID: "y"})
	g.AddEdge(dag.Edge{From: "x", To: "y"})
	g.AddEdge(dag.Edge{From: "y", To: "x"})

	if cycle := FindCycleFrom(g, "a"); cycle != nil {
		t.Errorf("FindCycleFrom(a) = %v, want nil", cycle)
	}
	if cycle := FindCycleFrom(g, "a", "x"); cycle == nil {
		t.Error("FindCycleFrom(a, x) should report the x<->y cycle")
	}
}

func TestFindCycleFrom_UnknownSource(t *testing.T) {
	g := chain("a", "b")

	if cycle := FindCycleFrom(g, "missing"); cycle != nil {
		t.Errorf("FindCycleFrom() = %v, want nil", cycle)
	}
}
