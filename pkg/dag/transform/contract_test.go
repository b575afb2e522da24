package transform

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/pipemerge/pkg/dag"
)

func TestUnion(t *testing.T) {
	g1 := chain("inputs.0", "steps.0")
	g2 := chain("inputs.0", "steps.0", "steps.1")

	u, err := Union(g1, g2, "g1-", "g2-")
	if err != nil {
		t.Fatalf("Union() error: %v", err)
	}

	wantNodes := []string{"g1-inputs.0", "g1-steps.0", "g2-inputs.0", "g2-steps.0", "g2-steps.1"}
	if diff := cmp.Diff(wantNodes, u.NodeIDs()); diff != "" {
		t.Errorf("node IDs mismatch (-want +got):\n%s", diff)
	}
	if u.EdgeCount() != 3 {
		t.Errorf("EdgeCount() = %d, want 3", u.EdgeCount())
	}
}

func TestUnion_Collision(t *testing.T) {
	g := chain("a")

	if _, err := Union(g, g, "", ""); !errors.Is(err, dag.ErrDuplicateNodeID) {
		t.Errorf("Union() error = %v, want ErrDuplicateNodeID", err)
	}
}

func TestContract(t *testing.T) {
	// a -> b -> c and x -> y; contract b with y.
	g := chain("a", "b", "c")
	g.AddNode(dag.Node{ID: "x", Records: []dag.Record{{Path: "x"}}})
	g.AddNode(dag.Node{ID: "y", Records: []dag.Record{{Path: "y"}}})
	g.AddEdge(dag.Edge{From: "x", To: "y"})

	if err := Contract(g, "b", "y"); err != nil {
		t.Fatalf("Contract() error: %v", err)
	}

	if _, ok := g.Node("y"); ok {
		t.Error("dropped node y should be removed")
	}
	if !g.HasEdge("x", "b") {
		t.Error("edge x->y should be redirected to x->b")
	}
	n, _ := g.Node("b")
	if len(n.Records) != 1 || n.Records[0].Path != "y" {
		t.Errorf("records of b = %+v, want the record of y appended", n.Records)
	}
}

func TestContract_DropsSelfLoops(t *testing.T) {
	g := chain("a", "b")

	if err := Contract(g, "a", "b"); err != nil {
		t.Fatalf("Contract() error: %v", err)
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0 (self-loop dropped)", g.EdgeCount())
	}
}

func TestContract_CreatesCycle(t *testing.T) {
	// a -> b, c -> d: contracting a with d yields c -> a -> b; contracting b
	// with c then yields a cycle a -> b -> a.
	g := chain("a", "b")
	g.AddNode(dag.Node{ID: "c"})
	g.AddNode(dag.Node{ID: "d"})
	g.AddEdge(dag.Edge{From: "c", To: "d"})

	if err := Contract(g, "a", "d"); err != nil {
		t.Fatal(err)
	}
	if FindCycleFrom(g, "a", "c") != nil {
		t.Fatal("no cycle expected after first contraction")
	}
	if err := Contract(g, "b", "c"); err != nil {
		t.Fatal(err)
	}
	if FindCycleFrom(g, "a") == nil {
		t.Error("expected a cycle after contracting b with c")
	}
}

func TestContract_UnknownNode(t *testing.T) {
	g := chain("a")

	if err := Contract(g, "a", "zzz"); !errors.Is(err, dag.ErrUnknownNode) {
		t.Errorf("Contract() error = %v, want ErrUnknownNode", err)
	}
}
