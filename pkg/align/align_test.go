package align

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/pipemerge/pkg/dag"
	"github.com/matzehuels/pipemerge/pkg/dag/transform"
	perrors "github.com/matzehuels/pipemerge/pkg/errors"
)

const (
	imputer = "d3m.primitives.data_cleaning.imputer.SKlearn"
	encoder = "d3m.primitives.data_transformation.one_hot_encoder.SKlearn"
	forest  = "d3m.primitives.classification.random_forest.SKlearn"
	svc     = "d3m.primitives.classification.svc.SKlearn"
)

// chain builds inputs.0 -> steps.0 -> ... -> outputs.0.
func chain(t *testing.T, name string, paths ...string) *dag.DAG {
	t.Helper()
	g := dag.New(name)
	add := func(id, path string) {
		if err := g.AddNode(dag.Node{ID: id, Records: []dag.Record{{Path: path, Name: path, Graph: name}}}); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
	add("inputs.0", "Input")
	prev := "inputs.0"
	for i, p := range paths {
		id := "steps." + strconv.Itoa(i)
		add(id, p)
		_ = g.AddEdge(dag.Edge{From: prev, To: id})
		prev = id
	}
	add("outputs.0", "Output")
	_ = g.AddEdge(dag.Edge{From: prev, To: "outputs.0"})
	return g
}

func TestAlign_Identity(t *testing.T) {
	g := chain(t, "g", imputer, encoder, forest)

	res, err := Align(g, g.Clone(), DefaultOptions())
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	want := map[string]string{}
	for _, id := range g.NodeIDs() {
		want[id] = id
	}
	if diff := cmp.Diff(want, res.G1ToG2); diff != "" {
		t.Errorf("G1ToG2 mismatch (-want +got):\n%s", diff)
	}
	if res.Degenerate {
		t.Error("Degenerate = true, want false for graphs with edges")
	}
	if len(res.Rejected) != 0 {
		t.Errorf("Rejected = %v, want none", res.Rejected)
	}
}

func TestAlign_SingleStepFallsBackToBase(t *testing.T) {
	single := func(name string) *dag.DAG {
		g := dag.New(name)
		_ = g.AddNode(dag.Node{ID: "steps.0", Records: []dag.Record{{Path: imputer}}})
		return g
	}

	res, err := Align(single("a"), single("b"), DefaultOptions())
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if !res.Degenerate {
		t.Error("Degenerate = false, want true for graphs without edges")
	}
	if got := res.Similarity.At(0, 0); math.Abs(got-1.05) > 1e-12 {
		t.Errorf("similarity = %v, want base value 1.05", got)
	}
	if got := res.G1ToG2["steps.0"]; got != "steps.0" {
		t.Errorf("G1ToG2[steps.0] = %q, want steps.0", got)
	}
}

func TestAlign_RejectsCycles(t *testing.T) {
	// a -> b in the first graph, b -> a in the second: matching both pairs
	// would contract into a two-node cycle.
	g1 := dag.New("g1")
	_ = g1.AddNode(dag.Node{ID: "a", Records: []dag.Record{{Path: imputer}}})
	_ = g1.AddNode(dag.Node{ID: "b", Records: []dag.Record{{Path: forest}}})
	_ = g1.AddEdge(dag.Edge{From: "a", To: "b"})

	g2 := dag.New("g2")
	_ = g2.AddNode(dag.Node{ID: "b", Records: []dag.Record{{Path: forest}}})
	_ = g2.AddNode(dag.Node{ID: "a", Records: []dag.Record{{Path: imputer}}})
	_ = g2.AddEdge(dag.Edge{From: "b", To: "a"})

	res, err := Align(g1, g2, DefaultOptions())
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"a": "a"}, res.G1ToG2); diff != "" {
		t.Errorf("G1ToG2 mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Pair{{G1: "b", G2: "b"}}, res.Rejected); diff != "" {
		t.Errorf("Rejected mismatch (-want +got):\n%s", diff)
	}
}

func TestAlign_AcceptedPairsKeepHelperAcyclic(t *testing.T) {
	g1 := chain(t, "g1", imputer, encoder, forest)
	g2 := chain(t, "g2", encoder, imputer, svc, forest)

	res, err := Align(g1, g2, DefaultOptions())
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if err := res.Validate(); err != nil {
		t.Fatalf("correspondence: %v", err)
	}

	helper, err := transform.Union(g1, g2, helperPrefix1, helperPrefix2)
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	for a, b := range res.G1ToG2 {
		if err := transform.Contract(helper, helperPrefix1+a, helperPrefix2+b); err != nil {
			t.Fatalf("Contract(%s, %s): %v", a, b, err)
		}
	}
	if cycle := transform.FindCycleFrom(helper, helperSources(g1, g2)...); cycle != nil {
		t.Errorf("accepted correspondences close a cycle: %v", cycle)
	}
}

func TestAlign_MutualInverse(t *testing.T) {
	g1 := chain(t, "g1", imputer, forest)
	g2 := chain(t, "g2", imputer, encoder, svc)

	res, err := Align(g1, g2, DefaultOptions())
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	for a, b := range res.G1ToG2 {
		if res.G2ToG1[b] != a {
			t.Errorf("G2ToG1[%s] = %q, want %q", b, res.G2ToG1[b], a)
		}
	}
	if len(res.G1ToG2) != len(res.G2ToG1) {
		t.Errorf("map sizes differ: %d vs %d", len(res.G1ToG2), len(res.G2ToG1))
	}
}

func TestAlign_InvalidInput(t *testing.T) {
	g := chain(t, "g", imputer)

	tests := []struct {
		name   string
		g1, g2 *dag.DAG
		opts   func(*Options)
	}{
		{"empty first graph", dag.New("empty"), g, nil},
		{"empty second graph", g, dag.New("empty"), nil},
		{"alpha above one", g, g, func(o *Options) { o.Alpha = 1.5 }},
		{"negative iterations", g, g, func(o *Options) { o.Iterations = -1 }},
		{"too many iterations", g, g, func(o *Options) { o.Iterations = MaxIterations + 1 }},
		{"negative add cost", g, g, func(o *Options) { o.AddCost = -0.1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			if tt.opts != nil {
				tt.opts(&opts)
			}
			_, err := Align(tt.g1, tt.g2, opts)
			if !perrors.Is(err, perrors.ErrCodeInvalidInput) {
				t.Errorf("Align() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestCorrespondence_Validate(t *testing.T) {
	c := NewCorrespondence()
	c.add("a", "x")
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	c.G2ToG1["x"] = "b"
	if err := c.Validate(); !errors.Is(err, ErrNotInjective) {
		t.Errorf("Validate() = %v, want ErrNotInjective", err)
	}
}
