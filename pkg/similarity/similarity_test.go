package similarity

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/pipemerge/pkg/dag"
)

const (
	imputer = "d3m.primitives.data_cleaning.imputer.SKlearn"
	scaler  = "d3m.primitives.data_cleaning.scaler.SKlearn"
	forest  = "d3m.primitives.classification.random_forest.SKlearn"
)

// build returns a graph whose nodes carry one record each. Nodes map IDs to
// primitive paths; an empty path yields a node without records.
func build(t *testing.T, name string, nodes [][2]string, edges ...[2]string) *dag.DAG {
	t.Helper()
	g := dag.New(name)
	for _, n := range nodes {
		node := dag.Node{ID: n[0]}
		if n[1] != "" {
			node.Records = []dag.Record{{Path: n[1], Name: name, Graph: name}}
		}
		if err := g.AddNode(node); err != nil {
			t.Fatalf("AddNode(%s): %v", n[0], err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(dag.Edge{From: e[0], To: e[1]}); err != nil {
			t.Fatalf("AddEdge(%s->%s): %v", e[0], e[1], err)
		}
	}
	return g
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestPathSimilarity(t *testing.T) {
	tests := []struct {
		name   string
		p1, p2 string
		want   float64
	}{
		{"identical", imputer, imputer, 1},
		{"same family", imputer, scaler, 0.5},
		{"different family", imputer, forest, 0},
		{"identical sentinels", "Input", "Input", 1},
		{"short paths differ", "Input", "Output", 0},
		{"one short path", "Input", imputer, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PathSimilarity(tt.p1, tt.p2); got != tt.want {
				t.Errorf("PathSimilarity(%q, %q) = %v, want %v", tt.p1, tt.p2, got, tt.want)
			}
		})
	}
}

func TestPosition(t *testing.T) {
	tests := map[string]string{
		"steps.3":         "steps.3",
		"G1.steps.3":      "steps.3",
		"G2.G1.inputs.0":  "inputs.0",
		"single":          "single",
		"G1.G2.outputs.0": "outputs.0",
	}
	for id, want := range tests {
		if got := Position(id); got != want {
			t.Errorf("Position(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestNodeType(t *testing.T) {
	g := build(t, "g", [][2]string{{"inputs.0", "Input"}, {"steps.0", imputer}, {"bare", ""}})

	want := map[string]string{"inputs.0": "Input", "steps.0": "data_cleaning", "bare": ""}
	for id, typ := range want {
		n, _ := g.Node(id)
		if got := NodeType(n); got != typ {
			t.Errorf("NodeType(%s) = %q, want %q", id, got, typ)
		}
	}
}

func TestBase(t *testing.T) {
	g1 := build(t, "a", [][2]string{{"inputs.0", "Input"}, {"steps.0", imputer}})
	g2 := build(t, "b", [][2]string{{"inputs.0", "Input"}, {"steps.0", scaler}, {"steps.1", imputer}})

	sim, err := Base(g1, g2)
	if err != nil {
		t.Fatalf("Base: %v", err)
	}
	if r, c := sim.Dims(); r != 2 || c != 3 {
		t.Fatalf("Dims() = %dx%d, want 2x3", r, c)
	}

	tests := []struct {
		i, j int
		want float64
	}{
		{0, 0, 1.05},
		{0, 1, 0},
		{1, 1, 0.55},
		{1, 2, 1},
		{1, 0, 0},
	}
	for _, tt := range tests {
		if got := sim.At(tt.i, tt.j); !approx(got, tt.want) {
			t.Errorf("sim[%d][%d] = %v, want %v", tt.i, tt.j, got, tt.want)
		}
	}
}

func TestBase_AveragesRecords(t *testing.T) {
	g1 := dag.New("a")
	_ = g1.AddNode(dag.Node{ID: "G1.steps.0", Records: []dag.Record{{Path: imputer}, {Path: forest}}})
	g2 := build(t, "b", [][2]string{{"steps.0", imputer}})

	sim, err := Base(g1, g2)
	if err != nil {
		t.Fatalf("Base: %v", err)
	}
	// ((1 + 0.05) + (0 + 0.05)) / 2
	if got := sim.At(0, 0); !approx(got, 0.55) {
		t.Errorf("sim[0][0] = %v, want 0.55", got)
	}
}

func TestBase_EmptyGraph(t *testing.T) {
	g := build(t, "a", [][2]string{{"inputs.0", "Input"}})
	if _, err := Base(g, dag.New("empty")); !errors.Is(err, ErrEmptyGraph) {
		t.Errorf("Base(g, empty) error = %v, want ErrEmptyGraph", err)
	}
}

func TestNewPCG(t *testing.T) {
	g1 := build(t, "a", [][2]string{{"in", "Input"}, {"a", imputer}}, [2]string{"in", "a"})
	g2 := build(t, "b",
		[][2]string{{"in", "Input"}, {"x", imputer}, {"y", scaler}, {"z", forest}},
		[2]string{"in", "x"}, [2]string{"in", "y"}, [2]string{"in", "z"})

	pcg, err := NewPCG(g1, g2)
	if err != nil {
		t.Fatalf("NewPCG: %v", err)
	}
	if pcg.Len() != 3 {
		t.Errorf("Len() = %d, want 3 (in,in) (a,x) (a,y)", pcg.Len())
	}
	if pcg.EdgeCount() != 4 {
		t.Errorf("EdgeCount() = %d, want 4", pcg.EdgeCount())
	}

	op, err := pcg.operator()
	if err != nil {
		t.Fatalf("operator: %v", err)
	}
	// (in,in) reaches two pairs through the same edge type.
	if len(op[0]) != 2 || !approx(op[0][0].weight, 0.5) || !approx(op[0][1].weight, 0.5) {
		t.Errorf("row (in,in) = %+v, want two entries of 0.5", op[0])
	}
	if len(op[1]) != 1 || !approx(op[1][0].weight, 1) {
		t.Errorf("row (a,x) = %+v, want one entry of 1", op[1])
	}
}

func TestFlood(t *testing.T) {
	nodes := [][2]string{{"in", "Input"}, {"a", imputer}, {"b", forest}}
	g1 := build(t, "a", nodes, [2]string{"in", "a"}, [2]string{"a", "b"})
	g2 := build(t, "b", nodes, [2]string{"in", "a"}, [2]string{"a", "b"})

	base, err := Base(g1, g2)
	if err != nil {
		t.Fatalf("Base: %v", err)
	}
	before := mat.DenseCopyOf(base)

	got, err := Flood(base, g1, g2, DefaultFloodOptions())
	if err != nil {
		t.Fatalf("Flood: %v", err)
	}
	if !mat.Equal(base, before) {
		t.Error("Flood modified its input matrix")
	}

	// Only diagonal pairs are PCG vertices; the middle node has the most
	// neighbours and ends up with the maximum score.
	if !approx(got.At(1, 1), 1) {
		t.Errorf("sim[1][1] = %v, want 1", got.At(1, 1))
	}
	for _, i := range []int{0, 2} {
		if v := got.At(i, i); v <= 0 || v >= 1 {
			t.Errorf("sim[%d][%d] = %v, want in (0, 1)", i, i, v)
		}
	}
	// Pairs outside the PCG keep their base value.
	if got.At(0, 1) != base.At(0, 1) || got.At(1, 2) != base.At(1, 2) {
		t.Error("entries outside the PCG should keep their base value")
	}
}

func TestFlood_EmptyPCG(t *testing.T) {
	g1 := build(t, "a", [][2]string{{"steps.0", imputer}})
	g2 := build(t, "b", [][2]string{{"steps.0", imputer}})
	base, _ := Base(g1, g2)

	if _, err := Flood(base, g1, g2, DefaultFloodOptions()); !errors.Is(err, ErrEmptyPCG) {
		t.Errorf("Flood() error = %v, want ErrEmptyPCG", err)
	}
}

func TestFlood_ZeroSimilarity(t *testing.T) {
	// Nodes without records score 0 but still share the empty edge type.
	g1 := build(t, "a", [][2]string{{"x", ""}, {"y", ""}}, [2]string{"x", "y"})
	g2 := build(t, "b", [][2]string{{"x", ""}, {"y", ""}}, [2]string{"x", "y"})
	base, _ := Base(g1, g2)

	if _, err := Flood(base, g1, g2, DefaultFloodOptions()); !errors.Is(err, ErrZeroSimilarity) {
		t.Errorf("Flood() error = %v, want ErrZeroSimilarity", err)
	}
}

func TestPropagate_KeepsMaximumAtOne(t *testing.T) {
	nodes := [][2]string{{"in", "Input"}, {"a", imputer}, {"b", scaler}, {"c", forest}}
	g1 := build(t, "a", nodes, [2]string{"in", "a"}, [2]string{"in", "b"}, [2]string{"a", "c"}, [2]string{"b", "c"})
	g2 := build(t, "b", nodes, [2]string{"in", "a"}, [2]string{"a", "b"}, [2]string{"b", "c"})

	pcg, err := NewPCG(g1, g2)
	if err != nil {
		t.Fatalf("NewPCG: %v", err)
	}
	op, err := pcg.operator()
	if err != nil {
		t.Fatalf("operator: %v", err)
	}

	n := pcg.Len()
	v := mat.NewVecDense(n, nil)
	for i := range n {
		v.SetVec(i, float64(i+1))
	}
	if err := normalize(v); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	next, spread := mat.NewVecDense(n, nil), mat.NewVecDense(n, nil)
	for it := range 20 {
		if err := propagate(op, v, next, spread, 0.3); err != nil {
			t.Fatalf("iteration %d: %v", it, err)
		}
		v, next = next, v
		if m := mat.Max(v); !approx(m, 1) {
			t.Fatalf("iteration %d: max = %v, want 1", it, m)
		}
		if m := mat.Min(v); m < 0 {
			t.Fatalf("iteration %d: min = %v, want >= 0", it, m)
		}
	}
}
