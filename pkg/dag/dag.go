package dag

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the
	// same ID already exists in the graph. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrUnknownNode is returned by operations that address a single node
	// which is not part of the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrGraphHasCycle is returned by [DAG.Validate] when a cycle is detected.
	// Cycles are detected using depth-first search with white/gray/black coloring.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Record describes one original pipeline step carried by a node. A node of an
// unmerged graph holds exactly one record; merging appends the records of the
// corresponded node so the list names every contributing step.
type Record struct {
	Path        string         `json:"python_path"` // Hierarchical primitive path (family is the 3rd segment)
	Name        string         `json:"node_name"`   // Display name
	Hyperparams map[string]any `json:"hyperparams"` // Never nil after AddNode
	Graph       string         `json:"graph_name"`  // Name of the graph the step came from
}

// Node is a vertex keyed by a structural identifier such as "inputs.0",
// "steps.3" or, after merging, "G2.steps.3".
type Node struct {
	ID      string
	Records []Record
}

// Path returns the path of the node's first record, or "" for a node
// without records.
func (n Node) Path() string {
	if len(n.Records) == 0 {
		return ""
	}
	return n.Records[0].Path
}

// Edge is a producer → consumer connection.
type Edge struct {
	From string
	To   string
}

// DAG is a directed graph of pipeline steps. Node insertion order is
// preserved and defines the row/column index of a node in similarity
// matrices, so two graphs built from the same data always align the same way.
//
// Edges are de-duplicated: adding an existing edge is a no-op. The zero value
// is not usable - use New. DAG is not safe for concurrent use without external
// synchronization.
type DAG struct {
	name     string
	order    []string
	nodes    map[string]*Node
	outgoing map[string][]string // nodeID -> children IDs, insertion order
	incoming map[string][]string // nodeID -> parent IDs, insertion order
	edges    int
}

// New creates an empty graph. The name is copied into the records of nodes
// built from pipelines and is otherwise informational.
func New(name string) *DAG {
	return &DAG{
		name:     name,
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// Name returns the graph name given to New.
func (d *DAG) Name() string { return d.name }

// AddNode adds a node at the end of the node order.
// Returns ErrInvalidNodeID if the node ID is empty, or ErrDuplicateNodeID
// if a node with the same ID already exists. Record hyperparameter maps are
// initialized to empty maps if nil.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	n.Records = cloneRecords(n.Records)
	d.nodes[n.ID] = &n
	d.order = append(d.order, n.ID)
	return nil
}

// AppendRecords adds records to the end of an existing node's record list.
func (d *DAG) AppendRecords(id string, records ...Record) error {
	n, ok := d.nodes[id]
	if !ok {
		return ErrUnknownNode
	}
	n.Records = append(n.Records, cloneRecords(records)...)
	return nil
}

// AddEdge adds a directed edge between two existing nodes.
// Returns ErrUnknownSourceNode if the From node doesn't exist, or
// ErrUnknownTargetNode if the To node doesn't exist. Adding an edge that
// already exists does nothing.
//
// AddEdge does not reject cycles - use Validate after building the graph.
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if d.HasEdge(e.From, e.To) {
		return nil
	}
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	d.edges++
	return nil
}

// HasEdge reports whether the edge from→to exists.
func (d *DAG) HasEdge(from, to string) bool {
	return slices.Contains(d.outgoing[from], to)
}

// RemoveEdge removes the edge from→to if it exists.
// No error is returned if the edge does not exist.
func (d *DAG) RemoveEdge(from, to string) {
	if !d.HasEdge(from, to) {
		return
	}
	d.outgoing[from] = slices.DeleteFunc(d.outgoing[from], func(s string) bool { return s == to })
	d.incoming[to] = slices.DeleteFunc(d.incoming[to], func(s string) bool { return s == from })
	d.edges--
}

// RemoveNode deletes a node together with all of its incident edges.
func (d *DAG) RemoveNode(id string) error {
	if _, ok := d.nodes[id]; !ok {
		return ErrUnknownNode
	}
	for _, child := range slices.Clone(d.outgoing[id]) {
		d.RemoveEdge(id, child)
	}
	for _, parent := range slices.Clone(d.incoming[id]) {
		d.RemoveEdge(parent, id)
	}
	delete(d.nodes, id)
	delete(d.outgoing, id)
	delete(d.incoming, id)
	d.order = slices.DeleteFunc(d.order, func(s string) bool { return s == id })
	return nil
}

// Nodes returns all nodes in insertion order. The returned slice contains
// pointers to the actual node structs, so modifications affect the graph
// (except for ID changes, which would desync the index).
func (d *DAG) Nodes() []*Node {
	nodes := make([]*Node, len(d.order))
	for i, id := range d.order {
		nodes[i] = d.nodes[id]
	}
	return nodes
}

// NodeIDs returns all node IDs in insertion order.
func (d *DAG) NodeIDs() []string { return slices.Clone(d.order) }

// Index maps each node ID to its position in the node order.
func (d *DAG) Index() map[string]int {
	m := make(map[string]int, len(d.order))
	for i, id := range d.order {
		m[id] = i
	}
	return m
}

// Edges returns all edges grouped by source node in node order, and by
// insertion order within one source.
func (d *DAG) Edges() []Edge {
	edges := make([]Edge, 0, d.edges)
	for _, id := range d.order {
		for _, child := range d.outgoing[id] {
			edges = append(edges, Edge{From: id, To: child})
		}
	}
	return edges
}

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.order) }

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int { return d.edges }

// Children returns the IDs of nodes consuming this node's output.
// The returned slice should not be modified.
func (d *DAG) Children(id string) []string { return d.outgoing[id] }

// Parents returns the IDs of nodes this node consumes from.
// The returned slice should not be modified.
func (d *DAG) Parents(id string) []string { return d.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
func (d *DAG) OutDegree(id string) int { return len(d.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
func (d *DAG) InDegree(id string) int { return len(d.incoming[id]) }

// Node returns the node with the given ID and true, or nil and false if not found.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Sources returns nodes with no incoming edges, in node order.
func (d *DAG) Sources() []*Node {
	var sources []*Node
	for _, n := range d.Nodes() {
		if len(d.incoming[n.ID]) == 0 {
			sources = append(sources, n)
		}
	}
	return sources
}

// Sinks returns nodes with no outgoing edges, in node order.
func (d *DAG) Sinks() []*Node {
	var sinks []*Node
	for _, n := range d.Nodes() {
		if len(d.outgoing[n.ID]) == 0 {
			sinks = append(sinks, n)
		}
	}
	return sinks
}

// Clone returns a deep copy of the graph.
func (d *DAG) Clone() *DAG {
	c := New(d.name)
	for _, n := range d.Nodes() {
		_ = c.AddNode(*n)
	}
	for _, e := range d.Edges() {
		_ = c.AddEdge(e)
	}
	return c
}

// Validate returns ErrGraphHasCycle if the graph contains a directed cycle.
// Cycle detection runs in O(N+E) time using depth-first search.
func (d *DAG) Validate() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range d.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				return
			}
			if hasCycle {
				return
			}
		}
		color[id] = black
	}

	for _, id := range d.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

func cloneRecords(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i, r := range records {
		hp := make(map[string]any, len(r.Hyperparams))
		for k, v := range r.Hyperparams {
			hp[k] = v
		}
		r.Hyperparams = hp
		out[i] = r
	}
	return out
}

// NodeIDs extracts the ID from each node in a slice, keeping the order.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
