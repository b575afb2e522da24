// Package dag provides the directed graph that pipelines are compared and
// merged on.
//
// # Overview
//
// A pipeline becomes a graph whose nodes are keyed by structural identifiers
// ("inputs.0", "steps.4", "outputs.0") and whose edges run from the step that
// produces a value to every step consuming it. Each node carries an ordered
// list of [Record] values: one per original step. Merging two graphs
// concatenates the record lists of corresponded nodes, so a node of a merged
// graph tells which pipelines contributed to it through [Record.Graph].
//
// # Basic Usage
//
//	g := dag.New("pipeline-a")
//	g.AddNode(dag.Node{ID: "inputs.0", Records: []dag.Record{{Path: "Input"}}})
//	g.AddNode(dag.Node{ID: "steps.0", Records: []dag.Record{{Path: "d3m.primitives.data_cleaning.imputer.SKlearn"}}})
//	g.AddEdge(dag.Edge{From: "inputs.0", To: "steps.0"})
//
// # Ordering
//
// Unlike a map-backed graph, [DAG.Nodes] and [DAG.Edges] return a stable order
// (node insertion order). Similarity matrices index nodes by this order, which
// keeps alignment results reproducible.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Aligning many graph pairs in
// parallel is safe as long as no goroutine mutates a graph another one reads.
//
// # Related Packages
//
// The [transform] subpackage provides the union, node contraction and cycle
// search used while choosing correspondences.
//
// [transform]: github.com/matzehuels/pipemerge/pkg/dag/transform
package dag
