// Package transform provides the graph operations used while choosing node
// correspondences between two pipeline graphs.
//
// # Union
//
// [Union] lays two graphs side by side in one helper graph, prefixing node IDs
// with a provenance tag ("g1-", "g2-") so that identical structural
// identifiers stay distinct.
//
// # Contraction
//
// [Contract] fuses two nodes of the helper graph into one, redirecting edges
// and dropping the self-loops the fusion creates. Accepting a correspondence
// is modeled as contracting its two nodes.
//
// # Cycle Search
//
// [FindCycleFrom] looks for a directed cycle reachable from named source
// nodes. A correspondence whose contraction makes a cycle reachable from
// either input sentinel would make the merged graph cyclic and is rejected.
package transform
