// Package io reads and writes pipeline graphs.
//
// # Node-Link JSON
//
// Graphs are exchanged in the node-link layout used by networkx, so merged
// graphs can be handed to existing front-ends and read back for further
// merges:
//
//	{
//	  "directed": true,
//	  "multigraph": false,
//	  "graph": {"name": "p1+p2"},
//	  "nodes": [
//	    {"id": "inputs.0", "data": [{"python_path": "Input", "node_name": "Input", "hyperparams": {}, "graph_name": "p1"}]},
//	    {"id": "steps.0", "data": [...]}
//	  ],
//	  "links": [
//	    {"source": "inputs.0", "target": "steps.0"}
//	  ]
//	}
//
// Every node carries its list of records under "data"; a node produced by
// merging holds one record per contributing pipeline. Node and link order is
// preserved, so [ReadNodeLink] of [WriteNodeLink] output yields an equal
// graph with equal node indices.
//
// Use [ImportNodeLink] and [ExportNodeLink] for files.
//
// # DOT
//
// [ToDOT] renders a graph as Graphviz DOT source. Nodes holding more than one
// record (steps shared between pipelines) are highlighted.
package io
