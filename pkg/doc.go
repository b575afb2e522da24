// Package pkg holds the libraries behind pipemerge.
//
// # Overview
//
// pipemerge compares pipelines (DAGs of typed processing steps) and fuses
// them into one graph that shows which steps they share. The data flow is:
//
//	pipeline description (JSON / YAML)
//	         ↓
//	    [pipeline] package (decode + build the step graph)
//	         ↓
//	    [similarity] package (base similarity + similarity flooding)
//	         ↓
//	    [assign] package (edit cost matrix + optimal assignment)
//	         ↓
//	    [align] package (correspondence with cycle rejection)
//	         ↓
//	    [merge] package (fuse along the correspondence, fold left)
//	         ↓
//	    [io] package (node-link JSON / DOT)
//
// # Quick Start
//
//	ps, _ := pipeline.Load("pipelines.json")
//	g1, _ := pipeline.BuildGraph(ps[0], ps[0].Name())
//	g2, _ := pipeline.BuildGraph(ps[1], ps[1].Name())
//
//	res, _ := align.Align(g1, g2, align.DefaultOptions())
//	merged, _ := merge.Merge(g1, g2, res.Correspondence)
//	_ = io.WriteNodeLink(merged, os.Stdout)
//
// # Supporting Packages
//
//   - [dag]: ordered graph with record payloads; [dag/transform] adds union,
//     contraction and cycle search
//   - [engine]: cached, traced Align / Merge / Compare shared by the CLI and
//     the HTTP API
//   - [cache]: file, redis and null backends for alignment results
//   - [server]: HTTP JSON API
//   - [observability]: hooks for metrics, with a Prometheus implementation
//   - [errors]: coded errors shared by every entry point
//   - [buildinfo]: version stamped at link time
//
// [pipeline]: github.com/matzehuels/pipemerge/pkg/pipeline
// [similarity]: github.com/matzehuels/pipemerge/pkg/similarity
// [assign]: github.com/matzehuels/pipemerge/pkg/assign
// [align]: github.com/matzehuels/pipemerge/pkg/align
// [merge]: github.com/matzehuels/pipemerge/pkg/merge
// [io]: github.com/matzehuels/pipemerge/pkg/io
// [dag]: github.com/matzehuels/pipemerge/pkg/dag
// [dag/transform]: github.com/matzehuels/pipemerge/pkg/dag/transform
// [engine]: github.com/matzehuels/pipemerge/pkg/engine
// [cache]: github.com/matzehuels/pipemerge/pkg/cache
// [server]: github.com/matzehuels/pipemerge/pkg/server
// [observability]: github.com/matzehuels/pipemerge/pkg/observability
// [errors]: github.com/matzehuels/pipemerge/pkg/errors
// [buildinfo]: github.com/matzehuels/pipemerge/pkg/buildinfo
package pkg
