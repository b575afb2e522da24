package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/pipemerge/pkg/dag"
	perrors "github.com/matzehuels/pipemerge/pkg/errors"
)

type nodeLink struct {
	Directed   bool       `json:"directed"`
	Multigraph bool       `json:"multigraph"`
	Graph      graphAttrs `json:"graph"`
	Nodes      []node     `json:"nodes"`
	Links      []link     `json:"links"`
}

type graphAttrs struct {
	Name string `json:"name,omitempty"`
}

type node struct {
	ID   string       `json:"id"`
	Data []dag.Record `json:"data"`
}

type link struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// WriteNodeLink encodes g as indented node-link JSON.
func WriteNodeLink(g *dag.DAG, w io.Writer) error {
	out := nodeLink{
		Directed: true,
		Graph:    graphAttrs{Name: g.Name()},
		Nodes:    make([]node, 0, g.NodeCount()),
		Links:    make([]link, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		data := n.Records
		if data == nil {
			data = []dag.Record{}
		}
		out.Nodes = append(out.Nodes, node{ID: n.ID, Data: data})
	}
	for _, e := range g.Edges() {
		out.Links = append(out.Links, link{Source: e.From, Target: e.To})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportNodeLink writes g to a node-link JSON file at path.
func ExportNodeLink(g *dag.DAG, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteNodeLink(g, f)
}

// ReadNodeLink decodes a node-link JSON graph from r.
//
// The graph must be directed, must not be a multigraph and must be acyclic.
// Links may only reference declared nodes. ReadNodeLink does not close r.
func ReadNodeLink(r io.Reader) (*dag.DAG, error) {
	var data nodeLink
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "decode node-link graph")
	}
	if !data.Directed || data.Multigraph {
		return nil, perrors.New(perrors.ErrCodeInvalidFormat,
			"node-link graph must be directed and simple (directed=%t, multigraph=%t)", data.Directed, data.Multigraph)
	}
	if err := perrors.ValidateGraphName(data.Graph.Name); err != nil {
		return nil, err
	}

	g := dag.New(data.Graph.Name)
	for _, n := range data.Nodes {
		if err := g.AddNode(dag.Node{ID: n.ID, Records: n.Data}); err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "node %q", n.ID)
		}
	}
	for _, l := range data.Links {
		if err := g.AddEdge(dag.Edge{From: l.Source, To: l.Target}); err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "link %s->%s", l.Source, l.Target)
		}
	}
	if err := g.Validate(); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "graph %q", g.Name())
	}
	return g, nil
}

// ImportNodeLink reads a node-link JSON file at path.
func ImportNodeLink(path string) (*dag.DAG, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "graph file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadNodeLink(f)
}

// IsNodeLink reports whether b looks like a node-link graph rather than a
// pipeline description: a JSON object with both "nodes" and "links".
func IsNodeLink(b []byte) bool {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return false
	}
	var probe struct {
		Nodes json.RawMessage `json:"nodes"`
		Links json.RawMessage `json:"links"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return false
	}
	return probe.Nodes != nil && probe.Links != nil
}
