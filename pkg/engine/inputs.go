package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matzehuels/pipemerge/pkg/dag"
	perrors "github.com/matzehuels/pipemerge/pkg/errors"
	graphio "github.com/matzehuels/pipemerge/pkg/io"
	"github.com/matzehuels/pipemerge/pkg/pipeline"
)

// LoadGraphs reads every path and returns the graphs they hold, in order.
// A file is either a node-link graph (as written by a previous merge) or a
// JSON/YAML pipeline document holding one or more pipelines.
func (r *Runner) LoadGraphs(ctx context.Context, paths ...string) ([]*dag.DAG, error) {
	var graphs []*dag.DAG
	for _, path := range paths {
		gs, err := r.loadFile(ctx, path)
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, gs...)
	}
	return graphs, nil
}

func (r *Runner) loadFile(ctx context.Context, path string) ([]*dag.DAG, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "input %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if graphio.IsNodeLink(data) {
		g, err := graphio.ReadNodeLink(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		r.Logger.Debug("loaded graph", "path", path, "nodes", g.NodeCount())
		return []*dag.DAG{g}, nil
	}

	ps, err := pipeline.Decode(bytes.NewReader(data), filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	graphs, err := r.Build(ctx, ps)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return graphs, nil
}
