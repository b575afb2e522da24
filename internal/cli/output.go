package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/pipemerge/pkg/dag"
	"github.com/matzehuels/pipemerge/pkg/engine"
	graphio "github.com/matzehuels/pipemerge/pkg/io"
)

// graphOpts are the output flags of commands that print graphs.
type graphOpts struct {
	output   string // output file; stdout when empty
	format   string // json or dot
	detailed bool   // DOT labels list every record
}

// writeGraph encodes g in the requested format.
func writeGraph(w io.Writer, g *dag.DAG, opts graphOpts) error {
	switch opts.format {
	case engine.FormatDOT:
		_, err := io.WriteString(w, graphio.ToDOT(g, graphio.DOTOptions{Detailed: opts.detailed}))
		return err
	default:
		return graphio.WriteNodeLink(g, w)
	}
}

// emitGraph writes g to opts.output, or to stdout when no file is set.
func emitGraph(stdout io.Writer, g *dag.DAG, opts graphOpts) error {
	if opts.output == "" {
		return writeGraph(stdout, g, opts)
	}
	f, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("create %s: %w", opts.output, err)
	}
	if err := writeGraph(f, g, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	printFile(opts.output)
	return nil
}
