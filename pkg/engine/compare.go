package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/pipemerge/pkg/dag"
	perrors "github.com/matzehuels/pipemerge/pkg/errors"
)

// Comparison is the alignment of graphs I and J (I < J).
type Comparison struct {
	I          int     `json:"i"`
	J          int     `json:"j"`
	G1         string  `json:"g1"`
	G2         string  `json:"g2"`
	Matched    int     `json:"matched"`
	Overlap    float64 `json:"overlap"`
	Degenerate bool    `json:"degenerate"`
	CacheHit   bool    `json:"cache_hit"`
}

// Overlap is the share of nodes two graphs have in common:
// matched / (n1 + n2 - matched).
func Overlap(n1, n2, matched int) float64 {
	union := n1 + n2 - matched
	if union <= 0 {
		return 0
	}
	return float64(matched) / float64(union)
}

// Compare aligns every unordered pair of graphs, at most opts.Concurrency
// at a time. Results are ordered by (I, J). Graphs are only read, so the
// same graph may take part in several concurrent alignments.
func (r *Runner) Compare(ctx context.Context, graphs []*dag.DAG, opts Options) (out []Comparison, err error) {
	if err := r.prepare(&opts); err != nil {
		return nil, err
	}
	if len(graphs) < 2 {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "compare needs at least two graphs, got %d", len(graphs))
	}

	runID := uuid.NewString()
	ctx, span := startSpan(ctx, "engine.Compare",
		attribute.String("run_id", runID), attribute.Int("graphs", len(graphs)))
	defer func() { endSpan(span, err) }()
	start := time.Now()

	type pair struct{ i, j int }
	var pairs []pair
	for i := range graphs {
		for j := i + 1; j < len(graphs); j++ {
			pairs = append(pairs, pair{i, j})
		}
	}

	out = make([]Comparison, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for k, p := range pairs {
		g.Go(func() error {
			g1, g2 := graphs[p.i], graphs[p.j]
			res, err := r.align(gctx, g1, g2, opts)
			if err != nil {
				return err
			}
			out[k] = Comparison{
				I:          p.i,
				J:          p.j,
				G1:         g1.Name(),
				G2:         g2.Name(),
				Matched:    res.Len(),
				Overlap:    Overlap(g1.NodeCount(), g2.NodeCount(), res.Len()),
				Degenerate: res.Degenerate,
				CacheHit:   res.CacheHit,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.Logger.With("run", runID).Info("compared graphs",
		"graphs", len(graphs), "pairs", len(pairs), "duration", time.Since(start))
	return out, nil
}
