package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/matzehuels/pipemerge/pkg/align"
	"github.com/matzehuels/pipemerge/pkg/cache"
	"github.com/matzehuels/pipemerge/pkg/dag"
	perrors "github.com/matzehuels/pipemerge/pkg/errors"
	graphio "github.com/matzehuels/pipemerge/pkg/io"
	"github.com/matzehuels/pipemerge/pkg/merge"
	"github.com/matzehuels/pipemerge/pkg/observability"
	"github.com/matzehuels/pipemerge/pkg/pipeline"
)

// keyTypeAlign labels alignment entries in cache hooks.
const keyTypeAlign = "align"

// Runner executes builds, alignments and merges with caching.
//
// A Runner holds no per-run state; multiple goroutines may share one.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses [cache.DefaultKeyer] and a nil logger uses the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// AlignResult is one pairwise alignment.
type AlignResult struct {
	*align.Result

	// CacheHit is set when the result came from the cache. Cached results
	// carry no similarity matrix.
	CacheHit bool `json:"cache_hit"`

	Duration time.Duration `json:"duration"`
}

// MergeStep describes one fold step of a merge.
type MergeStep struct {
	Graph      string `json:"graph"`
	Matched    int    `json:"matched"`
	Rejected   int    `json:"rejected"`
	Degenerate bool   `json:"degenerate"`
	CacheHit   bool   `json:"cache_hit"`
}

// MergeResult is the outcome of [Runner.Merge].
type MergeResult struct {
	RunID    string        `json:"run_id"`
	Graph    *dag.DAG      `json:"-"`
	Steps    []MergeStep   `json:"steps"`
	Duration time.Duration `json:"duration"`
}

// Build converts pipelines into graphs. Each graph is named after its
// pipeline's digest or ID, falling back to "pipeline-<i>".
func (r *Runner) Build(ctx context.Context, pipelines []pipeline.Pipeline) ([]*dag.DAG, error) {
	ctx, span := startSpan(ctx, "engine.Build", attribute.Int("pipelines", len(pipelines)))
	graphs, err := r.build(ctx, pipelines)
	endSpan(span, err)
	return graphs, err
}

func (r *Runner) build(ctx context.Context, pipelines []pipeline.Pipeline) ([]*dag.DAG, error) {
	graphs := make([]*dag.DAG, 0, len(pipelines))
	for i, p := range pipelines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := p.Name()
		if name == "" {
			name = fmt.Sprintf("pipeline-%d", i)
		}
		if err := perrors.ValidateGraphName(name); err != nil {
			return nil, fmt.Errorf("pipeline %d: %w", i, err)
		}
		g, err := pipeline.BuildGraph(p, name)
		if err != nil {
			return nil, fmt.Errorf("pipeline %d (%s): %w", i, name, err)
		}
		r.Logger.Debug("built graph", "name", name, "nodes", g.NodeCount(), "edges", g.EdgeCount())
		graphs = append(graphs, g)
	}
	return graphs, nil
}

// Align computes the correspondence between g1 and g2, consulting the cache
// first unless opts.Refresh is set.
func (r *Runner) Align(ctx context.Context, g1, g2 *dag.DAG, opts Options) (*AlignResult, error) {
	if err := r.prepare(&opts); err != nil {
		return nil, err
	}
	return r.align(ctx, g1, g2, opts)
}

func (r *Runner) align(ctx context.Context, g1, g2 *dag.DAG, opts Options) (res *AlignResult, err error) {
	ctx, span := startSpan(ctx, "engine.Align",
		attribute.String("g1", g1.Name()), attribute.Int("g1.nodes", g1.NodeCount()),
		attribute.String("g2", g2.Name()), attribute.Int("g2.nodes", g2.NodeCount()))
	start := time.Now()
	defer func() {
		if res != nil {
			span.SetAttributes(attribute.Int("matched", res.Len()), attribute.Bool("cache_hit", res.CacheHit))
			observability.Align().OnAlignComplete(ctx, g1.Name(), g2.Name(), res.Len(), res.Degenerate, res.Duration, nil)
		} else {
			observability.Align().OnAlignComplete(ctx, g1.Name(), g2.Name(), 0, false, time.Since(start), err)
		}
		endSpan(span, err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key, err := r.alignKey(g1, g2, opts)
	if err != nil {
		return nil, err
	}
	if !opts.Refresh {
		if cached, ok := r.cachedAlign(ctx, key); ok {
			cached.Duration = time.Since(start)
			return cached, nil
		}
	}

	out, err := align.Align(g1, g2, opts.AlignOptions())
	if err != nil {
		return nil, err
	}
	res = &AlignResult{Result: out, Duration: time.Since(start)}

	if data, err := json.Marshal(out); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLAlign); err != nil {
			r.Logger.Debug("cache write failed", "key", key, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypeAlign, len(data))
		}
	}
	return res, nil
}

func (r *Runner) cachedAlign(ctx context.Context, key string) (*AlignResult, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "key", key, "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyTypeAlign)
		return nil, false
	}
	var out align.Result
	if err := json.Unmarshal(data, &out); err != nil {
		observability.Cache().OnCacheMiss(ctx, keyTypeAlign)
		return nil, false
	}
	if out.G1ToG2 == nil || out.G2ToG1 == nil {
		observability.Cache().OnCacheMiss(ctx, keyTypeAlign)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyTypeAlign)
	return &AlignResult{Result: &out, CacheHit: true}, true
}

func (r *Runner) alignKey(g1, g2 *dag.DAG, opts Options) (string, error) {
	h1, err := GraphHash(g1)
	if err != nil {
		return "", err
	}
	h2, err := GraphHash(g2)
	if err != nil {
		return "", err
	}
	return r.Keyer.AlignKey(h1, h2, opts.AlignKeyOpts()), nil
}

// GraphHash returns the content hash of g: the SHA-256 of its node-link
// encoding. Equal graphs with equal node order hash equally.
func GraphHash(g *dag.DAG) (string, error) {
	var buf bytes.Buffer
	if err := graphio.WriteNodeLink(g, &buf); err != nil {
		return "", perrors.Wrap(perrors.ErrCodeInternal, err, "hash graph %q", g.Name())
	}
	return cache.Hash(buf.Bytes()), nil
}

// Merge folds graphs from the left, aligning each graph against the running
// merge. One graph is returned with every node prefixed; zero graphs is an
// INVALID_INPUT error.
func (r *Runner) Merge(ctx context.Context, graphs []*dag.DAG, opts Options) (res *MergeResult, err error) {
	if err := r.prepare(&opts); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := r.Logger.With("run", runID)
	ctx, span := startSpan(ctx, "engine.Merge",
		attribute.String("run_id", runID), attribute.Int("graphs", len(graphs)))
	start := time.Now()
	defer func() {
		nodes := 0
		if res != nil {
			nodes = res.Graph.NodeCount()
			span.SetAttributes(attribute.Int("nodes", nodes))
		}
		observability.Align().OnMergeComplete(ctx, len(graphs), nodes, time.Since(start), err)
		endSpan(span, err)
	}()

	res = &MergeResult{RunID: runID}
	merged, err := merge.Fold(graphs, func(acc, next *dag.DAG) (*align.Result, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ar, err := r.align(ctx, acc, next, opts)
		if err != nil {
			return nil, err
		}
		res.Steps = append(res.Steps, MergeStep{
			Graph:      next.Name(),
			Matched:    ar.Len(),
			Rejected:   len(ar.Rejected),
			Degenerate: ar.Degenerate,
			CacheHit:   ar.CacheHit,
		})
		logger.Debug("merge step",
			"graph", next.Name(), "matched", ar.Len(), "cached", ar.CacheHit, "duration", ar.Duration)
		return ar.Result, nil
	})
	if err != nil {
		return nil, err
	}

	res.Graph = merged
	res.Duration = time.Since(start)
	logger.Info("merged graphs",
		"graphs", len(graphs), "nodes", merged.NodeCount(), "edges", merged.EdgeCount(), "duration", res.Duration)
	return res, nil
}

// prepare validates opts and applies runtime defaults.
func (r *Runner) prepare(opts *Options) error {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
