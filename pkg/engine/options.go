// Package engine runs pipeline alignment and merging for the CLI and the
// HTTP API.
//
// By centralizing the build → align → merge flow here, both entry points
// share the same defaults, caching and instrumentation.
//
// # Usage
//
//	runner := engine.NewRunner(cache, nil, logger)
//	graphs, err := runner.Build(ctx, pipelines)
//	if err != nil {
//	    return err
//	}
//	res, err := runner.Merge(ctx, graphs, engine.DefaultOptions())
//
// Alignments are cached by graph content and options, so repeated merges
// of overlapping pipeline sets only align new pairs. Every Runner call opens
// an OpenTelemetry span and reports to the [observability] hooks.
//
// # Configuration
//
// [Options] holds the alignment parameters. [LoadOptions] reads them from a
// TOML file:
//
//	alpha       = 0.1
//	iterations  = 50
//	add_cost    = 0.4
//	del_cost    = 0.4
//	concurrency = 8
//
// Keys missing from the file keep their defaults.
//
// [observability]: github.com/matzehuels/pipemerge/pkg/observability
package engine

import (
	"errors"
	"io"
	"io/fs"
	"runtime"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/pipemerge/pkg/align"
	"github.com/matzehuels/pipemerge/pkg/assign"
	"github.com/matzehuels/pipemerge/pkg/cache"
	perrors "github.com/matzehuels/pipemerge/pkg/errors"
	"github.com/matzehuels/pipemerge/pkg/similarity"
)

// Default values shared by the CLI, the API and config files.
const (
	DefaultAlpha      = similarity.DefaultAlpha
	DefaultIterations = similarity.DefaultIterations
	DefaultAddCost    = assign.DefaultAddCost
	DefaultDelCost    = assign.DefaultDelCost
)

// Output formats for graphs.
const (
	FormatJSON = "json" // node-link JSON
	FormatDOT  = "dot"  // Graphviz DOT source
)

// ValidFormats is the set of supported graph output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
}

// ValidateFormat checks that format is a supported graph output format.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return perrors.New(perrors.ErrCodeInvalidInput, "invalid format: %q (must be one of: json, dot)", format)
	}
	return nil
}

// Options configures alignment and merging. It decodes from JSON (API
// requests) and TOML (config files); start from [DefaultOptions] so that
// absent keys keep their defaults and explicit zeros are honoured.
type Options struct {
	Alpha      float64 `json:"alpha" toml:"alpha"`
	Iterations int     `json:"iterations" toml:"iterations"`
	AddCost    float64 `json:"add_cost" toml:"add_cost"`
	DelCost    float64 `json:"del_cost" toml:"del_cost"`

	// Concurrency bounds the parallel alignments of Compare. Zero means one
	// per CPU.
	Concurrency int `json:"concurrency,omitempty" toml:"concurrency"`

	// Refresh bypasses cached alignments (results are still written).
	Refresh bool `json:"refresh,omitempty" toml:"-"`

	Logger *log.Logger `json:"-" toml:"-"`
}

// DefaultOptions returns the default alignment parameters.
func DefaultOptions() Options {
	return Options{
		Alpha:      DefaultAlpha,
		Iterations: DefaultIterations,
		AddCost:    DefaultAddCost,
		DelCost:    DefaultDelCost,
	}
}

// SetDefaults fills in the runtime fields: concurrency and logger.
func (o *Options) SetDefaults() {
	if o.Concurrency == 0 {
		o.Concurrency = runtime.NumCPU()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate reports the first invalid field as an INVALID_INPUT error.
func (o Options) Validate() error {
	if err := o.AlignOptions().Validate(); err != nil {
		return err
	}
	if o.Concurrency < 0 {
		return perrors.New(perrors.ErrCodeInvalidInput, "concurrency must not be negative, got %d", o.Concurrency)
	}
	return nil
}

// AlignOptions returns the parameters of a single pairwise alignment.
func (o Options) AlignOptions() align.Options {
	return align.Options{
		Alpha:      o.Alpha,
		Iterations: o.Iterations,
		AddCost:    o.AddCost,
		DelCost:    o.DelCost,
		Logger:     o.Logger,
	}
}

// AlignKeyOpts returns the cache key options of an alignment.
func (o Options) AlignKeyOpts() cache.AlignKeyOpts {
	return cache.AlignKeyOpts{
		Alpha:      o.Alpha,
		Iterations: o.Iterations,
		AddCost:    o.AddCost,
		DelCost:    o.DelCost,
	}
}

// LoadOptions reads a TOML config file on top of [DefaultOptions]. Unknown
// keys are rejected so that typos do not silently fall back to defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	md, err := toml.DecodeFile(path, &opts)
	if errors.Is(err, fs.ErrNotExist) {
		return opts, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return opts, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slices.Sort(keys)
		return opts, perrors.New(perrors.ErrCodeInvalidInput, "config file %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return opts, opts.Validate()
}

// WriteOptions encodes the alignment parameters of o as TOML.
func WriteOptions(w io.Writer, o Options) error {
	return toml.NewEncoder(w).Encode(o)
}
