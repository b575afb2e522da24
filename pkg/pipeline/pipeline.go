// Package pipeline models pipeline descriptions and turns them into graphs.
//
// A pipeline is an ordered list of steps. Every step runs one primitive,
// identified by a dot-separated python path such as
// "d3m.primitives.data_cleaning.imputer.SKlearn", and consumes values produced
// by pipeline inputs ("inputs.0") or earlier steps ("steps.2.produce").
//
// # Decoding
//
// [ReadJSON] and [ReadYAML] accept either a single pipeline document or a list
// of pipelines. [Load] picks the decoder from the file extension.
//
// # Graph Building
//
// [BuildGraph] converts a pipeline into a [dag.DAG] with one sentinel node per
// declared input and a single "outputs.0" sink fed by the first declared
// output. References that do not resolve to an already-defined input or step
// are reported as MALFORMED_INPUT errors; no partial graph is returned.
//
// [dag.DAG]: github.com/matzehuels/pipemerge/pkg/dag
package pipeline

// Pipeline is one pipeline description. Digest and Source are carried for
// provenance only; alignment never looks at them.
type Pipeline struct {
	ID      string   `json:"id,omitempty" yaml:"id,omitempty"`
	Digest  string   `json:"digest,omitempty" yaml:"digest,omitempty"`
	Source  Source   `json:"source,omitempty" yaml:"source,omitempty"`
	Inputs  []Input  `json:"inputs" yaml:"inputs"`
	Outputs []Output `json:"outputs" yaml:"outputs"`
	Steps   []Step   `json:"steps" yaml:"steps"`
}

// Name returns the identity used as graph name: the digest, else the id.
func (p Pipeline) Name() string {
	if p.Digest != "" {
		return p.Digest
	}
	return p.ID
}

// Source names who produced the pipeline.
type Source struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Contact string `json:"contact,omitempty" yaml:"contact,omitempty"`
}

// Input is a declared pipeline input.
type Input struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Output is a declared pipeline output; Data references the producing step
// output, e.g. "steps.5.produce".
type Output struct {
	Data string `json:"data" yaml:"data"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Step is one pipeline stage.
type Step struct {
	Type        string              `json:"type,omitempty" yaml:"type,omitempty"`
	Primitive   Primitive           `json:"primitive" yaml:"primitive"`
	Arguments   map[string]Argument `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	Hyperparams map[string]any      `json:"hyperparams,omitempty" yaml:"hyperparams,omitempty"`
	Outputs     []StepOutput        `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

// Primitive identifies the code a step runs.
type Primitive struct {
	ID         string `json:"id,omitempty" yaml:"id,omitempty"`
	Version    string `json:"version,omitempty" yaml:"version,omitempty"`
	PythonPath string `json:"python_path" yaml:"python_path"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	Digest     string `json:"digest,omitempty" yaml:"digest,omitempty"`
}

// Argument binds a step argument to one or more upstream references.
type Argument struct {
	Type string     `json:"type,omitempty" yaml:"type,omitempty"`
	Data References `json:"data" yaml:"data"`
}

// StepOutput names a value produced by a step.
type StepOutput struct {
	ID string `json:"id" yaml:"id"`
}
