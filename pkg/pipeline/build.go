package pipeline

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/pipemerge/pkg/dag"
	perrors "github.com/matzehuels/pipemerge/pkg/errors"
)

// Sentinel paths carried by the synthetic input and output nodes.
const (
	InputPath  = "Input"
	OutputPath = "Output"
)

// Structural node key prefixes.
const (
	KindInputs  = "inputs"
	KindSteps   = "steps"
	KindOutputs = "outputs"
)

// OutputNode is the ID of the single sink of a built graph.
const OutputNode = KindOutputs + ".0"

// BuildGraph converts p into a graph named name.
//
// Node order is: input sentinels, steps in pipeline order, then "outputs.0".
// Each step gets an edge from the producer of every value it consumes; the
// first declared output feeds "outputs.0". A reference may only point at an
// input or an earlier step, which keeps the result acyclic.
func BuildGraph(p Pipeline, name string) (*dag.DAG, error) {
	g := dag.New(name)

	for i := range max(1, len(p.Inputs)) {
		if err := g.AddNode(dag.Node{
			ID:      nodeKey(KindInputs, i),
			Records: []dag.Record{{Path: InputPath, Name: InputPath, Graph: name}},
		}); err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "add input %d", i)
		}
	}

	for i, step := range p.Steps {
		if step.Primitive.PythonPath == "" {
			return nil, perrors.New(perrors.ErrCodeMalformedInput, "step %d: primitive has no python_path", i)
		}
		key := nodeKey(KindSteps, i)
		if err := g.AddNode(dag.Node{
			ID: key,
			Records: []dag.Record{{
				Path:        step.Primitive.PythonPath,
				Name:        step.Primitive.Name,
				Hyperparams: step.Hyperparams,
				Graph:       name,
			}},
		}); err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "add step %d", i)
		}

		for _, arg := range slices.Sorted(maps.Keys(step.Arguments)) {
			for _, ref := range step.Arguments[arg].Data {
				producer, err := resolve(g, ref)
				if err != nil {
					return nil, perrors.Wrap(perrors.ErrCodeMalformedInput, err, "step %d argument %q", i, arg)
				}
				if producer == key {
					return nil, perrors.New(perrors.ErrCodeMalformedInput, "step %d argument %q references its own output", i, arg)
				}
				if err := g.AddEdge(dag.Edge{From: producer, To: key}); err != nil {
					return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "step %d argument %q", i, arg)
				}
			}
		}
	}

	if err := g.AddNode(dag.Node{
		ID:      OutputNode,
		Records: []dag.Record{{Path: OutputPath, Name: OutputPath, Graph: name}},
	}); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "add output")
	}
	if len(p.Outputs) == 0 {
		return nil, perrors.New(perrors.ErrCodeMalformedInput, "pipeline declares no outputs")
	}
	producer, err := resolve(g, p.Outputs[0].Data)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeMalformedInput, err, "output 0")
	}
	if err := g.AddEdge(dag.Edge{From: producer, To: OutputNode}); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "output 0")
	}

	return g, nil
}

// ProducerKey reduces a reference such as "steps.3.produce" to the key of the
// node producing it ("steps.3"). Only input and step references are valid.
func ProducerKey(ref string) (string, error) {
	parts := strings.Split(ref, ".")
	if len(parts) < 2 {
		return "", perrors.New(perrors.ErrCodeMalformedInput, "reference %q has no index", ref)
	}
	kind := parts[0]
	if kind != KindInputs && kind != KindSteps {
		return "", perrors.New(perrors.ErrCodeMalformedInput, "reference %q: unknown kind %q", ref, kind)
	}
	idx, err := strconv.Atoi(parts[1])
	if err != nil || idx < 0 {
		return "", perrors.New(perrors.ErrCodeMalformedInput, "reference %q: invalid index %q", ref, parts[1])
	}
	return nodeKey(kind, idx), nil
}

func resolve(g *dag.DAG, ref string) (string, error) {
	key, err := ProducerKey(ref)
	if err != nil {
		return "", err
	}
	if _, ok := g.Node(key); !ok {
		return "", perrors.New(perrors.ErrCodeMalformedInput, "reference %q: %s is not defined", ref, key)
	}
	return key, nil
}

func nodeKey(kind string, i int) string {
	return kind + "." + strconv.Itoa(i)
}
