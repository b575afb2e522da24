package pipeline

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// References is a list of upstream references. Documents may spell a single
// reference as a plain string; it decodes as a one-element list.
type References []string

// UnmarshalJSON accepts a string or a list of strings.
func (r *References) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*r = References{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("argument data must be a string or a list of strings: %w", err)
	}
	*r = many
	return nil
}

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (r *References) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var one string
		if err := node.Decode(&one); err != nil {
			return err
		}
		*r = References{one}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := node.Decode(&many); err != nil {
			return err
		}
		*r = many
		return nil
	default:
		return fmt.Errorf("line %d: argument data must be a string or a list of strings", node.Line)
	}
}
