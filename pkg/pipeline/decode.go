package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	perrors "github.com/matzehuels/pipemerge/pkg/errors"
)

// ReadJSON decodes one pipeline object or an array of pipeline objects.
func ReadJSON(r io.Reader) ([]Pipeline, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, perrors.New(perrors.ErrCodeInvalidFormat, "empty pipeline document")
	}

	if data[0] == '[' {
		var ps []Pipeline
		if err := json.Unmarshal(data, &ps); err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "decode pipelines")
		}
		return ps, nil
	}

	var p Pipeline
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "decode pipeline")
	}
	return []Pipeline{p}, nil
}

// ReadYAML decodes a YAML stream. Each document may hold one pipeline or a
// list of pipelines; all of them are returned in document order.
func ReadYAML(r io.Reader) ([]Pipeline, error) {
	dec := yaml.NewDecoder(r)
	var out []Pipeline
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "decode yaml")
		}
		if len(doc.Content) == 0 {
			continue
		}

		root := doc.Content[0]
		switch root.Kind {
		case yaml.SequenceNode:
			var ps []Pipeline
			if err := root.Decode(&ps); err != nil {
				return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "decode pipelines")
			}
			out = append(out, ps...)
		case yaml.MappingNode:
			var p Pipeline
			if err := root.Decode(&p); err != nil {
				return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "decode pipeline")
			}
			out = append(out, p)
		default:
			return nil, perrors.New(perrors.ErrCodeInvalidFormat, "line %d: expected a pipeline or a list of pipelines", root.Line)
		}
	}
	if len(out) == 0 {
		return nil, perrors.New(perrors.ErrCodeInvalidFormat, "empty pipeline document")
	}
	return out, nil
}

// Decode reads pipelines from r in the format named by a file extension:
// ".json", ".yml" or ".yaml", case-insensitive.
func Decode(r io.Reader, ext string) ([]Pipeline, error) {
	switch strings.ToLower(ext) {
	case ".json":
		return ReadJSON(r)
	case ".yml", ".yaml":
		return ReadYAML(r)
	default:
		return nil, perrors.New(perrors.ErrCodeInvalidFormat, "unsupported pipeline file extension %q", ext)
	}
}

// Load reads pipelines from a .json, .yml or .yaml file.
func Load(path string) ([]Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ps, err := Decode(f, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ps, nil
}
