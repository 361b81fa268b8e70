package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"
)

// ErrUnsupportedFormat is returned for documents whose extension is not
// .yaml, .yml, .json or .toml.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Format returns the document format implied by the path extension.
func Format(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return "yaml", nil
	case ".json":
		return "json", nil
	case ".toml":
		return "toml", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Decode parses a YAML, JSON or TOML document into a generic map. The
// format is chosen from the path extension. An empty document decodes to an
// empty map.
func Decode(path string, data []byte) (map[string]any, error) {
	format, err := Format(path)
	if err != nil {
		return nil, err
	}

	doc := map[string]any{}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}

	switch format {
	case "yaml":
		err = yaml.Unmarshal(data, &doc)
	case "json":
		err = json.Unmarshal(data, &doc)
	case "toml":
		err = toml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

// ParsePipeline decodes a pipeline document. An empty document returns a
// nil pipeline and no error.
func ParsePipeline(data []byte) (*Pipeline, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing pipeline: %w", err)
	}
	if raw == nil {
		return nil, nil
	}

	sections, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("pipeline is a %T, expected a mapping", raw)
	}
	return &Pipeline{Sections: sections}, nil
}

// ParseTask decodes a task definition.
func ParseTask(data []byte) (*Task, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("task definition is empty")
	}

	var task Task
	if err := yaml.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("parsing task: %w", err)
	}
	return &task, nil
}
