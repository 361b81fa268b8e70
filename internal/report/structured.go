package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/malston/tkgi-pipeline-standards/internal/compliance"
)

// Format selects a report encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats returns every supported format.
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatYAML}
}

// ParseFormat converts a name into a Format.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown report format %q (expected text, json or yaml)", name)
	}
}

// Document is the machine-readable form of a validation result.
type Document struct {
	ProjectDir   string             `json:"project_dir" yaml:"project_dir"`
	TemplateType string             `json:"template_type" yaml:"template_type"`
	Issues       []compliance.Issue `json:"issues" yaml:"issues"`
	Compliance   compliance.Score   `json:"compliance" yaml:"compliance"`
}

// Structured converts res into a Document. Issues is never nil.
func Structured(res *compliance.Result) Document {
	issues := make([]compliance.Issue, len(res.Issues))
	copy(issues, res.Issues)
	return Document{
		ProjectDir:   res.ProjectDir,
		TemplateType: string(res.TemplateType),
		Issues:       issues,
		Compliance:   res.Score(),
	}
}

// WriteJSON writes d as indented JSON.
func (d Document) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encoding JSON report: %w", err)
	}
	return nil
}

// WriteYAML writes d as YAML.
func (d Document) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encoding YAML report: %w", err)
	}
	return enc.Close()
}

// Write renders res in the given format.
func Write(w io.Writer, res *compliance.Result, format Format, opts Options) error {
	switch format {
	case FormatJSON:
		return Structured(res).WriteJSON(w)
	case FormatYAML:
		return Structured(res).WriteYAML(w)
	default:
		return Text(w, res, opts)
	}
}
