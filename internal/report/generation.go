package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/malston/tkgi-pipeline-standards/internal/materialize"
)

// GenerationSummary writes a short account of a generation run.
func GenerationSummary(w io.Writer, r *materialize.Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Generated %s project in %s\n", r.TemplateType, r.OutputDir)
	fmt.Fprintf(&b, "  Template:        %s\n", r.Primary)
	if r.Fallback != "" {
		fmt.Fprintf(&b, "  Fallback:        %s\n", r.Fallback)
	}
	fmt.Fprintf(&b, "  Files written:   %d\n", len(r.Files))
	if len(r.Kept) > 0 {
		fmt.Fprintf(&b, "  Files kept:      %d\n", len(r.Kept))
	}
	if len(r.SkippedCategories) > 0 {
		fmt.Fprintf(&b, "  Skipped tasks:   %s\n", strings.Join(r.SkippedCategories, ", "))
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(&b, "\nWarnings (%d):\n", len(r.Warnings))
		for _, warn := range r.Warnings {
			fmt.Fprintf(&b, "  - %s\n", warn)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
