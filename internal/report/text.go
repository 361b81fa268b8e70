package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/malston/tkgi-pipeline-standards/internal/branding"
	"github.com/malston/tkgi-pipeline-standards/internal/compliance"
)

// Options control text rendering.
type Options struct {
	// Color enables ANSI styling. Callers decide based on the output stream.
	Color bool
}

type styles struct {
	success  lipgloss.Style
	failure  lipgloss.Style
	heading  lipgloss.Style
	muted    lipgloss.Style
	command  lipgloss.Style
	levelFor map[compliance.Level]lipgloss.Style
}

func newStyles(w io.Writer, color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{
			success: plain, failure: plain, heading: plain, muted: plain,
			command:  lipgloss.NewStyle().PaddingLeft(2),
			levelFor: map[compliance.Level]lipgloss.Style{},
		}
	}

	r := lipgloss.NewRenderer(w)
	green := lipgloss.Color("#22c55e")
	red := lipgloss.Color("#ef4444")
	amber := lipgloss.Color("#f59e0b")
	return styles{
		success: r.NewStyle().Foreground(green).Bold(true),
		failure: r.NewStyle().Foreground(red).Bold(true),
		heading: r.NewStyle().Foreground(lipgloss.Color("#60a5fa")).Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("#9ca3af")),
		command: r.NewStyle().Foreground(lipgloss.Color("#a78bfa")).PaddingLeft(2),
		levelFor: map[compliance.Level]lipgloss.Style{
			compliance.LevelHigh:   r.NewStyle().Foreground(green),
			compliance.LevelMedium: r.NewStyle().Foreground(amber),
			compliance.LevelLow:    r.NewStyle().Foreground(red),
		},
	}
}

func (s styles) level(l compliance.Level) lipgloss.Style {
	if st, ok := s.levelFor[l]; ok {
		return st
	}
	return lipgloss.NewStyle()
}

// Text writes the human-readable report for res.
func Text(w io.Writer, res *compliance.Result, opts Options) error {
	st := newStyles(w, opts.Color)
	score := res.Score()

	var b strings.Builder
	if !res.HasIssues() {
		b.WriteString(st.success.Render(fmt.Sprintf(
			"✅ Project %s is compliant with %s template standards!", res.ProjectDir, res.TemplateType)))
		b.WriteString("\n")
		b.WriteString(scoreLine(st, score))
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString(st.failure.Render(fmt.Sprintf("❌ Found %d compliance issues:", len(res.Issues))))
	b.WriteString("\n")

	grouped := res.ByCategory()
	for _, cat := range compliance.Categories() {
		issues := grouped[cat]
		if len(issues) == 0 {
			continue
		}
		b.WriteString("\n")
		b.WriteString(st.heading.Render(fmt.Sprintf("## %s ISSUES (%d)", strings.ToUpper(string(cat)), len(issues))))
		b.WriteString("\n")
		for i, issue := range issues {
			fmt.Fprintf(&b, "%d. %s\n", i+1, issue.Message)
		}
	}

	b.WriteString("\n")
	b.WriteString(scoreLine(st, score))

	ref := "./reference-" + string(res.TemplateType)
	b.WriteString("\n")
	b.WriteString(st.heading.Render("## NEXT STEPS"))
	b.WriteString("\nGenerate a reference project and compare it with your project:\n")
	b.WriteString(st.command.Render(fmt.Sprintf("%s generate --output-dir %s --template-type %s",
		branding.CLIName(), ref, res.TemplateType)))
	b.WriteString("\nThen diff the two trees to find the changes needed:\n")
	b.WriteString(st.command.Render(fmt.Sprintf("diff -r --exclude='.git' %s %s", ref, res.ProjectDir)))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func scoreLine(st styles, score compliance.Score) string {
	pct := st.level(score.Level).Render(fmt.Sprintf("%.1f%%", score.Percentage))
	detail := st.muted.Render(fmt.Sprintf("(%d/%d checks passed, %s)", score.Passed, score.Total, score.Level))
	return fmt.Sprintf("Compliance: %s %s\n", pct, detail)
}
