package compliance

import (
	"math"

	"github.com/malston/tkgi-pipeline-standards/internal/templatetype"
)

// Level buckets a compliance percentage.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

const (
	highThreshold   = 90.0
	mediumThreshold = 70.0
)

// Result is the outcome of one validation run.
type Result struct {
	ProjectDir   string
	TemplateType templatetype.Type
	Issues       []Issue
	TotalChecks  int
	PassedChecks int
}

// Score summarizes how much of the rule set a project satisfies.
type Score struct {
	Percentage float64 `json:"percentage" yaml:"percentage"`
	Level      Level   `json:"level" yaml:"level"`
	Passed     int     `json:"passed" yaml:"passed"`
	Total      int     `json:"total" yaml:"total"`
	Compliant  bool    `json:"compliant" yaml:"compliant"`
}

// HasIssues reports whether any rule failed.
func (r *Result) HasIssues() bool {
	return len(r.Issues) > 0
}

// Messages returns the issue messages in report order.
func (r *Result) Messages() []string {
	out := make([]string, len(r.Issues))
	for i, issue := range r.Issues {
		out[i] = issue.Message
	}
	return out
}

// ByCategory groups issues by category, preserving their order.
func (r *Result) ByCategory() map[Category][]Issue {
	out := make(map[Category][]Issue)
	for _, issue := range r.Issues {
		out[issue.Category] = append(out[issue.Category], issue)
	}
	return out
}

// Score computes the compliance score. A run that evaluated nothing scores 100.
func (r *Result) Score() Score {
	pct := 100.0
	if r.TotalChecks > 0 {
		pct = float64(r.PassedChecks) / float64(r.TotalChecks) * 100
		pct = math.Round(pct*10) / 10
	}

	level := LevelLow
	switch {
	case pct >= highThreshold:
		level = LevelHigh
	case pct >= mediumThreshold:
		level = LevelMedium
	}

	return Score{
		Percentage: pct,
		Level:      level,
		Passed:     r.PassedChecks,
		Total:      r.TotalChecks,
		Compliant:  pct >= highThreshold,
	}
}
