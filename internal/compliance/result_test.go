package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name          string
		passed, total int
		wantPct       float64
		wantLevel     Level
		wantCompliant bool
	}{
		{"nothing evaluated", 0, 0, 100, LevelHigh, true},
		{"all passed", 40, 40, 100, LevelHigh, true},
		{"exactly ninety", 9, 10, 90, LevelHigh, true},
		{"just below ninety", 89, 100, 89, LevelMedium, false},
		{"exactly seventy", 7, 10, 70, LevelMedium, false},
		{"low", 1, 3, 33.3, LevelLow, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Result{PassedChecks: tt.passed, TotalChecks: tt.total}
			s := r.Score()
			assert.InDelta(t, tt.wantPct, s.Percentage, 0.001)
			assert.Equal(t, tt.wantLevel, s.Level)
			assert.Equal(t, tt.wantCompliant, s.Compliant)
			assert.Equal(t, tt.passed, s.Passed)
			assert.Equal(t, tt.total, s.Total)
		})
	}
}

func TestResultGrouping(t *testing.T) {
	r := &Result{Issues: []Issue{
		{Category: CategoryDirectory, Message: "Missing required directory: scripts"},
		{Category: CategoryScript, Message: "Script a.sh missing script directory definition"},
		{Category: CategoryDirectory, Message: "Missing required directory: ci/tasks"},
	}}

	assert.True(t, r.HasIssues())
	assert.Equal(t, []string{
		"Missing required directory: scripts",
		"Script a.sh missing script directory definition",
		"Missing required directory: ci/tasks",
	}, r.Messages())

	groups := r.ByCategory()
	assert.Len(t, groups[CategoryDirectory], 2)
	assert.Equal(t, "Missing required directory: ci/tasks", groups[CategoryDirectory][1].String())
	assert.Len(t, groups[CategoryScript], 1)
	assert.False(t, (&Result{}).HasIssues())
}
