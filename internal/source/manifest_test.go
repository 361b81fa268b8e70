package source

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSetManifestMissing(t *testing.T) {
	m, err := ReadSetManifest(afero.NewMemMapFs(), "/none")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestReadSetManifestInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad version", "name: x\nversion: not-a-version\n"},
		{"bad constraint", "name: x\nrequires: \">= one.two\"\n"},
		{"bad yaml", "name: [x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/src/template.yaml", []byte(tt.content), 0o644))
			_, err := ReadSetManifest(fs, "/src")
			assert.Error(t, err)
		})
	}
}

func TestCheckCompatible(t *testing.T) {
	tests := []struct {
		name     string
		requires string
		version  string
		wantErr  bool
	}{
		{"no constraint", "", "0.1.0", false},
		{"satisfied", ">= 1.0.0", "1.2.0", false},
		{"satisfied with v prefix", "^1.2", "v1.3.1", false},
		{"unsatisfied", ">= 2.0.0", "1.9.9", true},
		{"caret excludes next major", "^1.2", "2.0.0", true},
		{"dev build skips check", ">= 9.0.0", "dev", false},
		{"non-semver skips check", ">= 9.0.0", "abc123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &SetManifest{Name: "ref", Version: "1.0.0", Requires: tt.requires}
			err := m.CheckCompatible(tt.version)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrIncompatibleTemplate)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
