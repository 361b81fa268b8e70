package compliance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/malston/tkgi-pipeline-standards/internal/templatetype"
)

const projectRoot = "/proj"

// project builds an in-memory project from rel path -> content. Paths ending
// in "/" become directories.
func project(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(projectRoot, 0o755))
	for rel, content := range files {
		p := filepath.Join(projectRoot, filepath.FromSlash(rel))
		if rel[len(rel)-1] == '/' {
			require.NoError(t, fs.MkdirAll(p, 0o755))
			continue
		}
		perm := os.FileMode(0o644)
		if filepath.Ext(p) == ".sh" {
			perm = 0o755
		}
		require.NoError(t, fs.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, afero.WriteFile(fs, p, []byte(content), perm))
	}
	return fs
}

func newTestValidator(t *testing.T, fs afero.Fs, tt templatetype.Type) *Validator {
	t.Helper()
	v, err := NewValidator(fs, projectRoot, Options{TemplateType: tt})
	require.NoError(t, err)
	return v
}

func messages(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.Message
	}
	return out
}

const standaloneScript = `#!/usr/bin/env bash
set -o errexit
set -o pipefail

SCRIPT_DIR="$(cd "$(dirname "${BASH_SOURCE[0]}")" && pwd)"
echo "${SCRIPT_DIR}"
`
