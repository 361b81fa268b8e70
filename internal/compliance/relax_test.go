package compliance

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malston/tkgi-pipeline-standards/internal/templatetype"
)

func TestLoadRelaxations(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
	}{
		{
			name:    "json",
			path:    "/relax.json",
			content: `{"skip_directories": ["scripts"], "skip_files": ["README.md"], "skip_tasks": ["ci/tasks/tkgi/*"]}`,
		},
		{
			name:    "yaml with dashed keys",
			path:    "/relax.yaml",
			content: "skip-directories: [scripts]\nskip-files: [README.md]\nskip-tasks: [\"ci/tasks/tkgi/*\"]\n",
		},
		{
			name:    "toml",
			path:    "/relax.toml",
			content: "skip_directories = [\"scripts\"]\nskip_files = [\"README.md\"]\nskip_tasks = [\"ci/tasks/tkgi/*\"]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, tt.path, []byte(tt.content), 0o644))

			r, err := LoadRelaxations(fs, tt.path)
			require.NoError(t, err)
			assert.Equal(t, []string{"scripts"}, r.SkipDirectories)
			assert.Equal(t, []string{"README.md"}, r.SkipFiles)
			assert.Equal(t, []string{"ci/tasks/tkgi/*"}, r.SkipTasks)
		})
	}
}

func TestLoadRelaxationsErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
	}{
		{"unknown key", "/relax.yaml", "skip_everything: true\n"},
		{"wrong item type", "/relax.json", `{"skip_files": [1, 2]}`},
		{"malformed", "/relax.json", `{"skip_files": [`},
		{"unsupported format", "/relax.ini", "skip_files=README.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, tt.path, []byte(tt.content), 0o644))
			_, err := LoadRelaxations(fs, tt.path)
			assert.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRelaxations(afero.NewMemMapFs(), "/nope.yaml")
		assert.Error(t, err)
	})
}

func TestRelaxationMerge(t *testing.T) {
	a := RelaxationSet{SkipDirectories: []string{"scripts"}, SkipFiles: []string{"README.md"}}
	b := RelaxationSet{SkipDirectories: []string{"scripts", "ci/tasks/k8s"}, SkipTasks: []string{"ci/tasks/tkgi/tkgi-login"}}

	m := a.Merge(b)
	assert.Equal(t, []string{"scripts", "ci/tasks/k8s"}, m.SkipDirectories)
	assert.Equal(t, []string{"README.md"}, m.SkipFiles)
	assert.Equal(t, []string{"ci/tasks/tkgi/tkgi-login"}, m.SkipTasks)
	assert.False(t, m.IsEmpty())
	assert.True(t, RelaxationSet{}.IsEmpty())
}

func TestRelaxationApply(t *testing.T) {
	canonical, err := templatetype.Lookup(templatetype.CLITool)
	require.NoError(t, err)

	r := RelaxationSet{
		SkipDirectories: []string{"scripts", "ci/tasks/t*"},
		SkipFiles:       []string{"ci/scripts/lib/*.sh", "README.md"},
		SkipTasks:       []string{"ci/tasks/cli-tool/install-tool"},
	}
	got := r.Apply(canonical)

	assert.NotContains(t, got.RequiredDirs, "scripts")
	assert.NotContains(t, got.RequiredDirs, "ci/tasks/testing")
	assert.NotContains(t, got.RequiredDirs, "ci/tasks/tkgi")
	assert.Contains(t, got.RequiredDirs, "ci/tasks/common")
	assert.Contains(t, got.RequiredDirs, "ci/tasks/cli-tool")

	var files []string
	for _, f := range got.RequiredFiles {
		files = append(files, f.Path)
	}
	assert.NotContains(t, files, "README.md")
	assert.NotContains(t, files, "ci/scripts/lib/parsing.sh")
	assert.Contains(t, files, "ci/fly.sh")

	assert.Equal(t, []string{"ci/tasks/cli-tool/download-tool", "ci/tasks/tkgi/tkgi-login"}, got.CriticalTaskDirs)

	fresh, err := templatetype.Lookup(templatetype.CLITool)
	require.NoError(t, err)
	assert.Equal(t, fresh.RequiredDirs, canonical.RequiredDirs, "input descriptor untouched")
	assert.Contains(t, fresh.RequiredDirs, "scripts", "canonical table untouched")
}

func TestRelaxationExactMatchWins(t *testing.T) {
	d := templatetype.Descriptor{RequiredDirs: []string{"a/*", "a/b"}}
	got := RelaxationSet{SkipDirectories: []string{"a/*"}}.Apply(d)
	assert.Equal(t, []string{"a/b"}, got.RequiredDirs)
}
