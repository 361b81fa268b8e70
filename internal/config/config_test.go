package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malston/tkgi-pipeline-standards/internal/templatetype"
)

func lookup(t *testing.T, s *Settings, key string) string {
	t.Helper()
	v, ok := s.Context.Lookup(key)
	require.True(t, ok, "context key %s", key)
	return v
}

func TestResolveDefaults(t *testing.T) {
	s, err := NewResolver(afero.NewMemMapFs()).WithUserFile("").Resolve()
	require.NoError(t, err)

	assert.Equal(t, templatetype.Kustomize, s.TemplateType)
	assert.Equal(t, "./output", s.OutputDir)
	assert.Empty(t, s.TemplateDirs)
	assert.Equal(t, "Utilities-tkgieng", lookup(t, s, "org_name"))
	assert.Equal(t, "develop", lookup(t, s, "default_branch"))
	assert.Equal(t, "cml-k8s-n-01", lookup(t, s, "default_foundation"))
	assert.Equal(t, "false", lookup(t, s, "env_test_mode"))
	assert.Equal(t, map[string]string{"TEST_MODE": "false", "DEBUG": "false", "VERBOSE": "false"}, s.Env)
	assert.Empty(t, s.Context.Missing())
	assert.NotContains(t, s.Values, "env_variables.debug")
}

func TestResolveLayering(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/home/pipegen/config.yaml",
		[]byte("org_name: User\nrepo_name: user-repo\nenv_variables:\n  VERBOSE: true\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/work/project.json",
		[]byte(`{"repo_name": "proj", "template_type": "helm", "env_variables": {"DEBUG": true}}`), 0o644))
	t.Setenv("PIPEGEN_DEFAULT_BRANCH", "main")

	s, err := NewResolver(fs).
		WithUserFile("/home/pipegen/config.yaml").
		WithProjectFile("/work/project.json").
		Override("org_name", "Flag").
		Resolve()
	require.NoError(t, err)

	assert.Equal(t, "Flag", lookup(t, s, "org_name"), "override beats user config")
	assert.Equal(t, "proj", lookup(t, s, "repo_name"), "project config beats user config")
	assert.Equal(t, "main", lookup(t, s, "default_branch"), "environment beats defaults")
	assert.Equal(t, templatetype.Helm, s.TemplateType)
	assert.Equal(t, "true", s.Env["DEBUG"])
	assert.Equal(t, "true", s.Env["VERBOSE"])
	assert.Equal(t, "false", s.Env["TEST_MODE"], "default env variables survive a partial override")
}

func TestResolveOverrides(t *testing.T) {
	s, err := NewResolver(afero.NewMemMapFs()).WithUserFile("").
		Override("org_name", "").
		Override("OUTPUT_DIR", "/tmp/out").
		Override("template_type", "cli-tool").
		Resolve()
	require.NoError(t, err)
	assert.Equal(t, "Utilities-tkgieng", lookup(t, s, "org_name"), "empty overrides are ignored")
	assert.Equal(t, "/tmp/out", s.OutputDir)
	assert.Equal(t, templatetype.CLITool, s.TemplateType)

	_, err = NewResolver(afero.NewMemMapFs()).WithUserFile("").Override("template_type", "ansible").Resolve()
	assert.Error(t, err)
}

func TestResolveTOMLProjectFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/p.toml",
		[]byte("template_dirs = [\"/a\", \"/b\"]\nrepo_name = \"tool\"\n"), 0o644))

	s, err := NewResolver(fs).WithUserFile("").WithProjectFile("/p.toml").Resolve()
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, s.TemplateDirs)
	assert.Equal(t, "tool", lookup(t, s, "repo_name"))
}

func TestResolveProjectFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
	}{
		{"schema violation", "/p.yaml", "template_type: ansible\n"},
		{"nested value", "/p.yaml", "org_name:\n  nested: true\n"},
		{"malformed", "/p.yaml", "org_name: [unclosed\n"},
		{"unsupported format", "/p.ini", "org_name=x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, tt.path, []byte(tt.content), 0o644))
			_, err := NewResolver(fs).WithUserFile("").WithProjectFile(tt.path).Resolve()
			assert.Error(t, err)
		})
	}

	t.Run("missing", func(t *testing.T) {
		_, err := NewResolver(afero.NewMemMapFs()).WithUserFile("").WithProjectFile("/nope.yaml").Resolve()
		assert.Error(t, err)
	})
}

func TestResolveMalformedUserFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/u.yaml", []byte("org_name: [x\n"), 0o644))
	_, err := NewResolver(fs).WithUserFile("/u.yaml").Resolve()
	assert.Error(t, err)
}

func TestGetSet(t *testing.T) {
	fs := afero.NewMemMapFs()

	v, err := Get(fs, "org_name")
	require.NoError(t, err)
	assert.Equal(t, "Utilities-tkgieng", v)

	require.NoError(t, Set(fs, "org_name", "Acme"))
	require.NoError(t, Set(fs, "env_variables.DEBUG", "true"))
	require.NoError(t, Set(fs, "template_dirs", "/a, /b"))

	ok, err := afero.Exists(fs, UserFile())
	require.NoError(t, err)
	assert.True(t, ok)

	v, err = Get(fs, "org_name")
	require.NoError(t, err)
	assert.Equal(t, "Acme", v)

	v, err = Get(fs, "env_variables.DEBUG")
	require.NoError(t, err)
	assert.Equal(t, "true", v)

	v, err = Get(fs, "template_dirs")
	require.NoError(t, err)
	assert.Equal(t, "/a,/b", v)

	_, err = Get(fs, "no_such_key")
	assert.Error(t, err)
}

func TestSetRejectsInvalidValues(t *testing.T) {
	fs := afero.NewMemMapFs()
	assert.Error(t, Set(fs, "template_type", "ansible"))

	ok, _ := afero.Exists(fs, UserFile())
	assert.False(t, ok, "nothing is written when validation fails")
}

func TestKeys(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, "org_name")
	assert.Contains(t, keys, KeyEnvVariables)
	assert.IsNonDecreasing(t, keys)
}
