package source

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malston/tkgi-pipeline-standards/internal/templatetype"
)

func TestCandidates(t *testing.T) {
	got := Candidates(templatetype.Helm, []string{"/a", "/b"})
	assert.Equal(t, []string{
		filepath.Join("/a", "helm"),
		filepath.Join("/b", "helm"),
		filepath.Join("/a", "reference"),
		filepath.Join("/b", "reference"),
	}, got)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name         string
		dirs         []string
		wantPrimary  string
		wantFallback string
	}{
		{
			name:         "type and reference in one root",
			dirs:         []string{"/t/kustomize", "/t/reference"},
			wantPrimary:  "/t/kustomize",
			wantFallback: "/t/reference",
		},
		{
			name:        "reference only",
			dirs:        []string{"/t/reference"},
			wantPrimary: "/t/reference",
		},
		{
			name:         "type in second root wins over reference in first",
			dirs:         []string{"/t/reference", "/u/kustomize"},
			wantPrimary:  "/u/kustomize",
			wantFallback: "/t/reference",
		},
		{
			name:         "type in both roots still falls back to reference",
			dirs:         []string{"/t/kustomize", "/u/kustomize", "/u/reference"},
			wantPrimary:  "/t/kustomize",
			wantFallback: "/u/reference",
		},
		{
			name:         "reference in both roots",
			dirs:         []string{"/t/reference", "/u/reference"},
			wantPrimary:  "/t/reference",
			wantFallback: "/u/reference",
		},
		{
			name:        "type overlays without any reference",
			dirs:        []string{"/t/kustomize", "/u/kustomize"},
			wantPrimary: "/t/kustomize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			for _, d := range tt.dirs {
				require.NoError(t, fs.MkdirAll(d, 0o755))
			}

			res, err := NewResolver(fs, []string{"/t", "/u"}, "dev").Resolve(templatetype.Kustomize)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.wantPrimary), res.Primary.Path)
			if tt.wantFallback == "" {
				assert.Nil(t, res.Fallback)
				return
			}
			require.NotNil(t, res.Fallback)
			assert.Equal(t, filepath.FromSlash(tt.wantFallback), res.Fallback.Path)
		})
	}
}

func TestResolveNotFound(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/t/helm", 0o755))

	_, err := NewResolver(fs, []string{"/t"}, "dev").Resolve(templatetype.CLITool)
	require.ErrorIs(t, err, ErrTemplateSourceNotFound)
	assert.Contains(t, err.Error(), filepath.Join("/t", "cli-tool"))
	assert.Contains(t, err.Error(), filepath.Join("/t", "reference"))
}

func TestResolveIgnoresPlainFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/t/helm", []byte("not a dir"), 0o644))
	require.NoError(t, fs.MkdirAll("/t/reference", 0o755))

	res, err := NewResolver(fs, []string{"/t"}, "dev").Resolve(templatetype.Helm)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/t", "reference"), res.Primary.Path)
	assert.Nil(t, res.Fallback)
}

func TestResolveLoadsManifest(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/t/helm/template.yaml",
		[]byte("name: helm\nversion: 1.4.0\nrequires: \">= 1.0.0\"\n"), 0o644))

	res, err := NewResolver(fs, []string{"/t"}, "1.2.3").Resolve(templatetype.Helm)
	require.NoError(t, err)
	require.NotNil(t, res.Primary.Manifest)
	assert.Equal(t, "helm", res.Primary.Manifest.Name)
	assert.Equal(t, "1.4.0", res.Primary.Manifest.Version)
}

func TestResolveIncompatibleManifest(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/t/reference/template.yaml",
		[]byte("name: reference\nversion: 2.0.0\nrequires: \">= 2.0.0\"\n"), 0o644))

	_, err := NewResolver(fs, []string{"/t"}, "v1.9.0").Resolve(templatetype.Kustomize)
	require.ErrorIs(t, err, ErrIncompatibleTemplate)
}

func TestResolveMalformedManifest(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/t/reference/template.yaml", []byte("name: [unclosed"), 0o644))

	_, err := NewResolver(fs, []string{"/t"}, "dev").Resolve(templatetype.Kustomize)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTemplateSourceNotFound)
}

func TestResolveRealTemplates(t *testing.T) {
	root, err := filepath.Abs(filepath.Join("..", "..", "templates"))
	require.NoError(t, err)

	r := NewResolver(afero.NewOsFs(), []string{root}, "dev")
	for _, tt := range templatetype.All() {
		res, err := r.Resolve(tt)
		require.NoError(t, err, tt)
		assert.Equal(t, filepath.Join(root, string(tt)), res.Primary.Path)
		require.NotNil(t, res.Fallback)
		assert.Equal(t, filepath.Join(root, ReferenceDir), res.Fallback.Path)
	}
}

func TestDefaultRootsHonoursEnv(t *testing.T) {
	t.Setenv("PIPEGEN_TEMPLATES", "/custom/templates")
	roots := DefaultRoots()
	require.NotEmpty(t, roots)
	assert.Equal(t, "/custom/templates", roots[0])
}
