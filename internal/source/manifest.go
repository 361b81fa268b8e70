package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/afero"
	"go.yaml.in/yaml/v3"
)

// ManifestFile is the optional self-description at the top of a template tree.
// It is never copied into generated projects.
const ManifestFile = "template.yaml"

// ErrIncompatibleTemplate is returned when a template tree requires a
// generator version the running binary does not satisfy.
var ErrIncompatibleTemplate = errors.New("template set is incompatible with this generator")

// SetManifest describes a template tree.
type SetManifest struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Description string `yaml:"description,omitempty"`
	// Requires is a semver constraint on the generator version, e.g. ">= 1.2".
	Requires string `yaml:"requires,omitempty"`
}

// ReadSetManifest reads dir/template.yaml. A missing file yields nil.
func ReadSetManifest(fs afero.Fs, dir string) (*SetManifest, error) {
	path := filepath.Join(dir, ManifestFile)
	ok, err := afero.Exists(fs, path)
	if err != nil || !ok {
		return nil, err
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var m SetManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if m.Version != "" {
		if _, err := parseSemver(m.Version); err != nil {
			return nil, fmt.Errorf("%s: invalid version %q: %w", path, m.Version, err)
		}
	}
	if m.Requires != "" {
		if _, err := semver.NewConstraint(m.Requires); err != nil {
			return nil, fmt.Errorf("%s: invalid requires constraint %q: %w", path, m.Requires, err)
		}
	}
	return &m, nil
}

// CheckCompatible reports whether generatorVersion satisfies the manifest's
// constraint. Development builds ("dev" or any non-semver version) are
// always accepted.
func (m *SetManifest) CheckCompatible(generatorVersion string) error {
	if m.Requires == "" {
		return nil
	}
	v, err := parseSemver(generatorVersion)
	if err != nil {
		return nil
	}
	c, err := semver.NewConstraint(m.Requires)
	if err != nil {
		return fmt.Errorf("invalid requires constraint %q: %w", m.Requires, err)
	}
	if !c.Check(v) {
		return fmt.Errorf("%w: %s %s requires generator %s, running %s",
			ErrIncompatibleTemplate, m.Name, m.Version, m.Requires, generatorVersion)
	}
	return nil
}

// parseSemver strips a leading "v" and parses the version string.
func parseSemver(version string) (*semver.Version, error) {
	return semver.NewVersion(strings.TrimPrefix(version, "v"))
}
