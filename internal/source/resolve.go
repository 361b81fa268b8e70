package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/malston/tkgi-pipeline-standards/internal/branding"
	"github.com/malston/tkgi-pipeline-standards/internal/logging"
	"github.com/malston/tkgi-pipeline-standards/internal/templatetype"
)

// ReferenceDir is the generic fallback tree inside a template root.
const ReferenceDir = "reference"

// ErrTemplateSourceNotFound is returned when no candidate directory exists.
var ErrTemplateSourceNotFound = errors.New("template source not found")

// Source is one template tree on disk.
type Source struct {
	Path     string
	Manifest *SetManifest
}

// Resolution is the outcome of resolving a template type.
type Resolution struct {
	Primary  Source
	Fallback *Source
}

// Candidates returns the directories probed for t, in priority order: the
// type-specific tree of every root, then the reference tree of every root.
func Candidates(t templatetype.Type, roots []string) []string {
	out := make([]string, 0, 2*len(roots))
	for _, r := range roots {
		out = append(out, filepath.Join(r, string(t)))
	}
	for _, r := range roots {
		out = append(out, filepath.Join(r, ReferenceDir))
	}
	return out
}

// Resolver finds template trees on a filesystem.
type Resolver struct {
	fs               afero.Fs
	roots            []string
	generatorVersion string
}

// NewResolver creates a Resolver probing the given template roots.
func NewResolver(fs afero.Fs, roots []string, generatorVersion string) *Resolver {
	return &Resolver{fs: fs, roots: roots, generatorVersion: generatorVersion}
}

// Resolve selects the primary and fallback trees for t. The primary is the
// first existing type-specific tree, or the first reference tree when no
// root has one. The fallback is the first existing reference tree other than
// the primary.
func (r *Resolver) Resolve(t templatetype.Type) (*Resolution, error) {
	logger := logging.Get("source")

	var typed, refs []string
	for _, root := range r.roots {
		typed = append(typed, filepath.Join(root, string(t)))
		refs = append(refs, filepath.Join(root, ReferenceDir))
	}

	firstExisting := func(dirs []string, skip string) (string, error) {
		for _, d := range dirs {
			if d == skip {
				continue
			}
			ok, err := afero.DirExists(r.fs, d)
			if err != nil {
				return "", fmt.Errorf("probing template directory %s: %w", d, err)
			}
			logger.Debug().Str("candidate", d).Bool("exists", ok).Msg("probed template directory")
			if ok {
				return d, nil
			}
		}
		return "", nil
	}

	primaryDir, err := firstExisting(typed, "")
	if err != nil {
		return nil, err
	}
	if primaryDir == "" {
		if primaryDir, err = firstExisting(refs, ""); err != nil {
			return nil, err
		}
	}
	if primaryDir == "" {
		return nil, fmt.Errorf("%w for template type %s (looked in: %s)",
			ErrTemplateSourceNotFound, t, strings.Join(Candidates(t, r.roots), ", "))
	}

	primary, err := r.load(primaryDir)
	if err != nil {
		return nil, err
	}
	res := &Resolution{Primary: primary}

	fallbackDir, err := firstExisting(refs, primaryDir)
	if err != nil {
		return nil, err
	}
	if fallbackDir != "" {
		fallback, err := r.load(fallbackDir)
		if err != nil {
			return nil, err
		}
		res.Fallback = &fallback
	}

	logger.Info().Str("primary", res.Primary.Path).Bool("fallback", res.Fallback != nil).Msg("resolved template sources")
	return res, nil
}

func (r *Resolver) load(dir string) (Source, error) {
	m, err := ReadSetManifest(r.fs, dir)
	if err != nil {
		return Source{}, err
	}
	if m != nil {
		if err := m.CheckCompatible(r.generatorVersion); err != nil {
			return Source{}, fmt.Errorf("template source %s: %w", dir, err)
		}
	}
	return Source{Path: dir, Manifest: m}, nil
}

// DefaultRoots returns the template roots probed when none are configured:
// $PIPEGEN_TEMPLATES, then templates/ next to and above the executable, then
// templates/ in the working directory.
func DefaultRoots() []string {
	var roots []string
	if v := os.Getenv(branding.EnvVar("templates")); v != "" {
		roots = append(roots, v)
	}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		roots = append(roots,
			filepath.Join(dir, "templates"),
			filepath.Join(filepath.Dir(dir), "templates"),
		)
	}
	if wd, err := os.Getwd(); err == nil {
		roots = append(roots, filepath.Join(wd, "templates"))
	}
	return roots
}
