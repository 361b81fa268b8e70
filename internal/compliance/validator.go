package compliance

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/malston/tkgi-pipeline-standards/internal/logging"
	"github.com/malston/tkgi-pipeline-standards/internal/templatetype"
)

// Options configure a validation run.
type Options struct {
	TemplateType templatetype.Type
	Relaxations  RelaxationSet
	// CheckTestFramework enables the test framework check.
	CheckTestFramework bool
}

// Validator checks one project tree.
type Validator struct {
	fs     afero.Fs
	root   string
	desc   templatetype.Descriptor
	opts   Options
	logger zerolog.Logger

	issues []Issue
	total  int
}

// NewValidator prepares a validator for the project at root.
func NewValidator(fs afero.Fs, root string, opts Options) (*Validator, error) {
	ok, err := afero.DirExists(fs, root)
	if err != nil {
		return nil, fmt.Errorf("checking project directory: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("project directory %s does not exist", root)
	}

	desc, err := templatetype.Lookup(opts.TemplateType)
	if err != nil {
		return nil, err
	}

	logger := logging.Get("compliance")
	if !opts.Relaxations.IsEmpty() {
		logger.Info().
			Strs("skip_directories", opts.Relaxations.SkipDirectories).
			Strs("skip_files", opts.Relaxations.SkipFiles).
			Strs("skip_tasks", opts.Relaxations.SkipTasks).
			Msg("relaxing rules for this run")
	}

	return &Validator{
		fs:     fs,
		root:   root,
		desc:   opts.Relaxations.Apply(desc),
		opts:   opts,
		logger: logger,
	}, nil
}

// Validate runs every check and returns the collected issues. A Validator
// may be run more than once; each run starts from a clean slate.
func (v *Validator) Validate() *Result {
	done := logging.LogOperationStart(v.logger, "validate")
	defer done()

	v.issues = nil
	v.total = 0

	checks := []struct {
		name string
		run  func()
	}{
		{"directories", v.checkDirectories},
		{"files", v.checkFiles},
		{"task shape", v.checkTaskShape},
		{"critical tasks", v.checkCriticalTasks},
		{"scripts", v.checkScripts},
		{"fly commands and options", v.checkFlyCoverage},
		{"pipelines", v.checkPipelines},
		{"task definitions", v.checkTaskDefinitions},
	}
	if v.opts.CheckTestFramework {
		checks = append(checks, struct {
			name string
			run  func()
		}{"test framework", v.checkTestFramework})
	}

	for _, c := range checks {
		before := len(v.issues)
		c.run()
		v.logger.Debug().Str("check", c.name).Int("issues", len(v.issues)-before).Msg("check completed")
	}

	return &Result{
		ProjectDir:   v.root,
		TemplateType: v.desc.Type,
		Issues:       v.issues,
		TotalChecks:  v.total,
		PassedChecks: v.total - len(v.issues),
	}
}

// assert records one evaluated rule and adds an issue when it fails.
func (v *Validator) assert(ok bool, cat Category, format string, args ...any) {
	v.total++
	if !ok {
		v.issues = append(v.issues, Issue{Category: cat, Message: fmt.Sprintf(format, args...)})
	}
}

// abs converts a slash-separated project path to a filesystem path.
func (v *Validator) abs(rel string) string {
	return filepath.Join(v.root, filepath.FromSlash(rel))
}

// rel converts a filesystem path under root to a slash-separated project path.
func (v *Validator) rel(p string) string {
	r, err := filepath.Rel(v.root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(r)
}

func (v *Validator) isDir(rel string) bool {
	ok, _ := afero.DirExists(v.fs, v.abs(rel))
	return ok
}

func (v *Validator) isFile(rel string) bool {
	info, err := v.fs.Stat(v.abs(rel))
	return err == nil && info.Mode().IsRegular()
}

func (v *Validator) readFile(rel string) (string, error) {
	data, err := afero.ReadFile(v.fs, v.abs(rel))
	return string(data), err
}

// glob returns the slash-separated project paths matching pattern, sorted.
func (v *Validator) glob(pattern string) []string {
	matches, err := afero.Glob(v.fs, v.abs(pattern))
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, v.rel(m))
	}
	return out
}

func taskFile(dir, name string) string {
	return path.Join(dir, name)
}
