package materialize

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/malston/tkgi-pipeline-standards/internal/logging"
	"github.com/malston/tkgi-pipeline-standards/internal/platform"
	"github.com/malston/tkgi-pipeline-standards/internal/render"
	"github.com/malston/tkgi-pipeline-standards/internal/source"
	"github.com/malston/tkgi-pipeline-standards/internal/templatetype"
)

// TaskScript is the entry point every task directory provides.
const TaskScript = "task.sh"

// baseDirs are created before anything is copied so that the layout exists
// even when a template tree omits an empty directory.
var baseDirs = []string{
	"ci/pipelines",
	"ci/scripts/lib",
	"ci/scripts/tests",
	"scripts",
}

// Options configure a single generation run.
type Options struct {
	OutputDir    string
	TemplateType templatetype.Type
	Context      render.Context
}

// Result holds the outcome of a generation run.
type Result struct {
	OutputDir         string
	TemplateType      templatetype.Type
	Primary           string
	Fallback          string
	Files             []string
	Kept              []string
	SkippedCategories []string
	Warnings          []string
}

// Generator materializes projects from resolved template trees.
type Generator struct {
	fs       afero.Fs
	resolver *source.Resolver
}

// NewGenerator creates a Generator.
func NewGenerator(fs afero.Fs, resolver *source.Resolver) *Generator {
	return &Generator{fs: fs, resolver: resolver}
}

// Generate creates a project of opts.TemplateType in opts.OutputDir.
// Existing files in the output directory are overwritten by the primary
// template tree.
func (g *Generator) Generate(opts Options) (*Result, error) {
	logger := logging.Get("generate")
	done := logging.LogOperationStart(logger, "generate")
	defer done()

	if opts.OutputDir == "" {
		return nil, errors.New("output directory is required")
	}
	if err := opts.Context.Validate(); err != nil {
		return nil, err
	}

	desc, err := templatetype.Lookup(opts.TemplateType)
	if err != nil {
		return nil, err
	}

	res, err := g.resolver.Resolve(desc.Type)
	if err != nil {
		return nil, err
	}

	result := &Result{
		OutputDir:    opts.OutputDir,
		TemplateType: desc.Type,
		Primary:      res.Primary.Path,
	}

	if err := g.createBaseLayout(opts.OutputDir, desc); err != nil {
		return nil, err
	}

	copier := NewCopier(g.fs, opts.Context, desc.Type)

	primary, err := copier.CopyTree(res.Primary.Path, opts.OutputDir, Overwrite)
	if err != nil {
		return nil, fmt.Errorf("copying %s: %w", res.Primary.Path, err)
	}
	written := primary.Written
	result.SkippedCategories = primary.SkippedCategories
	result.Warnings = primary.Warnings

	if res.Fallback != nil {
		result.Fallback = res.Fallback.Path
		fallback, err := copier.CopyTree(res.Fallback.Path, opts.OutputDir, KeepExisting)
		if err != nil {
			return nil, fmt.Errorf("copying %s: %w", res.Fallback.Path, err)
		}
		written = append(written, fallback.Written...)
		result.Warnings = append(result.Warnings, fallback.Warnings...)
		for _, c := range fallback.SkippedCategories {
			if !slices.Contains(result.SkippedCategories, c) {
				result.SkippedCategories = append(result.SkippedCategories, c)
			}
		}
		// Files the primary tree already wrote are expected collisions.
		for _, k := range fallback.Kept {
			if !slices.Contains(primary.Written, k) {
				result.Kept = append(result.Kept, k)
			}
		}
	}

	if err := g.ensureExecutables(opts.OutputDir, desc); err != nil {
		return nil, err
	}

	slices.Sort(written)
	result.Files = slices.Compact(written)
	slices.Sort(result.Kept)
	slices.Sort(result.SkippedCategories)

	logger.Info().
		Str("type", string(desc.Type)).
		Str("output", opts.OutputDir).
		Int("files", len(result.Files)).
		Int("warnings", len(result.Warnings)).
		Msg("project generated")

	return result, nil
}

func (g *Generator) createBaseLayout(outputDir string, desc templatetype.Descriptor) error {
	dirs := slices.Clone(baseDirs)
	for _, c := range desc.AllCategories() {
		dirs = append(dirs, path.Join(templatetype.TasksRoot, c))
	}
	for _, d := range dirs {
		p := filepath.Join(outputDir, filepath.FromSlash(d))
		if err := g.fs.MkdirAll(p, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", p, err)
		}
	}
	return nil
}

// ensureExecutables adds the execute bits to the descriptor's executable
// files and to every task script under ci/tasks.
func (g *Generator) ensureExecutables(outputDir string, desc templatetype.Descriptor) error {
	var targets []string
	for _, p := range desc.ExecutableFiles() {
		targets = append(targets, filepath.Join(outputDir, filepath.FromSlash(p)))
	}

	tasksDir := filepath.Join(outputDir, filepath.FromSlash(templatetype.TasksRoot))
	err := afero.Walk(g.fs, tasksDir, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && info.Name() == TaskScript {
			targets = append(targets, p)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning %s: %w", tasksDir, err)
	}

	var missing []string
	for _, p := range targets {
		ok, err := afero.Exists(g.fs, p)
		if err != nil {
			return fmt.Errorf("checking %s: %w", p, err)
		}
		if !ok {
			missing = append(missing, p)
			continue
		}
		if err := platform.AddMode(g.fs, p, platform.ExecBits); err != nil {
			return err
		}
	}
	if len(missing) > 0 {
		logger := logging.Get("generate")
		logger.Debug().Str("files", strings.Join(missing, ", ")).Msg("executable files not provided by templates")
	}
	return nil
}
