package compliance

import (
	"io/fs"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/malston/tkgi-pipeline-standards/internal/manifest"
	"github.com/malston/tkgi-pipeline-standards/internal/platform"
	"github.com/malston/tkgi-pipeline-standards/internal/templatetype"
)

const (
	parsingScript = "ci/scripts/lib/parsing.sh"
	pipelinesDir  = "ci/pipelines"
	mainPipeline  = "ci/pipelines/main.yml"
	testsDir      = "ci/scripts/tests"
	testFramework = "ci/scripts/tests/test-framework.sh"
	testRunner    = "ci/scripts/tests/run_tests.sh"
)

// FlyCommands are the subcommands the fly.sh argument parser must handle.
var FlyCommands = []string{"set", "unpause", "destroy", "validate", "release", "set-pipeline"}

// FlyOptions are the options the fly.sh argument parser must handle. Evidence
// is searched for the first spelling only.
var FlyOptions = []string{
	"-f, --foundation",
	"-t, --target",
	"-e, --environment",
	"-b, --branch",
	"-c, --config-branch",
	"-d, --params-branch",
	"-p, --pipeline",
	"-o, --github-org",
	"-v, --version",
	"--dry-run",
	"--verbose",
	"--timer",
	"-h, --help",
}

var (
	inlineTaskPattern     = regexp.MustCompile(`task:.*\n.*platform: linux`)
	mockContentPattern    = regexp.MustCompile(`(?i)mock.*function`)
	sourcesFramework      = regexp.MustCompile(`source.*test-framework\.sh`)
	testFunctionPattern   = regexp.MustCompile(`function test_`)
	assertionPattern      = regexp.MustCompile(`assert_`)
	commandPatterns       = compileCommandPatterns()
	optionPatterns        = compileOptionPatterns()
	taskDefinitionFiles   = []string{"task.yml", "task.sh"}
	categoryContainerDirs = knownCategories()
)

func compileCommandPatterns() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(FlyCommands))
	for i, c := range FlyCommands {
		q := regexp.QuoteMeta(c)
		out[i] = regexp.MustCompile(`(?s)(cmd_` + q + `|command.*` + q + `|case.*` + q + `)`)
	}
	return out
}

func compileOptionPatterns() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(FlyOptions))
	for i, o := range FlyOptions {
		short, _, _ := strings.Cut(o, ",")
		short = strings.TrimSpace(short)
		q := regexp.QuoteMeta(short)
		bare := regexp.QuoteMeta(strings.ReplaceAll(short, "-", ""))
		out[i] = regexp.MustCompile(`(?m)` + q + `\)|` + q + `[ "#]|"` + bare)
	}
	return out
}

func knownCategories() []string {
	out := slices.Clone(templatetype.CommonCategories)
	for _, t := range templatetype.All() {
		for _, c := range t.Categories() {
			if !slices.Contains(out, c) {
				out = append(out, c)
			}
		}
	}
	return out
}

// ─── 1. Directories ──────────────────────────────────────────────

func (v *Validator) checkDirectories() {
	for _, d := range v.desc.RequiredDirs {
		v.assert(v.isDir(d), CategoryDirectory, "Missing required directory: %s", d)
	}
}

// ─── 2. Files ────────────────────────────────────────────────────

func (v *Validator) checkFiles() {
	for _, f := range v.desc.RequiredFiles {
		present := v.isFile(f.Path)
		v.assert(present, CategoryFile, "Missing required file: %s", f.Path)
		if present && f.Executable {
			v.assert(platform.IsExecutable(v.fs, v.abs(f.Path)), CategoryFile, "Required file %s is not executable", f.Path)
		}
	}
}

// ─── 3. Task shape ───────────────────────────────────────────────

func (v *Validator) checkTaskShape() {
	for _, dir := range v.taskDirs() {
		if len(v.glob(path.Join(dir, "task.*"))) == 0 {
			continue
		}
		for _, name := range taskDefinitionFiles {
			v.assert(v.isFile(taskFile(dir, name)), CategoryTask, "Task directory %s missing %s", dir, name)
		}
	}
}

// taskDirs returns every directory below ci/tasks, sorted, except hidden
// directories and category containers.
func (v *Validator) taskDirs() []string {
	root := v.abs(templatetype.TasksRoot)
	if ok, _ := afero.DirExists(v.fs, root); !ok {
		return nil
	}

	var dirs []string
	_ = afero.Walk(v.fs, root, func(p string, info fs.FileInfo, err error) error {
		if err != nil || !info.IsDir() || p == root {
			return nil
		}
		name := info.Name()
		if strings.HasPrefix(name, ".") {
			return filepath.SkipDir
		}
		if slices.Contains(categoryContainerDirs, name) {
			return nil
		}
		dirs = append(dirs, v.rel(p))
		return nil
	})
	return dirs
}

// ─── 4. Critical tasks ───────────────────────────────────────────

func (v *Validator) checkCriticalTasks() {
	for _, dir := range v.desc.CriticalTaskDirs {
		if !v.isDir(dir) {
			v.assert(false, CategoryTask, "Missing critical task directory: %s", dir)
			continue
		}
		for _, name := range taskDefinitionFiles {
			v.assert(v.isFile(taskFile(dir, name)), CategoryTask, "Critical task %s missing %s", dir, name)
		}
	}
}

// ─── 5. Scripts ──────────────────────────────────────────────────

func (v *Validator) checkScripts() {
	patterns := v.desc.ScriptPatterns
	for _, rel := range v.scripts() {
		content, err := v.readFile(rel)
		if err != nil {
			v.assert(false, CategoryScript, "Error reading script %s: %v", rel, err)
			continue
		}
		if scriptExempt(rel, content) {
			v.logger.Trace().Str("script", rel).Msg("script exempt from pattern checks")
			continue
		}
		v.assert(patterns.Shebang.MatchString(content), CategoryScript,
			"Script %s missing proper shebang (#!/usr/bin/env bash)", rel)
		v.assert(patterns.StrictMode.MatchString(content), CategoryScript,
			"Script %s missing strict mode (set -o errexit and set -o pipefail)", rel)
		v.assert(patterns.ScriptDir.MatchString(content), CategoryScript,
			"Script %s missing script directory definition", rel)
	}
}

// scripts returns every *.sh file in the project, sorted, outside .git.
func (v *Validator) scripts() []string {
	var out []string
	_ = afero.Walk(v.fs, v.root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(info.Name(), ".sh") {
			out = append(out, v.rel(p))
		}
		return nil
	})
	return out
}

// scriptExempt reports whether a script is sourced, a library, a mock or a
// test. Such scripts are not held to the standalone script patterns.
func scriptExempt(rel, content string) bool {
	first, _, _ := strings.Cut(content, "\n")
	if !strings.HasPrefix(first, "#!") {
		return true
	}
	segments := strings.Split(path.Dir(rel), "/")
	if slices.Contains(segments, "lib") || slices.Contains(segments, "tests") {
		return true
	}
	name := strings.ToLower(path.Base(rel))
	return strings.Contains(name, "mock") || strings.Contains(name, "test_") || mockContentPattern.MatchString(content)
}

// ─── 6. fly.sh commands and options ──────────────────────────────

func (v *Validator) checkFlyCoverage() {
	if !v.isFile(parsingScript) {
		v.assert(false, CategoryFile, "Missing %s", parsingScript)
		return
	}
	content, err := v.readFile(parsingScript)
	if err != nil {
		v.assert(false, CategoryFile, "Error reading %s: %v", parsingScript, err)
		return
	}

	for i, c := range FlyCommands {
		v.assert(commandPatterns[i].MatchString(content), CategoryCommand, "fly.sh missing required command: %s", c)
	}
	for i, o := range FlyOptions {
		v.assert(optionPatterns[i].MatchString(content), CategoryOption, "fly.sh missing required option: %s", o)
	}
}

// ─── 7. Pipelines ────────────────────────────────────────────────

func (v *Validator) checkPipelines() {
	if v.isFile(mainPipeline) {
		v.checkMainPipeline()
	}

	for _, rel := range v.glob(path.Join(pipelinesDir, "*.yml")) {
		content, err := v.readFile(rel)
		if err != nil {
			v.assert(false, CategoryPipeline, "Error reading %s: %v", rel, err)
			continue
		}
		n := len(inlineTaskPattern.FindAllStringIndex(content, -1))
		v.assert(n == 0, CategoryPipeline,
			"%s contains %d inline task definitions instead of referencing task.yml files", path.Base(rel), n)
	}
}

func (v *Validator) checkMainPipeline() {
	content, err := v.readFile(mainPipeline)
	if err != nil {
		v.assert(false, CategoryPipeline, "Error validating main.yml: %v", err)
		return
	}
	p, err := manifest.ParsePipeline([]byte(content))
	if err != nil {
		v.assert(false, CategoryPipeline, "Error validating main.yml: %v", err)
		return
	}
	if p == nil {
		v.assert(false, CategoryPipeline, "main.yml pipeline is empty")
		return
	}
	v.logger.Debug().Strs("jobs", p.Jobs()).Msg("parsed main pipeline")
	for _, s := range []string{manifest.SectionGroups, manifest.SectionJobs, manifest.SectionResources} {
		v.assert(p.HasSection(s), CategoryPipeline, "main.yml pipeline missing '%s' section", s)
	}
}

// ─── 8. Task definitions ─────────────────────────────────────────

func (v *Validator) checkTaskDefinitions() {
	for _, rel := range v.taskDefinitions() {
		content, err := v.readFile(rel)
		if err != nil {
			v.assert(false, CategoryTask, "Error validating %s: %v", rel, err)
			continue
		}
		task, err := manifest.ParseTask([]byte(content))
		if err != nil {
			v.assert(false, CategoryTask, "Error validating %s: %v", rel, err)
			continue
		}

		v.assert(task.Platform == "linux", CategoryTask, "%s missing or incorrect 'platform: linux'", rel)
		v.assert(len(task.Inputs) > 0, CategoryTask, "%s missing 'inputs' section", rel)
		if task.Run == nil {
			v.assert(false, CategoryTask, "%s missing 'run' section", rel)
			continue
		}
		want := path.Join(path.Dir(rel), "task.sh")
		v.assert(task.Run.Path == want || strings.HasSuffix(task.Run.Path, "/"+want), CategoryTask,
			"%s run.path doesn't point to task.sh in the correct location", rel)
	}
}

// taskDefinitions returns every task.yml below ci/tasks, sorted.
func (v *Validator) taskDefinitions() []string {
	root := v.abs(templatetype.TasksRoot)
	var out []string
	_ = afero.Walk(v.fs, root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() && info.Name() == "task.yml" {
			out = append(out, v.rel(p))
		}
		return nil
	})
	return out
}

// ─── 9. Test framework ───────────────────────────────────────────

func (v *Validator) checkTestFramework() {
	v.assert(v.isFile(testFramework), CategoryTest, "Missing test framework (%s)", testFramework)
	v.assert(v.isFile(testRunner), CategoryTest, "Missing test runner (%s)", testRunner)

	tests := v.glob(path.Join(testsDir, "test_*.sh"))
	v.assert(len(tests) > 0, CategoryTest, "No test files found (%s/test_*.sh)", testsDir)

	for _, rel := range tests {
		content, err := v.readFile(rel)
		if err != nil {
			v.assert(false, CategoryTest, "Error checking test file %s: %v", rel, err)
			continue
		}
		v.assert(sourcesFramework.MatchString(content), CategoryTest, "Test file %s doesn't source the test framework", rel)
		v.assert(testFunctionPattern.MatchString(content), CategoryTest, "Test file %s doesn't contain test functions", rel)
		v.assert(assertionPattern.MatchString(content), CategoryTest, "Test file %s doesn't contain assertions", rel)
	}
}
