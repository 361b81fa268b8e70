package templatetype

import "regexp"

// strict mode is satisfied by both statements anywhere in the file, in
// either order. Adjacency is not enforced.
var defaultPatterns = Patterns{
	Shebang:    regexp.MustCompile(`(?m)^#!/usr/bin/env bash$`),
	StrictMode: regexp.MustCompile(`(?s)set -o errexit.*set -o pipefail|set -o pipefail.*set -o errexit`),
	ScriptDir:  regexp.MustCompile(`(?s)(DIR|[A-Za-z_]+DIR|[A-Za-z_]+_DIR|SCRIPT_DIR|CURRENT_DIR)\s*=.*\$\(cd.*dirname.*BASH_SOURCE.*pwd\)`),
}

var table = map[Type]Descriptor{
	Kustomize: newDescriptor(Kustomize,
		[]RequiredFile{{Path: "ci/pipelines/set-pipeline.yml"}},
		"ci/tasks/common/kubectl-apply",
		"ci/tasks/tkgi/tkgi-login",
	),
	Helm: newDescriptor(Helm, nil,
		"ci/tasks/helm/helm-deploy",
		"ci/tasks/tkgi/tkgi-login",
	),
	CLITool: newDescriptor(CLITool, nil,
		"ci/tasks/cli-tool/download-tool",
		"ci/tasks/cli-tool/install-tool",
		"ci/tasks/tkgi/tkgi-login",
	),
}

func newDescriptor(t Type, extraFiles []RequiredFile, critical ...string) Descriptor {
	dirs := []string{
		"ci/pipelines",
		"ci/scripts",
		"ci/scripts/lib",
		"ci/scripts/tests",
		TasksRoot,
	}
	for _, c := range CommonCategories {
		dirs = append(dirs, TasksRoot+"/"+c)
	}
	for _, c := range t.Categories() {
		dirs = append(dirs, TasksRoot+"/"+c)
	}
	dirs = append(dirs, "scripts")

	files := []RequiredFile{
		{Path: "ci/fly.sh", Executable: true},
		{Path: "ci/pipelines/main.yml"},
		{Path: "ci/pipelines/release.yml"},
	}
	files = append(files, extraFiles...)
	files = append(files,
		RequiredFile{Path: "ci/scripts/fly.sh", Executable: true},
		RequiredFile{Path: "ci/scripts/lib/commands.sh"},
		RequiredFile{Path: "ci/scripts/lib/help.sh"},
		RequiredFile{Path: "ci/scripts/lib/parsing.sh"},
		RequiredFile{Path: "ci/scripts/lib/utils.sh"},
		RequiredFile{Path: "ci/scripts/tests/run_tests.sh", Executable: true},
		RequiredFile{Path: "ci/scripts/tests/test-framework.sh"},
		RequiredFile{Path: "README.md"},
	)

	return Descriptor{
		Type:             t,
		RequiredDirs:     dirs,
		RequiredFiles:    files,
		CriticalTaskDirs: critical,
		ScriptPatterns:   defaultPatterns,
	}
}
