package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/malston/tkgi-pipeline-standards/internal/compliance"
	"github.com/malston/tkgi-pipeline-standards/internal/config"
	"github.com/malston/tkgi-pipeline-standards/internal/materialize"
	"github.com/malston/tkgi-pipeline-standards/internal/report"
	"github.com/malston/tkgi-pipeline-standards/internal/source"
)

type generateOptions struct {
	outputDir    string
	templateType string
	configFile   string
	templateDirs []string
	orgName      string
	repoName     string
	branch       string
	foundation   string
	pipeline     string
	validate     bool
}

var genOpts generateOptions

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a pipeline project from the reference templates",
	Long: `Generate a pipeline project of the given template type. The type-specific
template tree is copied first and the shared reference tree fills the gaps.
Settings come from built-in defaults, the user config file, --config, PIPEGEN_*
environment variables and finally the flags below.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd, genOpts)
	},
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genOpts.outputDir, "output-dir", "o", "", "Directory to generate the project in")
	f.StringVarP(&genOpts.templateType, "template-type", "t", "", "Template type (kustomize, helm, cli-tool)")
	f.StringVarP(&genOpts.configFile, "config", "c", "", "Project config file (YAML, JSON or TOML)")
	f.StringSliceVar(&genOpts.templateDirs, "template-dir", nil, "Additional template root, searched first (repeatable)")
	f.StringVar(&genOpts.orgName, "org-name", "", "GitHub organization name")
	f.StringVar(&genOpts.repoName, "repo-name", "", "Repository name")
	f.StringVar(&genOpts.branch, "default-branch", "", "Default git branch")
	f.StringVar(&genOpts.foundation, "default-foundation", "", "Default foundation")
	f.StringVar(&genOpts.pipeline, "default-pipeline", "", "Default pipeline name")
	f.BoolVar(&genOpts.validate, "validate", false, "Audit the generated project afterwards")
	rootCmd.AddCommand(generateCmd)
}

func (o generateOptions) resolver() *config.Resolver {
	return config.NewResolver(appFs).
		WithProjectFile(o.configFile).
		Override(config.KeyTemplateType, o.templateType).
		Override(config.KeyOutputDir, o.outputDir).
		Override("org_name", o.orgName).
		Override("repo_name", o.repoName).
		Override("default_branch", o.branch).
		Override("default_foundation", o.foundation).
		Override("default_pipeline", o.pipeline)
}

func runGenerate(cmd *cobra.Command, opts generateOptions) error {
	settings, err := opts.resolver().Resolve()
	if err != nil {
		return fmt.Errorf("resolving configuration: %w", err)
	}

	var roots []string
	roots = append(roots, opts.templateDirs...)
	roots = append(roots, settings.TemplateDirs...)
	roots = append(roots, source.DefaultRoots()...)

	gen := materialize.NewGenerator(appFs, source.NewResolver(appFs, roots, buildVersion))
	result, err := gen.Generate(materialize.Options{
		OutputDir:    settings.OutputDir,
		TemplateType: settings.TemplateType,
		Context:      settings.Context,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := report.GenerationSummary(out, result); err != nil {
		return err
	}
	if !opts.validate {
		return nil
	}

	v, err := compliance.NewValidator(appFs, result.OutputDir, compliance.Options{
		TemplateType:       result.TemplateType,
		CheckTestFramework: true,
	})
	if err != nil {
		return err
	}
	res := v.Validate()
	fmt.Fprintln(out)
	if err := report.Text(out, res, report.Options{Color: useColor(out)}); err != nil {
		return err
	}
	if res.HasIssues() {
		return ErrNonCompliant
	}
	return nil
}
