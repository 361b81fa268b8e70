package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/malston/tkgi-pipeline-standards/internal/compliance"
	"github.com/malston/tkgi-pipeline-standards/internal/report"
	"github.com/malston/tkgi-pipeline-standards/internal/templatetype"
)

// ErrNonCompliant is returned after the report when a project has issues.
var ErrNonCompliant = errors.New("project is not compliant")

type validateOptions struct {
	projectDir   string
	templateType string
	relaxFiles   []string
	skipDirs     []string
	skipFiles    []string
	skipTasks    []string
	format       string
	output       string
	checkTests   bool
}

var valOpts validateOptions

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Audit a project against the template standards",
	Long: `Audit a project tree against the structural and content rules of a
template type and print a compliance report. Rules can be relaxed for one run
with --relax-file or the --skip-* flags; entries are exact paths or glob
patterns. Exits with status 1 when any issue is found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd, valOpts)
	},
}

func init() {
	f := validateCmd.Flags()
	f.StringVarP(&valOpts.projectDir, "project-dir", "p", ".", "Directory of the project to validate")
	f.StringVarP(&valOpts.templateType, "template-type", "t", string(templatetype.Kustomize), "Template type to validate against")
	f.StringSliceVar(&valOpts.relaxFiles, "relax-file", nil, "Relaxation file (YAML, JSON or TOML, repeatable)")
	f.StringSliceVar(&valOpts.skipDirs, "skip-dir", nil, "Required directory to skip (repeatable)")
	f.StringSliceVar(&valOpts.skipFiles, "skip-file", nil, "Required file to skip (repeatable)")
	f.StringSliceVar(&valOpts.skipTasks, "skip-task", nil, "Critical task directory to skip (repeatable)")
	f.StringVarP(&valOpts.format, "format", "f", string(report.FormatText), "Report format (text, json, yaml)")
	f.StringVar(&valOpts.output, "output", "", "Write the report to a file instead of stdout")
	f.BoolVar(&valOpts.checkTests, "check-tests", false, "Also check the script test framework")
	rootCmd.AddCommand(validateCmd)
}

func (o validateOptions) relaxations() (compliance.RelaxationSet, error) {
	set := compliance.RelaxationSet{
		SkipDirectories: o.skipDirs,
		SkipFiles:       o.skipFiles,
		SkipTasks:       o.skipTasks,
	}
	for _, path := range o.relaxFiles {
		loaded, err := compliance.LoadRelaxations(appFs, path)
		if err != nil {
			return compliance.RelaxationSet{}, err
		}
		set = set.Merge(*loaded)
	}
	return set, nil
}

func runValidate(cmd *cobra.Command, opts validateOptions) error {
	t, err := templatetype.Parse(opts.templateType)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	relax, err := opts.relaxations()
	if err != nil {
		return err
	}

	v, err := compliance.NewValidator(appFs, opts.projectDir, compliance.Options{
		TemplateType:       t,
		Relaxations:        relax,
		CheckTestFramework: opts.checkTests,
	})
	if err != nil {
		return err
	}
	res := v.Validate()

	var out io.Writer = cmd.OutOrStdout()
	if opts.output != "" {
		f, err := appFs.OpenFile(opts.output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := report.Write(out, res, format, report.Options{Color: useColor(out)}); err != nil {
		return err
	}
	if res.HasIssues() {
		return ErrNonCompliant
	}
	return nil
}

// IsReported reports whether err was already explained to the user by a
// printed report.
func IsReported(err error) bool {
	return errors.Is(err, ErrNonCompliant)
}
