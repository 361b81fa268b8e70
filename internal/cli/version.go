package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/malston/tkgi-pipeline-standards/internal/branding"
	"github.com/malston/tkgi-pipeline-standards/internal/report"
)

var (
	versionShort  bool
	versionFormat string
)

// buildInfo describes the running binary.
type buildInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

func currentBuild() buildInfo {
	return buildInfo{
		Version:   buildVersion,
		Commit:    buildCommit,
		Date:      buildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (b buildInfo) write(w io.Writer, format report.Format) error {
	switch format {
	case report.FormatJSON:
		data, err := json.MarshalIndent(b, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling version info: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case report.FormatYAML:
		data, err := yaml.Marshal(b)
		if err != nil {
			return fmt.Errorf("marshaling version info: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		_, err := fmt.Fprintf(w, "%s %s (commit %s, built %s, %s %s)\n",
			branding.CLIName(), b.Version, b.Commit, b.Date, b.GoVersion, b.Platform)
		return err
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionShort {
			fmt.Fprintln(cmd.OutOrStdout(), buildVersion)
			return nil
		}
		format, err := report.ParseFormat(versionFormat)
		if err != nil {
			return err
		}
		return currentBuild().write(cmd.OutOrStdout(), format)
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print the version number only")
	versionCmd.Flags().StringVarP(&versionFormat, "format", "f", string(report.FormatText), "Output format (text, json, yaml)")
	rootCmd.AddCommand(versionCmd)
}
