package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/malston/tkgi-pipeline-standards/internal/templatetype"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List supported template types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tTASK CATEGORIES\tCRITICAL TASKS")
		for _, t := range templatetype.All() {
			desc, err := templatetype.Lookup(t)
			if err != nil {
				return err
			}
			critical := make([]string, len(desc.CriticalTaskDirs))
			for i, d := range desc.CriticalTaskDirs {
				critical[i] = strings.TrimPrefix(d, templatetype.TasksRoot+"/")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", t,
				strings.Join(desc.AllCategories(), ", "),
				strings.Join(critical, ", "))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
}
