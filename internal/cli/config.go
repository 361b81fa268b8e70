package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/malston/tkgi-pipeline-standards/internal/config"
)

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage user settings",
	Long: `Read and write generator defaults stored in the user config file
($XDG_CONFIG_HOME/pipegen/config.yaml). Env variables are addressed as
env_variables.<NAME>; template_dirs takes a comma-separated list.`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := config.Set(appFs, key, value); err != nil {
			return fmt.Errorf("setting config key %q: %w", key, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := config.Get(appFs, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the user config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), config.UserFile())
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every effective setting",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.NewResolver(appFs).Resolve()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, k := range s.Context.Keys() {
			v, _ := s.Context.Lookup(k)
			fmt.Fprintf(out, "%s = %s\n", k, v)
		}
		fmt.Fprintf(out, "%s = %s\n", config.KeyTemplateDirs, strings.Join(s.TemplateDirs, ","))
		return nil
	},
}
