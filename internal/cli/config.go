package cli

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/libstand-labs/libstand/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	configCmd.AddCommand(configSetCmd, configGetCmd, configListCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage defaults for new and patch",
	Long: `Read and write libstand defaults stored at ~/.libstand/config.yaml.
Set LIBSTAND_HOME to use another directory. LIBSTAND_<KEY> environment
variables override the file.

Keys:
  preset          preset file used when --preset is not given (default: built-in lib-standalone)
  indent          indent width for manifests with no detectable indent, 1-8 (default: 4)
  create_missing  add absent scripts/devDependencies sections (default: false)`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a default",
	Example: `  libstand config set indent 2
  libstand config set create_missing true`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("setting config key %q: %w", key, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, value, config.FilePath())
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:     "get <key>",
	Short:   "Print the effective value of a default",
	Example: `  libstand config get indent`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !slices.Contains(config.Keys, args[0]) {
			return config.Validate(args[0], "")
		}
		fmt.Fprintln(cmd.OutOrStdout(), config.Get(args[0]))
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every default with its effective value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, key := range config.Keys {
			fmt.Fprintf(w, "%s\t%s\n", key, config.Get(key))
		}
		return w.Flush()
	},
}
