package cli

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/libstand-labs/libstand/internal/branding"
	"github.com/spf13/cobra"
)

var (
	versionShort bool
	versionJSON  bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print the version number only")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print build info as JSON")
	rootCmd.AddCommand(versionCmd)
}

// buildInfo is the version payload printed by "version --json".
type buildInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"goVersion"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Example: `  libstand version
  libstand version --short
  libstand version --json | jq -r .commit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if versionShort {
			fmt.Fprintln(out, buildVersion)
			return nil
		}

		info := buildInfo{
			Name:      branding.CLIName(),
			Version:   buildVersion,
			Commit:    buildCommit,
			Date:      buildDate,
			GoVersion: runtime.Version(),
		}
		if versionJSON {
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling version info: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		fmt.Fprintf(out, "%s %s (commit %s, built %s with %s)\n", info.Name, info.Version, info.Commit, info.Date, info.GoVersion)
		return nil
	},
}
