package cli

import (
	"github.com/libstand-labs/libstand/internal/branding"
	"github.com/libstand-labs/libstand/internal/config"
	"github.com/libstand-labs/libstand/internal/console"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` scaffolds standalone libraries inside an app and patches the
host package.json with the scripts and devDependencies the library build needs.

Existing entries are never changed; conflicting values are reported as warnings.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
	},
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}

// logger returns a console sink bound to the command's writers.
func logger(cmd *cobra.Command) *console.Logger {
	return console.New(cmd.OutOrStdout(), cmd.ErrOrStderr())
}
