package cli

import (
	"github.com/libstand-labs/libstand/internal/distbuild"
	"github.com/libstand-labs/libstand/internal/npm"
	"github.com/spf13/cobra"
)

var (
	buildRoot    string
	buildCompile bool
)

func init() {
	buildCmd.Flags().StringVar(&buildRoot, "root", ".", "Library directory containing package.json")
	buildCmd.Flags().BoolVar(&buildCompile, "compile", false, "Also run the TypeScript compiler through npx")
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Assemble a publishable dist directory for a library",
	Long: `Clean <root>/dist, copy non-TypeScript sources, package.json and README.md into
it, and set "private" to false in the copied manifest so it can be published.

Example:
  libstand build --root src/lib --compile`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger(cmd)

		cfg := distbuild.DefaultConfig()
		if buildCompile {
			runner := &npm.Runner{Stdout: cmd.ErrOrStderr(), Stderr: cmd.ErrOrStderr()}
			cfg.Compile = runner.Compile
		}

		report, err := distbuild.Build(cmd.Context(), buildRoot, cfg)
		if err != nil {
			return err
		}

		for _, name := range report.Missing {
			log.Warnf("%s not found; not copied", name)
		}
		if !report.Published {
			log.Warnf("no package.json in %s; dist is not publishable", buildRoot)
		}
		log.Successf("Built %s (%d files)", report.DistDir, len(report.Copied))
		return nil
	},
}
