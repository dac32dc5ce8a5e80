package cli

import (
	"fmt"

	"github.com/libstand-labs/libstand/internal/config"
	"github.com/libstand-labs/libstand/internal/options"
	"github.com/libstand-labs/libstand/internal/pkgjson"
	"github.com/libstand-labs/libstand/internal/preset"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var (
	presetFile      string
	presetSourceDir string
	presetPath      string
)

func init() {
	presetShowCmd.Flags().StringVar(&presetFile, "preset", "", "Preset file (default: config 'preset' or built-in)")
	presetShowCmd.Flags().StringVar(&presetSourceDir, "source-dir", options.DefaultSourceDir, "App source directory")
	presetShowCmd.Flags().StringVar(&presetPath, "path", options.DefaultPath, "Library directory inside the source directory")
	presetCmd.AddCommand(presetShowCmd)
	rootCmd.AddCommand(presetCmd)
}

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Inspect the scripts and devDependencies added to package.json",
}

var presetShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active preset with commands rendered",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger(cmd)

		p, err := preset.LoadOrDefault(stringFlag(cmd, "preset", presetFile, config.Preset()))
		if err != nil {
			return err
		}
		for _, w := range p.VersionWarnings() {
			log.Warnf("%s", w)
		}

		targets, err := p.Targets(options.Options{SourceDir: presetSourceDir, Path: presetPath}.WithDefaults())
		if err != nil {
			return err
		}

		rendered := preset.Preset{Name: p.Name}
		for _, t := range targets {
			if t.Key != pkgjson.KeyScripts {
				continue
			}
			for _, e := range t.Entries {
				rendered.Scripts = append(rendered.Scripts, preset.Script{Name: e.Name, Command: fmt.Sprint(e.Value)})
			}
		}
		rendered.DevDependencies = p.DevDependencies

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(rendered); err != nil {
			return fmt.Errorf("encoding preset: %w", err)
		}
		return enc.Close()
	},
}
