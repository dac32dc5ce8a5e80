package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/libstand-labs/libstand/internal/config"
	"github.com/libstand-labs/libstand/internal/console"
	"github.com/libstand-labs/libstand/internal/hosttree"
	"github.com/libstand-labs/libstand/internal/options"
	"github.com/libstand-labs/libstand/internal/pkgjson"
	"github.com/libstand-labs/libstand/internal/preset"
	"github.com/spf13/cobra"
)

var (
	patchRoot          string
	patchPreset        string
	patchName          string
	patchSourceDir     string
	patchPath          string
	patchCreateMissing bool
	patchDryRun        bool
)

func init() {
	patchCmd.Flags().StringVar(&patchRoot, "root", ".", "Project root containing package.json")
	patchCmd.Flags().StringVar(&patchPreset, "preset", "", "Preset file (default: config 'preset' or built-in)")
	patchCmd.Flags().StringVar(&patchName, "name", "", "Library name available to preset commands")
	patchCmd.Flags().StringVar(&patchSourceDir, "source-dir", options.DefaultSourceDir, "App source directory")
	patchCmd.Flags().StringVar(&patchPath, "path", options.DefaultPath, "Library directory inside the source directory")
	patchCmd.Flags().BoolVar(&patchCreateMissing, "create-missing", false, "Add absent sections instead of skipping them")
	patchCmd.Flags().BoolVar(&patchDryRun, "dry-run", false, "Print the diff without writing")
	rootCmd.AddCommand(patchCmd)
}

var patchCmd = &cobra.Command{
	Use:   "patch",
	Short: "Add the library build scripts and devDependencies to package.json",
	Long: `Add the preset's scripts and devDependencies to the host package.json.

Only missing entries are inserted, at the end of each section, matching the
file's existing indentation. Entries that already exist are left untouched;
differing values are reported as warnings. Running patch twice is a no-op.

Examples:
  libstand patch
  libstand patch --root ./app --path shared/ui --dry-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger(cmd)
		req := patchRequest{
			root:          patchRoot,
			preset:        stringFlag(cmd, "preset", patchPreset, config.Preset()),
			vars:          options.Options{Name: patchName, SourceDir: patchSourceDir, Path: patchPath},
			createMissing: boolFlag(cmd, "create-missing", patchCreateMissing, config.CreateMissing()),
		}

		targets, err := loadTargets(log, req)
		if err != nil {
			return err
		}
		tree := hosttree.NewDirTree(req.root)
		patcher := newPatcher(log, req)

		if patchDryRun {
			s, _, err := hosttree.StageManifest(tree, hosttree.ManifestFile, patcher, targets...)
			if errors.Is(err, pkgjson.ErrMissingFile) {
				return nil
			}
			if err != nil {
				return err
			}
			return printPreview(cmd, log, s)
		}

		res, err := hosttree.PatchManifest(tree, hosttree.ManifestFile, patcher, targets...)
		if errors.Is(err, pkgjson.ErrMissingFile) {
			printWarningSummary(log)
			return nil
		}
		if err != nil {
			return err
		}
		printPatchResult(log, res)
		if len(res.Applied[pkgjson.KeyDevDependencies]) > 0 {
			log.Warnf("devDependencies were added; run 'npm install' to install them")
		}
		printWarningSummary(log)
		return nil
	},
}

// ─── Helpers ───────────────────────────────────────────────────────

type patchRequest struct {
	root          string
	preset        string
	vars          options.Options
	createMissing bool
}

// loadTargets loads the preset, reports questionable versions and renders
// the patch targets.
func loadTargets(log *console.Logger, req patchRequest) ([]pkgjson.Target, error) {
	p, err := preset.LoadOrDefault(req.preset)
	if err != nil {
		return nil, err
	}
	for _, w := range p.VersionWarnings() {
		log.Warnf("%s", w)
	}
	return p.Targets(req.vars.WithDefaults())
}

func newPatcher(log *console.Logger, req patchRequest) *pkgjson.Patcher {
	return &pkgjson.Patcher{
		Reporter:      log,
		CreateMissing: req.createMissing,
		DefaultIndent: config.Indent(),
	}
}

func printPreview(cmd *cobra.Command, log *console.Logger, s *hosttree.Session) error {
	diff, err := hosttree.Preview(s)
	if err != nil {
		return err
	}
	if diff == "" {
		log.Infof("%s is up to date", hosttree.ManifestFile)
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), diff)
	return nil
}

func printPatchResult(log *console.Logger, res *pkgjson.Result) {
	if !res.Changed() {
		log.Infof("%s is up to date", hosttree.ManifestFile)
		return
	}
	for _, section := range []string{pkgjson.KeyScripts, pkgjson.KeyDevDependencies} {
		names := res.Applied[section]
		if len(names) == 0 {
			continue
		}
		log.Successf("Added %d %s: %s", len(names), section, strings.Join(names, ", "))
	}
	for _, section := range res.Created {
		log.Infof("  created section %q", section)
	}
}

// printWarningSummary closes a run that reported warnings.
func printWarningSummary(log *console.Logger) {
	switch n := log.Warnings(); n {
	case 0:
	case 1:
		log.Infof("\nCompleted with 1 warning.")
	default:
		log.Infof("\nCompleted with %d warnings.", n)
	}
}

// stringFlag returns the flag value when set on the command line, otherwise
// the configured value, otherwise the flag default.
func stringFlag(cmd *cobra.Command, name, value, configured string) string {
	if cmd.Flags().Changed(name) || configured == "" {
		return value
	}
	return configured
}

func boolFlag(cmd *cobra.Command, name string, value, configured bool) bool {
	if cmd.Flags().Changed(name) {
		return value
	}
	return value || configured
}
