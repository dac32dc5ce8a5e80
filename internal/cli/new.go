package cli

import (
	"errors"
	"fmt"
	"path"
	"regexp"

	"github.com/libstand-labs/libstand/internal/config"
	"github.com/libstand-labs/libstand/internal/hosttree"
	"github.com/libstand-labs/libstand/internal/npm"
	"github.com/libstand-labs/libstand/internal/options"
	"github.com/libstand-labs/libstand/internal/pkgjson"
	"github.com/libstand-labs/libstand/internal/scaffold"
	"github.com/spf13/cobra"
)

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

var (
	newRoot          string
	newSourceDir     string
	newPath          string
	newOptionsFile   string
	newPreset        string
	newInstall       bool
	newCreateMissing bool
	newDryRun        bool
)

func init() {
	newCmd.Flags().StringVar(&newRoot, "root", ".", "Project root containing package.json")
	newCmd.Flags().StringVar(&newSourceDir, "source-dir", options.DefaultSourceDir, "App source directory")
	newCmd.Flags().StringVar(&newPath, "path", options.DefaultPath, "Library directory inside the source directory")
	newCmd.Flags().StringVar(&newOptionsFile, "options", "", "Read options from a YAML or JSON file")
	newCmd.Flags().StringVar(&newPreset, "preset", "", "Preset file (default: config 'preset' or built-in)")
	newCmd.Flags().BoolVar(&newInstall, "install", false, "Run 'npm install' after patching package.json")
	newCmd.Flags().BoolVar(&newCreateMissing, "create-missing", false, "Add absent sections instead of skipping them")
	newCmd.Flags().BoolVar(&newDryRun, "dry-run", false, "Print the package.json diff without writing anything")
	rootCmd.AddCommand(newCmd)
}

var newCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Scaffold a standalone library and wire its build into package.json",
	Long: `Generate a standalone library under <source-dir>/<path> and add the scripts and
devDependencies needed to build it to the host package.json.

Examples:
  libstand new ui-widgets
  libstand new ui-widgets --source-dir app --path shared/widgets
  libstand new --options lib.yaml --install`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger(cmd)

		opts, err := resolveOptions(cmd, args)
		if err != nil {
			return err
		}

		req := patchRequest{
			root:          newRoot,
			preset:        stringFlag(cmd, "preset", newPreset, config.Preset()),
			vars:          opts,
			createMissing: boolFlag(cmd, "create-missing", newCreateMissing, config.CreateMissing()),
		}
		targets, err := loadTargets(log, req)
		if err != nil {
			return err
		}

		// The manifest is staged before anything is generated so a broken
		// package.json leaves the project untouched.
		tree := hosttree.NewDirTree(newRoot)
		s, res, err := hosttree.StageManifest(tree, hosttree.ManifestFile, newPatcher(log, req), targets...)
		if err != nil && !errors.Is(err, pkgjson.ErrMissingFile) {
			return err
		}

		if newDryRun {
			log.Infof("Would create library %s at %s/", opts.Name, path.Join(newRoot, opts.LibraryDir()))
			if s == nil {
				return nil
			}
			return printPreview(cmd, log, s)
		}

		result, err := scaffold.Generate(scaffold.NewData(opts), newRoot)
		if err != nil {
			return err
		}
		printScaffoldResult(cmd, opts.Name, result)

		depsAdded := false
		if s != nil {
			if err := tree.Commit(s); err != nil {
				return err
			}
			printPatchResult(log, res)
			depsAdded = len(res.Applied[pkgjson.KeyDevDependencies]) > 0
		}

		if newInstall {
			runner := &npm.Runner{Stdout: cmd.ErrOrStderr(), Stderr: cmd.ErrOrStderr()}
			warn, err := runner.Install(cmd.Context(), newRoot)
			if err != nil {
				return err
			}
			if warn != "" {
				log.Warnf("%s", warn)
			} else {
				log.Successf("Installed dependencies")
				depsAdded = false
			}
		}
		if depsAdded {
			log.Warnf("devDependencies were added; run 'npm install' to install them")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "\nNext steps:")
		fmt.Fprintf(out, "  1. Edit %s/src/%s.module.ts to add your components\n", opts.LibraryDir(), opts.Name)
		fmt.Fprintln(out, "  2. Build with 'npm run build:lib'")
		printWarningSummary(log)
		return nil
	},
}

// ─── Helpers ───────────────────────────────────────────────────────

// resolveOptions merges the options file, the positional name and flags, then
// validates the result. Flags given explicitly win over the file.
func resolveOptions(cmd *cobra.Command, args []string) (options.Options, error) {
	var opts options.Options
	if newOptionsFile != "" {
		o, err := options.LoadFile(newOptionsFile)
		if err != nil {
			return opts, err
		}
		opts = o
	}
	if len(args) == 1 {
		opts.Name = args[0]
	}
	if opts.Name == "" {
		return opts, fmt.Errorf("a library name is required")
	}
	if err := validateName(opts.Name); err != nil {
		return opts, err
	}
	if cmd.Flags().Changed("source-dir") || opts.SourceDir == "" {
		opts.SourceDir = newSourceDir
	}
	if cmd.Flags().Changed("path") || opts.Path == "" {
		opts.Path = newPath
	}

	res, err := options.Validate(opts)
	if err != nil {
		return opts, err
	}
	if !res.Valid {
		return opts, res
	}
	return opts.WithDefaults(), nil
}

func validateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid name %q: must be lowercase words separated by dashes, e.g. ui-widgets", name)
	}
	return nil
}

func printScaffoldResult(cmd *cobra.Command, name string, result *scaffold.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created library %s at %s/\n", name, result.LibraryDir)
	for _, f := range result.Files {
		fmt.Fprintf(out, "  %s\n", f)
	}
	if len(result.Warnings) > 0 {
		fmt.Fprintln(out, "\nWarnings:")
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "  - %s\n", w)
		}
	}
}
