package distbuild

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

// Config controls a build. Zero fields take the defaults from DefaultConfig.
type Config struct {
	SrcDir    string
	DistDir   string
	RootFiles []string
	// Globs select files under SrcDir, relative to the library root. A
	// pattern prefixed with "!" excludes. Later patterns override earlier ones.
	Globs []string
	// Compile, when set, runs after the copy steps, e.g. the TypeScript
	// compiler writing into outDir.
	Compile func(ctx context.Context, root, outDir string) error
}

// DefaultConfig returns the layout produced by the library scaffold.
func DefaultConfig() Config {
	return Config{
		SrcDir:    "src",
		DistDir:   "dist",
		RootFiles: []string{"package.json", "README.md"},
		Globs: []string{
			"src/**/*",
			"!src/**/*.ts",
			"src/**/*.d.ts",
			"src/**/files/**/*.ts",
		},
	}
}

// Report lists what a build did. Paths are slash-separated and relative to
// the dist directory.
type Report struct {
	DistDir string
	Copied  []string
	// Missing root files are skipped, not fatal.
	Missing []string
	// Published is true when the dist manifest was marked public.
	Published bool
}

// excludedNames are never copied.
var excludedNames = map[string]bool{
	"node_modules": true,
	".git":         true,
	".DS_Store":    true,
}

// publishPatch sets "private" to false so npm allows publishing.
var publishPatch = []byte(`[{"op": "add", "path": "/private", "value": false}]`)

// Build cleans and repopulates root/DistDir.
func Build(ctx context.Context, root string, cfg Config) (*Report, error) {
	cfg = withDefaults(cfg)
	if err := validateGlobs(cfg.Globs); err != nil {
		return nil, err
	}

	distDir := filepath.Join(root, cfg.DistDir)
	report := &Report{DistDir: distDir}

	if err := os.RemoveAll(distDir); err != nil {
		return nil, fmt.Errorf("cleaning %s: %w", distDir, err)
	}
	if err := os.MkdirAll(distDir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", distDir, err)
	}

	if err := copySources(ctx, root, cfg, distDir, report); err != nil {
		return nil, err
	}

	for _, name := range cfg.RootFiles {
		src := filepath.Join(root, filepath.FromSlash(name))
		if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
			report.Missing = append(report.Missing, name)
			continue
		}
		if err := copyFile(src, filepath.Join(distDir, filepath.FromSlash(name))); err != nil {
			return nil, fmt.Errorf("copying %s: %w", name, err)
		}
		report.Copied = append(report.Copied, name)
	}

	published, err := publishManifest(filepath.Join(distDir, "package.json"))
	if err != nil {
		return nil, err
	}
	report.Published = published

	if cfg.Compile != nil {
		if err := cfg.Compile(ctx, root, distDir); err != nil {
			return nil, fmt.Errorf("compiling: %w", err)
		}
	}

	return report, nil
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.SrcDir == "" {
		cfg.SrcDir = def.SrcDir
	}
	if cfg.DistDir == "" {
		cfg.DistDir = def.DistDir
	}
	if cfg.RootFiles == nil {
		cfg.RootFiles = def.RootFiles
	}
	if cfg.Globs == nil {
		cfg.Globs = def.Globs
	}
	return cfg
}

func validateGlobs(globs []string) error {
	for _, g := range globs {
		if !doublestar.ValidatePattern(strings.TrimPrefix(g, "!")) {
			return fmt.Errorf("invalid glob %q", g)
		}
	}
	return nil
}

// selected reports whether rel is included by the ordered globs.
func selected(globs []string, rel string) bool {
	in := false
	for _, g := range globs {
		pattern, negated := strings.CutPrefix(g, "!")
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			in = !negated
		}
	}
	return in
}

// copySources copies selected files under SrcDir into distDir, dropping the
// SrcDir prefix the way a glob base does.
func copySources(ctx context.Context, root string, cfg Config, distDir string, report *Report) error {
	srcRoot := filepath.Join(root, cfg.SrcDir)
	if _, err := os.Stat(srcRoot); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return filepath.WalkDir(srcRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if excludedNames[d.Name()] {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			// Directories are created on demand; symlinks are skipped.
			return nil
		}

		relRoot, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if !selected(cfg.Globs, filepath.ToSlash(relRoot)) {
			return nil
		}

		relSrc, err := filepath.Rel(srcRoot, p)
		if err != nil {
			return err
		}
		if err := copyFile(p, filepath.Join(distDir, relSrc)); err != nil {
			return fmt.Errorf("copying %s: %w", relRoot, err)
		}
		report.Copied = append(report.Copied, filepath.ToSlash(relSrc))
		return nil
	})
}

// publishManifest marks the manifest at path as public. It returns false
// when there is no manifest.
func publishManifest(path string) (bool, error) {
	doc, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}

	patch, err := jsonpatch.DecodePatch(publishPatch)
	if err != nil {
		return false, fmt.Errorf("decoding manifest patch: %w", err)
	}
	out, err := patch.ApplyIndent(doc, "  ")
	if err != nil {
		return false, fmt.Errorf("editing %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, append(out, '\n'), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}

// copyFile copies a single file from src to dst, preserving permissions.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, srcInfo.Mode().Perm())
}
