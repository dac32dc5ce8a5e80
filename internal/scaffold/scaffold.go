package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/libstand-labs/libstand/internal/jsonast"
	"github.com/libstand-labs/libstand/internal/options"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed all:scaffolds
var scaffoldFS embed.FS

// templatesDir is the embedded root of the library template set.
const templatesDir = "scaffolds/lib"

// Data holds all template variables available to scaffold templates.
type Data struct {
	Name        string // e.g., "ui-widgets"
	ClassName   string // Derived: "UiWidgets"
	SourceDir   string // e.g., "src"
	Path        string // e.g., "lib"
	Description string // Human-readable description
	Version     string // Semver, e.g., "0.1.0"
	Year        int    // Current year
}

// Result holds the outcome of a scaffold generation.
type Result struct {
	// LibraryDir is the directory the library was written to.
	LibraryDir string
	// Files are slash-separated paths relative to LibraryDir.
	Files    []string
	Warnings []string
}

// NewData creates template data from generator options, with defaults
// applied and derived fields populated.
func NewData(o options.Options) *Data {
	o = o.WithDefaults()
	return &Data{
		Name:        o.Name,
		ClassName:   className(o.Name),
		SourceDir:   strings.TrimSuffix(o.SourceDir, "/"),
		Path:        strings.TrimSuffix(o.Path, "/"),
		Description: fmt.Sprintf("Standalone library %s", o.Name),
		Version:     "0.1.0",
		Year:        time.Now().Year(),
	}
}

// className turns a dash-separated name into an exported class name.
func className(name string) string {
	title := cases.Title(language.English)
	var b strings.Builder
	for _, part := range strings.Split(name, "-") {
		b.WriteString(title.String(part))
	}
	return b.String()
}

// Generate renders the library templates under root/SourceDir/Path.
func Generate(data *Data, root string) (*Result, error) {
	libDir := filepath.Join(root, filepath.FromSlash(data.SourceDir), filepath.FromSlash(data.Path))

	// Check for existing files to prevent accidental overwrites.
	existingEntries, err := os.ReadDir(libDir)
	if err == nil && len(existingEntries) > 0 {
		return nil, fmt.Errorf("library directory %s is not empty; remove existing files first", libDir)
	}

	names := strings.NewReplacer("__path__", ".", "__name__", data.Name)
	result := &Result{LibraryDir: libDir}

	err = fs.WalkDir(scaffoldFS, templatesDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		tmplBytes, err := fs.ReadFile(scaffoldFS, p)
		if err != nil {
			return fmt.Errorf("reading template %s: %w", p, err)
		}

		rel := strings.TrimPrefix(p, templatesDir+"/")
		outRel := path.Clean(names.Replace(strings.TrimSuffix(rel, ".tmpl")))
		outPath := filepath.Join(libDir, filepath.FromSlash(outRel))

		tmpl, err := template.New(d.Name()).Option("missingkey=error").Parse(string(tmplBytes))
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", rel, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return fmt.Errorf("executing template %s: %w", rel, err)
		}

		if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(outPath), err)
		}
		if err := os.WriteFile(outPath, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}

		result.Files = append(result.Files, outRel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Warnings = append(result.Warnings, checkManifest(filepath.Join(libDir, "package.json"), data.Name)...)
	return result, nil
}

// checkManifest parses the generated library manifest and reports problems
// as warnings.
func checkManifest(file, name string) []string {
	src, err := os.ReadFile(file)
	if err != nil {
		return []string{fmt.Sprintf("Could not read generated manifest: %v", err)}
	}
	root, err := jsonast.Parse(src)
	if err != nil {
		return []string{fmt.Sprintf("Generated manifest is not valid JSON: %v", err)}
	}
	if root.Kind != jsonast.KindObject {
		return []string{fmt.Sprintf("Generated manifest is a %s, not an object", root.Kind)}
	}
	prop, ok := root.Lookup("name")
	if !ok || string(prop.Value.Raw) != fmt.Sprintf("%q", name) {
		return []string{fmt.Sprintf("Generated manifest does not name the library %q", name)}
	}
	return nil
}
