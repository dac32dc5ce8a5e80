package options

import (
	"fmt"
	"os"
	"path"

	"go.yaml.in/yaml/v3"
)

// Defaults applied by WithDefaults.
const (
	DefaultSourceDir = "src"
	DefaultPath      = "lib"
)

// Options are the generator inputs.
type Options struct {
	// Name of the library, e.g. "ui-widgets".
	Name string `yaml:"name" json:"name"`
	// SourceDir is the app source directory, relative to the project root.
	SourceDir string `yaml:"sourceDir,omitempty" json:"sourceDir,omitempty"`
	// Path is the library directory, relative to SourceDir.
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
}

// WithDefaults returns a copy with empty optional fields filled in.
func (o Options) WithDefaults() Options {
	if o.SourceDir == "" {
		o.SourceDir = DefaultSourceDir
	}
	if o.Path == "" {
		o.Path = DefaultPath
	}
	return o
}

// LibraryDir returns the slash-separated library directory relative to the
// project root.
func (o Options) LibraryDir() string {
	o = o.WithDefaults()
	return path.Join(o.SourceDir, o.Path)
}

// LoadFile reads options from a YAML or JSON file and validates them.
func LoadFile(file string) (Options, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return Options{}, fmt.Errorf("reading options %s: %w", file, err)
	}
	res, err := ValidateData(data)
	if err != nil {
		return Options{}, fmt.Errorf("validating options %s: %w", file, err)
	}
	if !res.Valid {
		return Options{}, fmt.Errorf("options %s: %w", file, res)
	}
	var o Options
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Options{}, fmt.Errorf("parsing options %s: %w", file, err)
	}
	return o, nil
}
