package preset

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"text/template"

	"github.com/Masterminds/semver/v3"
	"github.com/libstand-labs/libstand/internal/pkgjson"
	"go.yaml.in/yaml/v3"
)

//go:embed presets/*.yaml
var presetFS embed.FS

// DefaultName is the name of the built-in preset.
const DefaultName = "lib-standalone"

// Script is a package.json script to add.
type Script struct {
	Name    string `yaml:"name"`
	Command string `yaml:"command"`
}

// Dependency is a devDependency to add, with an npm version spec.
type Dependency struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Preset is an ordered desired-entry table.
type Preset struct {
	Name            string       `yaml:"name"`
	Scripts         []Script     `yaml:"scripts"`
	DevDependencies []Dependency `yaml:"devDependencies"`
}

// Default returns the built-in preset.
func Default() (*Preset, error) {
	data, err := presetFS.ReadFile("presets/" + DefaultName + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("reading built-in preset: %w", err)
	}
	return Parse(data, DefaultName)
}

// Load reads a preset from path.
func Load(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading preset %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadOrDefault loads path, or the built-in preset when path is empty.
func LoadOrDefault(path string) (*Preset, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}

// Parse decodes a preset. Unknown fields are rejected. source names the
// origin in error messages.
func Parse(data []byte, source string) (*Preset, error) {
	var p Preset
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("parsing preset %s: %w", source, err)
	}
	if err := p.check(); err != nil {
		return nil, fmt.Errorf("preset %s: %w", source, err)
	}
	return &p, nil
}

// check rejects empty and duplicate names so the patcher can rely on a
// de-duplicated table.
func (p *Preset) check() error {
	var errs []error
	seen := map[string]bool{}
	for i, s := range p.Scripts {
		switch {
		case s.Name == "":
			errs = append(errs, fmt.Errorf("scripts[%d]: name is required", i))
		case seen[s.Name]:
			errs = append(errs, fmt.Errorf("scripts[%d]: duplicate name %q", i, s.Name))
		case strings.TrimSpace(s.Command) == "":
			errs = append(errs, fmt.Errorf("scripts[%d]: %q has no command", i, s.Name))
		}
		seen[s.Name] = true
	}

	seen = map[string]bool{}
	for i, d := range p.DevDependencies {
		switch {
		case d.Name == "":
			errs = append(errs, fmt.Errorf("devDependencies[%d]: name is required", i))
		case seen[d.Name]:
			errs = append(errs, fmt.Errorf("devDependencies[%d]: duplicate name %q", i, d.Name))
		case strings.TrimSpace(d.Version) == "":
			errs = append(errs, fmt.Errorf("devDependencies[%d]: %q has no version", i, d.Name))
		}
		seen[d.Name] = true
	}
	return errors.Join(errs...)
}

// distTag matches npm dist-tags such as "latest" or "next".
var distTag = regexp.MustCompile(`^[a-z][a-z0-9._-]*$`)

// npmSpecPrefixes are version specs npm resolves without semver.
var npmSpecPrefixes = []string{
	"file:", "link:", "git+", "git:", "github:", "http://", "https://", "npm:", "workspace:",
}

// VersionWarnings returns a message for every dependency whose version is
// neither a semver range nor an npm-specific spec.
func (p *Preset) VersionWarnings() []string {
	var out []string
	for _, d := range p.DevDependencies {
		if isNPMSpec(d.Version) {
			continue
		}
		if _, err := semver.NewConstraint(d.Version); err != nil {
			out = append(out, fmt.Sprintf("devDependency %q: %q is not a valid version range: %v", d.Name, d.Version, err))
		}
	}
	return out
}

func isNPMSpec(v string) bool {
	for _, prefix := range npmSpecPrefixes {
		if strings.HasPrefix(v, prefix) {
			return true
		}
	}
	// user/repo shorthand or a dist-tag
	return strings.Contains(v, "/") || (distTag.MatchString(v) && v != "x")
}

// Targets renders the preset into patch targets. Script commands are
// executed as text/template with vars.
func (p *Preset) Targets(vars any) ([]pkgjson.Target, error) {
	scripts := make([]pkgjson.Entry, 0, len(p.Scripts))
	for _, s := range p.Scripts {
		cmd, err := render(s.Name, s.Command, vars)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, pkgjson.Entry{Name: s.Name, Value: cmd})
	}

	deps := make([]pkgjson.Entry, 0, len(p.DevDependencies))
	for _, d := range p.DevDependencies {
		deps = append(deps, pkgjson.Entry{Name: d.Name, Value: d.Version})
	}

	return []pkgjson.Target{
		{Key: pkgjson.KeyScripts, Entries: scripts},
		{Key: pkgjson.KeyDevDependencies, Entries: deps},
	}, nil
}

func render(name, text string, vars any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parsing command for script %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("rendering command for script %q: %w", name, err)
	}
	return buf.String(), nil
}
