package npm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrToolMissing is returned when a required executable is not on PATH.
var ErrToolMissing = errors.New("executable not found on PATH")

// Runner runs npm tooling in a directory.
type Runner struct {
	// Stdout and Stderr receive the tool output; nil discards it.
	Stdout io.Writer
	Stderr io.Writer
}

// Install runs npm install in dir if a package.json exists. When Node.js or
// npm is not available it returns a warning message instead of an error.
func (r *Runner) Install(ctx context.Context, dir string) (string, error) {
	pkgJSON := filepath.Join(dir, "package.json")
	if _, err := os.Stat(pkgJSON); err != nil {
		return "", nil // no package.json, nothing to do
	}

	if _, err := exec.LookPath("node"); err != nil {
		return "Node.js not found; skipping npm install", nil
	}

	npmPath, err := exec.LookPath("npm")
	if err != nil {
		return "npm not found; skipping dependency installation", nil
	}

	if err := r.run(ctx, dir, npmPath, "install"); err != nil {
		return "", fmt.Errorf("npm install in %s: %w", dir, err)
	}
	return "", nil
}

// Compile runs the project's TypeScript compiler through npx, writing into
// outDir. It matches the distbuild compile hook.
func (r *Runner) Compile(ctx context.Context, root, outDir string) error {
	npxPath, err := exec.LookPath("npx")
	if err != nil {
		return fmt.Errorf("npx: %w", ErrToolMissing)
	}

	tsconfig := filepath.Join(root, "tsconfig.json")
	if _, err := os.Stat(tsconfig); err != nil {
		return fmt.Errorf("no tsconfig.json in %s: %w", root, err)
	}

	return r.run(ctx, root, npxPath, "--no-install", "tsc", "-p", tsconfig, "--outDir", outDir)
}

func (r *Runner) run(ctx context.Context, dir, bin string, args ...string) error {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir

	stdout := r.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	var stderrBuf bytes.Buffer
	cmd.Stdout = stdout
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(r.Stderr, &stderrBuf)
	} else {
		cmd.Stderr = &stderrBuf
	}

	if err := cmd.Run(); err != nil {
		if msg := lastLine(stderrBuf.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// lastLine returns the last non-empty line of s.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
