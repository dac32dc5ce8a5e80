// Package distbuild assembles a publishable dist directory for a library:
// it cleans the output, copies non-TypeScript sources selected by ordered
// globs, copies root files and marks the copied manifest as public.
package distbuild
