// Package scaffold generates a standalone library from embedded templates. It
// powers the "libstand new" command, producing the library module source, a
// gulpfile, a publishable package.json, tsconfig and README under the app's
// source directory.
package scaffold
