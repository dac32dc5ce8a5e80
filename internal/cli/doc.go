// Package cli implements the libstand command tree using cobra. Each command
// lives in its own file and registers itself with rootCmd from init.
package cli
