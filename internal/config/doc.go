// Package config manages user-level settings stored at ~/.libstand/config.yaml.
// Settings can also be provided through LIBSTAND_* environment variables, for
// example LIBSTAND_PRESET to point at a custom desired-entry table.
package config
