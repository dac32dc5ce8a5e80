// Package preset loads the tables of scripts and devDependencies that a
// generated library needs in its host package.json. The built-in table is
// embedded; users can point the CLI at their own YAML file instead.
package preset
