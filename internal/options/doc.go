// Package options defines the inputs of the library generator and validates
// them against an embedded JSON Schema.
package options
