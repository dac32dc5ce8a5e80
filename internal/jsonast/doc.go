// Package jsonast parses JSON into a tree of nodes that remember where they
// came from: each node carries its kind plus start and end byte offsets into
// the source text, and objects keep their members in textual order.
//
// Parsing is delegated to github.com/tailscale/hujson, which records offsets
// for every value. hujson also accepts comments and trailing commas; callers
// that require strict JSON should decode the buffer with a strict decoder
// first.
package jsonast
