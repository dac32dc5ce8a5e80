// Package pkgjson adds missing members to the "scripts" and
// "devDependencies" objects of a package.json without reformatting it.
//
// The manifest is decoded twice: once into plain values to learn which keys
// already exist, and once with source offsets so new members can be spliced
// in next to the existing ones. All edits are anchored to the original
// buffer and applied in one pass, so every byte outside the two insertion
// points of a patched object is left untouched. Existing members are never
// overwritten; differing values are reported as warnings instead.
//
// Patching is idempotent: once every desired entry exists, further runs stage
// no edits at all.
package pkgjson
