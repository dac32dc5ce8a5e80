// Package jsonedit records text insertions anchored to offsets of an
// unedited buffer and splices them in with a single pass. Callers never have
// to account for earlier insertions shifting later positions: every offset
// refers to the original bytes.
package jsonedit
