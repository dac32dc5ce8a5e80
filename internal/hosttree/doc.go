// Package hosttree is the file side of manifest patching: it reads files
// from a project directory, hands out edit sessions that stage insertions
// against the bytes read, and commits a session atomically. A commit is
// refused when the file changed on disk after the session began.
package hosttree
