// Package lock provides a file-based locking mechanism so that only one
// tripedit process edits a given trips document at a time.
//
// The lock file lives in the system temp directory and is keyed by a hash of
// the document's absolute path, so different documents can be edited
// concurrently while the same document cannot. Stale locks left behind by a
// crashed process are detected by probing the recorded PID and recovered
// automatically.
package lock
