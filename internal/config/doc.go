// Package config manages tripedit's configuration.
//
// Settings resolve in three layers, later winning: built-in defaults,
// environment variables (TRIPS_FILE, MAX_BACKUPS, COMMIT_MESSAGE, VERBOSE,
// NON_INTERACTIVE, DEBUG, LOG_FILE), and command-line flags. Finalize
// validates the result and fills derived values such as the per-document log
// file path.
package config
