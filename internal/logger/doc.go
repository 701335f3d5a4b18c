// Package logger provides logging for tripedit.
//
// It separates two audiences: internal log records (Info, Warning, Error) are
// written through log/slog to a per-document log file when debug logging is
// enabled, while user-facing messages (InfoToUser, WarningToUser, Success,
// StatusMessage) always go to stdout with a small emoji prefix so that
// command feedback stays readable without opening the log file.
package logger
