// Package common holds interfaces shared across tripedit packages.
//
// It exists to break import cycles: both the command-line application and the
// publish package depend on the Logger interface without depending on the
// logger implementation package.
package common
