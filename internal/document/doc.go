// Package document reads, mutates and writes the trips.json file.
//
// It owns everything about the file's lifecycle that the domain model should
// not know about: JSON shape validation on load, stable human-readable
// serialization on save, rotated gzip backups in a sibling backups_trips
// directory, restoring the newest backup (the CLI's undo), and remembering
// the last opened path so the -file flag can usually be omitted.
package document
