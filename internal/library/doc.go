// Package library persists imported subtitle files in SQLite.
//
// Payloads are decoded before they are stored, so every row is known to
// produce a caption track. Rows are deduplicated by the SHA-256 digest of the
// raw bytes. The daemon and the CLI share one database file configured by
// paths.library_path; writers retry briefly when SQLite reports the database
// as busy.
package library
