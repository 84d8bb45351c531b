// Package services defines the error taxonomy and context helpers shared by
// the library store, the daemon, and the CLI.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper, so failures carry the
//     component and operation that produced them and can be classified later
//     (HTTP status codes, CLI exit messages).
//   - Context helpers that stamp request correlation ids and subtitle ids for
//     logging.
package services
