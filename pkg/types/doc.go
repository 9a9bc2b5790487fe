// Package types defines the public, dependency-light surface shared by the
// bsakit packages: typed errors, archive metadata, asset entries, open
// options, and the read-only Reader interface.
//
// Design goals:
//   - Zero-copy where safe; asset bytes are only copied on request.
//   - Paranoid bounds checking; never panic on malformed input.
//   - Typed errors with stable categories (format/version/not found/...).
package types
