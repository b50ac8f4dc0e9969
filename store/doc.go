// Package store provides a DynamoDB data access layer for kind-addressed records.
//
// Records are schemaless attribute maps addressed by (kind, numeric id),
// with one DynamoDB table per kind plus a counter table for id allocation.
// The store offers single-key get/put/delete, multi-key batch get, and
// kind-scoped filtered queries that return one page plus an opaque
// continuation cursor. No operation spans more than one key atomically;
// callers that coordinate writes across records own that ordering.
//
// # Pagination
//
// QueryPage reads one more record than requested to learn whether further
// results exist. When they do, NextCursor encodes the position of the last
// returned record; passing it back resumes exactly where the page ended.
// Cursors are opaque to callers and reject reuse across kinds.
//
// # Errors
//
//   - [ErrNotFound] - no record for the kind and id
//   - [ErrUnknownKind] - kind has no configured table
//   - [ErrBadCursor] - malformed or cross-kind pagination token
package store
