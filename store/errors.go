package store

import "errors"

var (
	// ErrNotFound is returned when no record exists for a kind and id.
	ErrNotFound = errors.New("stevedore: record not found")

	// ErrUnknownKind is returned when a kind has no configured table.
	ErrUnknownKind = errors.New("stevedore: unknown entity kind")

	// ErrBadCursor is returned when a pagination token is malformed or
	// was issued for a different kind.
	ErrBadCursor = errors.New("stevedore: invalid pagination cursor")
)
