// Package auth supplies the identity middleware and the ownership policies.
package auth

import "github.com/jacentio/stevedore/internal/apierr"

// Guard decides whether an identity may read or mutate a record given the
// record's owner. The two collections deliberately use different policies.
type Guard interface {
	Authorize(subject, owner string) error
}

// OwnerGuard shields owned records from other identities. Records with no
// owner predate ownership and stay readable by everyone.
type OwnerGuard struct{}

// Authorize returns Forbidden when the record is owned by someone else.
func (OwnerGuard) Authorize(subject, owner string) error {
	if owner != "" && owner != subject {
		return apierr.Forbidden()
	}
	return nil
}

// OpenGuard allows every identity. Cargo items are identity-agnostic.
type OpenGuard struct{}

// Authorize always succeeds.
func (OpenGuard) Authorize(subject, owner string) error { return nil }
