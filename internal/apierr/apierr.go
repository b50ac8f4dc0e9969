// Package apierr defines the error taxonomy surfaced over HTTP.
package apierr

import (
	"errors"
	"net/http"

	"github.com/jacentio/stevedore/store"
)

// Error carries an HTTP status and a stable machine code alongside the
// caller-facing message.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// New creates an Error with an explicit status and code.
func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// Validation reports a malformed or rule-violating request body.
func Validation(message string) *Error {
	return New(http.StatusBadRequest, "invalid_input", message)
}

// NotFound reports an unknown record id.
func NotFound(message string) *Error {
	return New(http.StatusNotFound, "not_found", message)
}

// Forbidden reports an ownership mismatch. Distinct from NotFound: the
// record exists but is shielded from the acting identity.
func Forbidden() *Error {
	return New(http.StatusForbidden, "forbidden", "Forbidden")
}

// AlreadyAttached reports an assign conflict on a carried cargo item.
func AlreadyAttached() *Error {
	return New(http.StatusBadRequest, "already_attached",
		"The cargo item is already loaded on another vessel")
}

// UnsupportedMedia reports a non-JSON request content type.
func UnsupportedMedia() *Error {
	return New(http.StatusUnsupportedMediaType, "unsupported_media",
		"Server only accepts application/json data.")
}

// NotAcceptable reports a client that cannot accept JSON responses.
func NotAcceptable() *Error {
	return New(http.StatusNotAcceptable, "not_acceptable",
		"Server only sends application/json data.")
}

// Resolve maps any error to the taxonomy. Store failures collapse to an
// opaque 500 so no backend detail leaks to the caller.
func Resolve(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.Is(err, store.ErrNotFound) {
		return NotFound("Not Found")
	}
	if errors.Is(err, store.ErrBadCursor) {
		return Validation("Request has an invalid pagination cursor.")
	}
	return New(http.StatusInternalServerError, "internal", "Something broke!")
}
