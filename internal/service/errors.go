package service

import (
	"errors"
)

// Core error taxonomy. Handlers map these onto HTTP statuses; everything
// else surfaces as an internal error.
var (
	// ErrValidation marks a payload that is structurally broken in a way
	// the transport layer should have caught (bad HHMM, bad direction).
	ErrValidation = errors.New("validation failed")

	// ErrIdentityMismatch means the authenticated station does not match
	// the station name declared inside the payload.
	ErrIdentityMismatch = errors.New("token/station mismatch")

	// ErrConflict marks an integrity violation, e.g. a flight code already
	// owned by a different flight, or a duplicate snapshot under race.
	ErrConflict = errors.New("integrity conflict")

	// ErrNotFound is returned by read-side lookups for unknown stations.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials is returned by login for a bad station name or
	// password. Deliberately indistinct between the two.
	ErrInvalidCredentials = errors.New("invalid station or password")
)
