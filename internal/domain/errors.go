package domain

import "errors"

// ErrMalformedRecord is returned when a raw value that must be an object is
// something else. Missing fields and unresolved tags are never errors.
var ErrMalformedRecord = errors.New("malformed record")
