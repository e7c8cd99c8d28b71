package ledger

import "errors"

// ErrRecordNotFound is returned when no slot holds the requested ID.
// Services map it onto the shared NOT_FOUND domain error.
var ErrRecordNotFound = errors.New("record not found")

// ErrMalformedBlob is returned when a stored JSON document cannot be parsed.
// The failed operation writes nothing.
var ErrMalformedBlob = errors.New("stored blob is malformed")
