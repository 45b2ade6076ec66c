package data

import "errors"

// ErrMalformedStore is returned when a persisted store is not an object of
// entity objects.
var ErrMalformedStore = errors.New("data: malformed store")
