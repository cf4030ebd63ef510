package sensors

import "errors"

// ErrMalformedReading indicates a reading missing required fields.
var ErrMalformedReading = errors.New("sensor reading: malformed")

// ErrStoreUnavailable indicates the backing store could not be reached.
var ErrStoreUnavailable = errors.New("sensor store: unavailable")
