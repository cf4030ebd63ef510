package alerts

import "errors"

// ErrNotFound indicates a missing alert record, typically because the owner
// unsubscribed while a batch was in flight.
var ErrNotFound = errors.New("alert: not found")
