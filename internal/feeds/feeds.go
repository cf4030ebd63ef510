// Package feeds holds errors shared by the upstream feed clients.
package feeds

import "errors"

// ErrFetchFailure indicates an upstream feed was unreachable or returned a
// non-2xx response. A fetch failure aborts the current ingestion tick.
var ErrFetchFailure = errors.New("feed: fetch failure")
