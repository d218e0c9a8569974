package weather

import "fmt"

// ResolutionError means a location string could not be resolved. The message
// is user-facing and surfaced verbatim as a 4xx response.
type ResolutionError struct {
	Message string
}

func (e *ResolutionError) Error() string { return e.Message }

func resolutionErrorf(format string, args ...interface{}) *ResolutionError {
	return &ResolutionError{Message: fmt.Sprintf(format, args...)}
}

// FetchError means an upstream current-conditions or forecast call did not
// succeed. User-facing.
type FetchError struct {
	Message string
}

func (e *FetchError) Error() string { return e.Message }

// RangeError means a historical daily-temperature request failed upstream or
// produced zero usable rows. An empty successful response is an error, not an
// empty result: callers treat a range that yields nothing as unusable.
type RangeError struct {
	Message string
}

func (e *RangeError) Error() string { return e.Message }
