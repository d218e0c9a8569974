package records

import (
	"fmt"
	"time"
)

// MaxRangeDays caps requested date ranges. A small cap keeps provider calls
// fast and bounds the size of the stored temperature blob.
const MaxRangeDays = 16

// ValidationError means a supplied date range breaks the business rules.
// User-facing, surfaced as a 4xx response.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ValidateDateRange enforces end >= start and the range cap.
func ValidateDateRange(start, end time.Time) error {
	if end.Before(start) {
		return &ValidationError{Message: "Invalid date range: end_date must be >= start_date."}
	}
	if int(end.Sub(start).Hours()/24) > MaxRangeDays {
		return &ValidationError{Message: fmt.Sprintf("Date range too large. Please use <= %d days.", MaxRangeDays)}
	}
	return nil
}
