package records

import (
	"errors"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestValidateDateRange(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr bool
	}{
		{"single day", day(2025, 1, 1), day(2025, 1, 1), false},
		{"normal range", day(2025, 1, 1), day(2025, 1, 3), false},
		{"exactly 16 days", day(2025, 1, 1), day(2025, 1, 17), false},
		{"17 days", day(2025, 1, 1), day(2025, 1, 18), true},
		{"end before start", day(2025, 1, 3), day(2025, 1, 1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDateRange(tt.start, tt.end)
			if tt.wantErr {
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
