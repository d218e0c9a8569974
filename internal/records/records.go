package records

import (
	"context"
	"time"

	"weatherdesk/internal/weather"
)

// Record is a persisted location + date-range query together with the
// temperatures fetched for it. Resolved fields and temps are overwritten
// whole on update; the store owns the record's lifetime and callers hold
// only its id.
type Record struct {
	ID            int64
	LocationInput string
	ResolvedName  string
	Country       string
	State         string
	Lat           float64
	Lon           float64
	StartDate     time.Time // date precision, UTC midnight
	EndDate       time.Time
	DailyTemps    []weather.DailyTemperature
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Store is the persistence contract. Implementations commit each mutation
// before returning; there is no cross-call transaction.
type Store interface {
	Insert(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id int64) (Record, error)
	List(ctx context.Context, limit, offset int) ([]Record, error)
	Update(ctx context.Context, rec Record) error
	Delete(ctx context.Context, id int64) error
}

// Resolver maps a free-form location string to normalized coordinates.
type Resolver interface {
	Resolve(ctx context.Context, query string) (weather.ResolvedLocation, error)
}

// RangeFetcher retrieves daily min/max temperatures for a date window.
type RangeFetcher interface {
	DailyRange(ctx context.Context, lat, lon float64, start, end time.Time) ([]weather.DailyTemperature, error)
}
