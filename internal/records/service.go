package records

import (
	"context"
	"time"
)

// Service orchestrates record lifecycle: validation, location resolution,
// temperature fetching and persistence. Provider calls are sequential because
// the fetch needs the resolution's coordinates.
type Service struct {
	store    Store
	resolver Resolver
	fetcher  RangeFetcher

	now func() time.Time
}

func NewService(store Store, resolver Resolver, fetcher RangeFetcher) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		fetcher:  fetcher,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create validates the range, resolves the location, fetches temps for the
// window and persists a new record.
func (s *Service) Create(ctx context.Context, location string, start, end time.Time) (Record, error) {
	if err := ValidateDateRange(start, end); err != nil {
		return Record{}, err
	}

	resolved, err := s.resolver.Resolve(ctx, location)
	if err != nil {
		return Record{}, err
	}
	temps, err := s.fetcher.DailyRange(ctx, resolved.Lat, resolved.Lon, start, end)
	if err != nil {
		return Record{}, err
	}

	now := s.now()
	rec := Record{
		LocationInput: location,
		ResolvedName:  resolved.Name,
		Country:       resolved.Country,
		State:         resolved.State,
		Lat:           resolved.Lat,
		Lon:           resolved.Lon,
		StartDate:     start,
		EndDate:       end,
		DailyTemps:    temps,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Insert(ctx, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Get fetches a single record by id.
func (s *Service) Get(ctx context.Context, id int64) (Record, error) {
	return s.store.Get(ctx, id)
}

// List returns records ordered by creation time descending.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Record, error) {
	return s.store.List(ctx, limit, offset)
}

// UpdateParams carries the fields an update may change. Nil fields keep the
// record's prior value.
type UpdateParams struct {
	Location  *string
	StartDate *time.Time
	EndDate   *time.Time
}

// Update merges the supplied fields over the stored record, re-resolves the
// location and re-fetches temps, then overwrites resolved fields, stored
// temperatures and the updated timestamp. The location is re-resolved even
// when the caller did not change it, so resolved fields always reflect the
// provider's current answer.
func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (Record, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}

	location := rec.LocationInput
	if params.Location != nil {
		location = *params.Location
	}
	start := rec.StartDate
	if params.StartDate != nil {
		start = *params.StartDate
	}
	end := rec.EndDate
	if params.EndDate != nil {
		end = *params.EndDate
	}

	if err := ValidateDateRange(start, end); err != nil {
		return Record{}, err
	}

	resolved, err := s.resolver.Resolve(ctx, location)
	if err != nil {
		return Record{}, err
	}
	temps, err := s.fetcher.DailyRange(ctx, resolved.Lat, resolved.Lon, start, end)
	if err != nil {
		return Record{}, err
	}

	rec.LocationInput = location
	rec.ResolvedName = resolved.Name
	rec.Country = resolved.Country
	rec.State = resolved.State
	rec.Lat = resolved.Lat
	rec.Lon = resolved.Lon
	rec.StartDate = start
	rec.EndDate = end
	rec.DailyTemps = temps
	rec.UpdatedAt = s.now()

	if err := s.store.Update(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Delete removes a record by id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}
