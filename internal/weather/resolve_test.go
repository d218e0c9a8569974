package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testOpenWeatherClient(t *testing.T, handler http.HandlerFunc) *OpenWeatherClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewOpenWeatherClient(srv.Client(), "test-key")
	c.BaseURL = srv.URL
	return c
}

func TestResolveCoordinatesWithReverseMatch(t *testing.T) {
	c := testOpenWeatherClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/geo/1.0/reverse" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[{"name":"New York","state":"New York","country":"US","lat":40.71,"lon":-74.0}]`))
	})

	loc, err := c.Resolve(context.Background(), "40.7128,-74.0060")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Name != "New York" || loc.State != "New York" || loc.Country != "US" {
		t.Errorf("unexpected location: %+v", loc)
	}
	// Coordinates come from the input, not the reverse result.
	if loc.Lat != 40.7128 || loc.Lon != -74.0060 {
		t.Errorf("expected input coordinates preserved, got %f,%f", loc.Lat, loc.Lon)
	}
}

func TestResolveCoordinatesWithoutReverseMatch(t *testing.T) {
	c := testOpenWeatherClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	loc, err := c.Resolve(context.Background(), "  12.5 , -130.25 ")
	if err != nil {
		t.Fatalf("coordinates must not fail for lack of a reverse match: %v", err)
	}
	if loc.Name != "Current Location" || loc.State != "" || loc.Country != "" {
		t.Errorf("expected placeholder location, got %+v", loc)
	}
	if loc.Lat != 12.5 || loc.Lon != -130.25 {
		t.Errorf("unexpected coordinates: %f,%f", loc.Lat, loc.Lon)
	}
}

func TestResolveCoordinatesOutOfBounds(t *testing.T) {
	c := testOpenWeatherClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no provider call expected for invalid coordinates")
	})

	tests := []struct {
		query string
		want  string
	}{
		{"91,0", "latitude"},
		{"-90.5,0", "latitude"},
		{"0,180.1", "longitude"},
		{"0,-181", "longitude"},
	}
	for _, tt := range tests {
		_, err := c.Resolve(context.Background(), tt.query)
		var resErr *ResolutionError
		if !errors.As(err, &resErr) {
			t.Fatalf("%s: expected ResolutionError, got %v", tt.query, err)
		}
		if !strings.Contains(strings.ToLower(resErr.Message), tt.want) {
			t.Errorf("%s: expected error naming %s, got %q", tt.query, tt.want, resErr.Message)
		}
	}
}

func TestResolveBoundaryCoordinates(t *testing.T) {
	c := testOpenWeatherClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	for _, q := range []string{"90,180", "-90,-180", "0,0"} {
		if _, err := c.Resolve(context.Background(), q); err != nil {
			t.Errorf("%s: boundary coordinates should resolve, got %v", q, err)
		}
	}
}

func TestResolveZIPDefaultsToUS(t *testing.T) {
	var gotZip string
	c := testOpenWeatherClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/geo/1.0/zip" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotZip = r.URL.Query().Get("zip")
		w.Write([]byte(`{"name":"New York","country":"US","lat":40.75,"lon":-73.99}`))
	})

	loc, err := c.Resolve(context.Background(), "10001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotZip != "10001,US" {
		t.Errorf("expected zip=10001,US, got %s", gotZip)
	}
	if loc.Name != "New York" || loc.Country != "US" {
		t.Errorf("unexpected location: %+v", loc)
	}
	// The ZIP endpoint does not return state.
	if loc.State != "" {
		t.Errorf("expected empty state from ZIP lookup, got %q", loc.State)
	}
}

func TestResolveZIPWithCountryAndPlus4(t *testing.T) {
	var gotZip string
	c := testOpenWeatherClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotZip = r.URL.Query().Get("zip")
		w.Write([]byte(`{"name":"Beverly Hills","country":"US","lat":34.09,"lon":-118.41}`))
	})

	if _, err := c.Resolve(context.Background(), "90210-1234,us"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotZip != "90210,US" {
		t.Errorf("expected zip=90210,US with plus-4 stripped and country uppercased, got %s", gotZip)
	}
}

func TestResolveZIPUpstreamFailure(t *testing.T) {
	c := testOpenWeatherClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"not found"}`))
	})

	_, err := c.Resolve(context.Background(), "99999")
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
}

func TestResolvePostalCityCountryTriesPhrasings(t *testing.T) {
	var queries []string
	c := testOpenWeatherClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		queries = append(queries, q)
		if len(queries) < 2 {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`[{"name":"London","state":"England","country":"GB","lat":51.5,"lon":-0.12}]`))
	})

	loc, err := c.Resolve(context.Background(), "SW1A 1AA, London, GB")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Name != "London" || loc.Country != "GB" {
		t.Errorf("unexpected location: %+v", loc)
	}

	want := []string{"SW1A 1AA, London, GB", "London, GB SW1A 1AA"}
	if len(queries) != len(want) {
		t.Fatalf("expected %d phrasings, got %v", len(want), queries)
	}
	for i := range want {
		if queries[i] != want[i] {
			t.Errorf("phrasing %d: expected %q, got %q", i, want[i], queries[i])
		}
	}
}

func TestResolvePostalCityCountryAllEmpty(t *testing.T) {
	var calls int
	c := testOpenWeatherClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`[]`))
	})

	_, err := c.Resolve(context.Background(), "SW1A 1AA, London, GB")
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 phrasing attempts, got %d", calls)
	}
}

func TestResolvePostalCountry(t *testing.T) {
	var queries []string
	c := testOpenWeatherClient(t, func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("q"))
		w.Write([]byte(`[{"name":"Berlin","country":"DE","lat":52.53,"lon":13.38}]`))
	})

	loc, err := c.Resolve(context.Background(), "SW1A 1AA, gb")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Name != "Berlin" {
		t.Errorf("unexpected location: %+v", loc)
	}
	if len(queries) != 1 || queries[0] != "SW1A 1AA, GB" {
		t.Errorf("expected first phrasing 'SW1A 1AA, GB', got %v", queries)
	}
}

func TestResolvePostalCountryExhausted(t *testing.T) {
	var calls int
	c := testOpenWeatherClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`[]`))
	})

	_, err := c.Resolve(context.Background(), "SW1A 1AA, GB")
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 phrasing attempts, got %d", calls)
	}
}

func TestResolveFreeText(t *testing.T) {
	c := testOpenWeatherClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/geo/1.0/direct" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("expected limit=5, got %s", got)
		}
		w.Write([]byte(`[{"name":"Tokyo","country":"JP","lat":35.68,"lon":139.69},{"name":"Other","country":"JP","lat":0,"lon":0}]`))
	})

	loc, err := c.Resolve(context.Background(), "Tokyo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Name != "Tokyo" || loc.Country != "JP" {
		t.Errorf("expected top match, got %+v", loc)
	}
}

func TestResolveFreeTextNoMatch(t *testing.T) {
	c := testOpenWeatherClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	_, err := c.Resolve(context.Background(), "Nowhereville")
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
	if !strings.Contains(resErr.Message, "Location not found") {
		t.Errorf("expected guidance message, got %q", resErr.Message)
	}
}

func TestResolveStripsSurroundingQuotes(t *testing.T) {
	var gotQ string
	c := testOpenWeatherClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQ = r.URL.Query().Get("q")
		w.Write([]byte(`[{"name":"Tokyo","country":"JP","lat":35.68,"lon":139.69}]`))
	})

	if _, err := c.Resolve(context.Background(), `"Tokyo"`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQ != "Tokyo" {
		t.Errorf("expected quotes stripped, got %q", gotQ)
	}
}
