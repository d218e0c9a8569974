package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// The five resolution branches, tried in this order. Ordering runs from
// most-specific (coordinates) to least-specific (free text) so a 5-digit
// string is never sent to free-text search: ZIP detection short-circuits
// first.
var (
	coordPattern        = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*$`)
	zipPattern          = regexp.MustCompile(`(?i)^\s*(\d{5})(?:-\d{4})?\s*(?:,\s*([a-z]{2}))?\s*$`)
	postalCityCCPattern = regexp.MustCompile(`(?i)^\s*([A-Z0-9][A-Z0-9 \-]{2,12})\s*,\s*([^,]{2,64})\s*,\s*([A-Z]{2})\s*$`)
	postalCCPattern     = regexp.MustCompile(`(?i)^\s*([A-Z0-9][A-Z0-9 \-]{2,12})\s*,\s*([A-Z]{2})\s*$`)
)

// geoEntry is one result from the direct/reverse geocoding endpoints.
type geoEntry struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Resolve turns a free-form location string into a normalized place.
//
// Supported input formats, checked in this order:
//
//  1. Coordinates: "40.7128,-74.0060". Bounds-validated, then
//     reverse-geocoded for a human-friendly label. Valid coordinates are
//     never rejected for lack of a label.
//  2. US ZIP: "10001", "10001-1234", "10001,US" via the ZIP endpoint,
//     which is more reliable than direct geocoding for ZIPs. The ZIP
//     endpoint does not return state, so state stays empty.
//  3. "POSTAL, CITY, CC": international postal with city.
//  4. "POSTAL, CC": international postal without city.
//  5. Anything else goes verbatim to direct geocoding; top match wins.
func (c *OpenWeatherClient) Resolve(ctx context.Context, query string) (ResolvedLocation, error) {
	raw := strings.Trim(strings.TrimSpace(query), `'"`)

	if m := coordPattern.FindStringSubmatch(raw); m != nil {
		return c.resolveCoordinates(ctx, m[1], m[2])
	}
	if m := zipPattern.FindStringSubmatch(raw); m != nil {
		return c.resolveZIP(ctx, raw, m[1], m[2])
	}
	if m := postalCityCCPattern.FindStringSubmatch(raw); m != nil {
		return c.resolvePostalCityCountry(ctx, raw, m[1], m[2], m[3])
	}
	if m := postalCCPattern.FindStringSubmatch(raw); m != nil {
		return c.resolvePostalCountry(ctx, raw, m[1], m[2])
	}
	return c.resolveFreeText(ctx, raw)
}

func (c *OpenWeatherClient) resolveCoordinates(ctx context.Context, latStr, lonStr string) (ResolvedLocation, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return ResolvedLocation{}, resolutionErrorf("Invalid latitude. Must be between -90 and 90.")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return ResolvedLocation{}, resolutionErrorf("Invalid longitude. Must be between -180 and 180.")
	}
	if lat < -90 || lat > 90 {
		return ResolvedLocation{}, resolutionErrorf("Invalid latitude. Must be between -90 and 90.")
	}
	if lon < -180 || lon > 180 {
		return ResolvedLocation{}, resolutionErrorf("Invalid longitude. Must be between -180 and 180.")
	}

	params := url.Values{}
	params.Set("lat", formatCoord(lat))
	params.Set("lon", formatCoord(lon))
	params.Set("limit", "1")

	resp, err := c.get(ctx, "/geo/1.0/reverse", params)
	if err != nil {
		return ResolvedLocation{}, resolutionErrorf("Reverse geocoding failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return ResolvedLocation{}, resolutionErrorf("Reverse geocoding failed (%d): %s", resp.StatusCode, resp.Body)
	}

	var results []geoEntry
	if err := json.Unmarshal(resp.Body, &results); err != nil {
		return ResolvedLocation{}, resolutionErrorf("Reverse geocoding decode failed: %v", err)
	}
	if len(results) > 0 {
		best := results[0]
		name := best.Name
		if name == "" {
			name = "Current Location"
		}
		return ResolvedLocation{Name: name, State: best.State, Country: best.Country, Lat: lat, Lon: lon}, nil
	}

	// No reverse match: still return valid coordinates with a placeholder
	// label instead of failing.
	return ResolvedLocation{Name: "Current Location", Lat: lat, Lon: lon}, nil
}

func (c *OpenWeatherClient) resolveZIP(ctx context.Context, raw, zip5, country string) (ResolvedLocation, error) {
	if country == "" {
		country = "US"
	}
	country = strings.ToUpper(country)

	params := url.Values{}
	params.Set("zip", fmt.Sprintf("%s,%s", zip5, country))

	resp, err := c.get(ctx, "/geo/1.0/zip", params)
	if err != nil {
		return ResolvedLocation{}, resolutionErrorf("ZIP geocoding failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return ResolvedLocation{}, resolutionErrorf("ZIP geocoding failed (%d): %s", resp.StatusCode, resp.Body)
	}

	var data struct {
		Name    string  `json:"name"`
		Country string  `json:"country"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := json.Unmarshal(resp.Body, &data); err != nil {
		return ResolvedLocation{}, resolutionErrorf("ZIP geocoding decode failed: %v", err)
	}

	name := data.Name
	if name == "" {
		name = raw
	}
	if data.Country == "" {
		data.Country = country
	}
	// The ZIP endpoint does not return state reliably; leave it empty.
	return ResolvedLocation{Name: name, Country: data.Country, Lat: data.Lat, Lon: data.Lon}, nil
}

// direct runs one direct-geocoding query and returns its results, or nil when
// the call did not succeed (a failed phrasing just falls through to the next).
func (c *OpenWeatherClient) direct(ctx context.Context, q string, limit int) []geoEntry {
	params := url.Values{}
	params.Set("q", q)
	params.Set("limit", strconv.Itoa(limit))

	resp, err := c.get(ctx, "/geo/1.0/direct", params)
	if err != nil || resp.StatusCode != http.StatusOK {
		return nil
	}

	var results []geoEntry
	if err := json.Unmarshal(resp.Body, &results); err != nil {
		return nil
	}
	return results
}

func (c *OpenWeatherClient) resolvePostalCityCountry(ctx context.Context, raw, postal, city, country string) (ResolvedLocation, error) {
	postal = strings.TrimSpace(postal)
	city = strings.TrimSpace(city)
	country = strings.ToUpper(country)

	// The direct endpoint is picky about postal phrasings; try a few.
	candidates := []string{
		fmt.Sprintf("%s, %s, %s", postal, city, country),
		fmt.Sprintf("%s, %s %s", city, country, postal),
		fmt.Sprintf("%s, %s", postal, country),
	}
	for _, q := range candidates {
		if results := c.direct(ctx, q, 5); len(results) > 0 {
			return entryToLocation(results[0], raw, country), nil
		}
	}

	return ResolvedLocation{}, resolutionErrorf(
		"Postal code not found for that city/country. Try 'SW1A 1AA, GB' or verify spelling/country code.")
}

func (c *OpenWeatherClient) resolvePostalCountry(ctx context.Context, raw, postal, country string) (ResolvedLocation, error) {
	postal = strings.TrimSpace(postal)
	country = strings.ToUpper(country)

	for _, q := range []string{
		fmt.Sprintf("%s, %s", postal, country),
		fmt.Sprintf("%s %s", postal, country),
	} {
		if results := c.direct(ctx, q, 5); len(results) > 0 {
			return entryToLocation(results[0], raw, country), nil
		}
	}

	return ResolvedLocation{}, resolutionErrorf(
		"Postal code not found. Try adding the city too (e.g., 'SW1A 1AA, London, GB') or confirm the country code.")
}

func (c *OpenWeatherClient) resolveFreeText(ctx context.Context, raw string) (ResolvedLocation, error) {
	params := url.Values{}
	params.Set("q", raw)
	params.Set("limit", "5")

	resp, err := c.get(ctx, "/geo/1.0/direct", params)
	if err != nil {
		return ResolvedLocation{}, resolutionErrorf("Geocoding failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return ResolvedLocation{}, resolutionErrorf("Geocoding failed (%d): %s", resp.StatusCode, resp.Body)
	}

	var results []geoEntry
	if err := json.Unmarshal(resp.Body, &results); err != nil {
		return ResolvedLocation{}, resolutionErrorf("Geocoding decode failed: %v", err)
	}
	if len(results) == 0 {
		return ResolvedLocation{}, resolutionErrorf(
			"Location not found. Try a more specific query (e.g., 'Paris, FR', 'Austin, TX', '10001,US', or '40.7128,-74.0060').")
	}

	return entryToLocation(results[0], raw, ""), nil
}

func entryToLocation(e geoEntry, fallbackName, fallbackCountry string) ResolvedLocation {
	name := e.Name
	if name == "" {
		name = fallbackName
	}
	country := e.Country
	if country == "" {
		country = fallbackCountry
	}
	return ResolvedLocation{Name: name, Country: country, State: e.State, Lat: e.Lat, Lon: e.Lon}
}
