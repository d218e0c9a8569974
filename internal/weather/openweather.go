package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"
)

// OpenWeatherClient talks to the OpenWeatherMap geocoding, current-conditions
// and 5-day/3-hour-forecast endpoints. One instance is constructed at startup
// and shared; it is safe for concurrent use.
type OpenWeatherClient struct {
	apiKey  string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker

	// BaseURL is overridable so tests can point the client at a local server.
	BaseURL string
}

func NewOpenWeatherClient(client *http.Client, apiKey string) *OpenWeatherClient {
	return &OpenWeatherClient{
		apiKey:  apiKey,
		client:  client,
		circuit: newBreaker("openweather"),
		BaseURL: "https://api.openweathermap.org",
	}
}

func (c *OpenWeatherClient) get(ctx context.Context, endpoint string, params url.Values) (providerResponse, error) {
	params.Set("appid", c.apiKey)
	u := fmt.Sprintf("%s%s?%s", c.BaseURL, endpoint, params.Encode())
	return doProviderRequest(ctx, c.client, c.circuit, "openweather", endpoint, u)
}

// Current retrieves current conditions for a coordinate pair.
func (c *OpenWeatherClient) Current(ctx context.Context, lat, lon float64, units string) (CurrentConditions, error) {
	params := url.Values{}
	params.Set("lat", formatCoord(lat))
	params.Set("lon", formatCoord(lon))
	params.Set("units", units)

	resp, err := c.get(ctx, "/data/2.5/weather", params)
	if err != nil {
		return CurrentConditions{}, &FetchError{Message: fmt.Sprintf("Current weather failed: %v", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return CurrentConditions{}, &FetchError{
			Message: fmt.Sprintf("Current weather failed (%d): %s", resp.StatusCode, resp.Body),
		}
	}

	var current CurrentConditions
	if err := json.Unmarshal(resp.Body, &current); err != nil {
		return CurrentConditions{}, &FetchError{Message: fmt.Sprintf("Current weather decode failed: %v", err)}
	}
	current.Raw = resp.Body
	return current, nil
}

// Forecast retrieves the 5-day forecast in 3-hour increments. Summarize
// collapses the result into daily cards.
func (c *OpenWeatherClient) Forecast(ctx context.Context, lat, lon float64, units string) (ForecastFeed, error) {
	params := url.Values{}
	params.Set("lat", formatCoord(lat))
	params.Set("lon", formatCoord(lon))
	params.Set("units", units)

	resp, err := c.get(ctx, "/data/2.5/forecast", params)
	if err != nil {
		return ForecastFeed{}, &FetchError{Message: fmt.Sprintf("Forecast failed: %v", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return ForecastFeed{}, &FetchError{
			Message: fmt.Sprintf("Forecast failed (%d): %s", resp.StatusCode, resp.Body),
		}
	}

	var feed ForecastFeed
	if err := json.Unmarshal(resp.Body, &feed); err != nil {
		return ForecastFeed{}, &FetchError{Message: fmt.Sprintf("Forecast decode failed: %v", err)}
	}
	feed.Raw = resp.Body
	return feed, nil
}

func formatCoord(v float64) string {
	return fmt.Sprintf("%g", v)
}
