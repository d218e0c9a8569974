package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
)

// OpenMeteoClient fetches daily min/max temperatures for an explicit date
// window. Open-Meteo needs no API key and returns Celsius daily aggregates
// directly, which is exactly what gets stored.
type OpenMeteoClient struct {
	client  *http.Client
	circuit *gobreaker.CircuitBreaker

	// BaseURL is overridable so tests can point the client at a local server.
	BaseURL string
}

func NewOpenMeteoClient(client *http.Client) *OpenMeteoClient {
	return &OpenMeteoClient{
		client:  client,
		circuit: newBreaker("openmeteo"),
		BaseURL: "https://api.open-meteo.com/v1/forecast",
	}
}

// DailyRange returns one DailyTemperature per day in [start, end] inclusive,
// ordered by ascending date, in Celsius. An upstream failure or a response
// with zero usable rows yields a RangeError.
func (c *OpenMeteoClient) DailyRange(ctx context.Context, lat, lon float64, start, end time.Time) ([]DailyTemperature, error) {
	params := url.Values{}
	params.Set("latitude", formatCoord(lat))
	params.Set("longitude", formatCoord(lon))
	params.Set("start_date", start.Format("2006-01-02"))
	params.Set("end_date", end.Format("2006-01-02"))
	params.Set("daily", "temperature_2m_max,temperature_2m_min")
	params.Set("timezone", "auto")

	u := fmt.Sprintf("%s?%s", c.BaseURL, params.Encode())
	resp, err := doProviderRequest(ctx, c.client, c.circuit, "openmeteo", "/v1/forecast", u)
	if err != nil {
		return nil, &RangeError{Message: fmt.Sprintf("Open-Meteo daily temps failed: %v", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &RangeError{
			Message: fmt.Sprintf("Open-Meteo daily temps failed (%d): %s", resp.StatusCode, resp.Body),
		}
	}

	var payload struct {
		Daily struct {
			Time  []string  `json:"time"`
			TMax  []float64 `json:"temperature_2m_max"`
			TMin  []float64 `json:"temperature_2m_min"`
		} `json:"daily"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, &RangeError{Message: fmt.Sprintf("Open-Meteo decode failed: %v", err)}
	}

	// The three arrays are positionally aligned; a misaligned response is
	// clamped to the shortest common length.
	n := len(payload.Daily.Time)
	if len(payload.Daily.TMax) < n {
		n = len(payload.Daily.TMax)
	}
	if len(payload.Daily.TMin) < n {
		n = len(payload.Daily.TMin)
	}

	out := make([]DailyTemperature, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, DailyTemperature{
			Date: payload.Daily.Time[i],
			TMax: payload.Daily.TMax[i],
			TMin: payload.Daily.TMin[i],
		})
	}

	if len(out) == 0 {
		return nil, &RangeError{Message: "No daily temperatures returned for that range."}
	}
	return out, nil
}
