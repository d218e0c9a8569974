package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"weatherdesk/internal/metrics"
)

var (
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// newBreaker builds the per-provider circuit breaker. A tripped breaker makes
// the provider fail fast until it recovers; requests are never re-issued.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// providerResponse is an outbound call's outcome: status code plus the fully
// read body. Non-2xx statuses are returned to the caller, which decides
// whether that is an error for its branch; only transport failures and 5xx
// count against the circuit breaker.
type providerResponse struct {
	StatusCode int
	Body       []byte
}

func doProviderRequest(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	provider, endpoint, url string,
) (providerResponse, error) {
	if client == nil {
		return providerResponse{}, errNoHTTPClient
	}

	start := time.Now()
	result, err := cb.Execute(func() (interface{}, error) {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if reqErr != nil {
			return nil, reqErr
		}

		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, readErr
		}

		pr := providerResponse{StatusCode: resp.StatusCode, Body: body}
		if resp.StatusCode >= 500 {
			return pr, fmt.Errorf("server error: %d", resp.StatusCode)
		}
		return pr, nil
	})

	metrics.RecordProviderRequest(provider, endpoint, time.Since(start), err)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return providerResponse{}, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return providerResponse{}, err
	}

	pr, ok := result.(providerResponse)
	if !ok {
		return providerResponse{}, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return pr, nil
}
