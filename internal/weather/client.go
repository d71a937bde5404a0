// Package weather fetches forecasts from open-meteo and stores snapshots of
// them in the item store.
package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the open-meteo forecast endpoint.
const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// ErrFetch is returned when the forecast cannot be retrieved.
var ErrFetch = errors.New("failed to fetch weather data")

// Client fetches the forecast for one fixed location.
type Client struct {
	HTTP      *http.Client
	BaseURL   string
	Latitude  float64
	Longitude float64
}

// NewClient returns a Client for the given coordinates with a 10s timeout.
func NewClient(lat, lon float64) *Client {
	return &Client{
		HTTP:      &http.Client{Timeout: 10 * time.Second},
		BaseURL:   DefaultBaseURL,
		Latitude:  lat,
		Longitude: lon,
	}
}

// URL returns the forecast request URL: current temperature and wind plus
// hourly temperature, humidity and wind.
func (c *Client) URL() string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(c.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(c.Longitude, 'f', -1, 64))
	q.Set("current", "temperature_2m,wind_speed_10m")
	q.Set("hourly", "temperature_2m,relative_humidity_2m,wind_speed_10m")
	return c.BaseURL + "?" + q.Encode()
}

// Forecast returns the raw forecast JSON.  Non-2xx responses fail with
// ErrFetch.
func (c *Client) Forecast(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFetch, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return body, nil
}
