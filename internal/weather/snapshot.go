package weather

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-booking/internal/attribute"
	"github.com/iliyamo/restaurant-booking/internal/store"
)

// ErrMalformedForecast is returned when the forecast lacks a projected field.
var ErrMalformedForecast = errors.New("malformed forecast")

// Fetcher is the part of Client a Processor needs.
type Fetcher interface {
	Forecast(ctx context.Context) ([]byte, error)
}

// Processor stores forecast snapshots as {id, forecast} items.
type Processor struct {
	Weather Fetcher
	Store   store.ItemStore
	Table   string
	newID   func() string
}

// NewProcessor returns a Processor writing to table.
func NewProcessor(f Fetcher, s store.ItemStore, table string) *Processor {
	return &Processor{Weather: f, Store: s, Table: table, newID: uuid.NewString}
}

// Snapshot fetches the forecast, projects it and stores it.  It returns the
// snapshot id and the projected forecast.
func (p *Processor) Snapshot(ctx context.Context) (string, map[string]any, error) {
	raw, err := p.Weather.Forecast(ctx)
	if err != nil {
		return "", nil, err
	}
	forecast, err := Project(raw)
	if err != nil {
		return "", nil, err
	}
	wire, err := attribute.ToWire(forecast)
	if err != nil {
		return "", nil, fmt.Errorf("encode forecast: %w", err)
	}
	id := p.newID()
	item := attribute.Item{"id": attribute.String(id), "forecast": wire}
	if err := p.Store.PutItem(ctx, p.Table, item); err != nil {
		return "", nil, fmt.Errorf("put snapshot: %w", err)
	}
	return id, forecast, nil
}

// Project keeps the stored subset of an open-meteo forecast: location and
// generation metadata, hourly units for temperature and time, and the
// hourly temperature and time series.  Numbers stay json.Number so they
// are stored exactly as received.
func Project(raw []byte) (map[string]any, error) {
	decoded, err := attribute.DecodeJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedForecast, err)
	}
	src, ok := decoded.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: not an object", ErrMalformedForecast)
	}
	out := map[string]any{}
	for _, k := range []string{"elevation", "generationtime_ms", "latitude", "longitude", "timezone", "timezone_abbreviation", "utc_offset_seconds"} {
		v, ok := src[k]
		if !ok {
			return nil, fmt.Errorf("%w: missing %s", ErrMalformedForecast, k)
		}
		out[k] = v
	}
	for _, section := range []string{"hourly_units", "hourly"} {
		m, ok := src[section].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: missing %s", ErrMalformedForecast, section)
		}
		sub := map[string]any{}
		for _, k := range []string{"temperature_2m", "time"} {
			v, ok := m[k]
			if !ok {
				return nil, fmt.Errorf("%w: missing %s.%s", ErrMalformedForecast, section, k)
			}
			sub[k] = v
		}
		out[section] = sub
	}
	return out, nil
}
