package providers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-chat/internal/weather"
)

// googleNoResults is the message kelvins/geocoder returns for ZERO_RESULTS.
const googleNoResults = "No results found."

var googleKeyOnce sync.Once

// GoogleGeocoder resolves places through the Google Geocoding API.
// The underlying library keeps the key in a package variable, so only the
// first configured key is used for the lifetime of the process.
type GoogleGeocoder struct {
	circuit *gobreaker.CircuitBreaker
	lookup  func(geocoder.Address) (geocoder.Location, error)
	timeout time.Duration
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	googleKeyOnce.Do(func() {
		geocoder.ApiKey = apiKey
	})
	return &GoogleGeocoder{
		circuit: newBreaker("google-geocoder"),
		lookup:  geocoder.Geocoding,
	}
}

// WithTimeout bounds each lookup; zero leaves it to the caller's context.
func (g *GoogleGeocoder) WithTimeout(d time.Duration) *GoogleGeocoder {
	g.timeout = d
	return g
}

type googleResult struct {
	loc geocoder.Location
	err error
}

// Geocode returns no coordinates when Google knows no such place. The library
// uses its own http.Client, so ctx is the only bound on a slow lookup.
func (g *GoogleGeocoder) Geocode(ctx context.Context, place string) ([]weather.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	done := make(chan googleResult, 1)
	go func() {
		res, err := g.circuit.Execute(func() (interface{}, error) {
			loc, err := g.lookup(geocoder.Address{City: place})
			if err != nil && err.Error() == googleNoResults {
				// An unknown place is an answer, not an outage.
				return geocoder.Location{}, nil
			}
			return loc, err
		})
		var loc geocoder.Location
		if err == nil {
			loc = res.(geocoder.Location)
		}
		done <- googleResult{loc: loc, err: err}
	}()

	var r googleResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r = <-done:
	}
	if r.err != nil {
		return nil, fmt.Errorf("google geocode: %w", r.err)
	}

	if r.loc.Latitude == 0 && r.loc.Longitude == 0 {
		return nil, nil
	}
	return []weather.Coordinates{{Lat: r.loc.Latitude, Lon: r.loc.Longitude}}, nil
}
