package weather

import (
	"context"
	"errors"
)

var (
	// ErrLocationNotFound is returned when geocoding yields no result for a place.
	ErrLocationNotFound = errors.New("location not found")
	// ErrMissingAPIKey is returned by providers that need a credential which is not configured.
	ErrMissingAPIKey = errors.New("weather api key is not configured")
)

// Geocoder resolves a free-text place name into coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, place string) ([]Coordinates, error)
}

// Client abstracts a weather data source (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo).
type Client interface {
	Name() string
	// Current geocodes place and fetches its current conditions.
	Current(ctx context.Context, place string) (Record, error)
}
