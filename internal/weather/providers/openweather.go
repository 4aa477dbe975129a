package providers

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"

	"github.com/i474232898/weather-chat/internal/weather"
	"github.com/sony/gobreaker"
)

// OpenWeatherProvider implements weather.Client on top of OpenWeatherMap's
// direct geocoding and current weather endpoints.
type OpenWeatherProvider struct {
	name     string
	apiKey   string
	geoURL   string
	baseURL  string
	client   *http.Client
	circuit  *gobreaker.CircuitBreaker
	geocoder weather.Geocoder
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	p := &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		geoURL:  "https://api.openweathermap.org/geo/1.0/direct",
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		client:  client,
		circuit: newBreaker("openweather"),
	}
	p.geocoder = p
	return p
}

// WithGeocoder replaces the built-in geocoding.
func (p *OpenWeatherProvider) WithGeocoder(g weather.Geocoder) *OpenWeatherProvider {
	p.geocoder = g
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// Geocode returns at most one match for place.
func (p *OpenWeatherProvider) Geocode(ctx context.Context, place string) ([]weather.Coordinates, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather: %w", weather.ErrMissingAPIKey)
	}

	values := url.Values{}
	values.Set("q", place)
	values.Set("limit", "1")
	values.Set("appid", p.apiKey)

	var payload []struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := getJSON(ctx, p.client, p.circuit, p.geoURL+"?"+values.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("openweather geocode: %w", err)
	}

	out := make([]weather.Coordinates, 0, len(payload))
	for _, c := range payload {
		out = append(out, weather.Coordinates{Lat: c.Lat, Lon: c.Lon})
	}
	return out, nil
}

func (p *OpenWeatherProvider) Current(ctx context.Context, place string) (weather.Record, error) {
	if p.apiKey == "" {
		return weather.Record{}, fmt.Errorf("openweather: %w", weather.ErrMissingAPIKey)
	}

	coords, err := p.geocoder.Geocode(ctx, place)
	if err != nil {
		return weather.Record{}, err
	}
	if len(coords) == 0 {
		return weather.Record{}, fmt.Errorf("%w: %q", weather.ErrLocationNotFound, place)
	}

	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", coords[0].Lat))
	values.Set("lon", fmt.Sprintf("%f", coords[0].Lon))
	values.Set("units", "imperial")
	values.Set("appid", p.apiKey)

	var payload struct {
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  float64 `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Weather []struct {
			Main string `json:"main"`
			Icon string `json:"icon"`
		} `json:"weather"`
	}
	if err := getJSON(ctx, p.client, p.circuit, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return weather.Record{}, fmt.Errorf("openweather current: %w", err)
	}
	if len(payload.Weather) == 0 {
		return weather.Record{}, fmt.Errorf("openweather current: response has no weather entry")
	}

	return weather.Record{
		Temperature: round(payload.Main.Temp),
		FeelsLike:   round(payload.Main.FeelsLike),
		Condition:   payload.Weather[0].Main,
		Humidity:    round(payload.Main.Humidity),
		WindSpeed:   round(payload.Wind.Speed),
		Icon:        payload.Weather[0].Icon,
	}, nil
}

// round rounds half up, so -2.5 becomes -2.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}
