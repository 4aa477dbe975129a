package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/i474232898/weather-chat/internal/weather"
	"github.com/sony/gobreaker"
)

// WeatherAPIProvider implements weather.Client for WeatherAPI.com.
type WeatherAPIProvider struct {
	name      string
	apiKey    string
	searchURL string
	baseURL   string
	client    *http.Client
	circuit   *gobreaker.CircuitBreaker
	geocoder  weather.Geocoder
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	p := &WeatherAPIProvider{
		name:      "weatherapi",
		apiKey:    apiKey,
		searchURL: "https://api.weatherapi.com/v1/search.json",
		baseURL:   "https://api.weatherapi.com/v1/current.json",
		client:    client,
		circuit:   newBreaker("weatherapi"),
	}
	p.geocoder = p
	return p
}

// WithGeocoder replaces the built-in location search.
func (p *WeatherAPIProvider) WithGeocoder(g weather.Geocoder) *WeatherAPIProvider {
	p.geocoder = g
	return p
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

// Geocode uses the search/autocomplete endpoint and keeps the best match.
func (p *WeatherAPIProvider) Geocode(ctx context.Context, place string) ([]weather.Coordinates, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("weatherapi: %w", weather.ErrMissingAPIKey)
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	values.Set("q", place)

	var payload []struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := getJSON(ctx, p.client, p.circuit, p.searchURL+"?"+values.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("weatherapi search: %w", err)
	}
	if len(payload) > 1 {
		payload = payload[:1]
	}

	out := make([]weather.Coordinates, 0, len(payload))
	for _, c := range payload {
		out = append(out, weather.Coordinates{Lat: c.Lat, Lon: c.Lon})
	}
	return out, nil
}

func (p *WeatherAPIProvider) Current(ctx context.Context, place string) (weather.Record, error) {
	if p.apiKey == "" {
		return weather.Record{}, fmt.Errorf("weatherapi: %w", weather.ErrMissingAPIKey)
	}

	coords, err := p.geocoder.Geocode(ctx, place)
	if err != nil {
		return weather.Record{}, err
	}
	if len(coords) == 0 {
		return weather.Record{}, fmt.Errorf("%w: %q", weather.ErrLocationNotFound, place)
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	// WeatherAPI uses "q" for location; it accepts "lat,lon".
	values.Set("q", fmt.Sprintf("%f,%f", coords[0].Lat, coords[0].Lon))

	var payload struct {
		Current struct {
			TempF      float64 `json:"temp_f"`
			FeelslikeF float64 `json:"feelslike_f"`
			Humidity   float64 `json:"humidity"`
			WindMph    float64 `json:"wind_mph"`
			Condition  struct {
				Text string `json:"text"`
				Icon string `json:"icon"`
			} `json:"condition"`
		} `json:"current"`
	}
	if err := getJSON(ctx, p.client, p.circuit, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return weather.Record{}, fmt.Errorf("weatherapi current: %w", err)
	}

	return weather.Record{
		Temperature: round(payload.Current.TempF),
		FeelsLike:   round(payload.Current.FeelslikeF),
		Condition:   payload.Current.Condition.Text,
		Humidity:    round(payload.Current.Humidity),
		WindSpeed:   round(payload.Current.WindMph),
		Icon:        payload.Current.Condition.Icon,
	}, nil
}
