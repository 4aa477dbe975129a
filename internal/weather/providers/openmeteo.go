package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/i474232898/weather-chat/internal/weather"
	"github.com/sony/gobreaker"
)

// OpenMeteoProvider implements weather.Client for Open-Meteo. It needs no API key.
type OpenMeteoProvider struct {
	name     string
	geoURL   string
	baseURL  string
	client   *http.Client
	circuit  *gobreaker.CircuitBreaker
	geocoder weather.Geocoder
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	p := &OpenMeteoProvider{
		name:    "openmeteo",
		geoURL:  "https://geocoding-api.open-meteo.com/v1/search",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		client:  client,
		circuit: newBreaker("openmeteo"),
	}
	p.geocoder = p
	return p
}

// WithGeocoder replaces the built-in Open-Meteo geocoding.
func (p *OpenMeteoProvider) WithGeocoder(g weather.Geocoder) *OpenMeteoProvider {
	p.geocoder = g
	return p
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) Geocode(ctx context.Context, place string) ([]weather.Coordinates, error) {
	values := url.Values{}
	values.Set("name", place)
	values.Set("count", "1")

	var payload struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := getJSON(ctx, p.client, p.circuit, p.geoURL+"?"+values.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("openmeteo geocode: %w", err)
	}

	out := make([]weather.Coordinates, 0, len(payload.Results))
	for _, r := range payload.Results {
		out = append(out, weather.Coordinates{Lat: r.Latitude, Lon: r.Longitude})
	}
	return out, nil
}

func (p *OpenMeteoProvider) Current(ctx context.Context, place string) (weather.Record, error) {
	coords, err := p.geocoder.Geocode(ctx, place)
	if err != nil {
		return weather.Record{}, err
	}
	if len(coords) == 0 {
		return weather.Record{}, fmt.Errorf("%w: %q", weather.ErrLocationNotFound, place)
	}

	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", coords[0].Lat))
	values.Set("longitude", fmt.Sprintf("%f", coords[0].Lon))
	values.Set("current", "temperature_2m,apparent_temperature,relative_humidity_2m,wind_speed_10m,weather_code,is_day")
	values.Set("temperature_unit", "fahrenheit")
	values.Set("wind_speed_unit", "mph")

	var payload struct {
		Current struct {
			Temperature float64 `json:"temperature_2m"`
			Apparent    float64 `json:"apparent_temperature"`
			Humidity    float64 `json:"relative_humidity_2m"`
			WindSpeed   float64 `json:"wind_speed_10m"`
			WeatherCode int     `json:"weather_code"`
			IsDay       int     `json:"is_day"`
		} `json:"current"`
	}
	if err := getJSON(ctx, p.client, p.circuit, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return weather.Record{}, fmt.Errorf("openmeteo current: %w", err)
	}

	cond, icon := mapOpenMeteoCondition(payload.Current.WeatherCode)
	if payload.Current.IsDay == 1 {
		icon += "d"
	} else {
		icon += "n"
	}

	return weather.Record{
		Temperature: round(payload.Current.Temperature),
		FeelsLike:   round(payload.Current.Apparent),
		Condition:   cond,
		Humidity:    round(payload.Current.Humidity),
		WindSpeed:   round(payload.Current.WindSpeed),
		Icon:        icon,
	}, nil
}

// mapOpenMeteoCondition maps WMO weather codes to an OpenWeather-style
// condition label and icon code (without the day/night suffix).
func mapOpenMeteoCondition(code int) (string, string) {
	switch {
	case code == 0:
		return "Clear", "01"
	case code == 1 || code == 2:
		return "Clouds", "02"
	case code == 3:
		return "Clouds", "04"
	case code == 45 || code == 48:
		return "Fog", "50"
	case code >= 51 && code <= 57:
		return "Drizzle", "09"
	case (code >= 61 && code <= 67) || (code >= 80 && code <= 82):
		return "Rain", "10"
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return "Snow", "13"
	case code >= 95:
		return "Thunderstorm", "11"
	default:
		return "Unknown", "03"
	}
}
