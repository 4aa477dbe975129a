package weather

import (
	"fmt"
	"strings"
)

// Record is the normalized current-conditions view of a place.
// Values are imperial: temperatures in °F, wind in mph.
type Record struct {
	Temperature int    `json:"temperature"`
	FeelsLike   int    `json:"feelsLike"`
	Condition   string `json:"condition"`
	Humidity    int    `json:"humidity"`
	WindSpeed   int    `json:"windSpeed"`

	// Icon is an opaque provider identifier used to fetch a pictogram.
	Icon string `json:"icon"`
}

// IconURL returns the pictogram URL for OpenWeather icon codes ("01d", "10n", ...).
// Icons from other providers are returned unchanged when they already are URLs.
func (r Record) IconURL() string {
	switch {
	case r.Icon == "":
		return ""
	case strings.HasPrefix(r.Icon, "http://"), strings.HasPrefix(r.Icon, "https://"):
		return r.Icon
	case strings.HasPrefix(r.Icon, "//"):
		return "https:" + r.Icon
	default:
		return fmt.Sprintf("https://openweathermap.org/img/wn/%s@2x.png", r.Icon)
	}
}

// Summary renders the record the way it is handed to the language model.
func (r Record) Summary(location string) string {
	return fmt.Sprintf("Current weather in %s:\nTemperature: %d°F\nFeels like: %d°F\nCondition: %s\nWind Speed: %d mph",
		location, r.Temperature, r.FeelsLike, r.Condition, r.WindSpeed)
}

// Coordinates is a geocoding result.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
