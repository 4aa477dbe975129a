package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// AppConfig is the process configuration, read from the environment.
type AppConfig struct {
	// CompletionAPIKey is the Together AI credential. Required.
	CompletionAPIKey      string  `validate:"required"`
	CompletionBaseURL     string  `validate:"required,url"`
	CompletionModel       string  `validate:"required"`
	CompletionMaxTokens   int     `validate:"gte=0"`
	CompletionTemperature float64 `validate:"gte=0,lte=2"`
	CompletionTopP        float64 `validate:"gte=0,lte=1"`

	WeatherProvider      string `validate:"oneof=openweather weatherapi openmeteo"`
	OpenWeatherAPIKey    string
	WeatherAPIKey        string
	GoogleGeocoderAPIKey string

	// HTTPTimeout bounds outbound calls; 0 waits indefinitely.
	HTTPTimeout time.Duration `validate:"gte=0"`

	// Session retention.
	SessionIdleTTL       time.Duration `validate:"gte=0"`
	SessionSweepInterval time.Duration `validate:"gt=0"`

	LogLevel  string `validate:"oneof=trace debug info warn error"`
	LogFormat string `validate:"oneof=console json"`
	LogFile   string

	Port string `validate:"required,numeric"`
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
// A missing completion credential is a fatal configuration error.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.CompletionAPIKey = os.Getenv("TOGETHER_API_KEY")
	cfg.CompletionBaseURL = getenvDefault("COMPLETION_BASE_URL", "https://api.together.xyz/v1")
	cfg.CompletionModel = getenvDefault("COMPLETION_MODEL", "meta-llama/Llama-3.3-70B-Instruct-Turbo")

	var err error
	if cfg.CompletionMaxTokens, err = getenvInt("COMPLETION_MAX_TOKENS", 1000); err != nil {
		return nil, err
	}
	if cfg.CompletionTemperature, err = getenvFloat("COMPLETION_TEMPERATURE", 0.7); err != nil {
		return nil, err
	}
	if cfg.CompletionTopP, err = getenvFloat("COMPLETION_TOP_P", 0.7); err != nil {
		return nil, err
	}

	cfg.WeatherProvider = getenvDefault("WEATHER_PROVIDER", "openweather")
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.GoogleGeocoderAPIKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "0"); err != nil {
		return nil, err
	}
	if cfg.SessionIdleTTL, err = getenvDuration("SESSION_IDLE_TTL", "24h"); err != nil {
		return nil, err
	}
	if cfg.SessionSweepInterval, err = getenvDuration("SESSION_SWEEP_INTERVAL", "15m"); err != nil {
		return nil, err
	}

	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getenvDefault("LOG_FORMAT", "console")
	cfg.LogFile = os.Getenv("LOG_FILE")
	cfg.Port = getenvDefault("PORT", "8080")

	if cfg.CompletionAPIKey == "" {
		return nil, fmt.Errorf("missing TOGETHER_API_KEY environment variable")
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
