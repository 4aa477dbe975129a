package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TOGETHER_API_KEY", "tk")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "tk", cfg.CompletionAPIKey)
	assert.Equal(t, "https://api.together.xyz/v1", cfg.CompletionBaseURL)
	assert.Equal(t, "meta-llama/Llama-3.3-70B-Instruct-Turbo", cfg.CompletionModel)
	assert.Equal(t, 1000, cfg.CompletionMaxTokens)
	assert.InDelta(t, 0.7, cfg.CompletionTemperature, 1e-9)
	assert.Equal(t, "openweather", cfg.WeatherProvider)
	assert.Equal(t, time.Duration(0), cfg.HTTPTimeout)
	assert.Equal(t, 24*time.Hour, cfg.SessionIdleTTL)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoadRequiresCompletionKey(t *testing.T) {
	t.Setenv("TOGETHER_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOGETHER_API_KEY")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TOGETHER_API_KEY", "tk")
	t.Setenv("WEATHER_PROVIDER", "openmeteo")
	t.Setenv("HTTP_TIMEOUT", "15s")
	t.Setenv("COMPLETION_MAX_TOKENS", "200")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "openmeteo", cfg.WeatherProvider)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 200, cfg.CompletionMaxTokens)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"HTTP_TIMEOUT":           "soon",
		"COMPLETION_MAX_TOKENS":  "many",
		"COMPLETION_TEMPERATURE": "5",
		"WEATHER_PROVIDER":       "darksky",
		"PORT":                   "http",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv("TOGETHER_API_KEY", "tk")
			t.Setenv(key, value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
