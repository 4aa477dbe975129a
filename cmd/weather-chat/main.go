package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	httpapi "github.com/i474232898/weather-chat/internal/api/http"
	"github.com/i474232898/weather-chat/internal/chat"
	"github.com/i474232898/weather-chat/internal/completion"
	"github.com/i474232898/weather-chat/internal/config"
	"github.com/i474232898/weather-chat/internal/logging"
	"github.com/i474232898/weather-chat/internal/scheduler"
	"github.com/i474232898/weather-chat/internal/store"
	"github.com/i474232898/weather-chat/internal/weather"
	"github.com/i474232898/weather-chat/internal/weather/providers"
)

func main() {
	envErr := godotenv.Load()

	// Load configuration. A missing completion key stops the process here.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logging.Init(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if envErr != nil {
		log.Info().Err(envErr).Msg("no .env file found or error loading it")
	}

	// Shared HTTP client for outbound calls; a zero timeout waits indefinitely.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	weatherClient := newWeatherClient(cfg, httpClient)
	if cfg.WeatherProvider == "openweather" && cfg.OpenWeatherAPIKey == "" {
		log.Warn().Msg("OPENWEATHER_API_KEY is not set; weather lookups will fail")
	}

	completer, err := completion.NewTogetherClient(completion.Config{
		APIKey:      cfg.CompletionAPIKey,
		BaseURL:     cfg.CompletionBaseURL,
		Model:       cfg.CompletionModel,
		MaxTokens:   cfg.CompletionMaxTokens,
		Temperature: cfg.CompletionTemperature,
		TopP:        cfg.CompletionTopP,
	}, httpClient)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create completion client")
	}

	sessions := store.NewMemoryStore(cfg.SessionIdleTTL)
	controller := chat.NewController(weatherClient, completer)

	// Scheduler that periodically discards idle sessions.
	sched := scheduler.New(sessions, cfg.SessionSweepInterval)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-chat",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-chat",
		})
	})

	httpapi.RegisterRoutes(app, sessions, controller, completer)

	go func() {
		log.Info().Str("port", cfg.Port).Str("weather", weatherClient.Name()).Msg("listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}

func newWeatherClient(cfg *config.AppConfig, httpClient *http.Client) weather.Client {
	var geo weather.Geocoder
	if cfg.GoogleGeocoderAPIKey != "" {
		geo = providers.NewGoogleGeocoder(cfg.GoogleGeocoderAPIKey).WithTimeout(cfg.HTTPTimeout)
	}

	switch cfg.WeatherProvider {
	case "weatherapi":
		p := providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey)
		if geo != nil {
			p.WithGeocoder(geo)
		}
		return p
	case "openmeteo":
		p := providers.NewOpenMeteoProvider(httpClient)
		if geo != nil {
			p.WithGeocoder(geo)
		}
		return p
	default:
		p := providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey)
		if geo != nil {
			p.WithGeocoder(geo)
		}
		return p
	}
}
