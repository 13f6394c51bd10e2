package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	apiclient "github.com/i474232898/weather-lookup/internal/api/client"
	"github.com/i474232898/weather-lookup/internal/cli"
	"github.com/i474232898/weather-lookup/internal/common"
	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/logging"
	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/i474232898/weather-lookup/internal/weather/providers"
)

func main() {
	serverURL := flag.String("server", "", "weather-lookup server URL (overrides SERVER_URL)")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), cli.Usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logging.Init("weather-cli", cfg.Env, cfg.LogLevel)

	// Shared HTTP client for outbound provider calls. A zero timeout waits indefinitely.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	opts := providers.Options{
		UserAgent:      cfg.UserAgent,
		MaxRetries:     cfg.MaxRetries,
		CircuitBreaker: cfg.CircuitBreaker,
	}

	var geocoder weather.Geocoder
	switch cfg.Geocoder {
	case "google":
		geocoder = providers.NewGoogleGeocoder(cfg.GoogleAPIKey, opts)
	default:
		nominatimOpts := opts
		nominatimOpts.BaseURL = cfg.NominatimURL
		geocoder = providers.NewNominatimGeocoder(httpClient, nominatimOpts)
	}

	meteoOpts := opts
	meteoOpts.BaseURL = cfg.OpenMeteoURL
	provider := providers.NewOpenMeteoProvider(httpClient, meteoOpts)

	api := apiclient.New(common.FirstNonEmpty(*serverURL, cfg.ServerURL), httpClient)
	service := weather.NewService(geocoder, provider, api, cfg.MapEmbedURL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Run(ctx, flag.Args(), service, api, os.Stdout, os.Stderr)

	// Let the background search log write finish before exiting.
	service.Wait()
	stop()

	log.Debug().Int("code", code).Msg("weather-cli finished")
	os.Exit(code)
}
