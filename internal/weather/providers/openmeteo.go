package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-lookup/internal/apperrors"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo. No API key is required.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client, opts Options) *OpenMeteoProvider {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://api.open-meteo.com/v1/forecast"
	}
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: baseURL,
		httpCfg: newHTTPClientConfig(client, opts),
		circuit: newCircuitBreaker("openmeteo", opts.CircuitBreaker),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// CurrentWeather fetches the instantaneous snapshot in the location's local timezone.
func (p *OpenMeteoProvider) CurrentWeather(ctx context.Context, lat, lon float64) (weather.CurrentConditions, error) {
	values := p.baseValues(lat, lon)
	values.Set("current_weather", "true")

	var payload struct {
		CurrentWeather *struct {
			Temperature float64 `json:"temperature"`
			WindSpeed   float64 `json:"windspeed"`
			Time        string  `json:"time"`
		} `json:"current_weather"`
	}
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.url(values), &payload); err != nil {
		return weather.CurrentConditions{}, apperrors.NewTransportError("weather request failed", err)
	}
	if payload.CurrentWeather == nil {
		return weather.CurrentConditions{}, apperrors.NewTransportError("weather request failed",
			fmt.Errorf("response has no current_weather"))
	}

	return weather.CurrentConditions{
		Temperature: payload.CurrentWeather.Temperature,
		WindSpeed:   payload.CurrentWeather.WindSpeed,
		Time:        payload.CurrentWeather.Time,
	}, nil
}

// DailyForecast fetches daily max/min temperatures for the given number of days, in chronological order.
func (p *OpenMeteoProvider) DailyForecast(ctx context.Context, lat, lon float64, days int) ([]weather.DailyForecast, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be greater than zero")
	}

	values := p.baseValues(lat, lon)
	values.Set("daily", "temperature_2m_max,temperature_2m_min")
	values.Set("forecast_days", strconv.Itoa(days))

	var payload struct {
		Daily struct {
			Time    []string  `json:"time"`
			TempMax []float64 `json:"temperature_2m_max"`
			TempMin []float64 `json:"temperature_2m_min"`
		} `json:"daily"`
	}
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.url(values), &payload); err != nil {
		return nil, apperrors.NewTransportError("forecast request failed", err)
	}

	d := payload.Daily
	if len(d.TempMax) != len(d.Time) || len(d.TempMin) != len(d.Time) {
		return nil, apperrors.NewTransportError("forecast request failed",
			fmt.Errorf("mismatched daily arrays: time=%d max=%d min=%d", len(d.Time), len(d.TempMax), len(d.TempMin)))
	}

	forecast := make([]weather.DailyForecast, 0, len(d.Time))
	for i := range d.Time {
		forecast = append(forecast, weather.DailyForecast{
			Date:    d.Time[i],
			TempMax: d.TempMax[i],
			TempMin: d.TempMin[i],
		})
	}
	return forecast, nil
}

func (p *OpenMeteoProvider) baseValues(lat, lon float64) url.Values {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("timezone", "auto")
	return values
}

func (p *OpenMeteoProvider) url(values url.Values) string {
	return fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
}
