package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-lookup/internal/apperrors"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// ErrLocalityNotFound is the user-facing message for a geocoding miss.
const ErrLocalityNotFound = "No se encontró la localidad."

// NominatimGeocoder implements weather.Geocoder against the OpenStreetMap Nominatim search API.
type NominatimGeocoder struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewNominatimGeocoder(client *http.Client, opts Options) *NominatimGeocoder {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org/search"
	}
	return &NominatimGeocoder{
		name:    "nominatim",
		baseURL: baseURL,
		httpCfg: newHTTPClientConfig(client, opts),
		circuit: newCircuitBreaker("nominatim", opts.CircuitBreaker),
	}
}

func (g *NominatimGeocoder) Name() string {
	return g.name
}

// Resolve returns the first (most likely) match for place.
func (g *NominatimGeocoder) Resolve(ctx context.Context, place string) (weather.Location, error) {
	values := url.Values{}
	values.Set("format", "json")
	values.Set("q", place)
	u := fmt.Sprintf("%s?%s", g.baseURL, values.Encode())

	var payload []struct {
		DisplayName string `json:"display_name"`
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
	}
	if err := getJSON(ctx, g.httpCfg, g.circuit, u, &payload); err != nil {
		return weather.Location{}, apperrors.NewTransportError("geocoding request failed", err)
	}

	if len(payload) == 0 {
		return weather.Location{}, apperrors.NewNotFoundError(ErrLocalityNotFound)
	}

	first := payload[0]
	lat, err := strconv.ParseFloat(strings.TrimSpace(first.Lat), 64)
	if err != nil {
		return weather.Location{}, apperrors.NewTransportError("invalid latitude from geocoder", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(first.Lon), 64)
	if err != nil {
		return weather.Location{}, apperrors.NewTransportError("invalid longitude from geocoder", err)
	}

	return weather.Location{
		Query:       place,
		DisplayName: first.DisplayName,
		Lat:         lat,
		Lon:         lon,
	}, nil
}
