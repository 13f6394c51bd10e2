package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/kelvins/geocoder"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/weather-lookup/internal/apperrors"
	"github.com/i474232898/weather-lookup/internal/common"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// GoogleGeocoder implements weather.Geocoder on top of the Google Geocoding API.
// The underlying library keeps its API key and endpoint in package variables, so only one
// configuration per process is supported.
type GoogleGeocoder struct {
	name string
}

// NewGoogleGeocoder configures the library with apiKey. opts.BaseURL, when set, replaces the
// Google endpoint; the other options are not used by this backend.
func NewGoogleGeocoder(apiKey string, opts Options) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	if opts.BaseURL != "" {
		geocoder.ApiUrl = strings.TrimSuffix(opts.BaseURL, "?") + "?"
	}
	return &GoogleGeocoder{name: "google"}
}

func (g *GoogleGeocoder) Name() string {
	return g.name
}

// Resolve geocodes place and reverse-geocodes the hit to obtain a canonical display name.
// The library has no context support, so cancellation abandons the in-flight lookup.
func (g *GoogleGeocoder) Resolve(ctx context.Context, place string) (weather.Location, error) {
	type outcome struct {
		loc weather.Location
		err error
	}

	done := make(chan outcome, 1)
	go func() {
		loc, err := g.resolve(place)
		done <- outcome{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return weather.Location{}, apperrors.NewTransportError("geocoding request failed", ctx.Err())
	case o := <-done:
		return o.loc, o.err
	}
}

func (g *GoogleGeocoder) resolve(place string) (weather.Location, error) {
	var hit geocoder.Location
	// The library only swaps spaces for '+', so the query is escaped here.
	err := guardLibraryCall(func() (err error) {
		hit, err = geocoder.Geocoding(geocoder.Address{City: url.QueryEscape(place)})
		return err
	})
	if err != nil {
		if common.HasAny(err.Error(), "No results found", "ZERO_RESULTS") {
			return weather.Location{}, apperrors.NewNotFoundError(ErrLocalityNotFound)
		}
		return weather.Location{}, apperrors.NewTransportError("geocoding request failed", err)
	}

	display := place
	var addresses []geocoder.Address
	err = guardLibraryCall(func() (err error) {
		addresses, err = geocoder.GeocodingReverse(hit)
		return err
	})
	if err != nil {
		log.Debug().Err(err).Str("city", place).Msg("google: reverse geocoding failed; using query as display name")
	} else if len(addresses) > 0 {
		display = common.FirstNonEmpty(addresses[0].FormattedAddress, addresses[0].FormatAddress(), place)
	}

	return weather.Location{
		Query:       place,
		DisplayName: display,
		Lat:         hit.Latitude,
		Lon:         hit.Longitude,
	}, nil
}

// guardLibraryCall turns a panic inside fn into an error. The library indexes
// its result slices without checking them on unexpected payloads.
func guardLibraryCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected geocoding response: %v", r)
		}
	}()
	return fn()
}
