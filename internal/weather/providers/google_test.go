package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-lookup/internal/apperrors"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// newGoogleTestServer points the geocoding library at handler and restores
// its package-level endpoint and key when the test ends.
func newGoogleTestServer(t *testing.T, handler http.HandlerFunc) *GoogleGeocoder {
	t.Helper()

	prevURL, prevKey := geocoder.ApiUrl, geocoder.ApiKey
	t.Cleanup(func() {
		geocoder.ApiUrl, geocoder.ApiKey = prevURL, prevKey
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewGoogleGeocoder("test-key", Options{BaseURL: srv.URL + "/json"})
}

func TestGoogleResolveUsesReverseGeocodedName(t *testing.T) {
	var mu sync.Mutex
	var gotAddress, gotKey, gotLatLng string

	g := newGoogleTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")

		mu.Lock()
		defer mu.Unlock()
		gotKey = q.Get("key")
		if latlng := q.Get("latlng"); latlng != "" {
			gotLatLng = latlng
			_, _ = w.Write([]byte(`{"status": "OK", "results": [{
				"formatted_address": "Madrid, España",
				"types": ["locality", "political"],
				"address_components": [
					{"long_name": "Madrid", "types": ["locality"]},
					{"long_name": "España", "types": ["country"]}
				]
			}]}`))
			return
		}
		gotAddress = q.Get("address")
		_, _ = w.Write([]byte(`{"status": "OK", "results": [
			{"geometry": {"location": {"lat": 40.4168, "lng": -3.7038}}, "types": ["locality"]}
		]}`))
	})

	loc, err := g.Resolve(context.Background(), "San Sebastián de los Reyes")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "San Sebastián de los Reyes", gotAddress)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "40.41680000,-3.70380000", gotLatLng)

	assert.Equal(t, "San Sebastián de los Reyes", loc.Query)
	assert.Equal(t, "Madrid, España", loc.DisplayName)
	assert.Equal(t, 40.4168, loc.Lat)
	assert.Equal(t, -3.7038, loc.Lon)
}

func TestGoogleResolveFallsBackToQueryName(t *testing.T) {
	tests := []struct {
		name    string
		reverse string
	}{
		{name: "reverse error", reverse: `{"status": "UNKNOWN_ERROR"}`},
		{name: "reverse result without types", reverse: `{"status": "OK", "results": [{"formatted_address": "x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGoogleTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("latlng") != "" {
					_, _ = w.Write([]byte(tt.reverse))
					return
				}
				_, _ = w.Write([]byte(`{"status": "OK", "results": [{"geometry": {"location": {"lat": 1.5, "lng": 2.5}}}]}`))
			})

			loc, err := g.Resolve(context.Background(), "Toledo")
			require.NoError(t, err)
			assert.Equal(t, "Toledo", loc.DisplayName)
			assert.Equal(t, 1.5, loc.Lat)
			assert.Equal(t, 2.5, loc.Lon)
		})
	}
}

func TestGoogleResolveZeroResultsIsNotFound(t *testing.T) {
	g := newGoogleTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	})

	_, err := g.Resolve(context.Background(), "Xyzzzabc")

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	assert.Equal(t, "Error: No se encontró la localidad.", weather.RenderError(err))
}

func TestGoogleResolveUnexpectedResponsesAreTransportErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty object", body: `{}`},
		{name: "unknown status", body: `{"status": "SOMETHING_NEW"}`},
		{name: "garbled body", body: `<html>oops`},
		{name: "over quota", body: `{"status": "OVER_QUERY_LIMIT"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGoogleTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			var err error
			require.NotPanics(t, func() {
				_, err = g.Resolve(context.Background(), "Madrid")
			})
			require.Error(t, err)
			assert.True(t, apperrors.IsKind(err, apperrors.KindTransport))
		})
	}
}

func TestGoogleResolveEscapesQuery(t *testing.T) {
	var mu sync.Mutex
	var gotAddress string
	var gotParams int

	g := newGoogleTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("address") != "" {
			mu.Lock()
			gotAddress = r.URL.Query().Get("address")
			gotParams = len(r.URL.Query())
			mu.Unlock()
		}
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS"}`))
	})

	_, err := g.Resolve(context.Background(), "Xyzzzabc & Co")
	require.Error(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "Xyzzzabc & Co", gotAddress)
	assert.Equal(t, 2, gotParams, "only address and key are sent")
}

func TestGoogleResolveHonoursCancellation(t *testing.T) {
	release := make(chan struct{})
	g := newGoogleTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS"}`))
	})
	// Registered after the server, so it runs before srv.Close waits on the handler.
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := g.Resolve(ctx, "Madrid")

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindTransport))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}
