package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-lookup/internal/apperrors"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
)

func newTestApp(searches weather.SearchLog) *fiber.App {
	app := fiber.New(NewAppConfig(fiber.HeaderXForwardedFor))
	RegisterRoutes(app, searches)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, ip, body string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(fiber.HeaderXForwardedFor, ip)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestSaveSearchThenHistory(t *testing.T) {
	mem := store.NewMemoryStore()
	_, err := mem.Append(context.Background(), weather.SearchEvent{IP: "198.51.100.7", City: "Lisboa", SearchType: weather.SearchMap, Result: "x"})
	require.NoError(t, err)
	app := newTestApp(mem)

	status, body := doRequest(t, app, http.MethodPost, "/api/search", "192.0.2.1",
		`{"search_type": "Tiempo Actual", "city": "Madrid", "result": "<h3>Tiempo Actual en Madrid, Spain</h3>"}`)
	require.Equal(t, http.StatusOK, status, string(body))

	var saved struct {
		Message string `json:"message"`
		ID      int64  `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &saved))
	assert.Equal(t, SavedMessage, saved.Message)
	assert.NotZero(t, saved.ID)

	status, body = doRequest(t, app, http.MethodGet, "/api/history", "192.0.2.1", "")
	require.Equal(t, http.StatusOK, status)

	var events []map[string]any
	require.NoError(t, json.Unmarshal(body, &events))
	require.Len(t, events, 1)
	assert.EqualValues(t, saved.ID, events[0]["id"])
	assert.Equal(t, "192.0.2.1", events[0]["ip"])
	assert.Equal(t, "Madrid", events[0]["city"])
	assert.Equal(t, "Tiempo Actual", events[0]["search_type"])
	assert.Equal(t, "<h3>Tiempo Actual en Madrid, Spain</h3>", events[0]["result"])
	assert.Contains(t, events[0], "timestamp")
}

func TestHistoryEmptyIsJSONArray(t *testing.T) {
	app := newTestApp(store.NewMemoryStore())

	status, body := doRequest(t, app, http.MethodGet, "/api/history", "203.0.113.5", "")

	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))
}

func TestHistoryKeyedOnFirstForwardedAddress(t *testing.T) {
	mem := store.NewMemoryStore()
	app := newTestApp(mem)

	status, body := doRequest(t, app, http.MethodPost, "/api/search", "203.0.113.5, 10.0.0.1",
		`{"search_type": "Mapa", "city": "Sevilla", "result": "<iframe></iframe>"}`)
	require.Equal(t, http.StatusOK, status, string(body))

	events, err := mem.ListByIP(context.Background(), "203.0.113.5")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "203.0.113.5", events[0].IP)

	status, body = doRequest(t, app, http.MethodGet, "/api/history", "203.0.113.5", "")
	require.Equal(t, http.StatusOK, status)

	var listed []weather.SearchEvent
	require.NoError(t, json.Unmarshal(body, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Sevilla", listed[0].City)
}

func TestRegisterStaticServesLandingPage(t *testing.T) {
	app := newTestApp(store.NewMemoryStore())
	require.True(t, RegisterStatic(app, "../../../public"))

	status, body := doRequest(t, app, http.MethodGet, "/", "192.0.2.1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "weather-cli history")
	assert.Contains(t, string(body), `href="/api/history"`)

	assert.False(t, RegisterStatic(newTestApp(store.NewMemoryStore()), t.TempDir()+"/missing"))
}

func TestSaveSearchValidation(t *testing.T) {
	app := newTestApp(store.NewMemoryStore())

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"city":`},
		{name: "missing city", body: `{"search_type": "Mapa", "result": "x"}`},
		{name: "missing result", body: `{"search_type": "Mapa", "city": "Madrid"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doRequest(t, app, http.MethodPost, "/api/search", "192.0.2.1", tt.body)

			assert.Equal(t, http.StatusBadRequest, status)
			var payload map[string]string
			require.NoError(t, json.Unmarshal(body, &payload))
			assert.NotEmpty(t, payload["error"])
		})
	}
}

type failingLog struct{}

func (failingLog) Append(context.Context, weather.SearchEvent) (int64, error) {
	return 0, apperrors.NewStoreError("failed to insert search", errors.New("database is locked"))
}

func (failingLog) ListByIP(context.Context, string) ([]weather.SearchEvent, error) {
	return nil, apperrors.NewStoreError("failed to list searches", errors.New("database is locked"))
}

func (failingLog) Purge(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func TestStoreFailuresReturn500(t *testing.T) {
	app := newTestApp(failingLog{})

	status, body := doRequest(t, app, http.MethodPost, "/api/search", "192.0.2.1",
		`{"search_type": "Mapa", "city": "Madrid", "result": "x"}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.JSONEq(t, `{"error": "failed to insert search: database is locked"}`, string(body))

	status, body = doRequest(t, app, http.MethodGet, "/api/history", "192.0.2.1", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.JSONEq(t, `{"error": "failed to list searches: database is locked"}`, string(body))

	// The app keeps serving after failures.
	status, _ = doRequest(t, app, http.MethodGet, "/api/history", "192.0.2.1", "")
	assert.Equal(t, http.StatusInternalServerError, status)
}
