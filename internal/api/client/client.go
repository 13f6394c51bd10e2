package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/i474232898/weather-lookup/internal/apperrors"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// Client talks to the search log endpoints of the weather-lookup server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the server at baseURL (e.g. http://localhost:3000).
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

type saveResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Save posts rec to /api/search and returns the id assigned by the server.
func (c *Client) Save(ctx context.Context, rec weather.SearchRecord) (int64, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("encode search: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/search", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out saveResponse
	if err := c.do(req, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// SaveSearch implements weather.SearchRecorder.
func (c *Client) SaveSearch(ctx context.Context, rec weather.SearchRecord) error {
	_, err := c.Save(ctx, rec)
	return err
}

// History fetches the caller's search events, newest first.
func (c *Client) History(ctx context.Context) ([]weather.SearchEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/history", nil)
	if err != nil {
		return nil, err
	}

	events := []weather.SearchEvent{}
	if err := c.do(req, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.NewTransportError("search log request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewTransportError("search log request failed", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e errorResponse
		if jsonErr := json.Unmarshal(data, &e); jsonErr != nil || e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return apperrors.NewStoreError(e.Error, fmt.Errorf("status %d", resp.StatusCode))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.NewTransportError("decode search log response", err)
	}
	return nil
}
