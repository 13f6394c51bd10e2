package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// runSearchLogContract exercises behaviour every weather.SearchLog must share.
func runSearchLogContract(t *testing.T, newLog func(t *testing.T) weather.SearchLog) {
	ctx := context.Background()

	t.Run("empty history is an empty slice", func(t *testing.T) {
		s := newLog(t)

		events, err := s.ListByIP(ctx, "192.0.2.1")
		require.NoError(t, err)
		assert.NotNil(t, events)
		assert.Empty(t, events)
	})

	t.Run("append then list returns the new event first", func(t *testing.T) {
		s := newLog(t)

		firstID, err := s.Append(ctx, weather.SearchEvent{IP: "192.0.2.1", City: "Madrid", SearchType: weather.SearchCurrent, Result: "<h3>a</h3>"})
		require.NoError(t, err)
		secondID, err := s.Append(ctx, weather.SearchEvent{IP: "192.0.2.1", City: "Sevilla", SearchType: weather.SearchMap, Result: "<h3>b</h3>"})
		require.NoError(t, err)
		assert.Greater(t, secondID, firstID)

		events, err := s.ListByIP(ctx, "192.0.2.1")
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, secondID, events[0].ID)
		assert.Equal(t, "Sevilla", events[0].City)
		assert.Equal(t, weather.SearchMap, events[0].SearchType)
		assert.Equal(t, "<h3>b</h3>", events[0].Result)
		assert.False(t, events[0].Timestamp.IsZero())
		assert.Equal(t, firstID, events[1].ID)
	})

	t.Run("list only returns the requested ip", func(t *testing.T) {
		s := newLog(t)

		for _, ip := range []string{"192.0.2.1", "198.51.100.7", "192.0.2.10", "192.0.2.1"} {
			_, err := s.Append(ctx, weather.SearchEvent{IP: ip, City: "Bilbao", SearchType: weather.SearchForecast, Result: "x"})
			require.NoError(t, err)
		}

		events, err := s.ListByIP(ctx, "192.0.2.1")
		require.NoError(t, err)
		require.Len(t, events, 2)
		for _, e := range events {
			assert.Equal(t, "192.0.2.1", e.IP)
		}
	})

	t.Run("listing is idempotent", func(t *testing.T) {
		s := newLog(t)

		_, err := s.Append(ctx, weather.SearchEvent{IP: "192.0.2.1", City: "Madrid", SearchType: weather.SearchCurrent, Result: "x"})
		require.NoError(t, err)

		first, err := s.ListByIP(ctx, "192.0.2.1")
		require.NoError(t, err)
		second, err := s.ListByIP(ctx, "192.0.2.1")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("purge removes only older events", func(t *testing.T) {
		s := newLog(t)

		_, err := s.Append(ctx, weather.SearchEvent{IP: "192.0.2.1", City: "Madrid", SearchType: weather.SearchCurrent, Result: "x"})
		require.NoError(t, err)

		removed, err := s.Purge(ctx, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.Zero(t, removed)

		removed, err = s.Purge(ctx, time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.EqualValues(t, 1, removed)

		events, err := s.ListByIP(ctx, "192.0.2.1")
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}
