package weather

import (
	"context"
	"time"
)

// Geocoder resolves a free-text place name to a Location.
// Implementations return a NOT_FOUND AppError when nothing matches.
type Geocoder interface {
	Resolve(ctx context.Context, place string) (Location, error)
}

// Provider abstracts a weather data source (e.g. Open-Meteo).
type Provider interface {
	Name() string
	CurrentWeather(ctx context.Context, lat, lon float64) (CurrentConditions, error)
	DailyForecast(ctx context.Context, lat, lon float64, days int) ([]DailyForecast, error)
}

// SearchRecorder persists a completed query on behalf of the caller.
type SearchRecorder interface {
	SaveSearch(ctx context.Context, rec SearchRecord) error
}

// SearchLog is the contract every search log store (sqlite, postgres, memory) must satisfy.
type SearchLog interface {
	Append(ctx context.Context, event SearchEvent) (int64, error)
	ListByIP(ctx context.Context, ip string) ([]SearchEvent, error)
	Purge(ctx context.Context, before time.Time) (int64, error)
}
