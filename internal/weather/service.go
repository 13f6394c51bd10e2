package weather

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/i474232898/weather-lookup/internal/apperrors"
)

// ErrEmptyLocality is reported when the user submits a blank place name.
const ErrEmptyLocality = "Por favor, introduce una localidad válida."

// Service orchestrates a user query: validate, geocode, fetch, render and persist.
type Service struct {
	geocoder Geocoder
	provider Provider
	recorder SearchRecorder
	mapURL   string
	inflight sync.WaitGroup
}

// NewService creates a new Service. recorder may be nil, in which case nothing is persisted.
func NewService(geocoder Geocoder, provider Provider, recorder SearchRecorder, mapURL string) *Service {
	return &Service{
		geocoder: geocoder,
		provider: provider,
		recorder: recorder,
		mapURL:   mapURL,
	}
}

// Run executes one action of the given type for the raw user input.
// On success the rendered markup is returned immediately and the search is
// persisted in the background; persistence failures are only logged.
func (s *Service) Run(ctx context.Context, action SearchType, input string) (Result, error) {
	city := strings.TrimSpace(input)
	if city == "" {
		return Result{}, apperrors.NewValidationError(ErrEmptyLocality)
	}
	if !action.Valid() {
		return Result{}, apperrors.NewValidationError(fmt.Sprintf("unknown search type %q", action))
	}

	loc, err := s.geocoder.Resolve(ctx, city)
	if err != nil {
		log.Debug().Err(err).Str("city", city).Msg("geocoding failed")
		return Result{}, err
	}

	var body string
	switch action {
	case SearchCurrent:
		cw, err := s.provider.CurrentWeather(ctx, loc.Lat, loc.Lon)
		if err != nil {
			return Result{}, err
		}
		body = RenderCurrent(loc, cw)
	case SearchForecast:
		days, err := s.provider.DailyForecast(ctx, loc.Lat, loc.Lon, ForecastDays)
		if err != nil {
			return Result{}, err
		}
		body = RenderForecast(loc, days)
	case SearchMap:
		body = BuildMapView(s.mapURL, loc)
	}

	res := Result{
		SearchType: action,
		City:       city,
		Location:   loc,
		HTML:       body,
	}

	s.persist(ctx, SearchRecord{SearchType: action, City: city, Result: body})
	return res, nil
}

// CurrentWeather runs a current weather query.
func (s *Service) CurrentWeather(ctx context.Context, input string) (Result, error) {
	return s.Run(ctx, SearchCurrent, input)
}

// Forecast runs a 15-day forecast query.
func (s *Service) Forecast(ctx context.Context, input string) (Result, error) {
	return s.Run(ctx, SearchForecast, input)
}

// Map runs a map query.
func (s *Service) Map(ctx context.Context, input string) (Result, error) {
	return s.Run(ctx, SearchMap, input)
}

// Wait blocks until every background persistence task has finished.
func (s *Service) Wait() {
	s.inflight.Wait()
}

// persist submits rec on a detached goroutine that outlives ctx cancellation.
func (s *Service) persist(ctx context.Context, rec SearchRecord) {
	if s.recorder == nil {
		return
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		if err := s.recorder.SaveSearch(context.WithoutCancel(ctx), rec); err != nil {
			log.Warn().
				Err(err).
				Str("city", rec.City).
				Str("search_type", string(rec.SearchType)).
				Msg("failed to save search")
			return
		}
		log.Debug().Str("city", rec.City).Str("search_type", string(rec.SearchType)).Msg("search saved")
	}()
}
