package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// Scheduler periodically purges search events older than the configured retention.
type Scheduler struct {
	scheduler *gocron.Scheduler
	searches  weather.SearchLog
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
}

// New creates a new Scheduler. A non-positive retention disables purging.
func New(searches weather.SearchLog, retention, interval time.Duration) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		searches:  searches,
		retention: retention,
		interval:  interval,
		now:       time.Now,
	}
}

// Start schedules the purge job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.retention <= 0 {
		log.Info().Msg("scheduler: history retention disabled; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = time.Hour
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := s.RunOnce(ctx); err != nil {
			log.Error().Err(err).Msg("scheduler: purge failed")
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce purges events older than the retention window and reports how many were removed.
func (s *Scheduler) RunOnce(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	removed, err := s.searches.Purge(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	log.Info().Int64("removed", removed).Time("cutoff", cutoff).Msg("scheduler: purged old searches")
	return removed, nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
