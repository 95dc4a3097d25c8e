// Package scheduler runs background jobs such as warming the quote cache.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

type TaskFn func(ctx context.Context) error

type Scheduler struct {
	scheduler gocron.Scheduler
	log       zerolog.Logger
}

func New(log zerolog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Scheduler{
		scheduler: s,
		log:       log.With().Str("component", "scheduler").Logger(),
	}, nil
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
}

func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

// NewIntervalJob runs fn every interval. A run that overlaps the previous one is skipped.
func (s *Scheduler) NewIntervalJob(name string, fn TaskFn, interval time.Duration, startImmediately bool) error {
	opts := []gocron.JobOption{
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}
	if startImmediately {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	if _, err := s.scheduler.NewJob(gocron.DurationJob(interval), gocron.NewTask(s.withRecover(name, fn)), opts...); err != nil {
		return fmt.Errorf("create job %s: %w", name, err)
	}
	return nil
}

func (s *Scheduler) withRecover(name string, fn TaskFn) func(ctx context.Context) {
	return func(ctx context.Context) {
		log := s.log.With().Str("job", name).Logger()
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("stacktrace", string(debug.Stack())).Msg("job panicked")
			}
		}()

		start := time.Now()
		if err := fn(ctx); err != nil {
			log.Warn().Err(err).Dur("took", time.Since(start)).Msg("job failed")
			return
		}
		log.Debug().Dur("took", time.Since(start)).Msg("job completed")
	}
}
