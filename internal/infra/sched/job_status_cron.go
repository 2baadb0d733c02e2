package sched

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	red "agent-promosi/internal/infra/redis"
)

const statusRefreshLockKey = "lock:jobs:status_refresh"

// StatusRefresher is satisfied by usecase.JobUseCase.
type StatusRefresher interface {
	RefreshStatuses(ctx context.Context) (int64, error)
}

// JobStatusCron recomputes listing badges on a cron spec such as "@every 1h".
// When a locker is given, only one replica refreshes per tick.
type JobStatusCron struct {
	cron    *cron.Cron
	spec    string
	jobs    StatusRefresher
	locker  red.Locker
	lockTTL time.Duration
	log     *zerolog.Logger
}

func NewJobStatusCron(spec string, jobs StatusRefresher, locker red.Locker, logger *zerolog.Logger) *JobStatusCron {
	cLog := logger.With().Str("component", "JobStatusCron").Logger()
	return &JobStatusCron{
		cron:    cron.New(cron.WithLogger(cronLogger{&cLog}), cron.WithChain(cron.SkipIfStillRunning(cronLogger{&cLog}))),
		spec:    spec,
		jobs:    jobs,
		locker:  locker,
		lockTTL: 5 * time.Minute,
		log:     &cLog,
	}
}

// Start registers the job, starts the scheduler and runs one refresh right away.
func (s *JobStatusCron) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.cron.Start()
	s.log.Info().Str("spec", s.spec).Msg("cron started")

	go s.RunOnce(ctx)
	return nil
}

// Stop waits for a running refresh to finish.
func (s *JobStatusCron) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("cron stopped")
}

// RunOnce performs one refresh and returns the number of listings changed.
func (s *JobStatusCron) RunOnce(ctx context.Context) int64 {
	if ctx.Err() != nil {
		return 0
	}
	if s.locker != nil {
		token, err := s.locker.TryLock(ctx, statusRefreshLockKey, s.lockTTL)
		if err != nil {
			if !errors.Is(err, red.ErrLockHeld) {
				s.log.Warn().Err(err).Msg("status refresh lock unavailable")
			}
			return 0
		}
		defer func() {
			if err := s.locker.Unlock(context.Background(), statusRefreshLockKey, token); err != nil {
				s.log.Warn().Err(err).Msg("status refresh unlock failed")
			}
		}()
	}

	n, err := s.jobs.RefreshStatuses(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("status refresh failed")
		return 0
	}
	if n > 0 {
		s.log.Info().Int64("changed", n).Msg("job statuses refreshed")
	}
	return n
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct{ l *zerolog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
