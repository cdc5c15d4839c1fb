package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/harborlight-org/harborlight-backend/pkg/logger"
	"github.com/harborlight-org/harborlight-backend/pkg/metrics"
)

const (
	defaultInterval = time.Hour
	runMarkerTTL    = 26 * time.Hour
	dayLayout       = "2006-01-02"
)

// runMarker records that a job already ran on a given UTC day, so restarts
// and overlapping workers do not double-fire daily jobs.
type runMarker interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	CronRunKey(job, day string) string
}

// ServiceParams configure the cron service.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Marker   runMarker
	Metrics  *metrics.CronJobMetrics
	Interval time.Duration
	Now      func() time.Time
}

// Service wakes up on a fixed cadence and fires each registered job once per
// UTC day at its scheduled hour.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	marker   runMarker
	metrics  *metrics.CronJobMetrics
	interval time.Duration
	now      func() time.Time
}

// NewService builds a cron service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	if params.Marker == nil {
		return nil, fmt.Errorf("run marker required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		logg:     params.Logger,
		registry: registry,
		lock:     params.Lock,
		marker:   params.Marker,
		metrics:  params.Metrics,
		interval: interval,
		now:      now,
	}, nil
}

// Run starts the cron loop until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.runCycle(ctx); err != nil {
		s.logg.Error(ctx, "scheduled run failed", err)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron service context canceled")
			return ctx.Err()
		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				s.logg.Error(ctx, "scheduled run failed", err)
			}
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("lock acquire: %w", err)
	}
	if !locked {
		s.logg.Info(ctx, "another cron instance is running; skipping this cycle")
		return nil
	}
	defer func() {
		if relErr := s.lock.Release(ctx); relErr != nil {
			s.logg.Error(ctx, "failed to release cron lock", relErr)
		}
	}()

	now := s.now().UTC()
	for _, entry := range s.registry.Entries() {
		if entry.HourUTC != now.Hour() {
			continue
		}
		due, markErr := s.markDue(ctx, entry.Job.Name(), now)
		if markErr != nil {
			s.logg.Error(ctx, "failed to check job run marker", markErr)
			continue
		}
		if !due {
			continue
		}
		s.runJob(ctx, entry.Job)
	}
	return nil
}

func (s *Service) markDue(ctx context.Context, job string, now time.Time) (bool, error) {
	key := s.marker.CronRunKey(job, now.Format(dayLayout))
	return s.marker.SetNX(ctx, key, "1", runMarkerTTL)
}

func (s *Service) runJob(ctx context.Context, job Job) {
	jobCtx := s.logg.WithField(ctx, "job", job.Name())
	jobCtx = s.logg.WithField(jobCtx, "event", "cron.job")
	s.logg.Info(jobCtx, "job start")
	start := time.Now()
	err := job.Run(jobCtx)
	duration := time.Since(start)
	s.observeDuration(job.Name(), duration)
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		s.logg.Error(jobCtx, "job failed", err)
		s.recordFailure(job.Name())
		return
	}
	s.logg.Info(jobCtx, "job completed")
	s.recordSuccess(job.Name())
}

func (s *Service) observeDuration(job string, duration time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveDuration(job, duration)
}

func (s *Service) recordSuccess(job string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncSuccess(job)
}

func (s *Service) recordFailure(job string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncFailure(job)
}
