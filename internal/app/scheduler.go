package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sm2x/neos-backups/internal/domain"
)

// Scheduler manages periodic backup creation in serve mode.
type Scheduler struct {
	orchestrator    *Orchestrator
	interval        time.Duration
	backupOnStartup bool
	logger          *slog.Logger

	mu        sync.Mutex
	running   bool
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithInterval sets the backup interval.
func WithInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.interval = d
	}
}

// WithBackupOnStartup sets whether to create a backup immediately on start.
func WithBackupOnStartup(b bool) SchedulerOption {
	return func(s *Scheduler) {
		s.backupOnStartup = b
	}
}

// WithSchedulerLogger sets the logger.
func WithSchedulerLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = l
	}
}

// NewScheduler creates a new Scheduler.
func NewScheduler(orchestrator *Orchestrator, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		orchestrator:    orchestrator,
		interval:        24 * time.Hour,
		backupOnStartup: false,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start begins the scheduler loop. It runs until Stop is called or the
// context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.stoppedCh = make(chan struct{})
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		close(s.stoppedCh)
		s.mu.Unlock()
	}()

	s.logger.Info("scheduler started",
		"interval", s.interval,
		"backup_on_startup", s.backupOnStartup,
	)

	if s.backupOnStartup {
		s.logger.Debug("creating backup on startup")
		if _, err := s.orchestrator.Create(ctx); err != nil {
			s.logger.Error("startup backup failed", "error", err)
		}
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping due to context cancellation")
			s.pushShutdownMetrics()
			return ctx.Err()

		case <-s.stopCh:
			s.logger.Info("scheduler stopping due to stop signal")
			s.pushShutdownMetrics()
			return nil

		case <-ticker.C:
			s.logger.Debug("interval triggered, creating backup")
			if _, err := s.orchestrator.Create(ctx); err != nil {
				s.logger.Error("scheduled backup failed", "error", err)
			}
		}
	}
}

// Stop signals the scheduler to stop and waits until it has.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	stoppedCh := s.stoppedCh
	s.mu.Unlock()

	<-stoppedCh
}

// IsRunning returns true if the scheduler is currently running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// pushShutdownMetrics reports the service as down before the process exits.
func (s *Scheduler) pushShutdownMetrics() {
	if s.orchestrator.metricsPusher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	metrics := domain.NewMetrics(s.orchestrator.hostname)
	metrics.ServiceUp = false
	if n, err := s.orchestrator.index.Count(); err == nil {
		metrics.IndexEntries = n
	}
	if err := s.orchestrator.metricsPusher.Push(ctx, metrics); err != nil {
		s.logger.Warn("failed to push shutdown metrics", "error", err)
	}
}
