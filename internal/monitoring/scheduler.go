package monitoring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/isdelr/student-records/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler creates snapshot backups on a cron schedule.
type Scheduler struct {
	backupSvc services.BackupServiceProvider
	schedule  cron.Schedule
	spec      string
	interval  time.Duration
	now       func() time.Time

	mu      sync.Mutex
	nextRun time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// NewScheduler creates a new scheduler for a standard 5-field cron expression.
func NewScheduler(spec string, backupSvc services.BackupServiceProvider) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}
	s := &Scheduler{
		backupSvc: backupSvc,
		schedule:  schedule,
		spec:      spec,
		interval:  time.Minute,
		now:       time.Now,
		done:      make(chan struct{}),
	}
	s.nextRun = schedule.Next(s.now())
	return s, nil
}

// NextRun returns when the next backup is due.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRun
}

// Run starts the scheduler's ticking loop.
func (s *Scheduler) Run() {
	log.Info().Str("schedule", s.spec).Time("next_run", s.NextRun()).Msg("Starting backup scheduler")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			log.Info().Msg("Stopping backup scheduler")
			return
		case <-ticker.C:
			s.checkAndRun(s.now())
		}
	}
}

// Stop halts the scheduler. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// checkAndRun creates a backup if one is due at now and reports whether it ran.
func (s *Scheduler) checkAndRun(now time.Time) bool {
	s.mu.Lock()
	due := !now.Before(s.nextRun)
	if due {
		s.nextRun = s.schedule.Next(now)
	}
	s.mu.Unlock()

	if !due {
		return false
	}

	name := "Scheduled Backup " + now.UTC().Format(time.RFC3339)
	backup, err := s.backupSvc.CreateBackup(context.Background(), name)
	if err != nil {
		log.Error().Err(err).Str("backup_name", name).Msg("Scheduled backup failed")
		return true
	}
	log.Info().Str("backup_id", backup.ID).Int64("size", backup.Size).Time("next_run", s.NextRun()).Msg("Scheduled backup created")
	return true
}
