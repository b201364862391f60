// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron"
	"go.uber.org/zap"
)

// DefaultArchiveSpec runs the archive job once a day at midnight.
const DefaultArchiveSpec = "@daily"

const jobTimeout = 5 * time.Minute

// Archiver archives programs that ended before now.
type Archiver interface {
	ArchiveExpired(ctx context.Context, now time.Time) (int, error)
}

type Scheduler struct {
	cron     *cron.Cron
	archiver Archiver
	log      *zap.Logger
	now      func() time.Time
}

func New(archiver Archiver, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		archiver: archiver,
		log:      log,
		now:      time.Now,
	}
}

// Start registers the archive job and starts the cron loop in the background.
func (s *Scheduler) Start(archiveSpec string) error {
	if archiveSpec == "" {
		archiveSpec = DefaultArchiveSpec
	}
	if err := s.cron.AddFunc(archiveSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		s.RunArchive(ctx)
	}); err != nil {
		return fmt.Errorf("invalid archive schedule %q: %w", archiveSpec, err)
	}
	s.cron.Start()
	s.log.Info("scheduler started", zap.String("archive_spec", archiveSpec))
	return nil
}

// Stop halts the cron loop. A job already running is not interrupted.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info("scheduler stopped")
}

// RunArchive archives expired programs once and returns how many were changed.
func (s *Scheduler) RunArchive(ctx context.Context) int {
	start := s.now()
	n, err := s.archiver.ArchiveExpired(ctx, start)
	if err != nil {
		s.log.Error("archive job failed", zap.Int("archived", n), zap.Error(err))
		return n
	}
	s.log.Info("archive job finished",
		zap.Int("archived", n),
		zap.Duration("took", s.now().Sub(start)))
	return n
}
