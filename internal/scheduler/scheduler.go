// Package scheduler runs the periodic content pre-generation sweep.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"spellinghive/internal/content"
	"spellinghive/internal/logger"
)

// Warmer pre-generates the content packs of one grade
type Warmer interface {
	Pregenerate(ctx context.Context, grade, maxLevel int) content.Report
}

// Scheduler manages the scheduled sweep
type Scheduler struct {
	scheduler *gocron.Scheduler
	warmer    Warmer
	grade     int
	maxLevel  int
	log       *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new scheduler sweeping grade up to maxLevel
func New(warmer Warmer, grade, maxLevel int, loc *time.Location, log *logger.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		warmer:    warmer,
		grade:     grade,
		maxLevel:  maxLevel,
		log:       log.With("service", "scheduler"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start schedules the sweep on a standard five-field cron expression. A
// sweep still running when the next one is due makes the next one wait.
func (s *Scheduler) Start(cronExpr string) error {
	job, err := s.scheduler.Cron(cronExpr).SingletonMode().Do(s.sweep)
	if err != nil {
		return fmt.Errorf("failed to schedule pre-generation: %w", err)
	}

	s.scheduler.StartAsync()
	s.log.Info("Pre-generation scheduled", "cron", cronExpr, "grade", s.grade,
		"max_level", s.maxLevel, "next_run", job.NextRun())
	return nil
}

// Stop cancels a running sweep and terminates the scheduler
func (s *Scheduler) Stop() {
	s.cancel()
	s.scheduler.Stop()
}

// RunNow performs one sweep synchronously
func (s *Scheduler) RunNow(ctx context.Context) content.Report {
	return s.warmer.Pregenerate(ctx, s.grade, s.maxLevel)
}

func (s *Scheduler) sweep() {
	started := time.Now()
	report := s.RunNow(s.ctx)
	if err := report.Err(); err != nil {
		s.log.Warn("Scheduled pre-generation finished with failures",
			"grade", report.Grade, "failed", len(report.Failed), "duration", time.Since(started), "error", err)
		return
	}
	s.log.Info("Scheduled pre-generation finished",
		"grade", report.Grade, "completed", len(report.Completed), "duration", time.Since(started))
}
