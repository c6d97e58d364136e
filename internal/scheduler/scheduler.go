// Package scheduler runs periodic market scans on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/edge-finder/internal/scanner"
)

// scanTimeout bounds one scheduled scan across all sports.
const scanTimeout = 5 * time.Minute

// Scheduler manages the periodic refresh of the scan snapshot.
type Scheduler struct {
	cron      *cron.Cron
	scanner   *scanner.Service
	log       *logrus.Logger
	mu        sync.RWMutex
	isRunning bool
	jobIDs    []cron.EntryID
	onResults func([]*scanner.Result)
}

// NewScheduler creates a scheduler. onResults, when non-nil, receives each
// completed scan so callers can keep a current snapshot for serving.
func NewScheduler(scanSvc *scanner.Service, log *logrus.Logger, onResults func([]*scanner.Result)) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		scanner:   scanSvc,
		log:       log,
		jobIDs:    make([]cron.EntryID, 0),
		onResults: onResults,
	}
}

// ScheduleScan registers a recurring scan of the given sports.
func (s *Scheduler) ScheduleScan(cronExpression string, sports []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
		defer cancel()

		results, err := s.scanner.Scan(ctx, sports, nil)
		if err != nil {
			s.log.WithError(err).Error("Scheduled scan failed")
			return
		}
		if s.onResults != nil {
			s.onResults(results)
		}
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.log.WithFields(logrus.Fields{
		"cron":   cronExpression,
		"sports": sports,
	}).Info("Scheduled recurring scan")

	return nil
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.log.Info("Scheduler started")
	return nil
}

// Stop halts the scheduler and waits for any running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	s.log.Info("Scheduler stopped")
}

// IsRunning reports whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
