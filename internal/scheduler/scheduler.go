// Package scheduler runs periodic background jobs such as cache refreshes.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/keepmind9/pokerbot/internal/logger"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is one unit of periodic work
type Job func(ctx context.Context) error

type entry struct {
	name     string
	interval time.Duration
	run      func()
}

// Scheduler wraps a cron instance. Jobs registered with Every run once when
// the scheduler starts and then on their interval. A run that is still going
// when the next tick fires causes that tick to be skipped.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	entries []entry
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	initial sync.WaitGroup
}

// New creates an idle scheduler
func New() *Scheduler {
	cronLogger := cron.PrintfLogger(logger.GetLogger())
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger))),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Every registers job to run every interval
func (s *Scheduler) Every(name string, interval time.Duration, job Job) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive, got %s", name, interval)
	}

	run := func() {
		start := time.Now()
		err := job(s.ctx)
		fields := logrus.Fields{
			"job":      name,
			"duration": time.Since(start).String(),
		}
		if err != nil {
			fields["error"] = err
			logger.WithFields(fields).Warn("scheduled-job-failed")
			return
		}
		logger.WithFields(fields).Debug("scheduled-job-finished")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), run); err != nil {
		return fmt.Errorf("job %s: failed to schedule: %w", name, err)
	}
	s.entries = append(s.entries, entry{name: name, interval: interval, run: run})

	logger.WithFields(logrus.Fields{
		"job":      name,
		"interval": interval.String(),
	}).Info("scheduled-job-registered")
	return nil
}

// Len returns the number of registered jobs
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Start runs every job once in the background and starts the cron clock
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	for _, e := range s.entries {
		s.initial.Add(1)
		go func(run func()) {
			defer s.initial.Done()
			run()
		}(e.run)
	}
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.initial.Wait()
	logger.Info("scheduler-stopped")
}
