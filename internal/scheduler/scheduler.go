// Package scheduler runs the periodic background jobs of the daemon.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/backend"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/config"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/logger/adapter/cronlog"
)

// JobBackendHealth is the name of the backend probe job.
const JobBackendHealth = "backend-health"

// Scheduler wraps a cron instance with named jobs.
type Scheduler struct {
	cron *cron.Cron
	mu   sync.Mutex
	jobs map[string]cron.EntryID
}

// New creates a scheduler logging through zerolog. Jobs are not started yet.
func New() *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronlog.New()),
			cron.WithChain(cron.SkipIfStillRunning(cronlog.New())),
		),
		jobs: make(map[string]cron.EntryID),
	}
}

// Every adds job under name, running each interval. A job with the same name is replaced.
func (s *Scheduler) Every(name string, interval time.Duration, job func()) error {
	if interval <= 0 {
		return fmt.Errorf("invalid interval %s for job %s", interval, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.jobs[name]; ok {
		s.cron.Remove(id)
	}

	s.jobs[name] = s.cron.Schedule(cron.Every(interval), cron.FuncJob(recoveryWrapper(name, job)))

	log.Info().Str("job", name).Dur("interval", interval).Msg("job scheduled")

	return nil
}

// Jobs returns the names of the scheduled jobs.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}

	return names
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// AddBackendHealth probes backend.Engine every HealthCheckInterval.
func (s *Scheduler) AddBackendHealth(cfg *config.Config) error {
	timeout := cfg.Backend.Timeout
	if timeout <= 0 || timeout > cfg.Scheduler.HealthCheckInterval {
		timeout = cfg.Scheduler.HealthCheckInterval
	}

	return s.Every(JobBackendHealth, cfg.Scheduler.HealthCheckInterval, func() {
		ProbeBackend(timeout)
	})
}

// ProbeBackend runs one Engine.Test, Engine logs the transitions.
func ProbeBackend(timeout time.Duration) {
	if backend.Engine.Client() == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := backend.Engine.Test(ctx); err != nil {
		log.Debug().Err(err).Msg("backend health probe failed")
	}
}

func recoveryWrapper(name string, job func()) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Str("job", name).Interface("panic", r).Bytes("stack", debug.Stack()).
					Msg("scheduled job panicked")
			}
		}()

		job()
	}
}
