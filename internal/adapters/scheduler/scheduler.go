package scheduler_adapter

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	logger_adapter "findar-backend/internal/adapters/logger"
	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// JobFunc is one run of a periodic job.
type JobFunc func(ctx context.Context, now time.Time) error

type job struct {
	name string
	spec string
	run  JobFunc
	// running is held for the whole run; a second run never waits for it.
	running sync.Mutex
}

// Scheduler runs named jobs on cron schedules and on demand.
// A job never overlaps with itself: a tick or trigger that finds it busy is skipped.
type Scheduler struct {
	cron   *cron.Cron
	jobs   map[string]*job
	logger port.LoggerPort
	now    func() time.Time

	mu      sync.Mutex
	baseCtx context.Context
	cancel  context.CancelFunc
}

func NewScheduler(logger port.LoggerPort) *Scheduler {
	schedLogger := logger.WithFields(port.Fields{"component": "scheduler"})
	bridge := logger_adapter.NewPkgLoggerBridge(schedLogger)

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(bridge),
			cron.WithChain(cron.Recover(bridge)),
		),
		jobs:    make(map[string]*job),
		logger:  schedLogger,
		now:     time.Now,
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// Register adds a job. An empty spec registers it for manual runs only.
func (s *Scheduler) Register(name, spec string, run JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q is already registered", name)
	}
	j := &job{name: name, spec: spec, run: run}

	if spec != "" {
		if _, err := s.cron.AddFunc(spec, func() { s.scheduledRun(j) }); err != nil {
			return fmt.Errorf("invalid cron spec %q for job %q: %w", spec, name, err)
		}
	}
	s.jobs[name] = j
	return nil
}

// Jobs returns the registered job names in order.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scheduler) Start() {
	s.logger.Info("Scheduler started", port.Fields{"jobs": s.Jobs()})
	s.cron.Start()
}

// Stop prevents new runs, cancels running ones and waits for them to return.
func (s *Scheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop()
	s.cancel()

	select {
	case <-stopped.Done():
		s.logger.Info("Scheduler stopped", nil)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler did not stop in time: %w", ctx.Err())
	}
}

// RunNow runs the job synchronously on ctx.
// It returns domain.ErrJobNotFound or domain.ErrJobBusy without running anything.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrJobNotFound, name)
	}

	if !j.running.TryLock() {
		return fmt.Errorf("%w: %s", domain.ErrJobBusy, name)
	}
	defer j.running.Unlock()

	return s.execute(ctx, j, "manual")
}

func (s *Scheduler) scheduledRun(j *job) {
	if !j.running.TryLock() {
		s.logger.Warn("Previous run still busy, skipping tick", port.Fields{"job": j.name})
		return
	}
	defer j.running.Unlock()

	// the error is already logged by execute
	_ = s.execute(s.baseCtx, j, "schedule")
}

func (s *Scheduler) execute(ctx context.Context, j *job, trigger string) (err error) {
	traceID := uuid.New().String()
	jobLogger := s.logger.WithFields(port.Fields{
		"job":      j.name,
		"trigger":  trigger,
		"trace_id": traceID,
	})
	ctx = contextkeys.ContextWithLogger(ctx, jobLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", j.name, r)
			jobLogger.Error("Job panicked", err, nil)
		}
	}()

	started := s.now()
	jobLogger.Info("Job started", nil)
	if err := j.run(ctx, started.UTC()); err != nil {
		jobLogger.Error("Job failed", err, port.Fields{"duration": s.now().Sub(started).String()})
		return err
	}
	jobLogger.Info("Job finished", port.Fields{"duration": s.now().Sub(started).String()})
	return nil
}
