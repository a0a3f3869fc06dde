package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobExecutor runs one tick
type JobExecutor interface {
	Execute(ctx context.Context, kind string, aggregateID uuid.UUID) error
}

// ExecutorFunc adapts a function to JobExecutor
type ExecutorFunc func(ctx context.Context, kind string, aggregateID uuid.UUID) error

// Execute calls f
func (f ExecutorFunc) Execute(ctx context.Context, kind string, aggregateID uuid.UUID) error {
	return f(ctx, kind, aggregateID)
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	Workers       int
	QueueSize     int
	JobTimeout    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Workers:       4,
		QueueSize:     1024,
		JobTimeout:    time.Minute,
		RetryAttempts: 2,
		RetryDelay:    5 * time.Second,
	}
}

// Validate checks the configuration
func (c SchedulerConfig) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue size must be positive", ErrInvalidConfig)
	}
	if c.JobTimeout <= 0 {
		return fmt.Errorf("%w: job timeout must be positive", ErrInvalidConfig)
	}
	if c.RetryAttempts < 0 || c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry settings cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// Stats is a snapshot of scheduler counters
type Stats struct {
	Submitted int64
	Completed int64
	Failed    int64
	Retried   int64
	Pending   int
}

// Scheduler executes engine ticks on a fixed pool of workers.
// A kind/aggregate pair is queued at most once at a time, so a slow aggregate
// cannot pile up duplicate ticks behind itself.
type Scheduler struct {
	config   SchedulerConfig
	executor JobExecutor
	logger   *zap.Logger

	jobs      chan *Job
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	inflight  map[string]struct{}
	retries   sync.WaitGroup

	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	retried   atomic.Int64
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config SchedulerConfig, executor JobExecutor, logger *zap.Logger) (*Scheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		config:   config,
		executor: executor,
		logger:   logger,
		jobs:     make(chan *Job, config.QueueSize),
		inflight: make(map[string]struct{}),
	}, nil
}

// Start starts the worker pool
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Engine scheduler started",
		zap.Int("workers", s.config.Workers),
		zap.Int("queue_size", s.config.QueueSize),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels running jobs and waits for the workers to exit
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		s.retries.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Engine scheduler stopped gracefully",
			zap.Int64("completed", s.completed.Load()),
			zap.Int64("failed", s.failed.Load()),
		)
		return nil
	case <-ctx.Done():
		s.logger.Warn("Engine scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the scheduler accepts jobs
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Submit queues a tick of kind against aggregateID
func (s *Scheduler) Submit(kind string, aggregateID uuid.UUID) error {
	job := NewJob(kind, aggregateID, s.config.RetryAttempts)
	if err := s.SubmitJob(job); err != nil {
		return err
	}
	s.logger.Debug("Job submitted",
		zap.String("job_id", job.ID.String()),
		zap.String("job_kind", kind),
		zap.String("aggregate_id", job.aggregate()),
	)
	return nil
}

// SubmitJob queues a prepared job
func (s *Scheduler) SubmitJob(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return ErrSchedulerNotRunning
	}
	key := job.key()
	if _, busy := s.inflight[key]; busy {
		return ErrJobAlreadyQueued
	}

	select {
	case s.jobs <- job:
		s.inflight[key] = struct{}{}
		s.submitted.Add(1)
		return nil
	default:
		return ErrJobQueueFull
	}
}

// Stats returns the current counters
func (s *Scheduler) Stats() Stats {
	return Stats{
		Submitted: s.submitted.Load(),
		Completed: s.completed.Load(),
		Failed:    s.failed.Load(),
		Retried:   s.retried.Load(),
		Pending:   len(s.jobs),
	}
}

func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			s.processJob(ctx, job, workerID)
		}
	}
}

func (s *Scheduler) processJob(ctx context.Context, job *Job, workerID int) {
	job.Start()

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()
	jobCtx, log := logger.WithJob(jobCtx, s.logger, job.ID.String(), job.Kind, job.aggregate())
	log = log.With(zap.Int("worker_id", workerID))

	err := s.execute(jobCtx, job)
	if err == nil {
		job.Complete()
		s.completed.Add(1)
		s.release(job)
		log.Debug("Job completed", zap.Duration("elapsed", job.CompletedAt.Sub(*job.StartedAt)))
		return
	}

	job.Fail(err.Error())
	s.failed.Add(1)
	log.Error("Job failed",
		zap.Int("retry_count", job.RetryCount),
		zap.Error(err),
	)

	if !job.ShouldRetry() || ctx.Err() != nil {
		s.release(job)
		return
	}
	job.PrepareRetry()
	s.retried.Add(1)
	s.scheduleRetry(ctx, job)
}

// execute shields the worker from a panicking tick
func (s *Scheduler) execute(ctx context.Context, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return s.executor.Execute(ctx, job.Kind, job.AggregateID)
}

// scheduleRetry re-queues the job after RetryDelay. The job keeps its in-flight slot meanwhile.
func (s *Scheduler) scheduleRetry(ctx context.Context, job *Job) {
	s.retries.Add(1)
	go func() {
		defer s.retries.Done()

		timer := time.NewTimer(s.config.RetryDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			s.release(job)
			return
		case <-timer.C:
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.isRunning {
			delete(s.inflight, job.key())
			return
		}
		select {
		case s.jobs <- job:
		default:
			delete(s.inflight, job.key())
			s.logger.Warn("Failed to re-queue job for retry",
				zap.String("job_id", job.ID.String()),
				zap.String("job_kind", job.Kind),
			)
		}
	}()
}

func (s *Scheduler) release(job *Job) {
	s.mu.Lock()
	delete(s.inflight, job.key())
	s.mu.Unlock()
}
