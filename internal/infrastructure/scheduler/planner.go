package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TargetsFunc lists the aggregates a periodic tick covers
type TargetsFunc func(ctx context.Context) ([]uuid.UUID, error)

// Singleton is the target list of a tick that runs once per interval
func Singleton(ctx context.Context) ([]uuid.UUID, error) {
	return []uuid.UUID{uuid.Nil}, nil
}

// Plan describes one periodic tick
type Plan struct {
	Kind     string
	Interval time.Duration
	Targets  TargetsFunc
	// RunOnStart fires the first round immediately instead of after one interval
	RunOnStart bool
}

// Submitter queues ticks; *Scheduler satisfies it
type Submitter interface {
	Submit(kind string, aggregateID uuid.UUID) error
}

// Planner enqueues every Plan on its own ticker
type Planner struct {
	plans     []Plan
	submitter Submitter
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewPlanner validates the plans and creates a Planner
func NewPlanner(submitter Submitter, logger *zap.Logger, plans ...Plan) (*Planner, error) {
	for _, p := range plans {
		if p.Kind == "" || p.Interval <= 0 {
			return nil, fmt.Errorf("%w: kind %q interval %s", ErrInvalidPlan, p.Kind, p.Interval)
		}
		if p.Targets == nil {
			return nil, fmt.Errorf("%w: kind %q has no targets", ErrInvalidPlan, p.Kind)
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{
		plans:     plans,
		submitter: submitter,
		logger:    logger,
	}, nil
}

// Start launches one loop per plan
func (p *Planner) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.isRunning = true
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for _, plan := range p.plans {
		p.wg.Add(1)
		go p.runLoop(ctx, plan)
		p.logger.Info("Planner scheduled tick",
			zap.String("job_kind", plan.Kind),
			zap.Duration("interval", plan.Interval),
		)
	}
	return nil
}

// Stop stops all loops
func (p *Planner) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.isRunning = false
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("Planner stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Planner) runLoop(ctx context.Context, plan Plan) {
	defer p.wg.Done()

	if plan.RunOnStart {
		p.Enqueue(ctx, plan)
	}

	ticker := time.NewTicker(plan.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Enqueue(ctx, plan)
		}
	}
}

// Enqueue submits one round of plan and returns how many jobs were queued.
// Targets still queued from the previous round are skipped.
func (p *Planner) Enqueue(ctx context.Context, plan Plan) int {
	targets, err := plan.Targets(ctx)
	if err != nil {
		p.logger.Error("Failed to list tick targets",
			zap.String("job_kind", plan.Kind),
			zap.Error(err),
		)
		return 0
	}

	queued, skipped := 0, 0
	for _, id := range targets {
		err := p.submitter.Submit(plan.Kind, id)
		switch {
		case err == nil:
			queued++
		case errors.Is(err, ErrJobAlreadyQueued):
			skipped++
		default:
			p.logger.Warn("Failed to submit tick",
				zap.String("job_kind", plan.Kind),
				zap.String("aggregate_id", id.String()),
				zap.Error(err),
			)
		}
	}

	p.logger.Debug("Planner round",
		zap.String("job_kind", plan.Kind),
		zap.Int("targets", len(targets)),
		zap.Int("queued", queued),
		zap.Int("skipped", skipped),
	)
	return queued
}
