package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when trying to submit a job to a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull is returned when the job queue is full
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrJobAlreadyQueued is returned when the same kind/aggregate pair is already queued or running
	ErrJobAlreadyQueued = errors.New("job already queued for this aggregate")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrInvalidPlan is returned for a plan without a kind or a positive interval
	ErrInvalidPlan = errors.New("invalid job plan")
)
