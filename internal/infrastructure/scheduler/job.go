package scheduler

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the status of a scheduled job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Job is one engine tick: a kind plus the aggregate it runs against.
// Singleton ticks such as the discount sweep use uuid.Nil.
type Job struct {
	ID          uuid.UUID
	Kind        string
	AggregateID uuid.UUID
	Status      JobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
}

// NewJob creates a pending job
func NewJob(kind string, aggregateID uuid.UUID, maxRetries int) *Job {
	return &Job{
		ID:          uuid.New(),
		Kind:        kind,
		AggregateID: aggregateID,
		Status:      JobStatusPending,
		MaxRetries:  maxRetries,
	}
}

// key identifies the work a job does, independent of its ID
func (j *Job) key() string {
	return j.Kind + ":" + j.AggregateID.String()
}

// aggregate returns the aggregate ID for logging, empty for singleton jobs
func (j *Job) aggregate() string {
	if j.AggregateID == uuid.Nil {
		return ""
	}
	return j.AggregateID.String()
}

// Start marks the job as running
func (j *Job) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete marks the job as successful
func (j *Job) Complete() {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

// Fail marks the job as failed
func (j *Job) Fail(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job failed and has retries left
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// PrepareRetry resets the job for another attempt
func (j *Job) PrepareRetry() {
	j.RetryCount++
	j.Status = JobStatusPending
	j.Error = ""
}
