package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
)

// RecordingPublisher keeps everything the engine publishes. SetError makes
// Publish fail after recording, which is how tests simulate a broken bus.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (p *RecordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

func (p *RecordingPublisher) SetError(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

func (p *RecordingPublisher) Events() []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.events)
}

// OfType filters the recorded events by EventType.
func (p *RecordingPublisher) OfType(eventType string) []shared.DomainEvent {
	return slices.DeleteFunc(p.Events(), func(e shared.DomainEvent) bool {
		return e.EventType() != eventType
	})
}

var _ shared.EventPublisher = (*RecordingPublisher)(nil)
