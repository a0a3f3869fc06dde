package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Twelve-cloud/car-showroom/internal/domain/customer"
	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/Twelve-cloud/car-showroom/internal/domain/showroom"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultTriggerChannel is the Pub/Sub channel the outer layer announces changes on
const DefaultTriggerChannel = "showroom:triggers"

var (
	ErrInvalidTrigger     = errors.New("invalid trigger message")
	ErrUnknownTriggerType = errors.New("unknown trigger type")
)

// TriggerMessage is what the CRUD layer publishes after it changed
// something the engine should react to before the next scheduled tick.
//
//	{"type":"CustomerOfferCreated","customer_id":"...","offer_id":"...","car_id":"..."}
type TriggerMessage struct {
	Type       string          `json:"type"`
	ShowroomID uuid.UUID       `json:"showroom_id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	OfferID    uuid.UUID       `json:"offer_id"`
	CarID      uuid.UUID       `json:"car_id"`
	MaxPrice   decimal.Decimal `json:"max_price"`
}

// DecodeTrigger parses a payload into the domain event it announces
func DecodeTrigger(payload []byte) (shared.DomainEvent, error) {
	var msg TriggerMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTrigger, err)
	}
	return msg.Event()
}

// Event maps the message onto a domain event
func (m TriggerMessage) Event() (shared.DomainEvent, error) {
	switch m.Type {
	case showroom.EventTypeShowroomCreated:
		if m.ShowroomID == uuid.Nil {
			return nil, fmt.Errorf("%w: %s needs showroom_id", ErrInvalidTrigger, m.Type)
		}
		return &showroom.ShowroomCreatedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(m.Type, showroom.AggregateTypeShowroom, m.ShowroomID),
			ShowroomID:      m.ShowroomID,
		}, nil
	case showroom.EventTypeShowroomChartsChanged:
		if m.ShowroomID == uuid.Nil {
			return nil, fmt.Errorf("%w: %s needs showroom_id", ErrInvalidTrigger, m.Type)
		}
		return showroom.NewShowroomChartsChangedEvent(m.ShowroomID), nil
	case showroom.EventTypeShowroomCarsChanged:
		if m.ShowroomID == uuid.Nil {
			return nil, fmt.Errorf("%w: %s needs showroom_id", ErrInvalidTrigger, m.Type)
		}
		return &showroom.ShowroomCarsChangedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(m.Type, showroom.AggregateTypeShowroom, m.ShowroomID),
			ShowroomID:      m.ShowroomID,
		}, nil
	case customer.EventTypeCustomerOfferCreated:
		if m.CustomerID == uuid.Nil || m.OfferID == uuid.Nil {
			return nil, fmt.Errorf("%w: %s needs customer_id and offer_id", ErrInvalidTrigger, m.Type)
		}
		return &customer.CustomerOfferCreatedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(m.Type, customer.AggregateTypeCustomer, m.CustomerID),
			CustomerID:      m.CustomerID,
			OfferID:         m.OfferID,
			CarID:           m.CarID,
			MaxPrice:        m.MaxPrice,
		}, nil
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrInvalidTrigger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTriggerType, m.Type)
	}
}

// RedisTriggerSubscriber relays trigger messages from a Redis channel onto the
// event bus. A malformed message is logged and skipped.
type RedisTriggerSubscriber struct {
	client    *redis.Client
	channel   string
	publisher shared.EventPublisher
	logger    *zap.Logger

	mu     sync.Mutex
	pubsub *redis.PubSub
	done   chan struct{}
}

func NewRedisTriggerSubscriber(client *redis.Client, channel string, publisher shared.EventPublisher, logger *zap.Logger) *RedisTriggerSubscriber {
	if channel == "" {
		channel = DefaultTriggerChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisTriggerSubscriber{
		client:    client,
		channel:   channel,
		publisher: publisher,
		logger:    logger.With(zap.String("channel", channel)),
	}
}

// Handle decodes one payload and publishes the resulting event
func (s *RedisTriggerSubscriber) Handle(ctx context.Context, payload string) error {
	evt, err := DecodeTrigger([]byte(payload))
	if err != nil {
		return err
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		return fmt.Errorf("publish %s: %w", evt.EventType(), err)
	}
	return nil
}

// Start subscribes and returns once Redis confirmed the subscription.
// Messages are relayed until Stop.
func (s *RedisTriggerSubscriber) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pubsub != nil {
		return nil
	}

	pubsub := s.client.Subscribe(ctx, s.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe to %s: %w", s.channel, err)
	}
	s.pubsub = pubsub
	s.done = make(chan struct{})

	go s.relay(context.WithoutCancel(ctx), pubsub.Channel(), s.done)
	s.logger.Info("trigger subscriber started")
	return nil
}

func (s *RedisTriggerSubscriber) relay(ctx context.Context, messages <-chan *redis.Message, done chan<- struct{}) {
	defer close(done)
	for msg := range messages {
		if err := s.Handle(ctx, msg.Payload); err != nil {
			s.logger.Warn("dropping trigger message", zap.String("payload", msg.Payload), zap.Error(err))
		}
	}
}

// Stop unsubscribes and waits for the relay loop to drain
func (s *RedisTriggerSubscriber) Stop(ctx context.Context) error {
	s.mu.Lock()
	pubsub, done := s.pubsub, s.done
	s.pubsub, s.done = nil, nil
	s.mu.Unlock()
	if pubsub == nil {
		return nil
	}

	err := pubsub.Close()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.logger.Info("trigger subscriber stopped")
	return err
}
