package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Aggregates accepted by Deactivate
const (
	AggregateShowroom = lockShowroom
	AggregateSupplier = lockSupplier
	AggregateCustomer = lockCustomer
)

var ErrUnknownAggregate = errors.New("unknown aggregate")

// DeactivationService soft-deletes an aggregate together with every row it owns.
// Each call is one bulk UPDATE per owned table inside a single transaction.
type DeactivationService struct {
	rt Runtime
}

// NewDeactivationService creates a new DeactivationService
func NewDeactivationService(rt Runtime) *DeactivationService {
	return &DeactivationService{rt: rt.withDefaults()}
}

// Deactivate dispatches on the aggregate name, for callers that take it as input
func (s *DeactivationService) Deactivate(ctx context.Context, aggregate string, id uuid.UUID) (*shared.DeactivationReport, error) {
	switch aggregate {
	case AggregateShowroom:
		return s.DeactivateShowroom(ctx, id)
	case AggregateSupplier:
		return s.DeactivateSupplier(ctx, id)
	case AggregateCustomer:
		return s.DeactivateCustomer(ctx, id)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAggregate, aggregate)
}

// DeactivateShowroom deactivates a showroom with its discounts, cars and history
func (s *DeactivationService) DeactivateShowroom(ctx context.Context, showroomID uuid.UUID) (*shared.DeactivationReport, error) {
	return s.deactivate(ctx, lockShowroom, showroomID, func(repos TransactionalRepositories) (*shared.DeactivationReport, []shared.DomainEvent, error) {
		sr, err := repos.ShowroomRepo().FindByIDForUpdate(ctx, showroomID)
		if err != nil {
			return nil, nil, err
		}
		if !sr.Active() {
			return shared.NewDeactivationReport(), nil, nil
		}
		report, err := repos.ShowroomRepo().DeactivateCascade(ctx, showroomID)
		if err != nil {
			return nil, nil, err
		}
		sr.MarkDeactivated()
		return report, sr.PullDomainEvents(), nil
	})
}

// DeactivateSupplier deactivates a supplier with its discounts, offers and history
func (s *DeactivationService) DeactivateSupplier(ctx context.Context, supplierID uuid.UUID) (*shared.DeactivationReport, error) {
	return s.deactivate(ctx, lockSupplier, supplierID, func(repos TransactionalRepositories) (*shared.DeactivationReport, []shared.DomainEvent, error) {
		sup, err := repos.SupplierRepo().FindByID(ctx, supplierID)
		if err != nil {
			return nil, nil, err
		}
		if !sup.Active() {
			return shared.NewDeactivationReport(), nil, nil
		}
		report, err := repos.SupplierRepo().DeactivateCascade(ctx, supplierID)
		if err != nil {
			return nil, nil, err
		}
		sup.MarkDeactivated()
		return report, sup.PullDomainEvents(), nil
	})
}

// DeactivateCustomer deactivates a customer with its offers and history
func (s *DeactivationService) DeactivateCustomer(ctx context.Context, customerID uuid.UUID) (*shared.DeactivationReport, error) {
	return s.deactivate(ctx, lockCustomer, customerID, func(repos TransactionalRepositories) (*shared.DeactivationReport, []shared.DomainEvent, error) {
		buyer, err := repos.CustomerRepo().FindByIDForUpdate(ctx, customerID)
		if err != nil {
			return nil, nil, err
		}
		if !buyer.Active() {
			return shared.NewDeactivationReport(), nil, nil
		}
		report, err := repos.CustomerRepo().DeactivateCascade(ctx, customerID)
		if err != nil {
			return nil, nil, err
		}
		buyer.MarkDeactivated()
		return report, buyer.PullDomainEvents(), nil
	})
}

type cascadeFunc func(repos TransactionalRepositories) (*shared.DeactivationReport, []shared.DomainEvent, error)

func (s *DeactivationService) deactivate(ctx context.Context, kind string, id uuid.UUID, cascade cascadeFunc) (*shared.DeactivationReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "deactivation", kind)
	defer span.End()
	telemetry.SetAttributes(span, "aggregate.id", id.String())

	var (
		report *shared.DeactivationReport
		events []shared.DomainEvent
	)
	err := s.rt.locked(ctx, kind, id, func() error {
		return s.rt.TxScope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			report, events, err = cascade(repos)
			return err
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to deactivate %s %s: %w", kind, id, err)
	}

	telemetry.SetAttributes(span, "rows", report.Total())
	if report.Total() > 0 {
		s.rt.log(ctx).Info("Aggregate deactivated",
			zap.String("aggregate", kind),
			zap.String("aggregate_id", id.String()),
			zap.Int64("rows", report.Total()),
		)
	}
	s.rt.publish(ctx, events)
	return report, nil
}
