package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrUnknownJobKind is returned for a job kind the Executor does not handle
var ErrUnknownJobKind = errors.New("unknown job kind")

// ActiveShowrooms lists the showrooms a match_all job covers
type ActiveShowrooms func(ctx context.Context) ([]uuid.UUID, error)

// Executor runs one engine tick per job and records its outcome
type Executor struct {
	selection     *SupplierSelectionService
	replenishment *ReplenishmentService
	fulfillment   *OfferFulfillmentService
	expiry        *DiscountExpiryService
	showrooms     ActiveShowrooms
	metrics       Metrics
	logger        *zap.Logger
}

// NewExecutor creates a new Executor
func NewExecutor(
	selection *SupplierSelectionService,
	replenishment *ReplenishmentService,
	fulfillment *OfferFulfillmentService,
	expiry *DiscountExpiryService,
	showrooms ActiveShowrooms,
	metrics Metrics,
	logger *zap.Logger,
) *Executor {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Executor{
		selection:     selection,
		replenishment: replenishment,
		fulfillment:   fulfillment,
		expiry:        expiry,
		showrooms:     showrooms,
		metrics:       metrics,
		logger:        logger,
	}
}

// Execute runs the tick named by kind against aggregateID.
// Domain no-ops are successful ticks; only infrastructure and invariant failures return an error.
func (e *Executor) Execute(ctx context.Context, kind string, aggregateID uuid.UUID) error {
	start := time.Now()
	outcome, err := e.run(ctx, kind, aggregateID)
	elapsed := time.Since(start)

	if err != nil {
		e.metrics.TickFailed(ctx, kind, elapsed)
		if errors.Is(err, shared.ErrInsufficientBalance) || errors.Is(err, shared.ErrInvariantViolation) {
			e.logger.Error("Tick aborted on invariant violation",
				zap.String("job_kind", kind),
				zap.String("aggregate_id", aggregateID.String()),
				zap.Error(err),
			)
		}
		return err
	}
	e.metrics.TickCompleted(ctx, kind, string(outcome), elapsed)
	return nil
}

func (e *Executor) run(ctx context.Context, kind string, aggregateID uuid.UUID) (Outcome, error) {
	switch kind {
	case JobKindDiscountSweep:
		if _, err := e.expiry.Sweep(ctx); err != nil {
			return "", err
		}
		return OutcomeSwept, nil

	case JobKindMatchAll:
		ids, err := e.showrooms(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to list active showrooms: %w", err)
		}
		matched, err := e.selection.MatchAllShowrooms(ctx, ids)
		if err != nil {
			return "", err
		}
		if matched == 0 {
			return OutcomeNoCandidates, nil
		}
		return OutcomeMatched, nil

	case JobKindMatchShowroom:
		result, err := e.selection.MatchShowroom(ctx, aggregateID)
		if err != nil {
			return "", err
		}
		return result.Outcome, nil

	case JobKindRefreshCars:
		result, err := e.selection.RefreshAppropriateCars(ctx, aggregateID)
		if err != nil {
			return "", err
		}
		return result.Outcome, nil

	case JobKindReplenish:
		result, err := e.replenishment.Replenish(ctx, aggregateID)
		if err != nil {
			return "", err
		}
		return result.Outcome, nil

	case JobKindFulfill:
		result, err := e.fulfillment.Fulfill(ctx, aggregateID)
		if err != nil {
			return "", err
		}
		return result.Outcome, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownJobKind, kind)
}
