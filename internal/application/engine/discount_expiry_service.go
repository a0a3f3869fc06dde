package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/Twelve-cloud/car-showroom/internal/domain/pricing"
	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/Twelve-cloud/car-showroom/internal/domain/showroom"
	"github.com/Twelve-cloud/car-showroom/internal/domain/supplier"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DiscountExpiryService deactivates discounts whose finish date has passed
type DiscountExpiryService struct {
	rt Runtime
}

// NewDiscountExpiryService creates a new DiscountExpiryService
func NewDiscountExpiryService(rt Runtime) *DiscountExpiryService {
	return &DiscountExpiryService{rt: rt.withDefaults()}
}

// Sweep deactivates every discount that finished before now
func (s *DiscountExpiryService) Sweep(ctx context.Context) (*SweepStats, error) {
	return s.SweepAt(ctx, s.rt.Clock())
}

// SweepAt deactivates every discount that finished before now. Both discount tables are
// swept concurrently, each in its own transaction. Running it again changes nothing.
func (s *DiscountExpiryService) SweepAt(ctx context.Context, now time.Time) (*SweepStats, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "discount_expiry", "sweep")
	defer span.End()

	stats := &SweepStats{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.rt.TxScope.Execute(gctx, func(repos TransactionalRepositories) error {
			n, err := repos.SupplierRepo().DeactivateExpiredDiscounts(gctx, now)
			if err != nil {
				return fmt.Errorf("failed to expire supplier discounts: %w", err)
			}
			stats.SupplierDiscounts = n
			return nil
		})
	})
	g.Go(func() error {
		return s.rt.TxScope.Execute(gctx, func(repos TransactionalRepositories) error {
			n, err := repos.ShowroomRepo().DeactivateExpiredDiscounts(gctx, now)
			if err != nil {
				return fmt.Errorf("failed to expire showroom discounts: %w", err)
			}
			stats.ShowroomDiscounts = n
			return nil
		})
	})
	if err := g.Wait(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	supplierTable := supplier.CarDiscount{}.TableName()
	showroomTable := showroom.CarDiscount{}.TableName()
	s.rt.Metrics.DiscountsExpired(ctx, supplierTable, stats.SupplierDiscounts)
	s.rt.Metrics.DiscountsExpired(ctx, showroomTable, stats.ShowroomDiscounts)
	telemetry.SetAttributes(span,
		"supplier_discounts", stats.SupplierDiscounts,
		"showroom_discounts", stats.ShowroomDiscounts,
	)

	var events []shared.DomainEvent
	if stats.SupplierDiscounts > 0 {
		events = append(events, pricing.NewDiscountsExpiredEvent(supplierTable, stats.SupplierDiscounts))
	}
	if stats.ShowroomDiscounts > 0 {
		events = append(events, pricing.NewDiscountsExpiredEvent(showroomTable, stats.ShowroomDiscounts))
	}
	if len(events) > 0 {
		s.rt.log(ctx).Info("Expired discounts deactivated",
			zap.Int64("supplier_discounts", stats.SupplierDiscounts),
			zap.Int64("showroom_discounts", stats.ShowroomDiscounts),
		)
	}
	s.rt.publish(ctx, events)
	return stats, nil
}
