package engine

import (
	"context"
	"fmt"

	"github.com/Twelve-cloud/car-showroom/internal/domain/pricing"
	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/Twelve-cloud/car-showroom/internal/domain/showroom"
	"github.com/Twelve-cloud/car-showroom/internal/domain/supplier"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReplenishmentService restocks showrooms from their current suppliers, one car per tick
type ReplenishmentService struct {
	rt         Runtime
	resolver   *pricing.DiscountResolver
	calculator *pricing.VolumeDiscountCalculator
}

// NewReplenishmentService creates a new ReplenishmentService
func NewReplenishmentService(
	rt Runtime,
	resolver *pricing.DiscountResolver,
	calculator *pricing.VolumeDiscountCalculator,
) *ReplenishmentService {
	return &ReplenishmentService{
		rt:         rt.withDefaults(),
		resolver:   resolver,
		calculator: calculator,
	}
}

// Replenish buys the highest-priority car for a showroom if it can afford it.
// The showroom row stays locked for the whole tick. At most one car is bought.
func (s *ReplenishmentService) Replenish(ctx context.Context, showroomID uuid.UUID) (*ReplenishmentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "replenishment", "replenish")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrShowroomID, showroomID.String())

	var (
		result *ReplenishmentResult
		events []shared.DomainEvent
	)
	err := s.rt.locked(ctx, lockShowroom, showroomID, func() error {
		return s.rt.TxScope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			result, events, err = s.replenish(ctx, repos, showroomID)
			return err
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrOutcome, string(result.Outcome))
	if result.Outcome == OutcomePurchased {
		telemetry.AddEvent(span, "car_purchased",
			telemetry.SpanAttrSupplierID, result.SupplierID.String(),
			telemetry.SpanAttrCarID, result.CarID.String(),
			telemetry.SpanAttrPrice, result.Price.String(),
			telemetry.SpanAttrPriceSource, result.PriceSource,
		)
		s.rt.Metrics.SaleRecorded(ctx, JobKindReplenish, result.PriceSource, result.Price)
		s.rt.log(ctx).Info("Showroom bought a car",
			zap.String("showroom_id", showroomID.String()),
			zap.String("supplier_id", result.SupplierID.String()),
			zap.String("car_id", result.CarID.String()),
			zap.String("price", result.Price.String()),
			zap.String("price_source", result.PriceSource),
			zap.String("balance_after", result.BalanceAfter.String()),
		)
	}
	s.rt.publish(ctx, events)
	return result, nil
}

func (s *ReplenishmentService) replenish(
	ctx context.Context,
	repos TransactionalRepositories,
	showroomID uuid.UUID,
) (*ReplenishmentResult, []shared.DomainEvent, error) {
	result := &ReplenishmentResult{ShowroomID: showroomID}

	sr, err := repos.ShowroomRepo().FindByIDForUpdate(ctx, showroomID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load showroom: %w", err)
	}
	if !sr.Active() {
		result.Outcome = OutcomeInactive
		return result, nil, nil
	}

	carID, supplierID, ok, err := s.topPriority(ctx, repos, sr)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		result.Outcome = OutcomeNoCandidates
		return result, nil, nil
	}
	result.CarID, result.SupplierID = carID, supplierID

	sup, err := repos.SupplierRepo().FindByID(ctx, supplierID)
	if err != nil {
		if shared.IsNotFound(err) {
			result.Outcome = OutcomeNoSupplierOffer
			return result, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to load supplier: %w", err)
	}
	if !sup.Active() {
		result.Outcome = OutcomeNoSupplierOffer
		return result, nil, nil
	}

	offer, err := repos.SupplierRepo().FindActiveOffer(ctx, supplierID, carID)
	if err != nil {
		if shared.IsNotFound(err) {
			result.Outcome = OutcomeNoSupplierOffer
			return result, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to load supplier offer: %w", err)
	}

	choice, err := s.price(ctx, repos, sr, sup, offer)
	if err != nil {
		return nil, nil, err
	}
	result.Price, result.PriceSource = choice.Price, string(choice.Source)

	if !sr.CanAfford(choice.Price) {
		result.Outcome = OutcomeInsufficientBalance
		result.BalanceAfter = sr.Balance
		return result, nil, nil
	}

	car := showroom.NewCar(sr.ID, carID, choice.Price)
	if err := sr.Debit(choice.Price); err != nil {
		return nil, nil, err
	}
	if err := repos.ShowroomRepo().SaveWithLock(ctx, sr); err != nil {
		return nil, nil, fmt.Errorf("failed to debit showroom: %w", err)
	}
	if err := repos.SupplierRepo().DeactivateOffer(ctx, offer.ID); err != nil {
		return nil, nil, fmt.Errorf("failed to close supplier offer: %w", err)
	}
	if err := repos.ShowroomRepo().SaveCar(ctx, car); err != nil {
		return nil, nil, fmt.Errorf("failed to stock car: %w", err)
	}
	if err := repos.SupplierRepo().AppendHistory(ctx, supplier.NewHistory(supplierID, sr.ID, carID, choice.Price)); err != nil {
		return nil, nil, fmt.Errorf("failed to record supplier sale: %w", err)
	}

	sr.AddDomainEvent(showroom.NewShowroomCarPurchasedEvent(sr, supplierID, car, result.PriceSource))

	result.Outcome = OutcomePurchased
	result.ShowroomCarID = car.ID
	result.BalanceAfter = sr.Balance
	return result, sr.PullDomainEvents(), nil
}

// topPriority picks the paired car with the highest purchase priority
func (s *ReplenishmentService) topPriority(
	ctx context.Context,
	repos TransactionalRepositories,
	sr *showroom.Showroom,
) (carID, supplierID uuid.UUID, ok bool, err error) {
	pairs := sr.Pairings()
	if len(pairs) == 0 {
		return uuid.Nil, uuid.Nil, false, nil
	}
	paired := make([]uuid.UUID, len(pairs))
	for i, p := range pairs {
		paired[i] = p.CarID
	}

	counts, err := repos.ShowroomRepo().CountActiveHistoryByCar(ctx, sr.ID)
	if err != nil {
		return uuid.Nil, uuid.Nil, false, fmt.Errorf("failed to count showroom sales: %w", err)
	}
	ranked := pricing.RankByPurchasePriority(paired, counts)
	if len(ranked) == 0 {
		return uuid.Nil, uuid.Nil, false, nil
	}
	top := ranked[0]
	return top, sr.CurrentSuppliers[top], true, nil
}

// price compares the supplier's loyalty price with its best promotion for the car
func (s *ReplenishmentService) price(
	ctx context.Context,
	repos TransactionalRepositories,
	sr *showroom.Showroom,
	sup *supplier.Supplier,
	offer *supplier.CarOffer,
) (pricing.PriceChoice, error) {
	purchases, err := repos.SupplierRepo().CountActiveHistory(ctx, sup.ID, sr.ID)
	if err != nil {
		return pricing.PriceChoice{}, fmt.Errorf("failed to count supplier sales: %w", err)
	}
	multiplier := s.calculator.Multiplier(sup.VolumeTerms(), purchases)

	discounts, err := repos.SupplierRepo().FindActiveDiscountsForCar(ctx, sup.ID, offer.CarID, s.rt.Clock())
	if err != nil {
		return pricing.PriceChoice{}, fmt.Errorf("failed to load supplier discounts: %w", err)
	}
	var promo *pricing.PromoQuote
	if best := s.resolver.Resolve(offer.CarID, supplier.Terms(discounts)); best != nil {
		promo = &pricing.PromoQuote{ListPrice: offer.Price, Percent: best.Percent}
	}
	return pricing.ChoosePrice(offer.Price, multiplier, promo), nil
}
