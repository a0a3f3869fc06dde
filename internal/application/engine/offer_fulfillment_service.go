package engine

import (
	"context"
	"fmt"

	"github.com/Twelve-cloud/car-showroom/internal/domain/customer"
	"github.com/Twelve-cloud/car-showroom/internal/domain/pricing"
	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/Twelve-cloud/car-showroom/internal/domain/showroom"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OfferFulfillmentService sells showroom inventory to customers with standing offers
type OfferFulfillmentService struct {
	rt         Runtime
	resolver   *pricing.DiscountResolver
	calculator *pricing.VolumeDiscountCalculator
}

// NewOfferFulfillmentService creates a new OfferFulfillmentService
func NewOfferFulfillmentService(
	rt Runtime,
	resolver *pricing.DiscountResolver,
	calculator *pricing.VolumeDiscountCalculator,
) *OfferFulfillmentService {
	return &OfferFulfillmentService{
		rt:         rt.withDefaults(),
		resolver:   resolver,
		calculator: calculator,
	}
}

// Fulfill tries to buy the cheapest matching showroom car for an offer.
// The offer stays active afterwards and may buy again on a later tick.
func (s *OfferFulfillmentService) Fulfill(ctx context.Context, offerID uuid.UUID) (*FulfillmentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "offer_fulfillment", "fulfill")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrOfferID, offerID.String())

	result := &FulfillmentResult{OfferID: offerID}

	// The lock is per customer, so the owner has to be known before the transaction
	var customerID uuid.UUID
	err := s.rt.TxScope.Execute(ctx, func(repos TransactionalRepositories) error {
		offer, err := repos.CustomerRepo().FindOfferByID(ctx, offerID)
		if err != nil {
			return err
		}
		customerID = offer.CustomerID
		return nil
	})
	if err != nil {
		if shared.IsNotFound(err) {
			result.Outcome = OutcomeInactive
			return result, nil
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load offer: %w", err)
	}
	result.CustomerID = customerID
	telemetry.SetAttributes(span, telemetry.SpanAttrCustomerID, customerID.String())

	var events []shared.DomainEvent
	err = s.rt.locked(ctx, lockCustomer, customerID, func() error {
		return s.rt.TxScope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			events, err = s.fulfill(ctx, repos, result)
			return err
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrOutcome, string(result.Outcome))
	if result.Outcome == OutcomePurchased {
		telemetry.AddEvent(span, "car_sold",
			telemetry.SpanAttrShowroomID, result.ShowroomID.String(),
			telemetry.SpanAttrPrice, result.Price.String(),
			telemetry.SpanAttrPriceSource, result.PriceSource,
		)
		s.rt.Metrics.SaleRecorded(ctx, JobKindFulfill, result.PriceSource, result.Price)
		s.rt.log(ctx).Info("Customer offer fulfilled",
			zap.String("offer_id", offerID.String()),
			zap.String("customer_id", customerID.String()),
			zap.String("showroom_id", result.ShowroomID.String()),
			zap.String("price", result.Price.String()),
			zap.String("price_source", result.PriceSource),
			zap.String("balance_after", result.BalanceAfter.String()),
		)
	}
	s.rt.publish(ctx, events)
	return result, nil
}

func (s *OfferFulfillmentService) fulfill(
	ctx context.Context,
	repos TransactionalRepositories,
	result *FulfillmentResult,
) ([]shared.DomainEvent, error) {
	buyer, err := repos.CustomerRepo().FindByIDForUpdate(ctx, result.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	offer, err := repos.CustomerRepo().FindOfferByID(ctx, result.OfferID)
	if err != nil {
		return nil, fmt.Errorf("failed to load offer: %w", err)
	}
	if !buyer.Active() || !offer.Active() {
		result.Outcome = OutcomeInactive
		return nil, nil
	}

	car, err := repos.ShowroomRepo().FindCheapestActiveCar(ctx, offer.CarID)
	if err != nil {
		if shared.IsNotFound(err) {
			result.Outcome = OutcomeNoInventory
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find showroom inventory: %w", err)
	}
	sr, err := repos.ShowroomRepo().FindByID(ctx, car.ShowroomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load showroom: %w", err)
	}
	result.ShowroomID = sr.ID
	result.ShowroomCarID = car.ID

	choice, err := s.price(ctx, repos, sr, buyer, car)
	if err != nil {
		return nil, err
	}
	result.Price, result.PriceSource = choice.Price, string(choice.Source)
	result.BalanceAfter = buyer.Balance

	if !offer.Accepts(choice.Price) {
		result.Outcome = OutcomeOverBudget
		return nil, nil
	}
	if !buyer.CanAfford(choice.Price) {
		result.Outcome = OutcomeInsufficientBalance
		return nil, nil
	}

	if err := buyer.Debit(choice.Price); err != nil {
		return nil, err
	}
	if err := repos.ShowroomRepo().SellCar(ctx, car.ID, buyer.ID); err != nil {
		return nil, fmt.Errorf("failed to hand over showroom car: %w", err)
	}
	if err := repos.CustomerRepo().SaveWithLock(ctx, buyer); err != nil {
		return nil, fmt.Errorf("failed to debit customer: %w", err)
	}
	if err := repos.ShowroomRepo().AppendHistory(ctx, showroom.NewHistory(sr.ID, buyer.ID, car.CarID, choice.Price)); err != nil {
		return nil, fmt.Errorf("failed to record showroom sale: %w", err)
	}
	if err := repos.CustomerRepo().AppendHistory(ctx, customer.NewHistory(buyer.ID, car.CarID, choice.Price, sr.Name)); err != nil {
		return nil, fmt.Errorf("failed to record customer purchase: %w", err)
	}

	buyer.AddDomainEvent(customer.NewCustomerCarPurchasedEvent(buyer, customer.PurchaseDetails{
		OfferID:       offer.ID,
		ShowroomID:    sr.ID,
		ShowroomCarID: car.ID,
		CarID:         car.CarID,
		Price:         choice.Price,
		PriceSource:   result.PriceSource,
	}))

	result.Outcome = OutcomePurchased
	result.BalanceAfter = buyer.Balance
	return buyer.PullDomainEvents(), nil
}

// price compares the showroom's loyalty price with its best promotion for the car.
// The promotion applies to the same unit: it already is the showroom's cheapest one.
func (s *OfferFulfillmentService) price(
	ctx context.Context,
	repos TransactionalRepositories,
	sr *showroom.Showroom,
	buyer *customer.Customer,
	car *showroom.Car,
) (pricing.PriceChoice, error) {
	purchases, err := repos.ShowroomRepo().CountActiveHistoryWithCustomer(ctx, sr.ID, buyer.ID)
	if err != nil {
		return pricing.PriceChoice{}, fmt.Errorf("failed to count showroom sales: %w", err)
	}
	multiplier := s.calculator.Multiplier(sr.VolumeTerms(), purchases)

	discounts, err := repos.ShowroomRepo().FindActiveDiscountsForCar(ctx, sr.ID, car.CarID, s.rt.Clock())
	if err != nil {
		return pricing.PriceChoice{}, fmt.Errorf("failed to load showroom discounts: %w", err)
	}
	var promo *pricing.PromoQuote
	if best := s.resolver.Resolve(car.CarID, showroom.Terms(discounts)); best != nil {
		promo = &pricing.PromoQuote{ListPrice: car.Price, Percent: best.Percent}
	}
	return pricing.ChoosePrice(car.Price, multiplier, promo), nil
}
