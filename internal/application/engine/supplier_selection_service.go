package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/Twelve-cloud/car-showroom/internal/domain/catalog"
	"github.com/Twelve-cloud/car-showroom/internal/domain/pricing"
	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxParallelMatches caps how many showrooms MatchAllShowrooms works on at once
const maxParallelMatches = 4

// SupplierSelectionService decides which supplier each showroom buys each car from
type SupplierSelectionService struct {
	rt Runtime
}

// NewSupplierSelectionService creates a new SupplierSelectionService
func NewSupplierSelectionService(rt Runtime) *SupplierSelectionService {
	return &SupplierSelectionService{rt: rt.withDefaults()}
}

// FindCheapestOffer returns the active offer with the lowest projected cost for a car,
// or nil when no active supplier offers it.
func (s *SupplierSelectionService) FindCheapestOffer(ctx context.Context, carID uuid.UUID) (*SelectedOffer, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "supplier_selection", "find_cheapest_offer")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrCarID, carID.String())

	var selected *SelectedOffer
	err := s.rt.TxScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		selected, err = cheapestOffer(ctx, repos, carID)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return selected, nil
}

// cheapestOffer ranks every active listing of a car against the largest sales threshold
// among active suppliers
func cheapestOffer(ctx context.Context, repos TransactionalRepositories, carID uuid.UUID) (*SelectedOffer, error) {
	listings, err := repos.SupplierRepo().FindActiveListingsForCar(ctx, carID)
	if err != nil {
		return nil, fmt.Errorf("failed to load offers for car %s: %w", carID, err)
	}
	if len(listings) == 0 {
		return nil, nil
	}

	anchor, err := repos.SupplierRepo().MaxActiveNumberOfSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales anchor: %w", err)
	}

	candidates := make([]pricing.OfferCandidate, len(listings))
	for i, l := range listings {
		candidates[i] = pricing.OfferCandidate{
			OfferID:    l.Offer.ID,
			SupplierID: l.Supplier.ID,
			CarID:      l.Offer.CarID,
			Price:      l.Offer.Price,
			Terms:      l.Supplier.VolumeTerms(),
		}
	}

	best, cost, ok := pricing.SelectCheapest(anchor, candidates)
	if !ok {
		return nil, nil
	}
	return &SelectedOffer{
		OfferID:       best.OfferID,
		SupplierID:    best.SupplierID,
		CarID:         best.CarID,
		Price:         best.Price,
		ProjectedCost: cost,
	}, nil
}

// MatchShowroom recomputes the current supplier of every appropriate car of a showroom.
// Cars that nobody offers lose their assignment.
func (s *SupplierSelectionService) MatchShowroom(ctx context.Context, showroomID uuid.UUID) (*MatchResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "supplier_selection", "match_showroom")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrShowroomID, showroomID.String())

	result := &MatchResult{ShowroomID: showroomID}
	err := s.rt.locked(ctx, lockShowroom, showroomID, func() error {
		return s.rt.TxScope.Execute(ctx, func(repos TransactionalRepositories) error {
			sr, err := repos.ShowroomRepo().FindByIDForUpdate(ctx, showroomID)
			if err != nil {
				return fmt.Errorf("failed to load showroom: %w", err)
			}
			if !sr.Active() {
				result.Outcome = OutcomeInactive
				return nil
			}

			assignments := make(map[uuid.UUID]uuid.UUID, len(sr.AppropriateCarIDs))
			for _, carID := range sr.AppropriateCarIDs {
				offer, err := cheapestOffer(ctx, repos, carID)
				if err != nil {
					return err
				}
				if offer == nil {
					result.Unmatched = append(result.Unmatched, carID)
					continue
				}
				assignments[carID] = offer.SupplierID
			}

			if err := repos.ShowroomRepo().ReplaceCurrentSuppliers(ctx, showroomID, assignments); err != nil {
				return fmt.Errorf("failed to save current suppliers: %w", err)
			}
			result.Assignments = assignments
			if len(assignments) == 0 {
				result.Outcome = OutcomeNoCandidates
			} else {
				result.Outcome = OutcomeMatched
			}
			return nil
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrOutcome, string(result.Outcome),
		"assigned", len(result.Assignments),
		"unmatched", len(result.Unmatched),
	)
	s.rt.log(ctx).Debug("Showroom suppliers matched",
		zap.String("showroom_id", showroomID.String()),
		zap.String("outcome", string(result.Outcome)),
		zap.Int("assigned", len(result.Assignments)),
		zap.Int("unmatched", len(result.Unmatched)),
	)
	return result, nil
}

// MatchAllShowrooms runs MatchShowroom for every active showroom.
// Showrooms are matched independently: one failure does not stop the others,
// and the first error is returned after all of them ran.
func (s *SupplierSelectionService) MatchAllShowrooms(ctx context.Context, showroomIDs []uuid.UUID) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "supplier_selection", "match_all_showrooms")
	defer span.End()
	telemetry.SetAttributes(span, "showrooms", len(showroomIDs))

	var g errgroup.Group
	g.SetLimit(maxParallelMatches)

	matched := make([]bool, len(showroomIDs))
	for i, id := range showroomIDs {
		g.Go(func() error {
			result, err := s.MatchShowroom(ctx, id)
			if err != nil {
				if errors.Is(err, shared.ErrLockNotAcquired) {
					s.rt.log(ctx).Info("Showroom busy, matching skipped", zap.String("showroom_id", id.String()))
					return nil
				}
				s.rt.log(ctx).Error("Showroom matching failed",
					zap.String("showroom_id", id.String()),
					zap.Error(err),
				)
				return err
			}
			matched[i] = result.Outcome == OutcomeMatched
			return nil
		})
	}
	err := g.Wait()

	count := 0
	for _, ok := range matched {
		if ok {
			count++
		}
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return count, err
	}
	return count, nil
}

// RefreshAppropriateCars resolves each entry of the showroom's charts to the first
// matching catalog car and replaces the showroom's ordered list with the result.
// A changed list emits ShowroomCarsChanged, which triggers supplier matching.
func (s *SupplierSelectionService) RefreshAppropriateCars(ctx context.Context, showroomID uuid.UUID) (*RefreshResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "supplier_selection", "refresh_appropriate_cars")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrShowroomID, showroomID.String())

	result := &RefreshResult{ShowroomID: showroomID}
	var events []shared.DomainEvent
	err := s.rt.locked(ctx, lockShowroom, showroomID, func() error {
		return s.rt.TxScope.Execute(ctx, func(repos TransactionalRepositories) error {
			sr, err := repos.ShowroomRepo().FindByIDForUpdate(ctx, showroomID)
			if err != nil {
				return fmt.Errorf("failed to load showroom: %w", err)
			}
			if !sr.Active() {
				result.Outcome = OutcomeInactive
				return nil
			}

			criteria, err := sr.Criteria()
			if err != nil {
				return err
			}
			carIDs, err := resolveCriteria(ctx, repos.CarRepo(), criteria)
			if err != nil {
				return err
			}
			result.CarIDs = carIDs
			if len(carIDs) == 0 {
				result.Outcome = OutcomeNoCandidates
			} else {
				result.Outcome = OutcomeMatched
			}
			if sameOrder(sr.AppropriateCarIDs, carIDs) {
				return nil
			}

			if err := repos.ShowroomRepo().ReplaceAppropriateCars(ctx, showroomID, carIDs); err != nil {
				return fmt.Errorf("failed to save appropriate cars: %w", err)
			}
			sr.SetAppropriateCars(carIDs)
			events = sr.PullDomainEvents()
			return nil
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.rt.publish(ctx, events)
	return result, nil
}

// resolveCriteria maps each criterion to the oldest matching car, dropping
// criteria that match nothing and cars already picked
func resolveCriteria(ctx context.Context, cars catalog.CarRepository, criteria []catalog.CarCriteria) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(criteria))
	seen := make(map[uuid.UUID]bool, len(criteria))
	for _, c := range criteria {
		car, err := cars.FindFirstMatching(ctx, c)
		if err != nil {
			if shared.IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("failed to match charts entry: %w", err)
		}
		if seen[car.ID] {
			continue
		}
		seen[car.ID] = true
		ids = append(ids, car.ID)
	}
	return ids, nil
}

func sameOrder(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
