package engine

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Outcome is how a tick ended when it did not fail
type Outcome string

const (
	OutcomePurchased           Outcome = "purchased"
	OutcomeMatched             Outcome = "matched"
	OutcomeSwept               Outcome = "swept"
	OutcomeDeactivated         Outcome = "deactivated"
	OutcomeInsufficientBalance Outcome = "insufficient_balance"
	OutcomeNoInventory         Outcome = "no_inventory"
	OutcomeNoSupplierOffer     Outcome = "no_supplier_offer"
	OutcomeNoCandidates        Outcome = "no_candidates"
	OutcomeOverBudget          Outcome = "over_budget"
	OutcomeInactive            Outcome = "inactive"
)

// IsNoOp reports whether the tick changed nothing
func (o Outcome) IsNoOp() bool {
	switch o {
	case OutcomePurchased, OutcomeMatched, OutcomeSwept, OutcomeDeactivated:
		return false
	}
	return true
}

// Job kinds understood by the Executor
const (
	JobKindDiscountSweep = "discount_sweep"
	JobKindMatchAll      = "match_all"
	JobKindMatchShowroom = "match_showroom"
	JobKindRefreshCars   = "refresh_cars"
	JobKindReplenish     = "replenish"
	JobKindFulfill       = "fulfill"
)

// SelectedOffer is the supplier offer chosen for a car
type SelectedOffer struct {
	OfferID       uuid.UUID
	SupplierID    uuid.UUID
	CarID         uuid.UUID
	Price         decimal.Decimal
	ProjectedCost decimal.Decimal
}

// MatchResult is the outcome of recomputing a showroom's current suppliers
type MatchResult struct {
	ShowroomID  uuid.UUID
	Outcome     Outcome
	Assignments map[uuid.UUID]uuid.UUID // car -> supplier
	Unmatched   []uuid.UUID             // appropriate cars nobody offers
}

// RefreshResult is the outcome of resolving a showroom's charts into cars
type RefreshResult struct {
	ShowroomID uuid.UUID
	Outcome    Outcome
	CarIDs     []uuid.UUID
}

// ReplenishmentResult is the outcome of one replenishment tick
type ReplenishmentResult struct {
	ShowroomID    uuid.UUID
	Outcome       Outcome
	CarID         uuid.UUID
	SupplierID    uuid.UUID
	ShowroomCarID uuid.UUID
	Price         decimal.Decimal
	PriceSource   string
	BalanceAfter  decimal.Decimal
}

// FulfillmentResult is the outcome of one fulfillment tick
type FulfillmentResult struct {
	OfferID       uuid.UUID
	CustomerID    uuid.UUID
	Outcome       Outcome
	ShowroomID    uuid.UUID
	ShowroomCarID uuid.UUID
	Price         decimal.Decimal
	PriceSource   string
	BalanceAfter  decimal.Decimal
}

// SweepStats counts the discounts deactivated by one sweep
type SweepStats struct {
	SupplierDiscounts int64
	ShowroomDiscounts int64
}

// Total returns the number of discounts deactivated across both tables
func (s SweepStats) Total() int64 {
	return s.SupplierDiscounts + s.ShowroomDiscounts
}
