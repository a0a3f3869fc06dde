package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OfferCandidate is an active supplier offer together with its supplier's volume terms
type OfferCandidate struct {
	OfferID    uuid.UUID
	SupplierID uuid.UUID
	CarID      uuid.UUID
	Price      decimal.Decimal
	Terms      VolumeTerms
}

// ProjectedCost estimates the spend of reaching anchor purchases from one supplier:
//
//	(anchor - n) * price * fraction + n * price
//
// where n is the supplier's sales threshold. It is a ranking heuristic, not a cost model;
// the arithmetic is kept exactly as the business defined it.
func ProjectedCost(anchor int, c OfferCandidate) decimal.Decimal {
	n := decimal.NewFromInt(int64(c.Terms.Threshold))
	discounted := decimal.NewFromInt(int64(anchor)).Sub(n)

	return discounted.Mul(c.Price).Mul(c.Terms.Fraction).Add(n.Mul(c.Price))
}

// SelectCheapest returns the candidate with the lowest projected cost.
// Only a strictly lower cost displaces the current best, so the first candidate wins ties.
func SelectCheapest(anchor int, candidates []OfferCandidate) (OfferCandidate, decimal.Decimal, bool) {
	var (
		best     OfferCandidate
		bestCost decimal.Decimal
		found    bool
	)
	for _, c := range candidates {
		cost := ProjectedCost(anchor, c)
		if !found || cost.LessThan(bestCost) {
			best, bestCost, found = c, cost, true
		}
	}
	return best, bestCost, found
}
