package pricing

import "github.com/google/uuid"

// DiscountResolver picks the best promotional discount for a car out of one seller's pool
type DiscountResolver struct{}

// NewDiscountResolver creates a new DiscountResolver
func NewDiscountResolver() *DiscountResolver {
	return &DiscountResolver{}
}

// Resolve returns the active discount with the smallest percent among those covering carID,
// or nil when none applies. On equal percents the earliest entry in pool order wins.
func (r *DiscountResolver) Resolve(carID uuid.UUID, pool []Discount) *Discount {
	var best *Discount
	for i := range pool {
		d := &pool[i]
		if !d.Active() || !d.Covers(carID) {
			continue
		}
		if best == nil || d.Percent.LessThan(best.Percent) {
			best = d
		}
	}
	if best == nil {
		return nil
	}
	found := *best
	return &found
}
