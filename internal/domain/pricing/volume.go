package pricing

import "github.com/shopspring/decimal"

// One is the multiplicative identity used when no volume discount applies
var One = decimal.NewFromInt(1)

// VolumeTerms is a seller's standing loyalty offer: after Threshold completed sales to the
// same buyer, every further unit is multiplied by Fraction.
type VolumeTerms struct {
	Threshold int
	Fraction  decimal.Decimal
}

// VolumeDiscountCalculator applies volume terms against a buyer's history
type VolumeDiscountCalculator struct{}

// NewVolumeDiscountCalculator creates a new VolumeDiscountCalculator
func NewVolumeDiscountCalculator() *VolumeDiscountCalculator {
	return &VolumeDiscountCalculator{}
}

// Multiplier returns terms.Fraction once historyCount reaches the threshold, else exactly 1
func (c *VolumeDiscountCalculator) Multiplier(terms VolumeTerms, historyCount int64) decimal.Decimal {
	if int64(terms.Threshold) <= historyCount {
		return terms.Fraction
	}
	return One
}
