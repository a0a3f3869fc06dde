package pricing

import "github.com/shopspring/decimal"

// moneyPlaces is the scale balances and prices are stored with
const moneyPlaces = 2

// PriceSource tells which rule produced the chosen price
type PriceSource string

const (
	PriceSourceVolume PriceSource = "volume"
	PriceSourcePromo  PriceSource = "promo"
)

// PromoQuote is the promotional alternative: a listed price and the resolved percent
type PromoQuote struct {
	ListPrice decimal.Decimal
	Percent   decimal.Decimal
}

// Price returns the promotional price. The percent is applied as a direct multiplier,
// matching how promotional percentages have always been booked.
func (q PromoQuote) Price() decimal.Decimal {
	return RoundMoney(q.ListPrice.Mul(q.Percent))
}

// PriceChoice is the outcome of comparing the volume price with the promo alternative
type PriceChoice struct {
	Price  decimal.Decimal
	Source PriceSource
}

// ChoosePrice keeps listPrice*multiplier when there is no promo or when it is strictly
// cheaper than the promo; otherwise the promo wins.
func ChoosePrice(listPrice, multiplier decimal.Decimal, promo *PromoQuote) PriceChoice {
	volume := RoundMoney(listPrice.Mul(multiplier))
	if promo == nil {
		return PriceChoice{Price: volume, Source: PriceSourceVolume}
	}
	promoPrice := promo.Price()
	if volume.LessThan(promoPrice) {
		return PriceChoice{Price: volume, Source: PriceSourceVolume}
	}
	return PriceChoice{Price: promoPrice, Source: PriceSourcePromo}
}

// RoundMoney rounds to cents with banker's rounding
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(moneyPlaces)
}

// Affordable reports whether price is strictly below the available amount
func Affordable(price, available decimal.Decimal) bool {
	return price.LessThan(available)
}
