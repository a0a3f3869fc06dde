package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestChoosePrice(t *testing.T) {
	list := decimal.NewFromInt(1000)

	t.Run("volume price without promo", func(t *testing.T) {
		choice := ChoosePrice(list, decimal.RequireFromString("0.8"), nil)
		assert.Equal(t, PriceSourceVolume, choice.Source)
		assert.True(t, decimal.NewFromInt(800).Equal(choice.Price))
	})

	t.Run("promo wins when cheaper", func(t *testing.T) {
		choice := ChoosePrice(list, One, &PromoQuote{ListPrice: list, Percent: decimal.RequireFromString("0.3")})
		assert.Equal(t, PriceSourcePromo, choice.Source)
		assert.True(t, decimal.NewFromInt(300).Equal(choice.Price))
	})

	t.Run("volume wins when strictly cheaper", func(t *testing.T) {
		choice := ChoosePrice(list, decimal.RequireFromString("0.2"), &PromoQuote{ListPrice: list, Percent: decimal.RequireFromString("0.3")})
		assert.Equal(t, PriceSourceVolume, choice.Source)
		assert.True(t, decimal.NewFromInt(200).Equal(choice.Price))
	})

	t.Run("promo wins ties", func(t *testing.T) {
		choice := ChoosePrice(list, decimal.RequireFromString("0.3"), &PromoQuote{ListPrice: list, Percent: decimal.RequireFromString("0.3")})
		assert.Equal(t, PriceSourcePromo, choice.Source)
	})

	t.Run("rounds to cents", func(t *testing.T) {
		choice := ChoosePrice(decimal.RequireFromString("999.99"), decimal.RequireFromString("0.33"), nil)
		assert.Equal(t, "330.00", choice.Price.StringFixed(2))
	})
}

func TestAffordable(t *testing.T) {
	assert.False(t, Affordable(decimal.NewFromInt(500), decimal.NewFromInt(500)))
	assert.True(t, Affordable(decimal.NewFromInt(500), decimal.NewFromInt(501)))
	assert.False(t, Affordable(decimal.NewFromInt(502), decimal.NewFromInt(501)))
}
