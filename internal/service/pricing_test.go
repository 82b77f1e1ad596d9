package service

import (
	"context"
	"testing"
	"time"

	"decor-storefront/internal/dto"
	"decor-storefront/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPricingEngine(t *testing.T, db *gorm.DB) *PricingEngine {
	t.Helper()
	return NewPricingEngine(
		repository.NewProductRepository(db),
		decimal.RequireFromString("0.08"),
		decimal.RequireFromString("0.20"),
		"USD",
	)
}

func rentalWindow(start string, days int) (*time.Time, *time.Time) {
	s, _ := time.Parse("2006-01-02", start)
	e := s.AddDate(0, 0, days)
	return &s, &e
}

func TestQuote_RentalDepositScenario(t *testing.T) {
	db := newTestDB(t)
	seedProducts(t, db)
	engine := newPricingEngine(t, db)

	// $20/day, 3 days, 20% deposit
	start, end := rentalWindow("2026-06-01", 3)
	quote, err := engine.Quote(context.Background(), []*dto.CartItem{
		{ProductID: "arch_gold", Quantity: 1, RentalStart: start, RentalEnd: end},
	}, ModeRental)

	require.NoError(t, err)
	assert.True(t, quote.Subtotal.Equal(decimal.NewFromInt(60)), "subtotal = %s", quote.Subtotal)
	assert.True(t, quote.Deposit.Equal(decimal.NewFromInt(12)), "deposit = %s", quote.Deposit)
	assert.True(t, quote.Tax.IsZero())
	assert.True(t, quote.Total.Equal(decimal.NewFromInt(72)), "total = %s", quote.Total)
	require.Len(t, quote.Lines, 1)
	assert.EqualValues(t, 3, quote.Lines[0].Days)
}

func TestQuote_SaleWithCustomizationAndTax(t *testing.T) {
	db := newTestDB(t)
	seedProducts(t, db)
	engine := newPricingEngine(t, db)

	// (45 + 12 surcharge) x 2 = 114, 8% tax = 9.12
	quote, err := engine.Quote(context.Background(), []*dto.CartItem{
		{
			ProductID:      "vase_ceramic",
			Quantity:       2,
			Customizations: []dto.Selection{{Name: "finish", Value: "gold leaf"}},
		},
	}, ModeSale)

	require.NoError(t, err)
	assert.True(t, quote.Subtotal.Equal(decimal.NewFromInt(114)), "subtotal = %s", quote.Subtotal)
	assert.True(t, quote.Tax.Equal(decimal.RequireFromString("9.12")), "tax = %s", quote.Tax)
	assert.True(t, quote.Deposit.IsZero())
	assert.True(t, quote.Total.Equal(decimal.RequireFromString("123.12")), "total = %s", quote.Total)
}

func TestQuote_IsPure(t *testing.T) {
	db := newTestDB(t)
	seedProducts(t, db)
	engine := newPricingEngine(t, db)

	items := []*dto.CartItem{{ProductID: "vase_ceramic", Quantity: 3}}

	first, err := engine.Quote(context.Background(), items, ModeSale)
	require.NoError(t, err)
	second, err := engine.Quote(context.Background(), items, ModeSale)
	require.NoError(t, err)

	assert.True(t, first.Total.Equal(second.Total))
	assert.Equal(t, first.Lines, second.Lines)
}

func TestQuote_UnknownProduct(t *testing.T) {
	db := newTestDB(t)
	seedProducts(t, db)
	engine := newPricingEngine(t, db)

	_, err := engine.Quote(context.Background(), []*dto.CartItem{
		{ProductID: "no_such_sku", Quantity: 1},
	}, ModeSale)

	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestQuote_RentingDisabled(t *testing.T) {
	db := newTestDB(t)
	seedProducts(t, db)
	engine := newPricingEngine(t, db)

	start, end := rentalWindow("2026-06-01", 2)
	_, err := engine.Quote(context.Background(), []*dto.CartItem{
		{ProductID: "vase_ceramic", Quantity: 1, RentalStart: start, RentalEnd: end},
	}, ModeRental)

	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestQuote_UndefinedCustomization(t *testing.T) {
	db := newTestDB(t)
	seedProducts(t, db)
	engine := newPricingEngine(t, db)

	_, err := engine.Quote(context.Background(), []*dto.CartItem{
		{
			ProductID:      "vase_ceramic",
			Quantity:       1,
			Customizations: []dto.Selection{{Name: "finish", Value: "neon"}},
		},
	}, ModeSale)

	assert.ErrorIs(t, err, ErrInvalidCustomization)
}

func TestQuote_InvalidWindow(t *testing.T) {
	db := newTestDB(t)
	seedProducts(t, db)
	engine := newPricingEngine(t, db)

	end, start := rentalWindow("2026-06-01", 3) // reversed
	_, err := engine.Quote(context.Background(), []*dto.CartItem{
		{ProductID: "arch_gold", Quantity: 1, RentalStart: start, RentalEnd: end},
	}, ModeRental)

	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestQuote_NonPositiveQuantity(t *testing.T) {
	db := newTestDB(t)
	seedProducts(t, db)
	engine := newPricingEngine(t, db)

	_, err := engine.Quote(context.Background(), []*dto.CartItem{
		{ProductID: "vase_ceramic", Quantity: 0},
	}, ModeSale)

	assert.ErrorIs(t, err, ErrInvalidQuantity)
}
