package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"decor-storefront/internal/dto"
	"decor-storefront/internal/model"
	"decor-storefront/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ItemMode string

const (
	ModeSale   ItemMode = "SALE"
	ModeRental ItemMode = "RENTAL"
)

// ModeOf classifies a cart item: a rental window makes it a rental
// line, its absence a sale line. An item is never both.
func ModeOf(item *dto.CartItem) ItemMode {
	if item.RentalStart != nil || item.RentalEnd != nil {
		return ModeRental
	}
	return ModeSale
}

type Quote struct {
	Lines    []model.LineSnapshot
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Deposit  decimal.Decimal
	Total    decimal.Decimal
	Currency string
}

// PricingEngine turns validated cart items into priced line
// snapshots. It only reads product state; calling it repeatedly with
// the same cart yields the same quote, so it doubles as the quoting
// backend.
type PricingEngine struct {
	products    repository.ProductRepository
	taxRate     decimal.Decimal
	depositRate decimal.Decimal
	currency    string
}

func NewPricingEngine(products repository.ProductRepository, taxRate, depositRate decimal.Decimal, currency string) *PricingEngine {
	return &PricingEngine{
		products:    products,
		taxRate:     taxRate,
		depositRate: depositRate,
		currency:    currency,
	}
}

// Quote prices a single-mode cart. Sale carts get tax on the
// subtotal; rental carts get a deposit instead.
func (e *PricingEngine) Quote(ctx context.Context, items []*dto.CartItem, mode ItemMode) (*Quote, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	quote := &Quote{
		Lines:    make([]model.LineSnapshot, 0, len(items)),
		Subtotal: decimal.Zero,
		Tax:      decimal.Zero,
		Deposit:  decimal.Zero,
		Currency: e.currency,
	}

	for _, item := range items {
		line, err := e.priceLine(ctx, item, mode)
		if err != nil {
			return nil, err
		}
		quote.Lines = append(quote.Lines, *line)
		quote.Subtotal = quote.Subtotal.Add(line.LineTotal)
	}

	switch mode {
	case ModeSale:
		quote.Tax = quote.Subtotal.Mul(e.taxRate).Round(2)
	case ModeRental:
		quote.Deposit = quote.Subtotal.Mul(e.depositRate).Round(2)
	}
	quote.Total = quote.Subtotal.Add(quote.Tax).Add(quote.Deposit)

	return quote, nil
}

func (e *PricingEngine) priceLine(ctx context.Context, item *dto.CartItem, mode ItemMode) (*model.LineSnapshot, error) {
	if item.Quantity <= 0 {
		return nil, fmt.Errorf("%w: product %q", ErrInvalidQuantity, item.ProductID)
	}

	product, err := e.products.FindByID(ctx, item.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidProduct, item.ProductID)
		}
		return nil, fmt.Errorf("load product %q: %w", item.ProductID, err)
	}
	if !product.Active {
		return nil, fmt.Errorf("%w: %q is inactive", ErrInvalidProduct, item.ProductID)
	}

	line := &model.LineSnapshot{
		ProductID: product.ID,
		Name:      product.Name,
		ImageURL:  product.ImageURL,
		Quantity:  item.Quantity,
	}

	var unit decimal.Decimal
	switch mode {
	case ModeSale:
		if !product.ForSale {
			return nil, fmt.Errorf("%w: %q is not for sale", ErrInvalidProduct, item.ProductID)
		}
		unit = product.SalePrice
		line.UnitPrice = product.SalePrice
	case ModeRental:
		if !product.ForRent {
			return nil, fmt.Errorf("%w: renting disabled for %q", ErrInvalidProduct, item.ProductID)
		}
		days, err := rentalDays(item)
		if err != nil {
			return nil, err
		}
		unit = product.DailyRate.Mul(decimal.NewFromInt(int64(days)))
		line.UnitPrice = unit
		line.RentalStart = item.RentalStart
		line.RentalEnd = item.RentalEnd
		line.Days = days
		line.DailyRate = product.DailyRate
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidProduct, mode)
	}

	selections, err := e.resolveCustomizations(ctx, product.ID, item.Customizations)
	if err != nil {
		return nil, err
	}
	line.Customizations = selections
	for _, sel := range selections {
		unit = unit.Add(sel.Surcharge)
	}

	line.LineTotal = unit.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)

	return line, nil
}

// resolveCustomizations matches each selection against the product's
// defined options, attaching the option's surcharge. Order of the
// incoming selections is preserved in the snapshot.
func (e *PricingEngine) resolveCustomizations(ctx context.Context, productID string, selections []dto.Selection) ([]model.CustomizationSelection, error) {
	if len(selections) == 0 {
		return nil, nil
	}

	options, err := e.products.FindOptions(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load options for %q: %w", productID, err)
	}

	resolved := make([]model.CustomizationSelection, 0, len(selections))
	for _, sel := range selections {
		option := findOption(options, sel.Name, sel.Value)
		if option == nil {
			return nil, fmt.Errorf("%w: %s=%s on %q", ErrInvalidCustomization, sel.Name, sel.Value, productID)
		}
		resolved = append(resolved, model.CustomizationSelection{
			Name:      option.Name,
			Value:     option.Value,
			Surcharge: option.Surcharge,
		})
	}

	return resolved, nil
}

func findOption(options []*model.ProductOption, name, value string) *model.ProductOption {
	for _, option := range options {
		if option.Name == name && option.Value == value {
			return option
		}
	}
	return nil
}

// rentalDays measures the half-open window [start, end) in whole
// days, rounding partial days up.
func rentalDays(item *dto.CartItem) (int32, error) {
	if item.RentalStart == nil || item.RentalEnd == nil {
		return 0, fmt.Errorf("%w: product %q", ErrInvalidWindow, item.ProductID)
	}
	hours := item.RentalEnd.Sub(*item.RentalStart).Hours()
	if hours <= 0 {
		return 0, fmt.Errorf("%w: product %q", ErrInvalidWindow, item.ProductID)
	}
	return int32(math.Ceil(hours / 24)), nil
}
