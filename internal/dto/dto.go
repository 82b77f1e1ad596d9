package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type Selection struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type CartItem struct {
	ProductID      string      `json:"product_id"`
	Quantity       int32       `json:"quantity"`
	Customizations []Selection `json:"customizations,omitempty"`
	RentalStart    *time.Time  `json:"rental_start,omitempty"`
	RentalEnd      *time.Time  `json:"rental_end,omitempty"`
}

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CheckoutRequest struct {
	Items           []*CartItem `json:"items"`
	Customer        Customer    `json:"customer"`
	ShippingAddress string      `json:"shipping_address"`
	BillingAddress  string      `json:"billing_address"`
}

type CheckoutResponse struct {
	RecordID    string          `json:"record_id"`
	SessionID   string          `json:"session_id"`
	RedirectURL string          `json:"redirect_url"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	Deposit     decimal.Decimal `json:"deposit"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"`
}

type QuoteRequest struct {
	Items []*CartItem `json:"items"`
}

type QuoteResponse struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Deposit  decimal.Decimal `json:"deposit"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}

type BookedWindow struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Confirmed bool      `json:"confirmed"`
}

type AvailabilityResponse struct {
	ProductID string         `json:"product_id"`
	Windows   []BookedWindow `json:"windows"`
}
