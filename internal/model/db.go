package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type RecordKind string

const (
	KindOrder  RecordKind = "ORDER"
	KindRental RecordKind = "RENTAL"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

type FulfillmentStatus string

const (
	FulfillmentUnfulfilled  FulfillmentStatus = "UNFULFILLED"
	FulfillmentInvoiced     FulfillmentStatus = "INVOICED"
	FulfillmentNotified     FulfillmentStatus = "NOTIFIED"
	FulfillmentNotifyFailed FulfillmentStatus = "NOTIFY_FAILED"
)

type Product struct {
	ID          string `gorm:"primaryKey;size:64;not null"` // product sku
	Name        string `gorm:"size:128;not null"`
	Description string
	ImageURL    string
	Active      bool            `gorm:"index;not null"`
	ForSale     bool            `gorm:"not null"`
	ForRent     bool            `gorm:"not null"`
	SalePrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	DailyRate   decimal.Decimal `gorm:"type:decimal(10,2);not null"` // rental price per day
	Currency    string          `gorm:"size:8;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductOption is one selectable customization value, e.g.
// (finish, "gold leaf", +12.00). A selection is valid only if a row
// with the same name and value exists for the product.
type ProductOption struct {
	ID        uint            `gorm:"primaryKey"`
	ProductID string          `gorm:"index;not null"`
	Name      string          `gorm:"size:64;not null"`
	Value     string          `gorm:"size:64;not null"`
	Surcharge decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

// CustomizationSelection is the persisted form of one chosen option.
// Stored as an ordered slice, never as a map, so the snapshot
// serializes the same way every time.
type CustomizationSelection struct {
	Name      string          `json:"name"`
	Value     string          `json:"value"`
	Surcharge decimal.Decimal `json:"surcharge"`
}

// LineSnapshot freezes one cart line at session-build time. Rental
// fields are zero for sale lines.
type LineSnapshot struct {
	ProductID      string                   `json:"product_id"`
	Name           string                   `json:"name"`
	ImageURL       string                   `json:"image_url,omitempty"`
	Quantity       int32                    `json:"quantity"`
	UnitPrice      decimal.Decimal          `json:"unit_price"`
	Customizations []CustomizationSelection `json:"customizations,omitempty"`
	RentalStart    *time.Time               `json:"rental_start,omitempty"`
	RentalEnd      *time.Time               `json:"rental_end,omitempty"`
	Days           int32                    `json:"days,omitempty"`
	DailyRate      decimal.Decimal          `json:"daily_rate"`
	LineTotal      decimal.Decimal          `json:"line_total"`
}

// FulfillmentRecord is an order or rental. Created PENDING by the
// checkout service; after that only the fulfillment service mutates
// it. Rows are never deleted once a payment session exists for them.
type FulfillmentRecord struct {
	ID                string                            `gorm:"primaryKey;size:64;not null"`
	Kind              RecordKind                        `gorm:"size:16;index;not null"`
	CustomerName      string                            `gorm:"size:128;not null"`
	CustomerEmail     string                            `gorm:"size:128;index;not null"`
	ShippingAddress   string                            `gorm:"not null"`
	BillingAddress    string                            `gorm:"not null"`
	Lines             datatypes.JSONSlice[LineSnapshot] `gorm:"not null"`
	Subtotal          decimal.Decimal                   `gorm:"type:decimal(10,2);not null"`
	Tax               decimal.Decimal                   `gorm:"type:decimal(10,2);not null"`
	Deposit           decimal.Decimal                   `gorm:"type:decimal(10,2);not null"`
	Total             decimal.Decimal                   `gorm:"type:decimal(10,2);not null"`
	Currency          string                            `gorm:"size:8;not null"`
	PaymentSessionID  string                            `gorm:"size:128;index"`
	PaymentStatus     PaymentStatus                     `gorm:"size:16;index;not null"`
	FulfillmentStatus FulfillmentStatus                 `gorm:"size:16;not null"`
	LastError         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// BookingWindow reserves [StartDate, EndDate) of a product for one
// fulfillment record. Provisional (Confirmed=false) windows block
// overlapping reservations exactly like confirmed ones.
type BookingWindow struct {
	ID        uint      `gorm:"primaryKey"`
	ProductID string    `gorm:"index;not null"`
	StartDate time.Time `gorm:"not null"`
	EndDate   time.Time `gorm:"not null"`
	RecordID  string    `gorm:"index;not null"`
	Confirmed bool      `gorm:"not null"`
	CreatedAt time.Time
}

// OutcomeEvent marks a provider event id as processed. The primary
// key is the dedup point: a second insert of the same id affects
// zero rows.
type OutcomeEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	SessionID   string `gorm:"size:128;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
