package service

import (
	"context"
	"fmt"
	"log/slog"

	"decor-storefront/internal/client"
	"decor-storefront/internal/dto"
	"decor-storefront/internal/metrics"
	"decor-storefront/internal/model"
	"decor-storefront/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CheckoutService interface {
	BuildSession(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	QuoteCart(ctx context.Context, items []*dto.CartItem) (*dto.QuoteResponse, error)
	ListAvailability(ctx context.Context, productID string) (*dto.AvailabilityResponse, error)
}

type checkoutServiceImpl struct {
	db              *gorm.DB
	paymentClient   client.PaymentClient
	pricing         *PricingEngine
	fulfillmentRepo repository.FulfillmentRepository
	bookingRepo     repository.BookingRepository
	log             *slog.Logger
	metrics         *metrics.CheckoutMetrics
}

func NewCheckoutService(
	db *gorm.DB,
	paymentClient client.PaymentClient,
	pricing *PricingEngine,
	fulfillmentRepo repository.FulfillmentRepository,
	bookingRepo repository.BookingRepository,
	log *slog.Logger,
	m *metrics.CheckoutMetrics,
) CheckoutService {
	return &checkoutServiceImpl{
		db:              db,
		paymentClient:   paymentClient,
		pricing:         pricing,
		fulfillmentRepo: fulfillmentRepo,
		bookingRepo:     bookingRepo,
		log:             log,
		metrics:         m,
	}
}

// cartMode rejects carts mixing sale and rental lines. A mixed cart
// is the caller's problem to split into two checkouts; it is never
// merged into one payment request.
func cartMode(items []*dto.CartItem) (ItemMode, error) {
	if len(items) == 0 {
		return "", ErrEmptyCart
	}
	mode := ModeOf(items[0])
	for _, item := range items[1:] {
		if ModeOf(item) != mode {
			return "", ErrMixedCart
		}
	}
	return mode, nil
}

func (s *checkoutServiceImpl) BuildSession(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	if req.Customer.Email == "" {
		return nil, fmt.Errorf("customer email is required")
	}

	mode, err := cartMode(req.Items)
	if err != nil {
		s.metrics.SessionFailures.WithLabelValues("validation").Inc()
		return nil, err
	}

	quote, err := s.pricing.Quote(ctx, req.Items, mode)
	if err != nil {
		s.metrics.SessionFailures.WithLabelValues("validation").Inc()
		return nil, err
	}

	kind := model.KindOrder
	if mode == ModeRental {
		kind = model.KindRental
	}

	record := &model.FulfillmentRecord{
		ID:                uuid.NewString(),
		Kind:              kind,
		CustomerName:      req.Customer.Name,
		CustomerEmail:     req.Customer.Email,
		ShippingAddress:   req.ShippingAddress,
		BillingAddress:    req.BillingAddress,
		Lines:             datatypes.NewJSONSlice(quote.Lines),
		Subtotal:          quote.Subtotal,
		Tax:               quote.Tax,
		Deposit:           quote.Deposit,
		Total:             quote.Total,
		Currency:          quote.Currency,
		PaymentStatus:     model.PaymentPending,
		FulfillmentStatus: model.FulfillmentUnfulfilled,
	}

	// One transaction for the pending record and every provisional
	// window: a conflict on any line leaves nothing behind.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.fulfillmentRepo.Create(ctx, tx, record); err != nil {
			return fmt.Errorf("store fulfillment record: %w", err)
		}

		if mode != ModeRental {
			return nil
		}
		for _, line := range quote.Lines {
			err := s.bookingRepo.ReserveWindow(ctx, tx, &model.BookingWindow{
				ProductID: line.ProductID,
				StartDate: *line.RentalStart,
				EndDate:   *line.RentalEnd,
				RecordID:  record.ID,
				Confirmed: false,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.metrics.SessionFailures.WithLabelValues("reservation").Inc()
		return nil, err
	}

	session, err := s.paymentClient.CreateSession(ctx, quote.Total, quote.Currency, record.ID)
	if err != nil {
		s.rollback(ctx, record.ID)
		s.metrics.SessionFailures.WithLabelValues("provider").Inc()
		return nil, fmt.Errorf("provider create session: %w", err)
	}

	if err := s.fulfillmentRepo.SetSessionID(ctx, record.ID, session.SessionID); err != nil {
		s.rollback(ctx, record.ID)
		s.metrics.SessionFailures.WithLabelValues("persistence").Inc()
		return nil, fmt.Errorf("store session id: %w", err)
	}

	s.metrics.SessionsBuilt.WithLabelValues(string(kind)).Inc()
	s.log.Info("checkout session built",
		"record_id", record.ID,
		"session_id", session.SessionID,
		"kind", kind,
		"total", quote.Total.StringFixed(2),
	)

	return &dto.CheckoutResponse{
		RecordID:    record.ID,
		SessionID:   session.SessionID,
		RedirectURL: session.RedirectURL,
		Subtotal:    quote.Subtotal,
		Tax:         quote.Tax,
		Deposit:     quote.Deposit,
		Total:       quote.Total,
		Currency:    quote.Currency,
	}, nil
}

// rollback undoes a pending record whose payment session never
// materialized. Runs synchronously before the build call returns;
// there is no background cleanup.
func (s *checkoutServiceImpl) rollback(ctx context.Context, recordID string) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.bookingRepo.ReleaseForRecord(ctx, tx, recordID); err != nil {
			return err
		}
		return s.fulfillmentRepo.Delete(ctx, tx, recordID)
	})
	if err != nil {
		s.log.Error("checkout rollback failed", "record_id", recordID, "error", err)
	}
}

func (s *checkoutServiceImpl) QuoteCart(ctx context.Context, items []*dto.CartItem) (*dto.QuoteResponse, error) {
	mode, err := cartMode(items)
	if err != nil {
		return nil, err
	}

	quote, err := s.pricing.Quote(ctx, items, mode)
	if err != nil {
		return nil, err
	}

	return &dto.QuoteResponse{
		Subtotal: quote.Subtotal,
		Tax:      quote.Tax,
		Deposit:  quote.Deposit,
		Total:    quote.Total,
		Currency: quote.Currency,
	}, nil
}

func (s *checkoutServiceImpl) ListAvailability(ctx context.Context, productID string) (*dto.AvailabilityResponse, error) {
	windows, err := s.bookingRepo.ListForProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list booking windows: %w", err)
	}

	resp := &dto.AvailabilityResponse{
		ProductID: productID,
		Windows:   make([]dto.BookedWindow, 0, len(windows)),
	}
	for _, w := range windows {
		resp.Windows = append(resp.Windows, dto.BookedWindow{
			StartDate: w.StartDate,
			EndDate:   w.EndDate,
			Confirmed: w.Confirmed,
		})
	}

	return resp, nil
}
