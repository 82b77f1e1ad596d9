package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"decor-storefront/internal/client"
	"decor-storefront/internal/metrics"
	"decor-storefront/internal/model"
	"decor-storefront/internal/repository"

	"gorm.io/gorm"
)

type FulfillmentService interface {
	HandleOutcomeEvent(ctx context.Context, headers http.Header, body []byte) error
	RegenerateInvoice(ctx context.Context, recordID string) ([]byte, error)
}

type fulfillmentServiceImpl struct {
	db              *gorm.DB
	paymentClient   client.PaymentClient
	eventRepo       repository.OutcomeEventRepository
	fulfillmentRepo repository.FulfillmentRepository
	bookingRepo     repository.BookingRepository
	invoices        *InvoiceRenderer
	notifier        *Notifier
	log             *slog.Logger
	metrics         *metrics.CheckoutMetrics
}

func NewFulfillmentService(
	db *gorm.DB,
	paymentClient client.PaymentClient,
	eventRepo repository.OutcomeEventRepository,
	fulfillmentRepo repository.FulfillmentRepository,
	bookingRepo repository.BookingRepository,
	invoices *InvoiceRenderer,
	notifier *Notifier,
	log *slog.Logger,
	m *metrics.CheckoutMetrics,
) FulfillmentService {
	return &fulfillmentServiceImpl{
		db:              db,
		paymentClient:   paymentClient,
		eventRepo:       eventRepo,
		fulfillmentRepo: fulfillmentRepo,
		bookingRepo:     bookingRepo,
		invoices:        invoices,
		notifier:        notifier,
		log:             log,
		metrics:         m,
	}
}

// HandleOutcomeEvent drives a fulfillment record through the payment
// state machine from one verified provider delivery. Safe to call
// any number of times per event id.
func (s *fulfillmentServiceImpl) HandleOutcomeEvent(ctx context.Context, headers http.Header, body []byte) error {
	event, err := s.paymentClient.VerifyEvent(ctx, headers, body)
	if err != nil {
		s.metrics.OutcomeEvents.WithLabelValues("unauthorized").Inc()
		return fmt.Errorf("%w: %s", ErrUnauthorizedEvent, err)
	}

	switch event.EventType {
	case model.EventSessionCompleted:
		return s.settle(ctx, event, model.PaymentPaid)
	case model.EventSessionFailed:
		return s.settle(ctx, event, model.PaymentFailed)
	default:
		s.log.Info("ignoring outcome event", "event_id", event.ID, "event_type", event.EventType)
		return nil
	}
}

func (s *fulfillmentServiceImpl) settle(ctx context.Context, event *model.ProviderEvent, to model.PaymentStatus) error {
	sessionID := event.Resource.ID

	var (
		record       *model.FulfillmentRecord
		transitioned bool
		duplicate    bool
	)

	// Event claim, record lookup and the conditional transition
	// commit or roll back together. Side effects run strictly after,
	// with no transaction open.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claimed, err := s.eventRepo.Claim(ctx, tx, &model.OutcomeEvent{
			EventID:   event.ID,
			EventType: event.EventType,
			SessionID: sessionID,
		})
		if err != nil {
			return fmt.Errorf("claim outcome event: %w", err)
		}
		if !claimed {
			duplicate = true
			return nil
		}

		record, err = s.fulfillmentRepo.FindBySessionID(ctx, tx, sessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %q", ErrUnknownSession, sessionID)
			}
			return fmt.Errorf("resolve session %q: %w", sessionID, err)
		}

		if to == model.PaymentPaid {
			transitioned, err = s.fulfillmentRepo.MarkPaid(ctx, tx, record.ID)
		} else {
			transitioned, err = s.fulfillmentRepo.MarkFailed(ctx, tx, record.ID)
		}
		if err != nil {
			return fmt.Errorf("transition record %q: %w", record.ID, err)
		}
		if !transitioned {
			// Already settled by an earlier event, possibly delivered
			// out of order. Nothing further to do.
			return nil
		}

		if to == model.PaymentPaid {
			return s.bookingRepo.ConfirmForRecord(ctx, tx, record.ID)
		}
		return s.bookingRepo.ReleaseForRecord(ctx, tx, record.ID)
	})
	if err != nil {
		if errors.Is(err, ErrUnknownSession) {
			s.metrics.OutcomeEvents.WithLabelValues("unknown_session").Inc()
		} else {
			s.metrics.OutcomeEvents.WithLabelValues("error").Inc()
		}
		return err
	}

	if duplicate {
		s.metrics.OutcomeEvents.WithLabelValues("duplicate").Inc()
		s.log.Info("duplicate outcome event", "event_id", event.ID)
		return nil
	}
	if !transitioned {
		s.metrics.OutcomeEvents.WithLabelValues("already_settled").Inc()
		s.log.Info("record already settled", "event_id", event.ID, "record_id", record.ID)
		return nil
	}

	s.metrics.OutcomeEvents.WithLabelValues("processed").Inc()
	s.log.Info("payment settled",
		"event_id", event.ID,
		"record_id", record.ID,
		"status", to,
	)

	if to == model.PaymentPaid {
		s.fulfill(ctx, record.ID)
	}

	return nil
}

// fulfill runs the post-payment side effects: invoice, then the two
// notifications. Failures here are recorded on the record and never
// touch its payment status; the money stays captured.
func (s *fulfillmentServiceImpl) fulfill(ctx context.Context, recordID string) {
	record, err := s.fulfillmentRepo.FindByID(ctx, recordID)
	if err != nil {
		s.log.Error("load record for fulfillment", "record_id", recordID, "error", err)
		return
	}

	document, err := s.invoices.Render(record)
	if err != nil {
		s.log.Error("invoice render failed", "record_id", recordID, "error", err)
		if err := s.fulfillmentRepo.SetFulfillmentStatus(ctx, recordID, model.FulfillmentUnfulfilled, err.Error()); err != nil {
			s.log.Error("record invoice failure", "record_id", recordID, "error", err)
		}
		return
	}

	if err := s.fulfillmentRepo.SetFulfillmentStatus(ctx, recordID, model.FulfillmentInvoiced, ""); err != nil {
		s.log.Error("mark invoiced", "record_id", recordID, "error", err)
	}

	outcome := s.notifier.Dispatch(ctx, record, document)
	s.recordNotifyOutcome(ctx, recordID, outcome)
}

func (s *fulfillmentServiceImpl) recordNotifyOutcome(ctx context.Context, recordID string, outcome NotifyOutcome) {
	s.metrics.Notifications.WithLabelValues("customer", resultLabel(outcome.CustomerSent)).Inc()
	s.metrics.Notifications.WithLabelValues("admin", resultLabel(outcome.AdminSent)).Inc()

	status := model.FulfillmentNotified
	lastError := ""
	if !outcome.CustomerSent || !outcome.AdminSent {
		status = model.FulfillmentNotifyFailed
		lastError = outcome.failureSummary()
	}

	if err := s.fulfillmentRepo.SetFulfillmentStatus(ctx, recordID, status, lastError); err != nil {
		s.log.Error("record notification outcome", "record_id", recordID, "error", err)
	}
}

func resultLabel(sent bool) string {
	if sent {
		return "sent"
	}
	return "failed"
}

// RegenerateInvoice re-renders the stored snapshot. Rendering is
// deterministic, so the output matches the one attached to the
// original notifications byte for byte.
func (s *fulfillmentServiceImpl) RegenerateInvoice(ctx context.Context, recordID string) ([]byte, error) {
	record, err := s.fulfillmentRepo.FindByID(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("load record %q: %w", recordID, err)
	}

	return s.invoices.Render(record)
}
