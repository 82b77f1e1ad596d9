package service

import (
	"context"
	"testing"

	"decor-storefront/internal/dto"
	"decor-storefront/internal/model"
	"decor-storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const adminAddress = "backoffice@example.test"

func newFulfillmentService(t *testing.T, db *gorm.DB, payment *MockPaymentClient, mail *MockMailClient) FulfillmentService {
	t.Helper()
	return NewFulfillmentService(
		db,
		payment,
		repository.NewOutcomeEventRepository(db),
		repository.NewFulfillmentRepository(db),
		repository.NewBookingRepository(db),
		NewInvoiceRenderer(),
		NewNotifier(mail, adminAddress, 0, testLogger()),
		testLogger(),
		testMetrics(),
	)
}

func completedEvent(eventID, sessionID string) *model.ProviderEvent {
	return &model.ProviderEvent{
		ID:        eventID,
		EventType: model.EventSessionCompleted,
		Resource:  model.ProviderResource{ID: sessionID, Status: "COMPLETED"},
	}
}

func failedEvent(eventID, sessionID string) *model.ProviderEvent {
	return &model.ProviderEvent{
		ID:        eventID,
		EventType: model.EventSessionFailed,
		Resource:  model.ProviderResource{ID: sessionID, Status: "FAILED"},
	}
}

// buildRentalSession creates a pending rental record through the real
// checkout flow and returns its response.
func buildRentalSession(t *testing.T, db *gorm.DB, payment *MockPaymentClient) *dto.CheckoutResponse {
	t.Helper()
	svc := newCheckoutService(t, db, payment)
	start, end := rentalWindow("2026-06-01", 3)
	resp, err := svc.BuildSession(context.Background(), buildRequest(
		&dto.CartItem{ProductID: "arch_gold", Quantity: 1, RentalStart: start, RentalEnd: end},
	))
	require.NoError(t, err)
	return resp
}

func loadRecord(t *testing.T, db *gorm.DB, recordID string) *model.FulfillmentRecord {
	t.Helper()
	var record model.FulfillmentRecord
	require.NoError(t, db.First(&record, "id = ?", recordID).Error)
	return &record
}

func TestHandleOutcomeEvent_PaidTransition(t *testing.T) {
	db := newTestDB(t)
	seedProducts(t, db)
	payment := &MockPaymentClient{}
	mail := &MockMailClient{}
	session := buildRentalSession(t, db, payment)

	payment.VerifiedBy = completedEvent("evt-1", session.SessionID)
	svc := newFulfillmentService(t, db, payment, mail)
	require.NoError(t, svc.HandleOutcomeEvent(context.Background(), nil, []byte(`{}`)))

	record := loadRecord(t, db, session.RecordID)
	assert.Equal(t, model.PaymentPaid, record.PaymentStatus)
	assert.Equal(t, model.FulfillmentNotified, record.FulfillmentStatus)

	var window model.BookingWindow
	require.NoError(t, db.First(&window, "record_id = ?", record.ID).Error)
	assert.True(t, window.Confirmed)

	assert.Equal(t, 1, mail.SentTo("dana@example.test"))
	assert.Equal(t, 1, mail.SentTo(adminAddress))
	require.Len(t, mail.Sent, 2)
	assert.NotEmpty(t, mail.Sent[0].Attachment, "receipt carries the invoice")
}

func TestHandleOutcomeEvent_DuplicateEventIsNoOp(t *testing.T) {
	db := newTestDB(t)
	seedProducts(t, db)
	payment := &MockPaymentClient{}
	mail := &MockMailClient{}
	session := buildRentalSession(t, db, payment)

	payment.VerifiedBy = completedEvent("evt-1", session.SessionID)
	svc := newFulfillmentService(t, db, payment, mail)

	require.NoError(t, svc.HandleOutcomeEvent(context.Background(), nil, []byte(`{}`)))
	stateAfterFirst := loadRecord(t, db, session.RecordID)

	// same event id redelivered
	require.NoError(t, svc.HandleOutcomeEvent(context.Background(), nil, []byte(`{}`)))

	stateAfterSecond := loadRecord(t, db, session.RecordID)
	assert.Equal(t, stateAfterFirst.PaymentStatus, stateAfterSecond.PaymentStatus)
	assert.Equal(t, stateAfterFirst.FulfillmentStatus, stateAfterSecond.FulfillmentStatus)
	assert.Len(t, mail.Sent, 2, "side effects ran once")
}

func TestHandleOutcomeEvent_AlreadySettledSession(t *testing.T) {
	db := newTestDB(t)
	seedProducts(t, db)
	payment := &MockPaymentClient{}
	mail := &MockMailClient{}
	session := buildRentalSession(t, db, payment)

	svc := newFulfillmentService(t, db, payment, mail)

	payment.VerifiedBy = completedEvent("evt-1", session.SessionID)
	require.NoError(t, svc.HandleOutcomeEvent(context.Background(), nil, []byte(`{}`)))

	// distinct event id, same session: reordered redundant delivery
	payment.VerifiedBy = completedEvent("evt-2", session.SessionID)
	require.NoError(t, svc.HandleOutcomeEvent(context.Background(), nil, []byte(`{}`)))

	assert.Len(t, mail.Sent, 2, "no second round of side effects")
}

func TestHandleOutcomeEvent_FailureReleasesWindow(t *testing.T) {
	db := newTestDB(t)
	seedProducts(t, db)
	payment := &MockPaymentClient{}
	mail := &MockMailClient{}
	session := buildRentalSession(t, db, payment)

	payment.VerifiedBy = failedEvent("evt-1", session.SessionID)
	svc := newFulfillmentService(t, db, payment, mail)
	require.NoError(t, svc.HandleOutcomeEvent(context.Background(), nil, []byte(`{}`)))

	record := loadRecord(t, db, session.RecordID)
	assert.Equal(t, model.PaymentFailed, record.PaymentStatus)
	assert.Empty(t, mail.Sent, "no notifications on failed payment")

	var windows int64
	require.NoError(t, db.Model(&model.BookingWindow{}).Count(&windows).Error)
	assert.Zero(t, windows)

	// the released range is bookable again
	checkout := newCheckoutService(t, db, payment)
	start, end := rentalWindow("2026-06-01", 3)
	_, err := checkout.BuildSession(context.Background(), buildRequest(
		&dto.CartItem{ProductID: "arch_gold", Quantity: 1, RentalStart: start, RentalEnd: end},
	))
	assert.NoError(t, err)
}

func TestHandleOutcomeEvent_UnknownSession(t *testing.T) {
	db := newTestDB(t)
	seedProducts(t, db)
	payment := &MockPaymentClient{VerifiedBy: completedEvent("evt-1", "sess-nowhere")}
	mail := &MockMailClient{}

	svc := newFulfillmentService(t, db, payment, mail)
	err := svc.HandleOutcomeEvent(context.Background(), nil, []byte(`{}`))

	assert.ErrorIs(t, err, ErrUnknownSession)
	assert.Empty(t, mail.Sent)
}

func TestHandleOutcomeEvent_UnauthorizedEvent(t *testing.T) {
	db := newTestDB(t)
	seedProducts(t, db)
	payment := &MockPaymentClient{VerifyErr: assert.AnError}
	mail := &MockMailClient{}

	svc := newFulfillmentService(t, db, payment, mail)
	err := svc.HandleOutcomeEvent(context.Background(), nil, []byte(`{}`))

	assert.ErrorIs(t, err, ErrUnauthorizedEvent)

	var events int64
	require.NoError(t, db.Model(&model.OutcomeEvent{}).Count(&events).Error)
	assert.Zero(t, events, "unverifiable events are never recorded")
}

func TestHandleOutcomeEvent_CustomerNotifyFailureKeepsPaid(t *testing.T) {
	db := newTestDB(t)
	seedProducts(t, db)
	payment := &MockPaymentClient{}
	mail := &MockMailClient{FailFor: map[string]int{"dana@example.test": -1}}
	session := buildRentalSession(t, db, payment)

	payment.VerifiedBy = completedEvent("evt-1", session.SessionID)
	svc := newFulfillmentService(t, db, payment, mail)
	require.NoError(t, svc.HandleOutcomeEvent(context.Background(), nil, []byte(`{}`)))

	record := loadRecord(t, db, session.RecordID)
	assert.Equal(t, model.PaymentPaid, record.PaymentStatus, "payment never reverted")
	assert.Equal(t, model.FulfillmentNotifyFailed, record.FulfillmentStatus)
	assert.Contains(t, record.LastError, "customer notification failed")

	assert.Equal(t, 1, mail.SentTo(adminAddress), "admin send unaffected")
	assert.Equal(t, 0, mail.SentTo("dana@example.test"))
}

func TestRegenerateInvoice_Deterministic(t *testing.T) {
	db := newTestDB(t)
	seedProducts(t, db)
	payment := &MockPaymentClient{}
	mail := &MockMailClient{}
	session := buildRentalSession(t, db, payment)

	payment.VerifiedBy = completedEvent("evt-1", session.SessionID)
	svc := newFulfillmentService(t, db, payment, mail)
	require.NoError(t, svc.HandleOutcomeEvent(context.Background(), nil, []byte(`{}`)))

	first, err := svc.RegenerateInvoice(context.Background(), session.RecordID)
	require.NoError(t, err)
	second, err := svc.RegenerateInvoice(context.Background(), session.RecordID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, mail.Sent, 2)
	assert.Equal(t, mail.Sent[0].Attachment, first, "regeneration matches the attached document")
}
