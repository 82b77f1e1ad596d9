package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"testing"

	"decor-storefront/internal/client"
	"decor-storefront/internal/metrics"
	"decor-storefront/internal/model"
	"decor-storefront/internal/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MockPaymentClient implements client.PaymentClient for testing
type MockPaymentClient struct {
	mu         sync.Mutex
	CreateErr  error
	Created    []string // references passed to CreateSession
	VerifiedBy *model.ProviderEvent
	VerifyErr  error
}

func (m *MockPaymentClient) CreateSession(_ context.Context, _ decimal.Decimal, _ string, reference string) (*client.CreateSessionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.Created = append(m.Created, reference)
	return &client.CreateSessionResponse{
		SessionID:   "sess-" + reference,
		RedirectURL: "https://pay.example.test/approve/" + reference,
	}, nil
}

func (m *MockPaymentClient) VerifyEvent(_ context.Context, _ http.Header, _ []byte) (*model.ProviderEvent, error) {
	if m.VerifyErr != nil {
		return nil, m.VerifyErr
	}
	return m.VerifiedBy, nil
}

type SentMail struct {
	To         string
	Subject    string
	Attachment []byte
}

// MockMailClient implements client.MailClient for testing. Addresses
// in FailFor fail that many times before succeeding; -1 fails always.
type MockMailClient struct {
	mu      sync.Mutex
	FailFor map[string]int
	Sent    []SentMail
}

func (m *MockMailClient) Send(_ context.Context, to, subject, _ string, attachment []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if remaining, ok := m.FailFor[to]; ok && remaining != 0 {
		if remaining > 0 {
			m.FailFor[to] = remaining - 1
		}
		return fmt.Errorf("mail api error 502: upstream unavailable")
	}
	m.Sent = append(m.Sent, SentMail{To: to, Subject: subject, Attachment: attachment})
	return nil
}

func (m *MockMailClient) SentTo(to string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.Sent {
		if s.To == to {
			n++
		}
	}
	return n
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetrics() *metrics.CheckoutMetrics {
	return metrics.NewCheckoutMetrics(prometheus.NewRegistry())
}

// newTestDB opens a throwaway sqlite database with one writer
// connection so concurrent transactions serialize instead of
// tripping SQLITE_BUSY.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Product{},
		&model.ProductOption{},
		&model.FulfillmentRecord{},
		&model.BookingWindow{},
		&model.OutcomeEvent{},
	))

	return db
}

func seedProducts(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, repository.NewProductRepository(db).Seed(context.Background()))
}
