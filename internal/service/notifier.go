package service

import (
	"context"
	"fmt"
	"log/slog"

	"decor-storefront/internal/client"
	"decor-storefront/internal/model"

	"github.com/cenkalti/backoff/v4"
)

type NotifyOutcome struct {
	CustomerSent bool
	AdminSent    bool
}

func (o NotifyOutcome) failureSummary() string {
	switch {
	case !o.CustomerSent && !o.AdminSent:
		return "customer and admin notifications failed"
	case !o.CustomerSent:
		return "customer notification failed"
	case !o.AdminSent:
		return "admin notification failed"
	}
	return ""
}

// Notifier sends the customer receipt and the admin alert. The two
// sends are independent: each has its own retry budget and a failure
// of one never aborts the other.
type Notifier struct {
	mail         client.MailClient
	adminAddress string
	maxRetries   uint64
	log          *slog.Logger
}

func NewNotifier(mail client.MailClient, adminAddress string, maxRetries uint64, log *slog.Logger) *Notifier {
	return &Notifier{
		mail:         mail,
		adminAddress: adminAddress,
		maxRetries:   maxRetries,
		log:          log,
	}
}

func (n *Notifier) Dispatch(ctx context.Context, record *model.FulfillmentRecord, invoice []byte) NotifyOutcome {
	noun := "order"
	if record.Kind == model.KindRental {
		noun = "rental"
	}

	customerSubject := fmt.Sprintf("Your %s confirmation (%s)", noun, record.ID)
	customerBody := fmt.Sprintf(
		"<p>Hi %s,</p><p>Thank you! Your %s of %s %s is confirmed. Your invoice is attached.</p>",
		record.CustomerName, noun, record.Total.StringFixed(2), record.Currency,
	)

	adminSubject := fmt.Sprintf("New paid %s %s", noun, record.ID)
	adminBody := fmt.Sprintf(
		"<p>%s &lt;%s&gt; paid %s %s. Invoice attached.</p>",
		record.CustomerName, record.CustomerEmail, record.Total.StringFixed(2), record.Currency,
	)

	return NotifyOutcome{
		CustomerSent: n.sendWithRetry(ctx, record.ID, record.CustomerEmail, customerSubject, customerBody, invoice),
		AdminSent:    n.sendWithRetry(ctx, record.ID, n.adminAddress, adminSubject, adminBody, invoice),
	}
}

func (n *Notifier) sendWithRetry(ctx context.Context, recordID, to, subject, body string, attachment []byte) bool {
	operation := func() error {
		return n.mail.Send(ctx, to, subject, body, attachment)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), n.maxRetries),
		ctx,
	)

	if err := backoff.Retry(operation, policy); err != nil {
		n.log.Error("notification send exhausted retries",
			"record_id", recordID,
			"to", to,
			"error", err,
		)
		return false
	}

	return true
}
