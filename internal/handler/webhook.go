package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"decor-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type WebhookHandler struct {
	fulfillmentService service.FulfillmentService
	log                *slog.Logger
}

func NewWebhookHandler(fulfillmentService service.FulfillmentService, log *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		fulfillmentService: fulfillmentService,
		log:                log,
	}
}

// ProviderWebhook receives payment outcome events. The raw body goes
// to signature verification untouched; parsing it here first would
// invalidate the signature.
func (h *WebhookHandler) ProviderWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	err = h.fulfillmentService.HandleOutcomeEvent(ctx, c.Request().Header, body)
	switch {
	case err == nil:
		return c.NoContent(http.StatusOK)
	case errors.Is(err, service.ErrUnauthorizedEvent):
		h.log.Warn("unauthorized outcome event dropped", "error", err)
		return c.NoContent(http.StatusBadRequest)
	case errors.Is(err, service.ErrUnknownSession):
		// Dropped, not retried: redelivery of a session we cannot
		// resolve changes nothing.
		h.log.Warn("outcome event for unknown session dropped", "error", err)
		return c.NoContent(http.StatusOK)
	default:
		// Transient failure; a non-2xx makes the provider redeliver.
		return err
	}
}
