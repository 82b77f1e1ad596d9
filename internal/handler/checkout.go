package handler

import (
	"errors"
	"net/http"

	"decor-storefront/internal/dto"
	"decor-storefront/internal/repository"
	"decor-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	checkoutService    service.CheckoutService
	fulfillmentService service.FulfillmentService
}

func NewCheckoutHandler(checkoutService service.CheckoutService, fulfillmentService service.FulfillmentService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService:    checkoutService,
		fulfillmentService: fulfillmentService,
	}
}

// httpStatusFor maps the validation taxonomy to client errors.
// Anything unmapped is an integration failure and stays a 500.
func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrMixedCart),
		errors.Is(err, service.ErrInvalidProduct),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidCustomization),
		errors.Is(err, service.ErrInvalidWindow):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrDateConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (h *CheckoutHandler) BuildSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.checkoutService.BuildSession(ctx, &req)
	if err != nil {
		if status := httpStatusFor(err); status != http.StatusInternalServerError {
			return echo.NewHTTPError(status, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *CheckoutHandler) Quote(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.QuoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.checkoutService.QuoteCart(ctx, req.Items)
	if err != nil {
		if status := httpStatusFor(err); status != http.StatusInternalServerError {
			return echo.NewHTTPError(status, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *CheckoutHandler) Availability(c echo.Context) error {
	ctx := c.Request().Context()

	productID := c.Param("productID")
	if productID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing product id")
	}

	result, err := h.checkoutService.ListAvailability(ctx, productID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *CheckoutHandler) Invoice(c echo.Context) error {
	ctx := c.Request().Context()

	recordID := c.Param("id")
	if recordID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing record id")
	}

	document, err := h.fulfillmentService.RegenerateInvoice(ctx, recordID)
	if err != nil {
		if errors.Is(err, service.ErrInvoiceRender) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return err
	}

	return c.HTMLBlob(http.StatusOK, document)
}

func (h *CheckoutHandler) HandleSuccess(c echo.Context) error {
	html := `
	<!DOCTYPE html>
	<html>
	<head><meta charset="utf-8"><title>Payment Processing</title></head>
	<body style="font-family: Arial, sans-serif; text-align: center; margin-top: 80px;">
		<h2>Payment approved</h2>
		<p>We are processing your payment. You will receive a confirmation email shortly.</p>
	</body>
	</html>
	`

	return c.HTML(http.StatusOK, html)
}
