package service

import "errors"

var (
	ErrEmptyCart            = errors.New("cart is empty, nothing to checkout")
	ErrMixedCart            = errors.New("cart mixes sale and rental items, submit two separate checkouts")
	ErrInvalidProduct       = errors.New("product does not exist, is inactive, or does not support the requested mode")
	ErrInvalidQuantity      = errors.New("item quantity must be positive")
	ErrInvalidCustomization = errors.New("customization references an option not defined on the product")
	ErrInvalidWindow        = errors.New("rental window is missing or not a positive day range")
	ErrUnauthorizedEvent    = errors.New("outcome event failed signature verification")
	ErrUnknownSession       = errors.New("outcome event references an unknown payment session")
	ErrInvoiceRender        = errors.New("fulfillment record snapshot cannot be rendered")
)
