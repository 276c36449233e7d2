package domain

import "errors"

var (
	ErrOutOfStock       = errors.New("requested quantity out of stock")
	ErrNotFound         = errors.New("product not found in cart")
	ErrInvalidAmount    = errors.New("product amount must be at least 1")
	ErrTransportFailure = errors.New("storefront lookup failed")
	ErrPersistFailure   = errors.New("cart persistence failed")
	ErrCorruptCart      = errors.New("persisted cart is corrupt")
	ErrDuplicateEntry   = errors.New("product already in cart")
)
