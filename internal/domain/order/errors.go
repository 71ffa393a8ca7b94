package order

import "errors"

var (
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
)
