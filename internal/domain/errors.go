package domain

import "errors"

var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrInvalidRange         = errors.New("value out of range")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrBalanceLimitExceeded = errors.New("balance limit exceeded")
)
