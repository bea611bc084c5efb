package payment

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("payment: invalid input")
	ErrNotFound          = errors.New("payment: not found")
	ErrDuplicateOrder    = errors.New("payment: order id already exists")
	ErrIllegalTransition = errors.New("payment: illegal status transition")
	ErrCurrencyMismatch  = errors.New("payment: currency mismatch")
	ErrGateway           = errors.New("payment: gateway failure")
)

// ErrNotCancellable matches ErrIllegalTransition under errors.Is; it marks
// cancellation attempts on payments outside a cancellable status.
var ErrNotCancellable = fmt.Errorf("%w: payment is not cancellable", ErrIllegalTransition)
