package payment

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

type Method string

const (
	MethodCreditCard   Method = "CREDIT_CARD"
	MethodBankTransfer Method = "BANK_TRANSFER"
	MethodMobilePay    Method = "MOBILE_PAY"
)

// Payment is a single authorization attempt for a business order. The order
// id is globally unique across payments; the status only moves along the
// transitions defined in state.go. Mutation is reserved for callers holding
// exclusion on the relevant key.
type Payment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	OrderID   string    `json:"order_id"`
	Amount    Money     `json:"amount"`
	Method    Method    `json:"method"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a PENDING payment. Identity is assigned by the repository on
// first save.
func New(userID int64, orderID string, amount Money, method Method) (*Payment, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if strings.TrimSpace(orderID) == "" {
		return nil, fmt.Errorf("%w: order id is required", ErrValidation)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if method == "" {
		return nil, fmt.Errorf("%w: payment method is required", ErrValidation)
	}

	now := time.Now().UTC()
	return &Payment{
		UserID:    userID,
		OrderID:   orderID,
		Amount:    amount,
		Method:    method,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Complete records a successful authorization. Only legal from PENDING.
func (p *Payment) Complete() error {
	return p.transition(func(s paymentState) (paymentState, error) {
		return s.OnAuthorizeSucceeded()
	})
}

// Fail records a declined or errored authorization. Only legal from PENDING.
func (p *Payment) Fail() error {
	return p.transition(func(s paymentState) (paymentState, error) {
		return s.OnAuthorizeFailed()
	})
}

// Cancel voids the payment. Legal from PENDING and COMPLETED; a FAILED
// payment can never be cancelled.
func (p *Payment) Cancel() error {
	return p.transition(func(s paymentState) (paymentState, error) {
		return s.OnCancel()
	})
}

func (p *Payment) IsPending() bool   { return p.Status == StatusPending }
func (p *Payment) IsCompleted() bool { return p.Status == StatusCompleted }

func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

func (p *Payment) transition(apply func(paymentState) (paymentState, error)) error {
	next, err := apply(stateOf(p.Status))
	if err != nil {
		return err
	}
	p.Status = next.Status()
	p.touch()
	return nil
}

func (p *Payment) touch() {
	p.UpdatedAt = time.Now().UTC()
}
