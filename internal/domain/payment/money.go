package payment

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount tagged with an ISO 4217 currency code. Amounts are
// normalised to two decimal places; arithmetic is only defined between
// values of the same currency.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if amount.IsNegative() {
		return Money{}, fmt.Errorf("%w: amount cannot be negative", ErrValidation)
	}
	if len(currency) != 3 {
		return Money{}, fmt.Errorf("%w: currency must be a 3-letter code", ErrValidation)
	}
	return Money{Amount: amount.Round(2), Currency: currency}, nil
}

// KRW builds a whole-unit Korean won amount.
func KRW(amount int64) Money {
	m, _ := NewMoney(decimal.NewFromInt(amount), "KRW")
	return m
}

func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

func (m Money) Subtract(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	out := m.Amount.Sub(other.Amount)
	if out.IsNegative() {
		return Money{}, fmt.Errorf("%w: amount cannot be negative", ErrValidation)
	}
	return Money{Amount: out, Currency: m.Currency}, nil
}

func (m Money) GreaterThan(other Money) (bool, error) {
	if err := m.sameCurrency(other); err != nil {
		return false, err
	}
	return m.Amount.GreaterThan(other.Amount), nil
}

func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

func (m Money) IsZero() bool     { return m.Amount.IsZero() }
func (m Money) IsPositive() bool { return m.Amount.IsPositive() }

func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + m.Currency
}

func (m Money) sameCurrency(other Money) error {
	if m.Currency != other.Currency {
		return fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return nil
}
