package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoneyNormalisesInput(t *testing.T) {
	m, err := NewMoney(decimal.RequireFromString("10.005"), " krw ")
	require.NoError(t, err)
	assert.Equal(t, "KRW", m.Currency)
	assert.Equal(t, "10.01 KRW", m.String())
}

func TestNewMoneyRejectsNegative(t *testing.T) {
	_, err := NewMoney(decimal.NewFromInt(-1), "KRW")
	require.ErrorIs(t, err, ErrValidation)
}

func TestNewMoneyRejectsBadCurrency(t *testing.T) {
	for _, currency := range []string{"", "KR", "WONS"} {
		_, err := NewMoney(decimal.NewFromInt(100), currency)
		require.ErrorIs(t, err, ErrValidation, "currency %q", currency)
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := KRW(10000)
	b := KRW(2500)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Equal(KRW(12500)))

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.Equal(KRW(7500)))

	greater, err := a.GreaterThan(b)
	require.NoError(t, err)
	assert.True(t, greater)
}

func TestMoneySubtractBelowZero(t *testing.T) {
	_, err := KRW(100).Subtract(KRW(200))
	require.ErrorIs(t, err, ErrValidation)
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	usd, err := NewMoney(decimal.NewFromInt(10), "USD")
	require.NoError(t, err)

	_, err = KRW(10000).Add(usd)
	require.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = KRW(10000).GreaterThan(usd)
	require.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestMoneyPredicates(t *testing.T) {
	assert.True(t, KRW(0).IsZero())
	assert.False(t, KRW(0).IsPositive())
	assert.True(t, KRW(1).IsPositive())
}
