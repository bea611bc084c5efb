package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPayment(t *testing.T) *Payment {
	t.Helper()
	p, err := New(1, "ORDER-001", KRW(10000), MethodCreditCard)
	require.NoError(t, err)
	return p
}

func TestNewStartsPending(t *testing.T) {
	p := newTestPayment(t)
	assert.Equal(t, StatusPending, p.Status)
	assert.True(t, p.IsPending())
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		userID  int64
		orderID string
		amount  Money
		method  Method
	}{
		{"zero user", 0, "ORDER-001", KRW(10000), MethodCreditCard},
		{"negative user", -3, "ORDER-001", KRW(10000), MethodCreditCard},
		{"blank order", 1, "   ", KRW(10000), MethodCreditCard},
		{"zero amount", 1, "ORDER-001", KRW(0), MethodCreditCard},
		{"missing method", 1, "ORDER-001", KRW(10000), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.userID, tt.orderID, tt.amount, tt.method)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCompleteFromPending(t *testing.T) {
	p := newTestPayment(t)
	require.NoError(t, p.Complete())
	assert.Equal(t, StatusCompleted, p.Status)
	assert.True(t, p.IsCompleted())
}

func TestFailFromPending(t *testing.T) {
	p := newTestPayment(t)
	require.NoError(t, p.Fail())
	assert.Equal(t, StatusFailed, p.Status)
}

func TestCancelFromPending(t *testing.T) {
	p := newTestPayment(t)
	require.NoError(t, p.Cancel())
	assert.Equal(t, StatusCancelled, p.Status)
}

func TestCancelFromCompleted(t *testing.T) {
	p := newTestPayment(t)
	require.NoError(t, p.Complete())
	require.NoError(t, p.Cancel())
	assert.Equal(t, StatusCancelled, p.Status)
}

func TestCancelFromFailedRejected(t *testing.T) {
	p := newTestPayment(t)
	require.NoError(t, p.Fail())

	err := p.Cancel()
	require.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, StatusFailed, p.Status)
}

func TestCancelTwiceRejected(t *testing.T) {
	p := newTestPayment(t)
	require.NoError(t, p.Complete())
	require.NoError(t, p.Cancel())

	err := p.Cancel()
	require.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, StatusCancelled, p.Status)
}

func TestTerminalStatesRejectAuthorization(t *testing.T) {
	completed := newTestPayment(t)
	require.NoError(t, completed.Complete())
	assert.ErrorIs(t, completed.Complete(), ErrIllegalTransition)
	assert.ErrorIs(t, completed.Fail(), ErrIllegalTransition)

	failed := newTestPayment(t)
	require.NoError(t, failed.Fail())
	assert.ErrorIs(t, failed.Complete(), ErrIllegalTransition)
	assert.ErrorIs(t, failed.Fail(), ErrIllegalTransition)
}

func TestUnknownStatusRejectseverything(t *testing.T) {
	p := newTestPayment(t)
	p.Status = Status("BOGUS")
	assert.ErrorIs(t, p.Complete(), ErrIllegalTransition)
	assert.ErrorIs(t, p.Cancel(), ErrIllegalTransition)
}

func TestFailedTransitionDoesNotTouchTimestamp(t *testing.T) {
	p := newTestPayment(t)
	require.NoError(t, p.Fail())
	before := p.UpdatedAt

	require.Error(t, p.Cancel())
	assert.Equal(t, before, p.UpdatedAt)
}

func TestCloneIsIndependent(t *testing.T) {
	p := newTestPayment(t)
	clone := p.Clone()
	require.NoError(t, clone.Complete())

	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, StatusCompleted, clone.Status)
}
