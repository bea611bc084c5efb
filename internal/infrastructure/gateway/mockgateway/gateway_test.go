package mockgateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/locksmith-pay/locksmith/internal/domain/payment"
)

func TestAuthorizeApproves(t *testing.T) {
	g := New(nil)

	result, err := g.Authorize(context.Background(), "ORDER-001", domain.KRW(10000), domain.MethodCreditCard)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.TransactionID)
	assert.Equal(t, "approved", result.Message)
}

func TestAuthorizeOverLimit(t *testing.T) {
	g := New(nil)

	result, err := g.Authorize(context.Background(), "ORDER-001", domain.KRW(1_000_001), domain.MethodCreditCard)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "payment limit exceeded", result.Message)
	assert.Empty(t, result.TransactionID)
}

func TestAuthorizeAtLimit(t *testing.T) {
	g := New(nil)

	result, err := g.Authorize(context.Background(), "ORDER-001", domain.KRW(1_000_000), domain.MethodCreditCard)
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestAuthorizeCancelledContext(t *testing.T) {
	g := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Authorize(ctx, "ORDER-001", domain.KRW(10000), domain.MethodCreditCard)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCancel(t *testing.T) {
	g := New(nil)

	ok, err := g.Cancel(context.Background(), "ORDER-001")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCancelCancelledContext(t *testing.T) {
	g := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Cancel(ctx, "ORDER-001")
	require.ErrorIs(t, err, context.Canceled)
}
