package rediscache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/locksmith-pay/locksmith/internal/domain/payment"
)

func newTestCache(t *testing.T, ttl time.Duration) (*PaymentCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredislib.NewClient(&goredislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, ttl, nil), mr
}

func storedPayment(t *testing.T) *domain.Payment {
	t.Helper()
	p, err := domain.New(1, "ORDER-001", domain.KRW(10000), domain.MethodCreditCard)
	require.NoError(t, err)
	p.ID = 7
	return p
}

func TestSetAndGet(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()
	p := storedPayment(t)

	cache.Set(ctx, p)

	got, ok := cache.Get(ctx, p.ID)
	require.True(t, ok)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.OrderID, got.OrderID)
	assert.Equal(t, p.Status, got.Status)
	assert.True(t, p.Amount.Equal(got.Amount))
}

func TestGetMiss(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	_, ok := cache.Get(context.Background(), 404)
	assert.False(t, ok)
}

func TestEntriesExpire(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	p := storedPayment(t)

	cache.Set(ctx, p)
	mr.FastForward(2 * time.Minute)

	_, ok := cache.Get(ctx, p.ID)
	assert.False(t, ok)
}

func TestInvalidate(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()
	p := storedPayment(t)

	cache.Set(ctx, p)
	cache.Invalidate(ctx, p.ID)

	_, ok := cache.Get(ctx, p.ID)
	assert.False(t, ok)
}

func TestCorruptEntryIsDropped(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, mr.Set("payment:cache:7", "{not json"))

	_, ok := cache.Get(ctx, 7)
	assert.False(t, ok)
	assert.False(t, mr.Exists("payment:cache:7"))
}

func TestSetIgnoresUnsavedPayment(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	p := storedPayment(t)
	p.ID = 0
	cache.Set(ctx, p)
	cache.Set(ctx, nil)

	assert.Empty(t, mr.Keys())
}
