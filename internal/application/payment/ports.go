package payment

import (
	"context"

	dompay "github.com/locksmith-pay/locksmith/internal/domain/payment"
)

// Cache is an optional read-through cache for payment lookups. Misses and
// cache failures are equivalent; the repository stays the source of truth.
type Cache interface {
	Get(ctx context.Context, id int64) (*dompay.Payment, bool)
	Set(ctx context.Context, p *dompay.Payment)
	Invalidate(ctx context.Context, id int64)
}
