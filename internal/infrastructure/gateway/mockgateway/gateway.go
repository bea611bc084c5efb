// Package mockgateway simulates the external payment network: bounded
// latency, an authorization amount limit, and always-successful
// cancellations. Real PSP adapters implement the same port.
package mockgateway

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domain "github.com/locksmith-pay/locksmith/internal/domain/payment"
	"github.com/locksmith-pay/locksmith/internal/observability"
)

const (
	authorizeLatency = 100 * time.Millisecond
	cancelLatency    = 50 * time.Millisecond
)

// authLimit mirrors the simulated acquirer's per-transaction ceiling.
var authLimit = decimal.NewFromInt(1_000_000)

type Gateway struct {
	log observability.Logger
}

func New(logger observability.Logger) *Gateway {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Gateway{log: logger.With(observability.F("component", "mock_gateway"))}
}

func (g *Gateway) Authorize(ctx context.Context, orderID string, amount domain.Money, method domain.Method) (domain.GatewayResult, error) {
	g.log.Info("gateway_authorize",
		observability.F("order_id", orderID),
		observability.F("amount", amount.String()),
		observability.F("method", string(method)),
	)

	if err := sleep(ctx, authorizeLatency); err != nil {
		return domain.GatewayResult{}, err
	}

	if amount.Amount.GreaterThan(authLimit) {
		return domain.GatewayResult{
			Success: false,
			Message: "payment limit exceeded",
		}, nil
	}

	return domain.GatewayResult{
		Success:       true,
		TransactionID: uuid.NewString(),
		Message:       "approved",
	}, nil
}

func (g *Gateway) Cancel(ctx context.Context, orderID string) (bool, error) {
	g.log.Info("gateway_cancel", observability.F("order_id", orderID))

	if err := sleep(ctx, cancelLatency); err != nil {
		return false, err
	}
	return true, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
