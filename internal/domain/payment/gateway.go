package payment

import "context"

// GatewayResult is the outcome of an authorization attempt at the external
// payment network.
type GatewayResult struct {
	Success       bool
	TransactionID string
	Message       string
}

// Gateway is the outbound port to the external payment network. A returned
// error means the call itself failed (network, timeout); a declined payment
// is a successful call with Success == false.
type Gateway interface {
	Authorize(ctx context.Context, orderID string, amount Money, method Method) (GatewayResult, error)
	Cancel(ctx context.Context, orderID string) (bool, error)
}
