// Package worker consumes payment lifecycle events from the bus and records
// outcome metrics and audit logs. It never feeds back into the critical
// section.
package worker

import (
	"context"
	"strconv"

	domoutbox "github.com/locksmith-pay/locksmith/internal/domain/outbox"
	dompay "github.com/locksmith-pay/locksmith/internal/domain/payment"
	"github.com/locksmith-pay/locksmith/internal/observability"
	"github.com/locksmith-pay/locksmith/internal/observability/logctx"
)

type Worker struct {
	subscriber domoutbox.Subscriber
	log        observability.Logger
	outcomes   observability.Counter
}

func New(subscriber domoutbox.Subscriber, logger observability.Logger, outcomes observability.Counter) *Worker {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if outcomes == nil {
		outcomes = observability.NopCounter()
	}
	return &Worker{
		subscriber: subscriber,
		log:        logger.With(observability.F("component", "payment_worker")),
		outcomes:   outcomes,
	}
}

func (w *Worker) Start() {
	w.subscriber.Subscribe(dompay.PaymentCompletedEventName, w.handle)
	w.subscriber.Subscribe(dompay.PaymentFailedEventName, w.handle)
	w.subscriber.Subscribe(dompay.PaymentCancelledEventName, w.handle)
}

func (w *Worker) handle(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(dompay.Event)
	if !ok {
		return nil
	}

	w.outcomes.Add(1,
		observability.L("event", evt.Name),
		observability.L("status", string(evt.Status)),
	)
	logctx.FromOr(ctx, w.log).Info("payment_event",
		observability.F("event", evt.Name),
		observability.F("payment_id", strconv.FormatInt(evt.PaymentID, 10)),
		observability.F("order_id", evt.OrderID),
		observability.F("status", string(evt.Status)),
	)
	return nil
}
