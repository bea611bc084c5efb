package worker

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domoutbox "github.com/locksmith-pay/locksmith/internal/domain/outbox"
	dompay "github.com/locksmith-pay/locksmith/internal/domain/payment"
	"github.com/locksmith-pay/locksmith/internal/observability"
)

type recordingSubscriber struct {
	handlers map[string]domoutbox.Handler
}

func (s *recordingSubscriber) Subscribe(eventName string, h domoutbox.Handler) {
	if s.handlers == nil {
		s.handlers = make(map[string]domoutbox.Handler)
	}
	s.handlers[eventName] = h
}

type countingCounter struct {
	mu     sync.Mutex
	counts map[string]float64
}

func (c *countingCounter) Add(d float64, labels ...observability.Label) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = make(map[string]float64)
	}
	key := ""
	for _, l := range labels {
		key += l.Key + "=" + l.Value + ";"
	}
	c.counts[key] += d
}

func completedEvent(t *testing.T) dompay.Event {
	t.Helper()
	p, err := dompay.New(1, "ORDER-001", dompay.KRW(10000), dompay.MethodCreditCard)
	require.NoError(t, err)
	p.ID = 7
	require.NoError(t, p.Complete())
	return dompay.NewCompletedEvent(p)
}

func TestStartSubscribesToLifecycleEvents(t *testing.T) {
	sub := &recordingSubscriber{}
	New(sub, nil, nil).Start()

	assert.Contains(t, sub.handlers, dompay.PaymentCompletedEventName)
	assert.Contains(t, sub.handlers, dompay.PaymentFailedEventName)
	assert.Contains(t, sub.handlers, dompay.PaymentCancelledEventName)
}

func TestHandleCountsOutcome(t *testing.T) {
	sub := &recordingSubscriber{}
	counter := &countingCounter{}
	New(sub, nil, counter).Start()

	handler := sub.handlers[dompay.PaymentCompletedEventName]
	require.NoError(t, handler(context.Background(), completedEvent(t)))

	counter.mu.Lock()
	defer counter.mu.Unlock()
	assert.Equal(t, float64(1), counter.counts["event=payment.completed;status=COMPLETED;"])
}

type otherEvent struct{}

func (otherEvent) EventName() string { return "other" }

func TestHandleIgnoresForeignEvents(t *testing.T) {
	sub := &recordingSubscriber{}
	counter := &countingCounter{}
	New(sub, nil, counter).Start()

	handler := sub.handlers[dompay.PaymentCompletedEventName]
	require.NoError(t, handler(context.Background(), otherEvent{}))

	counter.mu.Lock()
	defer counter.mu.Unlock()
	assert.Empty(t, counter.counts)
}
