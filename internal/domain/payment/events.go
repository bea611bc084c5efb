package payment

import "time"

const (
	PaymentCompletedEventName = "payment.completed"
	PaymentFailedEventName    = "payment.failed"
	PaymentCancelledEventName = "payment.cancelled"
)

// Event is published after a terminal transition commits. It is fanout-only;
// nothing in the critical section depends on it.
type Event struct {
	Name       string
	PaymentID  int64
	OrderID    string
	Status     Status
	OccurredAt time.Time
}

func (e Event) EventName() string { return e.Name }

func NewCompletedEvent(p *Payment) Event { return newEvent(PaymentCompletedEventName, p) }
func NewFailedEvent(p *Payment) Event    { return newEvent(PaymentFailedEventName, p) }
func NewCancelledEvent(p *Payment) Event { return newEvent(PaymentCancelledEventName, p) }

func newEvent(name string, p *Payment) Event {
	return Event{
		Name:       name,
		PaymentID:  p.ID,
		OrderID:    p.OrderID,
		Status:     p.Status,
		OccurredAt: time.Now().UTC(),
	}
}
