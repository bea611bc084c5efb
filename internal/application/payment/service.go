package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	domoutbox "github.com/locksmith-pay/locksmith/internal/domain/outbox"
	dompay "github.com/locksmith-pay/locksmith/internal/domain/payment"
	"github.com/locksmith-pay/locksmith/internal/lock"
	"github.com/locksmith-pay/locksmith/internal/observability"
	"github.com/locksmith-pay/locksmith/internal/pkg/lockkey"
)

// Lock key templates. Both concurrent submissions of one order and
// concurrent cancellations of one payment must resolve to a single key.
const (
	processKeyTemplate = "payment:order:#orderId"
	cancelKeyTemplate  = "payment:cancel:#paymentId"
)

const (
	useCaseProcess = "payment.process"
	useCaseGet     = "payment.get"
	useCaseCancel  = "payment.cancel"
	spanPrefix     = "UC."
)

// Command carries a payment submission.
type Command struct {
	UserID  int64
	OrderID string
	Amount  dompay.Money
	Method  dompay.Method
}

// Service drives a payment through its lifecycle under a two-layer exclusion
// scheme: a distributed lock on the business key, and a row-level lock on
// the persisted record inside each transaction.
type Service struct {
	repo      dompay.Repository
	gateway   dompay.Gateway
	locks     lock.Manager
	lockOpts  lock.Options
	cache     Cache
	publisher domoutbox.Publisher

	log       observability.Logger
	tracer    observability.TraceCtx
	requests  observability.Counter
	durations observability.Histogram
}

type Option func(*Service)

func WithLockOptions(opts lock.Options) Option {
	return func(s *Service) { s.lockOpts = opts.Normalized() }
}

func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

func WithPublisher(p domoutbox.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithObservability(logger observability.Logger, tracer observability.TraceCtx, requests observability.Counter, durations observability.Histogram) Option {
	return func(s *Service) {
		if logger != nil {
			s.log = logger.With(observability.F("component", "payment_service"))
		}
		if tracer != nil {
			s.tracer = tracer
		}
		if requests != nil {
			s.requests = requests
		}
		if durations != nil {
			s.durations = durations
		}
	}
}

func NewService(repo dompay.Repository, gateway dompay.Gateway, locks lock.Manager, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		gateway:   gateway,
		locks:     locks,
		lockOpts:  lock.DefaultOptions(),
		log:       observability.NopLogger(),
		tracer:    observability.NopTracer(),
		requests:  observability.NopCounter(),
		durations: observability.NopHistogram(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ProcessPayment submits exactly one authorization attempt per order id.
// The whole critical section runs under the distributed lock: the
// idempotency check and PENDING create commit first, the gateway is called
// outside any transaction, and the terminal transition commits in a second
// transaction so a FAILED outcome survives a gateway error.
func (s *Service) ProcessPayment(ctx context.Context, cmd Command) (*dompay.Payment, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, spanPrefix+useCaseProcess,
		attribute.String("payment.order_id", cmd.OrderID),
	)
	defer span.End()

	outcome := "success"
	defer func() {
		s.requests.Add(1,
			observability.L("use_case", useCaseProcess),
			observability.L("outcome", outcome),
		)
		s.durations.Observe(time.Since(start).Seconds(),
			observability.L("use_case", useCaseProcess),
		)
	}()

	if err := validateCommand(cmd); err != nil {
		outcome = "error"
		return nil, err
	}

	key, err := lockkey.Resolve(processKeyTemplate, map[string]any{"orderId": cmd.OrderID})
	if err != nil {
		outcome = "error"
		return nil, err
	}

	s.log.Info("process_payment_start",
		observability.F("order_id", cmd.OrderID),
		observability.F("amount", cmd.Amount.String()),
		observability.F("lock_key", key),
	)

	var result *dompay.Payment
	err = lock.Do(ctx, s.locks, key, s.lockOpts, func(ctx context.Context) error {
		created, err := s.createPending(ctx, cmd)
		if err != nil {
			return err
		}

		gwResult, gwErr := s.gateway.Authorize(ctx, cmd.OrderID, cmd.Amount, cmd.Method)

		settled, err := s.settle(ctx, created.ID, gwResult, gwErr)
		if err != nil {
			return err
		}
		result = settled
		return nil
	})
	if err != nil {
		outcome = "error"
		s.log.Warn("process_payment_failed",
			observability.F("order_id", cmd.OrderID),
			observability.F("error", err.Error()),
		)
		return nil, err
	}

	span.SetAttributes(attribute.String("payment.status", string(result.Status)))
	s.log.Info("process_payment_done",
		observability.F("order_id", cmd.OrderID),
		observability.F("payment_id", result.ID),
		observability.F("status", string(result.Status)),
	)

	switch result.Status {
	case dompay.StatusCompleted:
		s.publish(ctx, dompay.NewCompletedEvent(result))
	case dompay.StatusFailed:
		s.publish(ctx, dompay.NewFailedEvent(result))
	}

	return result, nil
}

// GetPayment is a read-only lookup; it is not performed under exclusion.
func (s *Service) GetPayment(ctx context.Context, id int64) (*dompay.Payment, error) {
	ctx, span := s.tracer.Start(ctx, spanPrefix+useCaseGet,
		attribute.Int64("payment.id", id),
	)
	defer span.End()

	if s.cache != nil {
		if p, ok := s.cache.Get(ctx, id); ok {
			span.SetAttributes(attribute.Bool("payment.cache_hit", true))
			return p, nil
		}
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, p)
	}
	return p, nil
}

// CancelPayment voids a COMPLETED payment. The row is fetched with an
// exclusive row lock inside the transaction, nested under the distributed
// lock, so a racing settle or second cancel blocks until this one resolves.
// A gateway failure leaves the record COMPLETED.
func (s *Service) CancelPayment(ctx context.Context, id int64) (*dompay.Payment, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, spanPrefix+useCaseCancel,
		attribute.Int64("payment.id", id),
	)
	defer span.End()

	outcome := "success"
	defer func() {
		s.requests.Add(1,
			observability.L("use_case", useCaseCancel),
			observability.L("outcome", outcome),
		)
		s.durations.Observe(time.Since(start).Seconds(),
			observability.L("use_case", useCaseCancel),
		)
	}()

	key, err := lockkey.Resolve(cancelKeyTemplate, map[string]any{"paymentId": id})
	if err != nil {
		outcome = "error"
		return nil, err
	}

	var result *dompay.Payment
	err = lock.Do(ctx, s.locks, key, s.lockOpts, func(ctx context.Context) error {
		return s.repo.WithinTx(ctx, func(ctx context.Context, tx dompay.Repository) error {
			p, err := tx.FindByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if !p.IsCompleted() {
				return fmt.Errorf("%w: status is %s", dompay.ErrNotCancellable, p.Status)
			}

			ok, gwErr := s.gateway.Cancel(ctx, p.OrderID)
			if gwErr != nil {
				return fmt.Errorf("%w: cancel order %s: %w", dompay.ErrGateway, p.OrderID, gwErr)
			}
			if !ok {
				return fmt.Errorf("%w: cancellation rejected for order %s", dompay.ErrGateway, p.OrderID)
			}

			if err := p.Cancel(); err != nil {
				return err
			}
			saved, err := tx.Save(ctx, p)
			if err != nil {
				return err
			}
			result = saved
			return nil
		})
	})
	if err != nil {
		outcome = "error"
		s.log.Warn("cancel_payment_failed",
			observability.F("payment_id", id),
			observability.F("error", err.Error()),
		)
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
	s.publish(ctx, dompay.NewCancelledEvent(result))

	s.log.Info("cancel_payment_done",
		observability.F("payment_id", id),
		observability.F("order_id", result.OrderID),
	)
	return result, nil
}

// createPending runs the idempotency check and the PENDING insert in one
// transaction. Whichever caller observes no existing row first creates it;
// every later caller fails with ErrDuplicateOrder.
func (s *Service) createPending(ctx context.Context, cmd Command) (*dompay.Payment, error) {
	var created *dompay.Payment
	err := s.repo.WithinTx(ctx, func(ctx context.Context, tx dompay.Repository) error {
		exists, err := tx.ExistsByOrderID(ctx, cmd.OrderID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", dompay.ErrDuplicateOrder, cmd.OrderID)
		}

		p, err := dompay.New(cmd.UserID, cmd.OrderID, cmd.Amount, cmd.Method)
		if err != nil {
			return err
		}
		created, err = tx.Save(ctx, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// settle commits the terminal transition in its own transaction, re-reading
// the row under an exclusive lock. The row lock covers the lease-expiry
// hazard: even if the distributed lease ran out mid-flight, a competing
// writer still serializes against this transaction.
func (s *Service) settle(ctx context.Context, id int64, gwResult dompay.GatewayResult, gwErr error) (*dompay.Payment, error) {
	var settled *dompay.Payment
	err := s.repo.WithinTx(ctx, func(ctx context.Context, tx dompay.Repository) error {
		p, err := tx.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		switch {
		case gwErr != nil:
			if err := p.Fail(); err != nil {
				return err
			}
		case gwResult.Success:
			if err := p.Complete(); err != nil {
				return err
			}
		default:
			s.log.Warn("authorization_declined",
				observability.F("order_id", p.OrderID),
				observability.F("message", gwResult.Message),
			)
			if err := p.Fail(); err != nil {
				return err
			}
		}

		settled, err = tx.Save(ctx, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	if gwErr != nil {
		s.publish(ctx, dompay.NewFailedEvent(settled))
		return nil, fmt.Errorf("%w: authorize order %s: %w", dompay.ErrGateway, settled.OrderID, gwErr)
	}
	return settled, nil
}

func (s *Service) publish(ctx context.Context, e dompay.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.log.Warn("event_publish_failed",
			observability.F("event", e.Name),
			observability.F("order_id", e.OrderID),
			observability.F("error", err.Error()),
		)
	}
}

func validateCommand(cmd Command) error {
	if cmd.UserID <= 0 {
		return fmt.Errorf("%w: user id is required", dompay.ErrValidation)
	}
	if strings.TrimSpace(cmd.OrderID) == "" {
		return fmt.Errorf("%w: order id is required", dompay.ErrValidation)
	}
	if !cmd.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", dompay.ErrValidation)
	}
	if cmd.Method == "" {
		return fmt.Errorf("%w: payment method is required", dompay.ErrValidation)
	}
	return nil
}

var (
	ErrValidation        = dompay.ErrValidation
	ErrNotFound          = dompay.ErrNotFound
	ErrDuplicateOrder    = dompay.ErrDuplicateOrder
	ErrIllegalTransition = dompay.ErrIllegalTransition
	ErrNotCancellable    = dompay.ErrNotCancellable
	ErrGateway           = dompay.ErrGateway
	ErrLockUnavailable   = lock.ErrUnavailable
)

