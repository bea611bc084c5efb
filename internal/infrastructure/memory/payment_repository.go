package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/locksmith-pay/locksmith/internal/domain/payment"
)

// PaymentRepository is an in-memory payment.Repository for tests and demo
// runs. Transactions are serialized by a single mutex, so row locks taken by
// FindByIDForUpdate degenerate to the transaction mutex; the blocking
// semantics match the SQL adapter, the granularity does not. Writes are not
// rolled back on error; callers must not save before a fallible step.
type PaymentRepository struct {
	mu      sync.RWMutex
	txMu    sync.Mutex
	nextID  int64
	byID    map[int64]*domain.Payment
	byOrder map[string]int64
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		byID:    make(map[int64]*domain.Payment),
		byOrder: make(map[string]int64),
	}
}

func (r *PaymentRepository) Save(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
	_ = ctx
	if p == nil {
		return nil, fmt.Errorf("payment repository: payment is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == 0 {
		if _, exists := r.byOrder[p.OrderID]; exists {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateOrder, p.OrderID)
		}
		r.nextID++
		saved := p.Clone()
		saved.ID = r.nextID
		r.byID[saved.ID] = saved
		r.byOrder[saved.OrderID] = saved.ID
		return saved.Clone(), nil
	}

	if _, exists := r.byID[p.ID]; !exists {
		return nil, fmt.Errorf("%w: id %d", domain.ErrNotFound, p.ID)
	}
	r.byID[p.ID] = p.Clone()
	return p.Clone(), nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id int64) (*domain.Payment, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", domain.ErrNotFound, id)
	}
	return p.Clone(), nil
}

func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byOrder[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, orderID)
	}
	return r.byID[id].Clone(), nil
}

// FindByIDForUpdate relies on WithinTx already excluding other transactions.
func (r *PaymentRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Payment, error) {
	return r.FindByID(ctx, id)
}

func (r *PaymentRepository) ExistsByOrderID(ctx context.Context, orderID string) (bool, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byOrder[orderID]
	return ok, nil
}

func (r *PaymentRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return fn(ctx, r)
}
