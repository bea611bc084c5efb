package payment

import "context"

// Repository persists payments. Save assigns identity on first save.
//
// FindByIDForUpdate takes a row-level exclusive lock and is only meaningful
// inside WithinTx; the lock is released when the transaction commits or
// rolls back.
type Repository interface {
	Save(ctx context.Context, p *Payment) (*Payment, error)
	FindByID(ctx context.Context, id int64) (*Payment, error)
	FindByOrderID(ctx context.Context, orderID string) (*Payment, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*Payment, error)
	ExistsByOrderID(ctx context.Context, orderID string) (bool, error)

	// WithinTx runs fn inside a transaction; fn receives a Repository bound
	// to that transaction. Returning an error rolls the transaction back.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Repository) error) error
}
