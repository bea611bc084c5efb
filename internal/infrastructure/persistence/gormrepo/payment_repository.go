// Package gormrepo implements payment.Repository on PostgreSQL via GORM.
// FindByIDForUpdate issues SELECT ... FOR UPDATE and must run inside
// WithinTx; the row lock is held until commit or rollback.
package gormrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/locksmith-pay/locksmith/internal/domain/payment"
)

type paymentModel struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64           `gorm:"column:user_id;not null"`
	OrderID   string          `gorm:"column:order_id;not null;uniqueIndex"`
	Amount    decimal.Decimal `gorm:"column:amount;type:decimal(10,2);not null"`
	Currency  string          `gorm:"column:currency;size:3;not null"`
	Method    string          `gorm:"column:payment_method;not null"`
	Status    string          `gorm:"column:status;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;not null;autoCreateTime:false"`
	UpdatedAt time.Time       `gorm:"column:updated_at;not null;autoUpdateTime:false"`
}

func (paymentModel) TableName() string { return "payments" }

type PaymentRepository struct {
	db *gorm.DB
}

// Open connects to PostgreSQL and migrates the payments table.
func Open(dsn string) (*PaymentRepository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("gormrepo: open: %w", err)
	}
	if err := db.AutoMigrate(&paymentModel{}); err != nil {
		return nil, fmt.Errorf("gormrepo: migrate: %w", err)
	}
	return &PaymentRepository{db: db}, nil
}

// New wraps an existing connection or transaction handle.
func New(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Save(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
	m := toModel(p)
	var err error
	if m.ID == 0 {
		err = r.db.WithContext(ctx).Create(m).Error
	} else {
		err = r.db.WithContext(ctx).Save(m).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateOrder, p.OrderID)
		}
		return nil, fmt.Errorf("gormrepo: save order %s: %w", p.OrderID, err)
	}
	return toDomain(m), nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id int64) (*domain.Payment, error) {
	return r.findOne(r.db.WithContext(ctx), "id = ?", id)
}

func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	return r.findOne(r.db.WithContext(ctx), "order_id = ?", orderID)
}

func (r *PaymentRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Payment, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	return r.findOne(tx, "id = ?", id)
}

func (r *PaymentRepository) ExistsByOrderID(ctx context.Context, orderID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&paymentModel{}).
		Where("order_id = ?", orderID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gormrepo: exists order %s: %w", orderID, err)
	}
	return count > 0, nil
}

func (r *PaymentRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, New(tx))
	})
}

func (r *PaymentRepository) findOne(tx *gorm.DB, query string, arg any) (*domain.Payment, error) {
	var m paymentModel
	if err := tx.Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %v", domain.ErrNotFound, arg)
		}
		return nil, fmt.Errorf("gormrepo: find %v: %w", arg, err)
	}
	return toDomain(&m), nil
}

func toModel(p *domain.Payment) *paymentModel {
	return &paymentModel{
		ID:        p.ID,
		UserID:    p.UserID,
		OrderID:   p.OrderID,
		Amount:    p.Amount.Amount,
		Currency:  p.Amount.Currency,
		Method:    string(p.Method),
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toDomain(m *paymentModel) *domain.Payment {
	return &domain.Payment{
		ID:        m.ID,
		UserID:    m.UserID,
		OrderID:   m.OrderID,
		Amount:    domain.Money{Amount: m.Amount, Currency: m.Currency},
		Method:    domain.Method(m.Method),
		Status:    domain.Status(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
