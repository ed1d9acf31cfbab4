package persistence

import (
	"context"

	appstock "github.com/contaro/backend/internal/application/stock"
	"github.com/contaro/backend/internal/domain/receipt"
	"github.com/contaro/backend/internal/domain/stock"
	"github.com/contaro/backend/internal/domain/transfer"
	"github.com/contaro/backend/internal/domain/warehouse"
	"gorm.io/gorm"
)

// GormTransactionScope implements the stock transaction scope using GORM
// transactions. Every repository handed to the callback shares one
// transaction; an error anywhere rolls back all of it.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appstock.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Balances() stock.BalanceRepository {
	return NewGormBalanceRepository(r.tx)
}

func (r *gormTransactionalRepositories) Movements() stock.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

func (r *gormTransactionalRepositories) Warehouses() warehouse.Repository {
	return NewGormWarehouseRepository(r.tx)
}

func (r *gormTransactionalRepositories) Receipts() receipt.Repository {
	return NewGormReceiptRepository(r.tx)
}

func (r *gormTransactionalRepositories) Transfers() transfer.Repository {
	return NewGormTransferRepository(r.tx)
}

// Ensure interfaces are implemented
var _ appstock.TransactionScope = (*GormTransactionScope)(nil)
var _ appstock.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
