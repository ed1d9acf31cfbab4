package stock

import (
	"context"

	"github.com/contaro/backend/internal/domain/receipt"
	"github.com/contaro/backend/internal/domain/stock"
	"github.com/contaro/backend/internal/domain/transfer"
	"github.com/contaro/backend/internal/domain/warehouse"
)

// TransactionScope runs a unit of work that touches stock atomically.
// Posting a receipt or moving a transfer writes a document, one or more
// balances and their journal rows; either all of it lands or none does.
type TransactionScope interface {
	// Execute runs fn inside a database transaction. An error from fn
	// rolls everything back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes every repository that takes part in a
// stock-moving unit of work, all bound to the same transaction.
type TransactionalRepositories interface {
	Balances() stock.BalanceRepository
	Movements() stock.MovementRepository
	Warehouses() warehouse.Repository
	Receipts() receipt.Repository
	Transfers() transfer.Repository
}

// NoOpTransactionScope wires the repositories without a real transaction.
// Used in tests with in-memory or sqlite-backed repositories.
type NoOpTransactionScope struct {
	balances   stock.BalanceRepository
	movements  stock.MovementRepository
	warehouses warehouse.Repository
	receipts   receipt.Repository
	transfers  transfer.Repository
}

func NewNoOpTransactionScope(
	balances stock.BalanceRepository,
	movements stock.MovementRepository,
	warehouses warehouse.Repository,
	receipts receipt.Repository,
	transfers transfer.Repository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		balances:   balances,
		movements:  movements,
		warehouses: warehouses,
		receipts:   receipts,
		transfers:  transfers,
	}
}

func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) Balances() stock.BalanceRepository     { return s.balances }
func (s *NoOpTransactionScope) Movements() stock.MovementRepository   { return s.movements }
func (s *NoOpTransactionScope) Warehouses() warehouse.Repository      { return s.warehouses }
func (s *NoOpTransactionScope) Receipts() receipt.Repository          { return s.receipts }
func (s *NoOpTransactionScope) Transfers() transfer.Repository        { return s.transfers }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
