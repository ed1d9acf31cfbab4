package stock

import (
	"context"
	"time"

	"github.com/contaro/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BalanceRepository manages stock balance persistence. Write paths that
// fold movements into a position must load through FindForUpdate inside a
// transaction and persist through SaveWithLock; the combination gives
// serialized updates on Postgres and a detectable conflict everywhere.
type BalanceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Balance, error)
	// Find returns the position for the pair, or nil when no stock has
	// ever moved there. Absence is not an error.
	Find(ctx context.Context, companyID, warehouseID, productID uuid.UUID) (*Balance, error)
	// FindForUpdate behaves like Find but takes a row lock where the
	// dialect supports one.
	FindForUpdate(ctx context.Context, companyID, warehouseID, productID uuid.UUID) (*Balance, error)
	// GetOrCreate returns the existing position or a fresh zero one.
	GetOrCreate(ctx context.Context, companyID, warehouseID, productID uuid.UUID) (*Balance, error)
	FindByWarehouse(ctx context.Context, companyID, warehouseID uuid.UUID, filter shared.Filter) (shared.Paginated[Balance], error)
	FindByProduct(ctx context.Context, companyID, productID uuid.UUID) ([]*Balance, error)
	FindExpiringBefore(ctx context.Context, companyID uuid.UUID, cutoff time.Time) ([]*Balance, error)
	Save(ctx context.Context, b *Balance) error
	// SaveWithLock persists only when the stored version matches the
	// version the aggregate was loaded with, returning
	// ErrConcurrencyConflict otherwise.
	SaveWithLock(ctx context.Context, b *Balance) error
}

// MovementRepository is the append-only journal store.
type MovementRepository interface {
	Append(ctx context.Context, m *Movement) error
	FindByID(ctx context.Context, id uuid.UUID) (*Movement, error)
	FindByPosition(ctx context.Context, companyID, warehouseID, productID uuid.UUID, filter shared.Filter) (shared.Paginated[Movement], error)
	FindBySource(ctx context.Context, companyID uuid.UUID, sourceType string, sourceID uuid.UUID) ([]*Movement, error)
	FindByWarehouse(ctx context.Context, companyID, warehouseID uuid.UUID, from, to time.Time, filter shared.Filter) (shared.Paginated[Movement], error)
}
