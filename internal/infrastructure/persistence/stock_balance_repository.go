package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/contaro/backend/internal/domain/shared"
	"github.com/contaro/backend/internal/domain/stock"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBalanceRepository implements stock.BalanceRepository using GORM
type GormBalanceRepository struct {
	db *gorm.DB
}

// NewGormBalanceRepository creates a new GormBalanceRepository
func NewGormBalanceRepository(db *gorm.DB) *GormBalanceRepository {
	return &GormBalanceRepository{db: db}
}

// FindByID finds a balance by its ID
func (r *GormBalanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.Balance, error) {
	var balance stock.Balance
	if err := r.db.WithContext(ctx).First(&balance, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &balance, nil
}

// Find returns the position for a warehouse/product pair, or nil when no
// stock has ever moved there
func (r *GormBalanceRepository) Find(ctx context.Context, companyID, warehouseID, productID uuid.UUID) (*stock.Balance, error) {
	return r.find(ctx, r.db, companyID, warehouseID, productID)
}

// FindForUpdate behaves like Find but takes a row lock on dialects that
// support one. The sqlite driver used by tests silently runs without the
// lock; optimistic versioning still catches lost updates there.
func (r *GormBalanceRepository) FindForUpdate(ctx context.Context, companyID, warehouseID, productID uuid.UUID) (*stock.Balance, error) {
	db := r.db
	if r.db.Dialector.Name() == "postgres" {
		db = r.db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.find(ctx, db, companyID, warehouseID, productID)
}

func (r *GormBalanceRepository) find(ctx context.Context, db *gorm.DB, companyID, warehouseID, productID uuid.UUID) (*stock.Balance, error) {
	var balance stock.Balance
	if err := db.WithContext(ctx).
		Where("company_id = ? AND warehouse_id = ? AND product_id = ?", companyID, warehouseID, productID).
		First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &balance, nil
}

// GetOrCreate returns the existing position or a fresh zero one. The new
// position is not persisted until the first save; the unique index on
// (warehouse_id, product_id) rejects a racing double insert.
func (r *GormBalanceRepository) GetOrCreate(ctx context.Context, companyID, warehouseID, productID uuid.UUID) (*stock.Balance, error) {
	balance, err := r.Find(ctx, companyID, warehouseID, productID)
	if err != nil {
		return nil, err
	}
	if balance != nil {
		return balance, nil
	}
	return stock.NewBalance(companyID, warehouseID, productID)
}

// FindByWarehouse lists a warehouse's positions with pagination
func (r *GormBalanceRepository) FindByWarehouse(ctx context.Context, companyID, warehouseID uuid.UUID, filter shared.Filter) (shared.Paginated[stock.Balance], error) {
	var total int64
	countQuery := r.applyFilters(
		r.db.WithContext(ctx).Model(&stock.Balance{}).
			Where("company_id = ? AND warehouse_id = ?", companyID, warehouseID),
		filter,
	)
	if err := countQuery.Count(&total).Error; err != nil {
		return shared.Paginated[stock.Balance]{}, err
	}

	orderBy := ValidateSortField(filter.OrderBy, BalanceSortFields, "updated_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var balances []stock.Balance
	listQuery := r.applyFilters(
		r.db.WithContext(ctx).Model(&stock.Balance{}).
			Where("company_id = ? AND warehouse_id = ?", companyID, warehouseID),
		filter,
	)
	if err := listQuery.
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&balances).Error; err != nil {
		return shared.Paginated[stock.Balance]{}, err
	}

	return shared.NewPaginated(balances, total, filter.Page, filter.PageSize), nil
}

// FindByProduct lists a product's positions in every warehouse that holds it
func (r *GormBalanceRepository) FindByProduct(ctx context.Context, companyID, productID uuid.UUID) ([]*stock.Balance, error) {
	var balances []*stock.Balance
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND product_id = ?", companyID, productID).
		Order("warehouse_id ASC").
		Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

// FindExpiringBefore lists positions whose batch expires before the cutoff
func (r *GormBalanceRepository) FindExpiringBefore(ctx context.Context, companyID uuid.UUID, cutoff time.Time) ([]*stock.Balance, error) {
	var balances []*stock.Balance
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND expiry_date IS NOT NULL AND expiry_date < ? AND quantity > 0", companyID, cutoff).
		Order("expiry_date ASC").
		Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

// Save creates or updates a balance
func (r *GormBalanceRepository) Save(ctx context.Context, b *stock.Balance) error {
	return r.db.WithContext(ctx).Save(b).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormBalanceRepository) SaveWithLock(ctx context.Context, b *stock.Balance) error {
	result := r.db.WithContext(ctx).
		Model(b).
		Where("id = ? AND version = ?", b.ID, b.Version-1).
		Updates(map[string]interface{}{
			"quantity":          b.Quantity,
			"reserved_quantity": b.ReservedQuantity,
			"unit_cost":         b.UnitCost,
			"selling_price":     b.SellingPrice,
			"batch_number":      b.BatchNumber,
			"expiry_date":       b.ExpiryDate,
			"last_movement_at":  b.LastMovementAt,
			"last_moved_by":     b.LastMovedBy,
			"version":           b.Version,
			"updated_at":        b.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// Zero rows either means the position has never been persisted or that
	// another writer bumped the version first.
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&stock.Balance{}).
		Where("id = ?", b.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return shared.ErrConcurrencyConflict
	}

	// First save of a fresh position. The unique pair index turns a racing
	// double insert into a conflict instead of a duplicate row.
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrConcurrencyConflict
		}
		return err
	}
	return nil
}

func (r *GormBalanceRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "has_stock":
			if value == true {
				query = query.Where("quantity > 0")
			} else {
				query = query.Where("quantity = 0")
			}
		case "product_id":
			query = query.Where("product_id = ?", value)
		}
	}
	return query
}

// Ensure GormBalanceRepository implements stock.BalanceRepository
var _ stock.BalanceRepository = (*GormBalanceRepository)(nil)
