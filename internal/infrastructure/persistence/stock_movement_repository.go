package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/contaro/backend/internal/domain/shared"
	"github.com/contaro/backend/internal/domain/stock"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMovementRepository implements stock.MovementRepository using GORM.
// The journal is append-only; there are deliberately no update or delete
// methods.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Append inserts a new journal row
func (r *GormMovementRepository) Append(ctx context.Context, m *stock.Movement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// FindByID finds a movement by its ID
func (r *GormMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.Movement, error) {
	var movement stock.Movement
	if err := r.db.WithContext(ctx).First(&movement, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &movement, nil
}

// FindByPosition lists a position's journal with pagination, newest first
func (r *GormMovementRepository) FindByPosition(ctx context.Context, companyID, warehouseID, productID uuid.UUID, filter shared.Filter) (shared.Paginated[stock.Movement], error) {
	where := "company_id = ? AND warehouse_id = ? AND product_id = ?"

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&stock.Movement{}).
		Where(where, companyID, warehouseID, productID).
		Count(&total).Error; err != nil {
		return shared.Paginated[stock.Movement]{}, err
	}

	var movements []stock.Movement
	if err := r.db.WithContext(ctx).
		Where(where, companyID, warehouseID, productID).
		Order("occurred_at DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&movements).Error; err != nil {
		return shared.Paginated[stock.Movement]{}, err
	}

	return shared.NewPaginated(movements, total, filter.Page, filter.PageSize), nil
}

// FindBySource lists every journal row a source document produced
func (r *GormMovementRepository) FindBySource(ctx context.Context, companyID uuid.UUID, sourceType string, sourceID uuid.UUID) ([]*stock.Movement, error) {
	var movements []*stock.Movement
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND source_type = ? AND source_id = ?", companyID, sourceType, sourceID).
		Order("occurred_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByWarehouse lists a warehouse's journal within a time window
func (r *GormMovementRepository) FindByWarehouse(ctx context.Context, companyID, warehouseID uuid.UUID, from, to time.Time, filter shared.Filter) (shared.Paginated[stock.Movement], error) {
	where := "company_id = ? AND warehouse_id = ? AND occurred_at >= ? AND occurred_at < ?"

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&stock.Movement{}).
		Where(where, companyID, warehouseID, from, to).
		Count(&total).Error; err != nil {
		return shared.Paginated[stock.Movement]{}, err
	}

	var movements []stock.Movement
	if err := r.db.WithContext(ctx).
		Where(where, companyID, warehouseID, from, to).
		Order("occurred_at DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&movements).Error; err != nil {
		return shared.Paginated[stock.Movement]{}, err
	}

	return shared.NewPaginated(movements, total, filter.Page, filter.PageSize), nil
}

// Ensure GormMovementRepository implements stock.MovementRepository
var _ stock.MovementRepository = (*GormMovementRepository)(nil)
