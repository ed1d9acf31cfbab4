package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/contaro/backend/internal/domain/shared"
	"github.com/contaro/backend/internal/domain/warehouse"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormWarehouseRepository implements warehouse.Repository using GORM
type GormWarehouseRepository struct {
	db *gorm.DB
}

// NewGormWarehouseRepository creates a new GormWarehouseRepository
func NewGormWarehouseRepository(db *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

// FindByID finds a warehouse by its ID
func (r *GormWarehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*warehouse.Warehouse, error) {
	var wh warehouse.Warehouse
	if err := r.db.WithContext(ctx).First(&wh, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewReferenceError("Warehouse not found")
		}
		return nil, err
	}
	return &wh, nil
}

// FindByIDForCompany finds a warehouse by ID within a company
func (r *GormWarehouseRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*warehouse.Warehouse, error) {
	var wh warehouse.Warehouse
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&wh).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewReferenceError("Warehouse not found")
		}
		return nil, err
	}
	return &wh, nil
}

// FindByCode finds a warehouse by its code within a company
func (r *GormWarehouseRepository) FindByCode(ctx context.Context, companyID uuid.UUID, code string) (*warehouse.Warehouse, error) {
	var wh warehouse.Warehouse
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND code = ?", companyID, strings.ToUpper(code)).
		First(&wh).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewReferenceError("Warehouse not found")
		}
		return nil, err
	}
	return &wh, nil
}

// FindAllForCompany finds the company's warehouses with filtering and pagination
func (r *GormWarehouseRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[warehouse.Warehouse], error) {
	var total int64
	countQuery := r.applyFilters(
		r.db.WithContext(ctx).Model(&warehouse.Warehouse{}).Where("company_id = ?", companyID),
		filter,
	)
	if err := countQuery.Count(&total).Error; err != nil {
		return shared.Paginated[warehouse.Warehouse]{}, err
	}

	orderBy := ValidateSortField(filter.OrderBy, WarehouseSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var warehouses []warehouse.Warehouse
	listQuery := r.applyFilters(
		r.db.WithContext(ctx).Model(&warehouse.Warehouse{}).Where("company_id = ?", companyID),
		filter,
	)
	if err := listQuery.
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&warehouses).Error; err != nil {
		return shared.Paginated[warehouse.Warehouse]{}, err
	}

	return shared.NewPaginated(warehouses, total, filter.Page, filter.PageSize), nil
}

// FindActive finds the company's active warehouses
func (r *GormWarehouseRepository) FindActive(ctx context.Context, companyID uuid.UUID) ([]*warehouse.Warehouse, error) {
	var warehouses []*warehouse.Warehouse
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND is_active = ?", companyID, true).
		Order("name ASC").
		Find(&warehouses).Error; err != nil {
		return nil, err
	}
	return warehouses, nil
}

// FindByMode finds the company's warehouses with a given operating mode
func (r *GormWarehouseRepository) FindByMode(ctx context.Context, companyID uuid.UUID, mode warehouse.OperatingMode) ([]*warehouse.Warehouse, error) {
	var warehouses []*warehouse.Warehouse
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND mode = ?", companyID, mode).
		Order("name ASC").
		Find(&warehouses).Error; err != nil {
		return nil, err
	}
	return warehouses, nil
}

// ExistsByCode checks whether a warehouse code is taken within a company
func (r *GormWarehouseRepository) ExistsByCode(ctx context.Context, companyID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&warehouse.Warehouse{}).
		Where("company_id = ? AND code = ?", companyID, strings.ToUpper(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a warehouse
func (r *GormWarehouseRepository) Save(ctx context.Context, wh *warehouse.Warehouse) error {
	return r.db.WithContext(ctx).Save(wh).Error
}

// CountForCompany counts the company's warehouses
func (r *GormWarehouseRepository) CountForCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&warehouse.Warehouse{}).
		Where("company_id = ?", companyID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByActive counts warehouses by active state
func (r *GormWarehouseRepository) CountByActive(ctx context.Context, companyID uuid.UUID, active bool) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&warehouse.Warehouse{}).
		Where("company_id = ? AND is_active = ?", companyID, active).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormWarehouseRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "mode":
			query = query.Where("mode = ?", value)
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "franchise_id":
			query = query.Where("franchise_id = ?", value)
		}
	}
	return query
}

// Ensure GormWarehouseRepository implements warehouse.Repository
var _ warehouse.Repository = (*GormWarehouseRepository)(nil)
