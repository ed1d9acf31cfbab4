package persistence

import (
	"context"
	"errors"

	"github.com/contaro/backend/internal/domain/shared"
	"github.com/contaro/backend/internal/domain/transfer"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTransferRepository implements transfer.Repository using GORM
type GormTransferRepository struct {
	db *gorm.DB
}

// NewGormTransferRepository creates a new GormTransferRepository
func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// FindByID finds a transfer by its ID
func (r *GormTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*transfer.Document, error) {
	var doc transfer.Document
	if err := r.db.WithContext(ctx).Preload("Items").First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// FindByIDForCompany finds a transfer by ID within a company
func (r *GormTransferRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*transfer.Document, error) {
	var doc transfer.Document
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("company_id = ? AND id = ?", companyID, id).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// FindByNumber finds a transfer by its number within a company
func (r *GormTransferRepository) FindByNumber(ctx context.Context, companyID uuid.UUID, documentNumber string) (*transfer.Document, error) {
	var doc transfer.Document
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("company_id = ? AND document_number = ?", companyID, documentNumber).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// FindForCompany lists the company's transfers with filtering and pagination
func (r *GormTransferRepository) FindForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[transfer.Document], error) {
	var total int64
	countQuery := r.applyFilters(
		r.db.WithContext(ctx).Model(&transfer.Document{}).Where("company_id = ?", companyID),
		filter,
	)
	if err := countQuery.Count(&total).Error; err != nil {
		return shared.Paginated[transfer.Document]{}, err
	}

	orderBy := ValidateSortField(filter.OrderBy, DocumentSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var docs []transfer.Document
	listQuery := r.applyFilters(
		r.db.WithContext(ctx).Model(&transfer.Document{}).Where("company_id = ?", companyID),
		filter,
	)
	if err := listQuery.
		Preload("Items").
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&docs).Error; err != nil {
		return shared.Paginated[transfer.Document]{}, err
	}

	return shared.NewPaginated(docs, total, filter.Page, filter.PageSize), nil
}

// FindByWarehouse lists transfers that touch one warehouse on either side
func (r *GormTransferRepository) FindByWarehouse(ctx context.Context, companyID, warehouseID uuid.UUID, filter shared.Filter) (shared.Paginated[transfer.Document], error) {
	filter.Filters["warehouse_id"] = warehouseID
	return r.FindForCompany(ctx, companyID, filter)
}

// FindByStatus lists transfers in one lifecycle state
func (r *GormTransferRepository) FindByStatus(ctx context.Context, companyID uuid.UUID, status transfer.Status, filter shared.Filter) (shared.Paginated[transfer.Document], error) {
	filter.Filters["status"] = status
	return r.FindForCompany(ctx, companyID, filter)
}

// Save creates or updates a transfer with its lines
func (r *GormTransferRepository) Save(ctx context.Context, d *transfer.Document) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(d).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormTransferRepository) SaveWithLock(ctx context.Context, d *transfer.Document) error {
	result := r.db.WithContext(ctx).
		Model(d).
		Where("id = ? AND version = ?", d.ID, d.Version-1).
		Updates(map[string]interface{}{
			"status":              d.Status,
			"notes":               d.Notes,
			"issued_by":           d.IssuedBy,
			"issued_at":           d.IssuedAt,
			"received_by":         d.ReceivedBy,
			"received_at":         d.ReceivedAt,
			"cancelled_at":        d.CancelledAt,
			"cancellation_reason": d.CancellationReason,
			"version":             d.Version,
			"updated_at":          d.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}

	// Issue stamps unit costs on the lines; persist them alongside the
	// status change.
	for i := range d.Items {
		if err := r.db.WithContext(ctx).
			Model(&transfer.Item{}).
			Where("id = ?", d.Items[i].ID).
			Update("unit_cost", d.Items[i].UnitCost).Error; err != nil {
			return err
		}
	}
	return nil
}

// CountByStatus counts transfers in one lifecycle state
func (r *GormTransferRepository) CountByStatus(ctx context.Context, companyID uuid.UUID, status transfer.Status) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&transfer.Document{}).
		Where("company_id = ? AND status = ?", companyID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormTransferRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "warehouse_id":
			query = query.Where("source_warehouse_id = ? OR destination_id = ?", value, value)
		}
	}
	return query
}

// Ensure GormTransferRepository implements transfer.Repository
var _ transfer.Repository = (*GormTransferRepository)(nil)
