package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/contaro/backend/internal/domain/receipt"
	"github.com/contaro/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReceiptRepository implements receipt.Repository using GORM.
// Documents are loaded and saved together with their lines.
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// FindByID finds a document by its ID
func (r *GormReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*receipt.Document, error) {
	var doc receipt.Document
	if err := r.db.WithContext(ctx).Preload("Items").First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// FindByIDForCompany finds a document by ID within a company
func (r *GormReceiptRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*receipt.Document, error) {
	var doc receipt.Document
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

// FindByNumber finds a document by its number within a company
func (r *GormReceiptRepository) FindByNumber(ctx context.Context, companyID uuid.UUID, documentNumber string) (*receipt.Document, error) {
	var doc receipt.Document
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

// FindForCompany lists the company's documents with filtering and pagination
func (r *GormReceiptRepository) FindForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[receipt.Document], error) {
	var total int64
	countQuery := r.applyFilters(
		r.db.WithContext(ctx).Model(&receipt.Document{}).Where("company_id = ?", companyID),
		filter,
	)
	if err := countQuery.Count(&total).Error; err != nil {
		return shared.Paginated[receipt.Document]{}, err
	}

	orderBy := ValidateSortField(filter.OrderBy, DocumentSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var docs []receipt.Document
	listQuery := r.applyFilters(
		r.db.WithContext(ctx).Model(&receipt.Document{}).Where("company_id = ?", companyID),
		filter,
	)
	if err := listQuery.
		Preload("Items").
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&docs).Error; err != nil {
		return shared.Paginated[receipt.Document]{}, err
	}

	return shared.NewPaginated(docs, total, filter.Page, filter.PageSize), nil
}

// FindByWarehouse lists documents received into one warehouse
func (r *GormReceiptRepository) FindByWarehouse(ctx context.Context, companyID, warehouseID uuid.UUID, filter shared.Filter) (shared.Paginated[receipt.Document], error) {
	filter.Filters["warehouse_id"] = warehouseID
	return r.FindForCompany(ctx, companyID, filter)
}

// FindByStatus lists documents in one lifecycle state
func (r *GormReceiptRepository) FindByStatus(ctx context.Context, companyID uuid.UUID, status receipt.Status, filter shared.Filter) (shared.Paginated[receipt.Document], error) {
	filter.Filters["status"] = status
	return r.FindForCompany(ctx, companyID, filter)
}

// FindBySupplier lists a supplier's documents within a time window
func (r *GormReceiptRepository) FindBySupplier(ctx context.Context, companyID, supplierID uuid.UUID, from, to time.Time) ([]*receipt.Document, error) {
	var docs []*receipt.Document
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("company_id = ? AND supplier_id = ? AND receipt_date >= ? AND receipt_date < ?", companyID, supplierID, from, to).
		Order("receipt_date DESC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// Save creates or updates a document with its lines
func (r *GormReceiptRepository) Save(ctx context.Context, d *receipt.Document) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(d).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormReceiptRepository) SaveWithLock(ctx context.Context, d *receipt.Document) error {
	result := r.db.WithContext(ctx).
		Model(d).
		Where("id = ? AND version = ?", d.ID, d.Version-1).
		Updates(map[string]interface{}{
			"status":           d.Status,
			"net_total":        d.NetTotal,
			"vat_total":        d.VATTotal,
			"gross_total":      d.GrossTotal,
			"base_gross_total": d.BaseGrossTotal,
			"notes":            d.Notes,
			"posted_at":        d.PostedAt,
			"approved_by":      d.ApprovedBy,
			"approved_at":      d.ApprovedAt,
			"rejected_by":      d.RejectedBy,
			"rejected_at":      d.RejectedAt,
			"rejection_reason": d.RejectionReason,
			"version":          d.Version,
			"updated_at":       d.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// CountByStatus counts documents in one lifecycle state
func (r *GormReceiptRepository) CountByStatus(ctx context.Context, companyID uuid.UUID, status receipt.Status) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&receipt.Document{}).
		Where("company_id = ? AND status = ?", companyID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormReceiptRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "supplier_id":
			query = query.Where("supplier_id = ?", value)
		}
	}
	return query
}

// Ensure GormReceiptRepository implements receipt.Repository
var _ receipt.Repository = (*GormReceiptRepository)(nil)
