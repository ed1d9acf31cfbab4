package warehouse

import (
	"context"

	"github.com/contaro/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the interface for warehouse persistence
type Repository interface {
	// FindByID finds a warehouse by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Warehouse, error)

	// FindByIDForCompany finds a warehouse by ID within a company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*Warehouse, error)

	// FindByCode finds a warehouse by its code within a company
	FindByCode(ctx context.Context, companyID uuid.UUID, code string) (*Warehouse, error)

	// FindAllForCompany finds the company's warehouses with filtering and pagination
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[Warehouse], error)

	// FindActive finds all active warehouses for a company
	FindActive(ctx context.Context, companyID uuid.UUID) ([]*Warehouse, error)

	// FindByMode finds the company's warehouses with a given operating mode
	FindByMode(ctx context.Context, companyID uuid.UUID, mode OperatingMode) ([]*Warehouse, error)

	// ExistsByCode checks if a warehouse code is taken within a company
	ExistsByCode(ctx context.Context, companyID uuid.UUID, code string) (bool, error)

	// Save creates or updates a warehouse
	Save(ctx context.Context, w *Warehouse) error

	// CountForCompany counts the company's warehouses
	CountForCompany(ctx context.Context, companyID uuid.UUID) (int64, error)

	// CountByActive counts warehouses by active flag
	CountByActive(ctx context.Context, companyID uuid.UUID, active bool) (int64, error)
}
