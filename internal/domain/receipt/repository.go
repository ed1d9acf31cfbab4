package receipt

import (
	"context"
	"time"

	"github.com/contaro/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository manages NIR document persistence. Implementations load and
// save documents together with their lines.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Document, error)
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*Document, error)
	FindByNumber(ctx context.Context, companyID uuid.UUID, documentNumber string) (*Document, error)
	FindForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[Document], error)
	FindByWarehouse(ctx context.Context, companyID, warehouseID uuid.UUID, filter shared.Filter) (shared.Paginated[Document], error)
	FindByStatus(ctx context.Context, companyID uuid.UUID, status Status, filter shared.Filter) (shared.Paginated[Document], error)
	FindBySupplier(ctx context.Context, companyID, supplierID uuid.UUID, from, to time.Time) ([]*Document, error)
	Save(ctx context.Context, d *Document) error
	SaveWithLock(ctx context.Context, d *Document) error
	CountByStatus(ctx context.Context, companyID uuid.UUID, status Status) (int64, error)
}
