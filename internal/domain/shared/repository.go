package shared

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the contract every concrete repository narrows down.
type Repository[T any] interface {
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	FindAll(ctx context.Context, filter Filter) ([]T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter Filter) (int64, error)
}

// CompanyRepository adds company scoping on top of Repository. Lookups
// through it cannot leak another company's rows.
type CompanyRepository[T any] interface {
	Repository[T]
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*T, error)
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter Filter) ([]T, error)
}

// Filter carries pagination, ordering and free-form criteria from the
// HTTP layer down to the repositories. Keys in Filters are
// repository-specific; unknown keys are ignored.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}

func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
}

// Offset converts page and page size into a row offset, clamped so a
// zero or negative page never produces a negative offset.
func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Paginated is one page of results plus enough metadata to render
// pagination controls.
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
