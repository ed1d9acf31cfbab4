package warehouse

import (
	"context"

	"github.com/contaro/backend/internal/domain/shared"
	"github.com/contaro/backend/internal/domain/warehouse"
	"github.com/google/uuid"
)

// Service handles warehouse registry operations.
type Service struct {
	repo           warehouse.Repository
	eventPublisher shared.EventPublisher
}

func NewService(repo warehouse.Repository) *Service {
	return &Service{repo: repo}
}

// SetEventPublisher sets the publisher for domain events.
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create registers a new warehouse for the company.
func (s *Service) Create(ctx context.Context, companyID uuid.UUID, req CreateWarehouseRequest) (*WarehouseResponse, error) {
	wh, err := warehouse.NewWarehouse(companyID, req.Name, req.Code, warehouse.OperatingMode(req.Mode))
	if err != nil {
		return nil, err
	}
	if req.FranchiseID != nil {
		wh.SetFranchise(*req.FranchiseID)
	}
	if req.Notes != "" {
		wh.SetNotes(req.Notes)
	}

	exists, err := s.repo.ExistsByCode(ctx, companyID, wh.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewValidationError("Warehouse code is already in use")
	}

	if err := s.repo.Save(ctx, wh); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, wh)

	resp := ToWarehouseResponse(wh)
	return &resp, nil
}

// GetByID retrieves a warehouse scoped to the company.
func (s *Service) GetByID(ctx context.Context, companyID, warehouseID uuid.UUID) (*WarehouseResponse, error) {
	wh, err := s.repo.FindByIDForCompany(ctx, companyID, warehouseID)
	if err != nil {
		return nil, err
	}

	resp := ToWarehouseResponse(wh)
	return &resp, nil
}

// GetByCode retrieves a warehouse by its unique code.
func (s *Service) GetByCode(ctx context.Context, companyID uuid.UUID, code string) (*WarehouseResponse, error) {
	wh, err := s.repo.FindByCode(ctx, companyID, code)
	if err != nil {
		return nil, err
	}

	resp := ToWarehouseResponse(wh)
	return &resp, nil
}

// List retrieves the company's warehouses with filtering and pagination.
func (s *Service) List(ctx context.Context, companyID uuid.UUID, filter WarehouseListFilter) ([]WarehouseResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search
	if filter.Mode != "" {
		domainFilter.Filters["mode"] = filter.Mode
	}
	if filter.Active != nil {
		domainFilter.Filters["is_active"] = *filter.Active
	}

	page, err := s.repo.FindAllForCompany(ctx, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]WarehouseResponse, len(page.Items))
	for i := range page.Items {
		responses[i] = ToWarehouseResponse(&page.Items[i])
	}
	return responses, page.Total, nil
}

// Update applies the non-nil fields of the request. A mode change only
// affects future movements; existing stock keeps its valuation.
func (s *Service) Update(ctx context.Context, companyID, warehouseID uuid.UUID, req UpdateWarehouseRequest) (*WarehouseResponse, error) {
	wh, err := s.repo.FindByIDForCompany(ctx, companyID, warehouseID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := wh.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Code != nil && *req.Code != wh.Code {
		exists, err := s.repo.ExistsByCode(ctx, companyID, *req.Code)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewValidationError("Warehouse code is already in use")
		}
		if err := wh.UpdateCode(*req.Code); err != nil {
			return nil, err
		}
	}
	if req.Mode != nil {
		if err := wh.ChangeMode(warehouse.OperatingMode(*req.Mode)); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		wh.SetNotes(*req.Notes)
	}

	if err := s.repo.Save(ctx, wh); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, wh)

	resp := ToWarehouseResponse(wh)
	return &resp, nil
}

// Deactivate retires a warehouse from new documents. Stock history stays.
func (s *Service) Deactivate(ctx context.Context, companyID, warehouseID uuid.UUID) (*WarehouseResponse, error) {
	return s.setActive(ctx, companyID, warehouseID, false)
}

// Reactivate brings a retired warehouse back.
func (s *Service) Reactivate(ctx context.Context, companyID, warehouseID uuid.UUID) (*WarehouseResponse, error) {
	return s.setActive(ctx, companyID, warehouseID, true)
}

func (s *Service) setActive(ctx context.Context, companyID, warehouseID uuid.UUID, active bool) (*WarehouseResponse, error) {
	wh, err := s.repo.FindByIDForCompany(ctx, companyID, warehouseID)
	if err != nil {
		return nil, err
	}

	if active {
		err = wh.Reactivate()
	} else {
		err = wh.Deactivate()
	}
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, wh); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, wh)

	resp := ToWarehouseResponse(wh)
	return &resp, nil
}

// Stats returns total and active/inactive counts for the company.
func (s *Service) Stats(ctx context.Context, companyID uuid.UUID) (*WarehouseStatsResponse, error) {
	total, err := s.repo.CountForCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	active, err := s.repo.CountByActive(ctx, companyID, true)
	if err != nil {
		return nil, err
	}

	return &WarehouseStatsResponse{
		Total:    total,
		Active:   active,
		Inactive: total - active,
	}, nil
}

func (s *Service) publishEvents(ctx context.Context, wh *warehouse.Warehouse) {
	if s.eventPublisher == nil {
		return
	}
	events := wh.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	wh.ClearDomainEvents()
}
