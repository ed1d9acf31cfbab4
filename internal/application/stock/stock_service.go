package stock

import (
	"context"
	"time"

	"github.com/contaro/backend/internal/domain/shared"
	"github.com/contaro/backend/internal/domain/stock"
	"github.com/google/uuid"
)

// Service answers stock queries and handles the movements that do not go
// through a receipt or transfer document.
type Service struct {
	balanceRepo    stock.BalanceRepository
	movementRepo   stock.MovementRepository
	txScope        TransactionScope
	poster         *Poster
	eventPublisher shared.EventPublisher
}

func NewService(balanceRepo stock.BalanceRepository, movementRepo stock.MovementRepository, txScope TransactionScope) *Service {
	return &Service{
		balanceRepo:  balanceRepo,
		movementRepo: movementRepo,
		txScope:      txScope,
		poster:       NewPoster(),
	}
}

// SetEventPublisher sets the publisher for domain events.
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// GetBalance returns the position for a warehouse/product pair. A pair
// that never moved reports a zero position, not an error.
func (s *Service) GetBalance(ctx context.Context, companyID, warehouseID, productID uuid.UUID) (*BalanceResponse, error) {
	balance, err := s.balanceRepo.Find(ctx, companyID, warehouseID, productID)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		resp := ZeroBalanceResponse(warehouseID, productID)
		return &resp, nil
	}

	resp := ToBalanceResponse(balance)
	return &resp, nil
}

// ListByWarehouse returns the paginated positions of one warehouse.
func (s *Service) ListByWarehouse(ctx context.Context, companyID, warehouseID uuid.UUID, filter BalanceListFilter) ([]BalanceResponse, int64, error) {
	page, err := s.balanceRepo.FindByWarehouse(ctx, companyID, warehouseID, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}

	responses := make([]BalanceResponse, len(page.Items))
	for i := range page.Items {
		responses[i] = ToBalanceResponse(&page.Items[i])
	}
	return responses, page.Total, nil
}

// ListByProduct returns a product's position in every warehouse that
// holds it.
func (s *Service) ListByProduct(ctx context.Context, companyID, productID uuid.UUID) ([]BalanceResponse, error) {
	balances, err := s.balanceRepo.FindByProduct(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}

	responses := make([]BalanceResponse, len(balances))
	for i, b := range balances {
		responses[i] = ToBalanceResponse(b)
	}
	return responses, nil
}

// ListMovements returns the journal for one position, newest first.
func (s *Service) ListMovements(ctx context.Context, companyID, warehouseID, productID uuid.UUID, filter MovementListFilter) ([]MovementResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.OrderBy = "occurred_at"

	page, err := s.movementRepo.FindByPosition(ctx, companyID, warehouseID, productID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]MovementResponse, len(page.Items))
	for i := range page.Items {
		responses[i] = ToMovementResponse(&page.Items[i])
	}
	return responses, page.Total, nil
}

// ListMovementsBySource returns every journal row a document produced.
func (s *Service) ListMovementsBySource(ctx context.Context, companyID uuid.UUID, sourceType string, sourceID uuid.UUID) ([]MovementResponse, error) {
	movements, err := s.movementRepo.FindBySource(ctx, companyID, sourceType, sourceID)
	if err != nil {
		return nil, err
	}

	responses := make([]MovementResponse, len(movements))
	for i, m := range movements {
		responses[i] = ToMovementResponse(m)
	}
	return responses, nil
}

// ListExpiring returns positions whose batch expires before the cutoff.
func (s *Service) ListExpiring(ctx context.Context, companyID uuid.UUID, cutoff time.Time) ([]BalanceResponse, error) {
	balances, err := s.balanceRepo.FindExpiringBefore(ctx, companyID, cutoff)
	if err != nil {
		return nil, err
	}

	responses := make([]BalanceResponse, len(balances))
	for i, b := range balances {
		responses[i] = ToBalanceResponse(b)
	}
	return responses, nil
}

// Reserve holds quantity on a position for a pending outbound document.
func (s *Service) Reserve(ctx context.Context, companyID uuid.UUID, req ReservationRequest) (*BalanceResponse, error) {
	return s.updateReservation(ctx, companyID, req, func(b *stock.Balance) error {
		return b.Reserve(req.Quantity)
	})
}

// Release returns previously reserved quantity.
func (s *Service) Release(ctx context.Context, companyID uuid.UUID, req ReservationRequest) (*BalanceResponse, error) {
	return s.updateReservation(ctx, companyID, req, func(b *stock.Balance) error {
		return b.Release(req.Quantity)
	})
}

func (s *Service) updateReservation(ctx context.Context, companyID uuid.UUID, req ReservationRequest, apply func(*stock.Balance) error) (*BalanceResponse, error) {
	var resp BalanceResponse

	err := WithConflictRetry(ctx, func() error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			balance, err := repos.Balances().FindForUpdate(ctx, companyID, req.WarehouseID, req.ProductID)
			if err != nil {
				return err
			}
			if balance == nil {
				return shared.NewCapacityError("No stock position for warehouse and product")
			}
			if err := apply(balance); err != nil {
				return err
			}
			if err := repos.Balances().SaveWithLock(ctx, balance); err != nil {
				return err
			}
			resp = ToBalanceResponse(balance)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Adjust posts a manual correction movement for a position.
func (s *Service) Adjust(ctx context.Context, companyID uuid.UUID, req AdjustmentRequest) (*BalanceResponse, error) {
	direction := stock.Direction(req.Direction)
	adjustmentID := uuid.New()

	var resp BalanceResponse
	err := WithConflictRetry(ctx, func() error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			wh, err := repos.Warehouses().FindByIDForCompany(ctx, companyID, req.WarehouseID)
			if err != nil {
				return err
			}

			balance, err := s.poster.Post(ctx, repos, companyID, req.WarehouseID, req.ProductID, wh.Mode, stock.Entry{
				Type:       stock.MovementAdjustment,
				Direction:  direction,
				Quantity:   req.Quantity,
				UnitCost:   req.UnitCost,
				SourceType: "adjustment",
				SourceID:   adjustmentID,
				ActorID:    req.ActorID,
				Note:       req.Reason,
			})
			if err != nil {
				return err
			}
			resp = ToBalanceResponse(balance)
			s.publishEvents(ctx, balance)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *Service) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	aggregate.ClearDomainEvents()
}
