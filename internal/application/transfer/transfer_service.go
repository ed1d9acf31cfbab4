package transfer

import (
	"context"

	"github.com/contaro/backend/internal/application/currency"
	appstock "github.com/contaro/backend/internal/application/stock"
	"github.com/contaro/backend/internal/domain/shared"
	"github.com/contaro/backend/internal/domain/shared/valueobject"
	"github.com/contaro/backend/internal/domain/stock"
	"github.com/contaro/backend/internal/domain/transfer"
	"github.com/contaro/backend/internal/domain/warehouse"
	"github.com/contaro/backend/internal/infrastructure/logger"
	"github.com/contaro/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SourceTypeTransfer is the movement source type stamped by transfers.
const SourceTypeTransfer = "transfer"

// Service drives the inter-warehouse transfer workflow. Stock leaves
// the source when the transfer is issued and enters the destination
// when it is received, each in its own transaction. Without a transit
// warehouse the goods exist only on the document between the two; with
// one, the issue leg parks them on a transit balance that the receive
// leg drains, so they stay on a warehouse balance the whole way.
type Service struct {
	transferRepo   transfer.Repository
	txScope        appstock.TransactionScope
	poster         *appstock.Poster
	currencySvc    *currency.Service
	eventPublisher shared.EventPublisher
}

func NewService(transferRepo transfer.Repository, txScope appstock.TransactionScope, currencySvc *currency.Service) *Service {
	return &Service{
		transferRepo: transferRepo,
		txScope:      txScope,
		poster:       appstock.NewPoster(),
		currencySvc:  currencySvc,
	}
}

// SetEventPublisher sets the publisher for domain events.
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create builds a draft transfer after validating both warehouses and,
// when requested, the transit warehouse it will stage through.
func (s *Service) Create(ctx context.Context, companyID uuid.UUID, req CreateTransferRequest) (*DocumentResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "transfer.create")
	defer span.End()

	docCurrency := valueobject.Currency(req.Currency)
	if req.Currency == "" {
		docCurrency = valueobject.BaseCurrency
	}
	rate, err := s.currencySvc.ResolveRate(ctx, docCurrency, req.ExchangeRate)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var resp DocumentResponse
	var committed []shared.AggregateRoot

	err = s.txScope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		source, err := repos.Warehouses().FindByIDForCompany(ctx, companyID, req.SourceWarehouseID)
		if err != nil {
			return err
		}
		destination, err := repos.Warehouses().FindByIDForCompany(ctx, companyID, req.DestinationWarehouseID)
		if err != nil {
			return err
		}
		if !source.IsActive || !destination.IsActive {
			return shared.NewValidationError("Both warehouses must be active")
		}

		doc, err := transfer.NewDocument(companyID, source.ID, destination.ID, docCurrency, rate)
		if err != nil {
			return err
		}
		doc.Notes = req.Notes
		if req.ActorID != nil {
			doc.SetCreatedBy(*req.ActorID)
		}

		if req.TransitWarehouseID != nil {
			transit, err := repos.Warehouses().FindByIDForCompany(ctx, companyID, *req.TransitWarehouseID)
			if err != nil {
				return err
			}
			if transit.Mode != warehouse.ModeTransfer {
				return shared.NewValidationError("Transit warehouse must operate in transfer mode")
			}
			if !transit.IsActive {
				return shared.NewValidationError("Transit warehouse must be active")
			}
			if err := doc.SetTransitWarehouse(transit.ID); err != nil {
				return err
			}
		}

		for _, item := range req.Items {
			if err := doc.AddItem(item.ProductID, item.Quantity, item.UnitPrice, item.VATRate, item.SellingPrice); err != nil {
				return err
			}
		}

		if err := repos.Transfers().Save(ctx, doc); err != nil {
			return err
		}

		resp = ToDocumentResponse(doc)
		committed = append(committed, doc)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, committed...)
	telemetry.SetAttributes(span, telemetry.SpanAttrDocumentNumber, resp.DocumentNumber)
	return &resp, nil
}

// GetByID retrieves a transfer with its lines.
func (s *Service) GetByID(ctx context.Context, companyID, documentID uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.transferRepo.FindByIDForCompany(ctx, companyID, documentID)
	if err != nil {
		return nil, err
	}

	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// List retrieves the company's transfers with filtering and pagination.
func (s *Service) List(ctx context.Context, companyID uuid.UUID, filter TransferListFilter) ([]DocumentResponse, int64, error) {
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
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.WarehouseID != nil {
		domainFilter.Filters["warehouse_id"] = *filter.WarehouseID
	}

	page, err := s.transferRepo.FindForCompany(ctx, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]DocumentResponse, len(page.Items))
	for i := range page.Items {
		responses[i] = ToDocumentResponse(&page.Items[i])
	}
	return responses, page.Total, nil
}

// Issue takes the stock out of the source warehouse at its current
// average cost and stamps that cost on the lines. With a transit
// warehouse the same transaction parks the goods there at the stamped
// cost, so they never leave the books. A single short line rolls
// everything back.
func (s *Service) Issue(ctx context.Context, companyID, documentID, actorID uuid.UUID) (*DocumentResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "transfer.issue")
	defer span.End()

	var resp DocumentResponse
	var committed []shared.AggregateRoot

	err := appstock.WithConflictRetry(ctx, func() error {
		committed = committed[:0]
		return s.txScope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
			doc, err := repos.Transfers().FindByIDForCompany(ctx, companyID, documentID)
			if err != nil {
				return err
			}
			source, err := repos.Warehouses().FindByIDForCompany(ctx, companyID, doc.SourceWarehouseID)
			if err != nil {
				return err
			}
			transit, err := s.transitWarehouse(ctx, repos, doc)
			if err != nil {
				return err
			}

			costs := make(map[uuid.UUID]decimal.Decimal, len(doc.Items))
			for _, item := range doc.Items {
				cost, err := s.postLeg(ctx, repos, doc, source, item, decimal.Zero, stock.MovementTransferOut, stock.DirectionOut, &actorID, &committed)
				if err != nil {
					return err
				}
				costs[item.ProductID] = cost

				if transit != nil {
					if _, err := s.postLeg(ctx, repos, doc, transit, item, cost, stock.MovementTransferIn, stock.DirectionIn, &actorID, &committed); err != nil {
						return err
					}
				}
			}

			if err := doc.Issue(actorID, costs); err != nil {
				return err
			}
			if err := repos.Transfers().SaveWithLock(ctx, doc); err != nil {
				return err
			}

			resp = ToDocumentResponse(doc)
			committed = append(committed, doc)
			return nil
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, committed...)
	telemetry.SetAttributes(span, telemetry.SpanAttrDocumentNumber, resp.DocumentNumber)
	logger.L(ctx).Info("Transfer issued",
		zap.String("document_number", resp.DocumentNumber),
		zap.Int("line_count", len(resp.Items)),
	)
	return &resp, nil
}

// MarkInTransit records that the goods left the source physically.
func (s *Service) MarkInTransit(ctx context.Context, companyID, documentID uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.transferRepo.FindByIDForCompany(ctx, companyID, documentID)
	if err != nil {
		return nil, err
	}
	if err := doc.MarkInTransit(); err != nil {
		return nil, err
	}
	if err := s.transferRepo.SaveWithLock(ctx, doc); err != nil {
		return nil, err
	}

	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// Receive brings the stock into the destination at the cost stamped at
// issue, conserving quantity and value across the transfer. With a
// transit warehouse the goods are drained from there in the same
// transaction. Selling price overrides in the request land on the
// destination balance when it tracks shelf prices.
func (s *Service) Receive(ctx context.Context, companyID, documentID, actorID uuid.UUID, req ReceiveTransferRequest) (*DocumentResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "transfer.receive")
	defer span.End()

	sellingPrices := make(map[uuid.UUID]decimal.Decimal, len(req.Items))
	for _, item := range req.Items {
		sellingPrices[item.ProductID] = item.SellingPrice
	}

	var resp DocumentResponse
	var committed []shared.AggregateRoot

	err := appstock.WithConflictRetry(ctx, func() error {
		committed = committed[:0]
		return s.txScope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
			doc, err := repos.Transfers().FindByIDForCompany(ctx, companyID, documentID)
			if err != nil {
				return err
			}
			destination, err := repos.Warehouses().FindByIDForCompany(ctx, companyID, doc.DestinationID)
			if err != nil {
				return err
			}
			transit, err := s.transitWarehouse(ctx, repos, doc)
			if err != nil {
				return err
			}

			if err := doc.Receive(actorID, sellingPrices); err != nil {
				return err
			}

			for _, item := range doc.Items {
				if transit != nil {
					if _, err := s.postLeg(ctx, repos, doc, transit, item, decimal.Zero, stock.MovementTransferOut, stock.DirectionOut, &actorID, &committed); err != nil {
						return err
					}
				}
				if _, err := s.postLeg(ctx, repos, doc, destination, item, item.UnitCost, stock.MovementTransferIn, stock.DirectionIn, &actorID, &committed); err != nil {
					return err
				}
			}

			if err := repos.Transfers().SaveWithLock(ctx, doc); err != nil {
				return err
			}

			resp = ToDocumentResponse(doc)
			committed = append(committed, doc)
			return nil
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, committed...)
	telemetry.SetAttributes(span, telemetry.SpanAttrDocumentNumber, resp.DocumentNumber)
	logger.L(ctx).Info("Transfer received",
		zap.String("document_number", resp.DocumentNumber),
	)
	return &resp, nil
}

// Cancel aborts the transfer. If stock already left the source it is
// returned there at the stamped cost, draining the transit balance
// first when one is in play, all in the same transaction.
func (s *Service) Cancel(ctx context.Context, companyID, documentID uuid.UUID, reason string) (*DocumentResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "transfer.cancel")
	defer span.End()

	var resp DocumentResponse
	var committed []shared.AggregateRoot

	err := appstock.WithConflictRetry(ctx, func() error {
		committed = committed[:0]
		return s.txScope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
			doc, err := repos.Transfers().FindByIDForCompany(ctx, companyID, documentID)
			if err != nil {
				return err
			}

			wasIssued := doc.Status == transfer.StatusIssued || doc.Status == transfer.StatusInTransit
			if err := doc.Cancel(reason); err != nil {
				return err
			}

			if wasIssued {
				source, err := repos.Warehouses().FindByIDForCompany(ctx, companyID, doc.SourceWarehouseID)
				if err != nil {
					return err
				}
				transit, err := s.transitWarehouse(ctx, repos, doc)
				if err != nil {
					return err
				}
				for _, item := range doc.Items {
					if transit != nil {
						if _, err := s.postLeg(ctx, repos, doc, transit, item, decimal.Zero, stock.MovementReversal, stock.DirectionOut, nil, &committed); err != nil {
							return err
						}
					}
					if _, err := s.postLeg(ctx, repos, doc, source, item, item.UnitCost, stock.MovementReversal, stock.DirectionIn, nil, &committed); err != nil {
						return err
					}
				}
			}

			if err := repos.Transfers().SaveWithLock(ctx, doc); err != nil {
				return err
			}

			resp = ToDocumentResponse(doc)
			committed = append(committed, doc)
			return nil
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, committed...)
	return &resp, nil
}

// transitWarehouse loads the document's transit warehouse, or nil when
// the transfer does not stage through one.
func (s *Service) transitWarehouse(ctx context.Context, repos appstock.TransactionalRepositories, doc *transfer.Document) (*warehouse.Warehouse, error) {
	if doc.TransitWarehouseID == nil {
		return nil, nil
	}
	return repos.Warehouses().FindByIDForCompany(ctx, doc.CompanyID, *doc.TransitWarehouseID)
}

// postLeg posts one side of a transfer for one line and returns the
// unit cost the movement happened at. For outbound legs that is the
// position's average cost before the movement; transit balances keep
// the stamped cost, so draining them returns it unchanged.
func (s *Service) postLeg(ctx context.Context, repos appstock.TransactionalRepositories, doc *transfer.Document, wh *warehouse.Warehouse, item transfer.Item, unitCost decimal.Decimal, movementType stock.MovementType, direction stock.Direction, actorID *uuid.UUID, committed *[]shared.AggregateRoot) (decimal.Decimal, error) {
	if direction == stock.DirectionOut {
		balance, err := repos.Balances().FindForUpdate(ctx, doc.CompanyID, wh.ID, item.ProductID)
		if err != nil {
			return decimal.Zero, err
		}
		if balance == nil {
			return decimal.Zero, shared.NewCapacityError("No stock of product in source warehouse")
		}
		unitCost = balance.UnitCost
	}

	sellingPrice := decimal.Zero
	if direction == stock.DirectionIn && wh.Mode.TracksSellingPrice() {
		sellingPrice = item.SellingPrice
	}

	balance, err := s.poster.Post(ctx, repos, doc.CompanyID, wh.ID, item.ProductID, wh.Mode, stock.Entry{
		Type:         movementType,
		Direction:    direction,
		Quantity:     item.Quantity,
		UnitCost:     unitCost,
		SellingPrice: sellingPrice,
		SourceType:   SourceTypeTransfer,
		SourceID:     doc.ID,
		ActorID:      actorID,
		Note:         doc.DocumentNumber,
	})
	if err != nil {
		return decimal.Zero, err
	}
	*committed = append(*committed, balance)
	return unitCost, nil
}

func (s *Service) publishEvents(ctx context.Context, aggregates ...shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	for _, aggregate := range aggregates {
		events := aggregate.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		_ = s.eventPublisher.Publish(ctx, events...)
		aggregate.ClearDomainEvents()
	}
}
