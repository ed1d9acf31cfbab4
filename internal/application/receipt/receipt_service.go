package receipt

import (
	"context"
	"time"

	"github.com/contaro/backend/internal/application/currency"
	appstock "github.com/contaro/backend/internal/application/stock"
	"github.com/contaro/backend/internal/domain/receipt"
	"github.com/contaro/backend/internal/domain/shared"
	"github.com/contaro/backend/internal/domain/shared/valueobject"
	"github.com/contaro/backend/internal/domain/stock"
	"github.com/contaro/backend/internal/infrastructure/logger"
	"github.com/contaro/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PostingPoint says when an approved-for-stock document actually moves
// stock.
type PostingPoint string

const (
	// PostAtCreation posts stock the moment the document is created.
	// The document can still travel through the approval flow afterwards
	// but its lines are frozen from the first second.
	PostAtCreation PostingPoint = "creation"
	// PostAtApproval keeps stock untouched until an approver signs off.
	PostAtApproval PostingPoint = "approval"
)

func (p PostingPoint) IsValid() bool {
	return p == PostAtCreation || p == PostAtApproval
}

// SourceTypeNIR is the movement source type stamped by NIR postings.
const SourceTypeNIR = "nir"

// Service drives the NIR receipt workflow.
type Service struct {
	receiptRepo    receipt.Repository
	txScope        appstock.TransactionScope
	poster         *appstock.Poster
	currencySvc    *currency.Service
	postingPoint   PostingPoint
	eventPublisher shared.EventPublisher
}

func NewService(receiptRepo receipt.Repository, txScope appstock.TransactionScope, currencySvc *currency.Service, postingPoint PostingPoint) *Service {
	if !postingPoint.IsValid() {
		postingPoint = PostAtCreation
	}
	return &Service{
		receiptRepo:  receiptRepo,
		txScope:      txScope,
		poster:       appstock.NewPoster(),
		currencySvc:  currencySvc,
		postingPoint: postingPoint,
	}
}

// SetEventPublisher sets the publisher for domain events.
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create builds a NIR with its lines and, when the posting point is
// creation, posts the stock in the same transaction. The returned
// document reflects everything that was committed. Domain events go out
// only after the transaction commits.
func (s *Service) Create(ctx context.Context, companyID uuid.UUID, req CreateReceiptRequest) (*DocumentResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "receipt.create")
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

	receiptDate := time.Now()
	if req.ReceiptDate != nil {
		receiptDate = *req.ReceiptDate
	}

	var resp DocumentResponse
	var committed []shared.AggregateRoot
	err = appstock.WithConflictRetry(ctx, func() error {
		committed = committed[:0]
		return s.txScope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
			wh, err := repos.Warehouses().FindByIDForCompany(ctx, companyID, req.WarehouseID)
			if err != nil {
				return err
			}

			doc, err := receipt.NewDocument(companyID, wh, req.SupplierID, docCurrency, rate, receiptDate)
			if err != nil {
				return err
			}
			doc.SupplierInvoice = req.SupplierInvoice
			doc.Notes = req.Notes
			if req.ActorID != nil {
				doc.SetCreatedBy(*req.ActorID)
			}

			for _, line := range req.Lines {
				if err := doc.AddLine(line.ProductID, line.Description, line.Quantity,
					line.UnitPrice, line.VATRate, line.SellingPrice,
					line.BatchNumber, line.ExpiryDate); err != nil {
					return err
				}
			}

			if req.SubmitForApproval {
				if err := doc.Submit(); err != nil {
					return err
				}
			}

			if s.postingPoint == PostAtCreation {
				if err := s.postDocument(ctx, repos, doc, req.ActorID, &committed); err != nil {
					return err
				}
			}

			if err := repos.Receipts().Save(ctx, doc); err != nil {
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
	telemetry.SetAttributes(span,
		telemetry.SpanAttrDocumentNumber, resp.DocumentNumber,
		telemetry.SpanAttrDocumentStatus, resp.Status,
	)
	logger.L(ctx).Info("NIR document created",
		zap.String("document_number", resp.DocumentNumber),
		zap.String("status", resp.Status),
		zap.Int("line_count", len(resp.Lines)),
	)
	return &resp, nil
}

// GetByID retrieves a document with its lines.
func (s *Service) GetByID(ctx context.Context, companyID, documentID uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.receiptRepo.FindByIDForCompany(ctx, companyID, documentID)
	if err != nil {
		return nil, err
	}

	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// List retrieves the company's documents with filtering and pagination.
func (s *Service) List(ctx context.Context, companyID uuid.UUID, filter ReceiptListFilter) ([]DocumentResponse, int64, error) {
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

	page, err := s.receiptRepo.FindForCompany(ctx, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]DocumentResponse, len(page.Items))
	for i := range page.Items {
		responses[i] = ToDocumentResponse(&page.Items[i])
	}
	return responses, page.Total, nil
}

// Submit moves a draft to pending approval.
func (s *Service) Submit(ctx context.Context, companyID, documentID uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.receiptRepo.FindByIDForCompany(ctx, companyID, documentID)
	if err != nil {
		return nil, err
	}
	if err := doc.Submit(); err != nil {
		return nil, err
	}
	if err := s.receiptRepo.SaveWithLock(ctx, doc); err != nil {
		return nil, err
	}

	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// Approve finalizes the document. When posting happens at approval the
// stock moves here, atomically with the status change.
func (s *Service) Approve(ctx context.Context, companyID, documentID, approverID uuid.UUID) (*DocumentResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "receipt.approve")
	defer span.End()

	var resp DocumentResponse
	var committed []shared.AggregateRoot

	err := appstock.WithConflictRetry(ctx, func() error {
		committed = committed[:0]
		return s.txScope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
			doc, err := repos.Receipts().FindByIDForCompany(ctx, companyID, documentID)
			if err != nil {
				return err
			}
			if err := doc.Approve(approverID); err != nil {
				return err
			}

			if s.postingPoint == PostAtApproval && !doc.IsPosted() {
				actor := approverID
				if err := s.postDocument(ctx, repos, doc, &actor, &committed); err != nil {
					return err
				}
			}

			if err := repos.Receipts().SaveWithLock(ctx, doc); err != nil {
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
	logger.L(ctx).Info("NIR document approved",
		zap.String("document_number", resp.DocumentNumber),
		zap.Bool("posted", resp.Posted),
	)
	return &resp, nil
}

// Reject refuses a document. Stock posted at creation is not reversed
// automatically; that correction is an explicit adjustment.
func (s *Service) Reject(ctx context.Context, companyID, documentID, rejecterID uuid.UUID, reason string) (*DocumentResponse, error) {
	doc, err := s.receiptRepo.FindByIDForCompany(ctx, companyID, documentID)
	if err != nil {
		return nil, err
	}
	if err := doc.Reject(rejecterID, reason); err != nil {
		return nil, err
	}
	if err := s.receiptRepo.SaveWithLock(ctx, doc); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, doc)

	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// postDocument folds every line into stock under the mode snapshotted on
// the document. Costs enter the ledger in base currency. Touched
// balances are appended to committed so their events can be published
// once the transaction lands.
func (s *Service) postDocument(ctx context.Context, repos appstock.TransactionalRepositories, doc *receipt.Document, actorID *uuid.UUID, committed *[]shared.AggregateRoot) error {
	for _, line := range doc.Items {
		sellingPrice := line.SellingPrice
		if !doc.WarehouseMode.TracksSellingPrice() {
			sellingPrice = decimal.Zero
		}

		balance, err := s.poster.Post(ctx, repos, doc.CompanyID, doc.WarehouseID, line.ProductID, doc.WarehouseMode, stock.Entry{
			Type:         stock.MovementReceipt,
			Direction:    stock.DirectionIn,
			Quantity:     line.Quantity,
			UnitCost:     line.BaseUnitCost,
			SellingPrice: sellingPrice,
			SourceType:   SourceTypeNIR,
			SourceID:     doc.ID,
			ActorID:      actorID,
			Note:         doc.DocumentNumber,
		})
		if err != nil {
			return err
		}

		if line.BatchNumber != "" {
			balance.SetBatch(line.BatchNumber, line.ExpiryDate)
			if err := repos.Balances().Save(ctx, balance); err != nil {
				return err
			}
		}
		*committed = append(*committed, balance)
	}

	return doc.MarkPosted()
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
