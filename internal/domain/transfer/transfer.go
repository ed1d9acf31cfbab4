package transfer

import (
	"fmt"
	"time"

	"github.com/contaro/backend/internal/domain/shared"
	"github.com/contaro/backend/internal/domain/shared/valueobject"
	"github.com/contaro/backend/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the transfer document lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusIssued    Status = "issued"
	StatusInTransit Status = "in_transit"
	StatusReceived  Status = "received"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusIssued, StatusInTransit, StatusReceived, StatusCancelled:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusReceived || s == StatusCancelled
}

// CanTransitionTo enforces the transfer state machine. Stock leaves the
// source at issue and enters the destination at receive; a cancellation
// after issue has to put the issued stock back, which is why cancelled is
// reachable from issued and in_transit but never from received.
func (s Status) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusDraft:     {StatusIssued, StatusCancelled},
		StatusIssued:    {StatusInTransit, StatusReceived, StatusCancelled},
		StatusInTransit: {StatusReceived, StatusCancelled},
		StatusReceived:  {},
		StatusCancelled: {},
	}

	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Item is one transferred product line. UnitPrice and the derived
// amounts are declared document values in the document currency;
// UnitCost is stamped at issue time with the source position's average
// cost and is the cost the destination receives at, so ledger value is
// conserved end to end. SellingPrice is what the destination shelf gets
// when the destination tracks selling prices.
type Item struct {
	shared.BaseEntity
	DocumentID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"document_id"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"unit_price"`
	VATRate      decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0" json:"vat_rate"`
	NetAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"net_amount"`
	VATAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"vat_amount"`
	GrossAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"gross_amount"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"unit_cost"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"selling_price"`
}

func (Item) TableName() string {
	return "transfer_items"
}

// Document moves stock between two warehouses of the same company. When
// a transit warehouse is set the goods stage through it between issue
// and receive instead of living only on the document.
type Document struct {
	shared.CompanyAggregateRoot
	DocumentNumber     string               `gorm:"size:50;not null;uniqueIndex:idx_transfer_company_number" json:"document_number"`
	SourceWarehouseID  uuid.UUID            `gorm:"type:uuid;not null;index" json:"source_warehouse_id"`
	DestinationID      uuid.UUID            `gorm:"type:uuid;not null;index;column:destination_warehouse_id" json:"destination_warehouse_id"`
	TransitWarehouseID *uuid.UUID           `gorm:"type:uuid" json:"transit_warehouse_id,omitempty"`
	Status             Status               `gorm:"size:20;not null;default:'draft'" json:"status"`
	Currency           valueobject.Currency `gorm:"size:3;not null;default:'RON'" json:"currency"`
	ExchangeRate       decimal.Decimal      `gorm:"type:decimal(12,6);not null;default:1" json:"exchange_rate"`
	NetTotal           decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0" json:"net_total"`
	VATTotal           decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0" json:"vat_total"`
	GrossTotal         decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0" json:"gross_total"`
	Items              []Item               `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"items"`
	Notes              string               `gorm:"size:1000" json:"notes,omitempty"`
	IssuedBy           *uuid.UUID           `gorm:"type:uuid" json:"issued_by,omitempty"`
	IssuedAt           *time.Time           `json:"issued_at,omitempty"`
	ReceivedBy         *uuid.UUID           `gorm:"type:uuid" json:"received_by,omitempty"`
	ReceivedAt         *time.Time           `json:"received_at,omitempty"`
	CancelledAt        *time.Time           `json:"cancelled_at,omitempty"`
	CancellationReason string               `gorm:"size:500" json:"cancellation_reason,omitempty"`
}

func (Document) TableName() string {
	return "transfer_documents"
}

// NewDocument creates a draft transfer between two distinct warehouses.
// The rate must be 1 for RON documents and positive otherwise.
func NewDocument(companyID, sourceWarehouseID, destinationID uuid.UUID, currency valueobject.Currency, exchangeRate decimal.Decimal) (*Document, error) {
	if sourceWarehouseID == uuid.Nil || destinationID == uuid.Nil {
		return nil, shared.NewReferenceError("Source and destination warehouses are required")
	}
	if sourceWarehouseID == destinationID {
		return nil, shared.NewValidationError("Source and destination warehouses must differ")
	}
	if !currency.IsValid() {
		return nil, shared.NewValidationError("Invalid document currency")
	}
	if currency == valueobject.BaseCurrency {
		exchangeRate = decimal.NewFromInt(1)
	} else if exchangeRate.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("Exchange rate must be positive for foreign currency documents")
	}

	doc := &Document{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		DocumentNumber:       GenerateDocumentNumber(time.Now()),
		SourceWarehouseID:    sourceWarehouseID,
		DestinationID:        destinationID,
		Status:               StatusDraft,
		Currency:             currency,
		ExchangeRate:         exchangeRate,
		Items:                make([]Item, 0),
	}
	doc.AddDomainEvent(NewTransferCreatedEvent(doc))
	return doc, nil
}

// GenerateDocumentNumber produces a human-readable unique transfer number.
func GenerateDocumentNumber(date time.Time) string {
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("TRF-%s-%s", date.Format("20060102"), suffix)
}

// SetTransitWarehouse stages the transfer through a virtual transit
// location. Only drafts can change routing.
func (d *Document) SetTransitWarehouse(warehouseID uuid.UUID) error {
	if d.Status != StatusDraft {
		return shared.NewStateTransitionError("Only draft transfers can be modified")
	}
	if warehouseID == uuid.Nil {
		return shared.NewReferenceError("Transit warehouse ID is required")
	}
	if warehouseID == d.SourceWarehouseID || warehouseID == d.DestinationID {
		return shared.NewValidationError("Transit warehouse must differ from source and destination")
	}

	d.TransitWarehouseID = &warehouseID
	d.Touch()
	d.IncrementVersion()
	return nil
}

// AddItem appends a product line to a draft transfer and recomputes the
// document totals. A nil vatRate applies the standard rate; an explicit
// zero means a genuinely VAT-exempt line. Adding the same product twice
// merges the quantities into one line, keeping the first line's pricing.
func (d *Document) AddItem(productID uuid.UUID, qty, unitPrice decimal.Decimal, vatRate *decimal.Decimal, sellingPrice decimal.Decimal) error {
	if d.Status != StatusDraft {
		return shared.NewStateTransitionError("Only draft transfers can be modified")
	}
	if productID == uuid.Nil {
		return shared.NewReferenceError("Product ID is required")
	}
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("Transfer quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewValidationError("Unit price cannot be negative")
	}
	if sellingPrice.IsNegative() {
		return shared.NewValidationError("Selling price cannot be negative")
	}

	rate := stock.StandardVATRate
	if vatRate != nil {
		if vatRate.IsNegative() {
			return shared.NewValidationError("VAT rate cannot be negative")
		}
		rate = *vatRate
	}

	for i := range d.Items {
		if d.Items[i].ProductID == productID {
			merged := d.Items[i].Quantity.Add(qty)
			totals, err := stock.ComputeLineTotals(merged, d.Items[i].UnitPrice, d.Items[i].VATRate)
			if err != nil {
				return err
			}
			d.Items[i].Quantity = merged
			d.Items[i].NetAmount = totals.Net
			d.Items[i].VATAmount = totals.VAT
			d.Items[i].GrossAmount = totals.Gross
			d.finishMutation()
			return nil
		}
	}

	totals, err := stock.ComputeLineTotals(qty, unitPrice, rate)
	if err != nil {
		return err
	}

	d.Items = append(d.Items, Item{
		BaseEntity:   shared.NewBaseEntity(),
		DocumentID:   d.ID,
		ProductID:    productID,
		Quantity:     qty,
		UnitPrice:    unitPrice,
		VATRate:      rate,
		NetAmount:    totals.Net,
		VATAmount:    totals.VAT,
		GrossAmount:  totals.Gross,
		SellingPrice: sellingPrice,
	})
	d.finishMutation()
	return nil
}

// Issue moves the document to issued and stamps each line with the unit
// cost its stock left the source at. costs is keyed by product ID.
func (d *Document) Issue(by uuid.UUID, costs map[uuid.UUID]decimal.Decimal) error {
	if len(d.Items) == 0 {
		return shared.NewValidationError("Cannot issue a transfer without lines")
	}
	if err := d.transitionTo(StatusIssued); err != nil {
		return err
	}

	for i := range d.Items {
		d.Items[i].UnitCost = costs[d.Items[i].ProductID]
	}

	now := time.Now()
	d.IssuedBy = &by
	d.IssuedAt = &now
	d.AddDomainEvent(NewTransferIssuedEvent(d, by))
	return nil
}

// MarkInTransit records that the goods have physically left the source.
func (d *Document) MarkInTransit() error {
	return d.transitionTo(StatusInTransit)
}

// Receive completes the transfer on the destination side. sellingPrices
// lets the receiver set or override per-product shelf prices for
// destinations that track them; products not in the map keep the price
// declared on the line.
func (d *Document) Receive(by uuid.UUID, sellingPrices map[uuid.UUID]decimal.Decimal) error {
	for _, price := range sellingPrices {
		if price.IsNegative() {
			return shared.NewValidationError("Selling price cannot be negative")
		}
	}
	if err := d.transitionTo(StatusReceived); err != nil {
		return err
	}

	for i := range d.Items {
		if price, ok := sellingPrices[d.Items[i].ProductID]; ok {
			d.Items[i].SellingPrice = price
		}
	}

	now := time.Now()
	d.ReceivedBy = &by
	d.ReceivedAt = &now
	d.AddDomainEvent(NewTransferReceivedEvent(d, by))
	return nil
}

// Cancel aborts the transfer. WasIssued on the event tells the caller
// whether issued stock has to be returned to the source.
func (d *Document) Cancel(reason string) error {
	if reason == "" {
		return shared.NewValidationError("Cancellation reason is required")
	}
	wasIssued := d.Status == StatusIssued || d.Status == StatusInTransit
	if err := d.transitionTo(StatusCancelled); err != nil {
		return err
	}

	now := time.Now()
	d.CancelledAt = &now
	d.CancellationReason = reason
	d.AddDomainEvent(NewTransferCancelledEvent(d, reason, wasIssued))
	return nil
}

// TotalQuantity sums the line quantities.
func (d *Document) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, item := range d.Items {
		total = total.Add(item.Quantity)
	}
	return total
}

// TotalValue sums quantity times stamped unit cost over the lines. Before
// issue the lines carry no cost and the value is zero.
func (d *Document) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, item := range d.Items {
		total = total.Add(item.Quantity.Mul(item.UnitCost))
	}
	return total.Round(stock.CostPrecision)
}

// recalculateTotals re-derives document totals from the lines, so gross
// always matches net plus VAT.
func (d *Document) recalculateTotals() {
	net, vat, gross := decimal.Zero, decimal.Zero, decimal.Zero
	for _, item := range d.Items {
		net = net.Add(item.NetAmount)
		vat = vat.Add(item.VATAmount)
		gross = gross.Add(item.GrossAmount)
	}
	d.NetTotal = net
	d.VATTotal = vat
	d.GrossTotal = gross
}

func (d *Document) finishMutation() {
	d.recalculateTotals()
	d.Touch()
	d.IncrementVersion()
}

func (d *Document) transitionTo(target Status) error {
	if !d.Status.CanTransitionTo(target) {
		return shared.NewStateTransitionError(
			fmt.Sprintf("Cannot transition transfer from %s to %s", d.Status, target))
	}

	d.Status = target
	d.Touch()
	d.IncrementVersion()
	return nil
}
