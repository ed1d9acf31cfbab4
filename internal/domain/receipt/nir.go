package receipt

import (
	"fmt"
	"time"

	"github.com/contaro/backend/internal/domain/shared"
	"github.com/contaro/backend/internal/domain/shared/valueobject"
	"github.com/contaro/backend/internal/domain/stock"
	"github.com/contaro/backend/internal/domain/warehouse"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the NIR document lifecycle state.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether the document can no longer change state.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransitionTo enforces the document state machine. A draft may be
// submitted or approved directly; a pending document is decided; terminal
// states never move again.
func (s Status) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusDraft:    {StatusPending, StatusApproved, StatusRejected},
		StatusPending:  {StatusApproved, StatusRejected},
		StatusApproved: {},
		StatusRejected: {},
	}

	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// LineItem is one received product line. Money fields are in the document
// currency; BaseUnitCost is the RON acquisition cost per unit that the
// stock ledger is posted with.
type LineItem struct {
	shared.BaseEntity
	DocumentID   uuid.UUID            `gorm:"type:uuid;not null;index" json:"document_id"`
	ProductID    uuid.UUID            `gorm:"type:uuid;not null" json:"product_id"`
	Description  string               `gorm:"size:300" json:"description,omitempty"`
	Quantity     decimal.Decimal      `gorm:"type:decimal(18,4);not null" json:"quantity"`
	UnitPrice    decimal.Decimal      `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	VATRate      decimal.Decimal      `gorm:"type:decimal(6,4);not null" json:"vat_rate"`
	NetAmount    decimal.Decimal      `gorm:"type:decimal(18,2);not null" json:"net_amount"`
	VATAmount    decimal.Decimal      `gorm:"type:decimal(18,2);not null" json:"vat_amount"`
	GrossAmount  decimal.Decimal      `gorm:"type:decimal(18,2);not null" json:"gross_amount"`
	BaseUnitCost decimal.Decimal      `gorm:"type:decimal(18,4);not null" json:"base_unit_cost"`
	SellingPrice decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0" json:"selling_price"`
	BatchNumber  string               `gorm:"size:100" json:"batch_number,omitempty"`
	ExpiryDate   *time.Time           `json:"expiry_date,omitempty"`
	Currency     valueobject.Currency `gorm:"size:3;not null" json:"currency"`
}

func (LineItem) TableName() string {
	return "nir_items"
}

// Document is the Nota de Intrare Receptie, the goods receipt note that
// brings supplier stock into a warehouse. The warehouse's operating mode
// is snapshotted at creation so a later mode change cannot alter how this
// document posts.
type Document struct {
	shared.CompanyAggregateRoot
	DocumentNumber  string                   `gorm:"size:50;not null;uniqueIndex:idx_nir_company_number" json:"document_number"`
	SupplierID      uuid.UUID                `gorm:"type:uuid;not null;index" json:"supplier_id"`
	SupplierInvoice string                   `gorm:"size:100" json:"supplier_invoice,omitempty"`
	WarehouseID     uuid.UUID                `gorm:"type:uuid;not null;index" json:"warehouse_id"`
	WarehouseMode   warehouse.OperatingMode  `gorm:"size:20;not null" json:"warehouse_mode"`
	Status          Status                   `gorm:"size:20;not null;default:'draft'" json:"status"`
	Currency        valueobject.Currency     `gorm:"size:3;not null" json:"currency"`
	ExchangeRate    decimal.Decimal          `gorm:"type:decimal(12,6);not null;default:1" json:"exchange_rate"`
	ReceiptDate     time.Time                `gorm:"not null" json:"receipt_date"`
	NetTotal        decimal.Decimal          `gorm:"type:decimal(18,2);not null;default:0" json:"net_total"`
	VATTotal        decimal.Decimal          `gorm:"type:decimal(18,2);not null;default:0" json:"vat_total"`
	GrossTotal      decimal.Decimal          `gorm:"type:decimal(18,2);not null;default:0" json:"gross_total"`
	BaseGrossTotal  decimal.Decimal          `gorm:"type:decimal(18,2);not null;default:0" json:"base_gross_total"`
	Items           []LineItem               `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"items"`
	Notes           string                   `gorm:"size:1000" json:"notes,omitempty"`
	PostedAt        *time.Time               `json:"posted_at,omitempty"`
	ApprovedBy      *uuid.UUID               `gorm:"type:uuid" json:"approved_by,omitempty"`
	ApprovedAt      *time.Time               `json:"approved_at,omitempty"`
	RejectedBy      *uuid.UUID               `gorm:"type:uuid" json:"rejected_by,omitempty"`
	RejectedAt      *time.Time               `json:"rejected_at,omitempty"`
	RejectionReason string                   `gorm:"size:500" json:"rejection_reason,omitempty"`
}

func (Document) TableName() string {
	return "nir_documents"
}

// NewDocument creates a draft NIR against an active warehouse. The rate
// must be 1 for RON documents and positive otherwise.
func NewDocument(companyID uuid.UUID, wh *warehouse.Warehouse, supplierID uuid.UUID, currency valueobject.Currency, exchangeRate decimal.Decimal, receiptDate time.Time) (*Document, error) {
	if wh == nil {
		return nil, shared.NewReferenceError("Warehouse is required")
	}
	if !wh.IsActive {
		return nil, shared.NewValidationError("Cannot receive into an inactive warehouse")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewReferenceError("Supplier ID is required")
	}
	if !currency.IsValid() {
		return nil, shared.NewValidationError("Invalid document currency")
	}
	if currency == valueobject.BaseCurrency {
		exchangeRate = decimal.NewFromInt(1)
	} else if exchangeRate.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("Exchange rate must be positive for foreign currency documents")
	}
	if receiptDate.IsZero() {
		receiptDate = time.Now()
	}

	doc := &Document{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		DocumentNumber:       GenerateDocumentNumber(receiptDate),
		SupplierID:           supplierID,
		WarehouseID:          wh.ID,
		WarehouseMode:        wh.Mode,
		Status:               StatusDraft,
		Currency:             currency,
		ExchangeRate:         exchangeRate,
		ReceiptDate:          receiptDate,
		Items:                make([]LineItem, 0),
	}
	doc.AddDomainEvent(NewDocumentCreatedEvent(doc))
	return doc, nil
}

// GenerateDocumentNumber produces a human-readable unique NIR number.
func GenerateDocumentNumber(date time.Time) string {
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("NIR-%s-%s", date.Format("20060102"), suffix)
}

// AddLine appends a received product line and recomputes document totals.
// Only draft documents are editable. A nil vatRate applies the standard
// rate; an explicit zero means a genuinely VAT-exempt line.
func (d *Document) AddLine(productID uuid.UUID, description string, qty, unitPrice decimal.Decimal, vatRate *decimal.Decimal, sellingPrice decimal.Decimal, batchNumber string, expiryDate *time.Time) error {
	if err := d.ensureEditable(); err != nil {
		return err
	}
	if productID == uuid.Nil {
		return shared.NewReferenceError("Product ID is required")
	}
	rate := stock.StandardVATRate
	if vatRate != nil {
		if vatRate.IsNegative() {
			return shared.NewValidationError("VAT rate cannot be negative")
		}
		rate = *vatRate
	}
	if d.WarehouseMode.TracksSellingPrice() && sellingPrice.IsNegative() {
		return shared.NewValidationError("Selling price cannot be negative")
	}

	totals, err := stock.ComputeLineTotals(qty, unitPrice, rate)
	if err != nil {
		return err
	}

	line := LineItem{
		BaseEntity:   shared.NewBaseEntity(),
		DocumentID:   d.ID,
		ProductID:    productID,
		Description:  description,
		Quantity:     qty,
		UnitPrice:    unitPrice,
		VATRate:      rate,
		NetAmount:    totals.Net,
		VATAmount:    totals.VAT,
		GrossAmount:  totals.Gross,
		BaseUnitCost: unitPrice.Mul(d.ExchangeRate).Round(stock.CostPrecision),
		SellingPrice: sellingPrice,
		BatchNumber:  batchNumber,
		ExpiryDate:   expiryDate,
		Currency:     d.Currency,
	}

	d.Items = append(d.Items, line)
	d.recalculateTotals()
	d.Touch()
	d.IncrementVersion()
	return nil
}

// RemoveLine deletes a line from a draft document.
func (d *Document) RemoveLine(lineID uuid.UUID) error {
	if err := d.ensureEditable(); err != nil {
		return err
	}

	for i, item := range d.Items {
		if item.ID == lineID {
			d.Items = append(d.Items[:i], d.Items[i+1:]...)
			d.recalculateTotals()
			d.Touch()
			d.IncrementVersion()
			return nil
		}
	}
	return shared.NewReferenceError("Line item not found on document")
}

// recalculateTotals re-derives document totals from the lines. The gross
// total is the sum of line grosses, so it always matches net plus VAT.
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
	d.BaseGrossTotal = gross.Mul(d.ExchangeRate).Round(stock.MoneyPrecision)
}

// Submit moves a draft with at least one line to pending approval.
func (d *Document) Submit() error {
	if len(d.Items) == 0 {
		return shared.NewValidationError("Cannot submit a document without lines")
	}
	return d.transitionTo(StatusPending)
}

// Approve finalizes the document. Whether approval also posts stock is an
// application concern driven by the configured posting point.
func (d *Document) Approve(by uuid.UUID) error {
	if len(d.Items) == 0 {
		return shared.NewValidationError("Cannot approve a document without lines")
	}
	if err := d.transitionTo(StatusApproved); err != nil {
		return err
	}

	now := time.Now()
	d.ApprovedBy = &by
	d.ApprovedAt = &now
	d.AddDomainEvent(NewDocumentApprovedEvent(d, by))
	return nil
}

// Reject refuses the document with a reason.
func (d *Document) Reject(by uuid.UUID, reason string) error {
	if reason == "" {
		return shared.NewValidationError("Rejection reason is required")
	}
	if err := d.transitionTo(StatusRejected); err != nil {
		return err
	}

	now := time.Now()
	d.RejectedBy = &by
	d.RejectedAt = &now
	d.RejectionReason = reason
	d.AddDomainEvent(NewDocumentRejectedEvent(d, by, reason))
	return nil
}

// MarkPosted records that this document's lines have been folded into
// stock. A document posts exactly once.
func (d *Document) MarkPosted() error {
	if d.PostedAt != nil {
		return shared.NewStateTransitionError("Document has already been posted to stock")
	}

	now := time.Now()
	d.PostedAt = &now
	d.Touch()
	d.IncrementVersion()
	d.AddDomainEvent(NewDocumentPostedEvent(d))
	return nil
}

// IsPosted reports whether stock has been moved for this document.
func (d *Document) IsPosted() bool {
	return d.PostedAt != nil
}

func (d *Document) transitionTo(target Status) error {
	if !d.Status.CanTransitionTo(target) {
		return shared.NewStateTransitionError(
			fmt.Sprintf("Cannot transition document from %s to %s", d.Status, target))
	}

	d.Status = target
	d.Touch()
	d.IncrementVersion()
	return nil
}

func (d *Document) ensureEditable() error {
	if d.Status != StatusDraft {
		return shared.NewStateTransitionError("Only draft documents can be modified")
	}
	if d.IsPosted() {
		return shared.NewStateTransitionError("Posted documents cannot be modified")
	}
	return nil
}
