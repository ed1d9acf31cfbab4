package receipt

import (
	"time"

	"github.com/contaro/backend/internal/domain/receipt"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateLineRequest is one received product line on a new NIR. A nil
// VATRate applies the standard rate; an explicit zero marks the line
// VAT-exempt.
type CreateLineRequest struct {
	ProductID    uuid.UUID        `json:"product_id" binding:"required"`
	Description  string           `json:"description" binding:"omitempty,max=300"`
	Quantity     decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice    decimal.Decimal  `json:"unit_price" binding:"required"`
	VATRate      *decimal.Decimal `json:"vat_rate"`
	SellingPrice decimal.Decimal  `json:"selling_price"`
	BatchNumber  string           `json:"batch_number" binding:"omitempty,max=100"`
	ExpiryDate   *time.Time       `json:"expiry_date"`
}

// CreateReceiptRequest creates a NIR document with its lines in one
// call. SubmitForApproval skips the draft stage and files the document
// as pending directly.
type CreateReceiptRequest struct {
	WarehouseID       uuid.UUID           `json:"warehouse_id" binding:"required"`
	SupplierID        uuid.UUID           `json:"supplier_id" binding:"required"`
	SupplierInvoice   string              `json:"supplier_invoice" binding:"omitempty,max=100"`
	Currency          string              `json:"currency" binding:"omitempty,len=3"`
	ExchangeRate      decimal.Decimal     `json:"exchange_rate"`
	ReceiptDate       *time.Time          `json:"receipt_date"`
	Notes             string              `json:"notes" binding:"omitempty,max=1000"`
	Lines             []CreateLineRequest `json:"lines" binding:"required,min=1,dive"`
	SubmitForApproval bool                `json:"submit_for_approval"`
	ActorID           *uuid.UUID          `json:"actor_id"`
}

// RejectRequest refuses a pending document.
type RejectRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// LineResponse represents a NIR line in API responses.
type LineResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	Description  string          `json:"description,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	VATRate      decimal.Decimal `json:"vat_rate"`
	NetAmount    decimal.Decimal `json:"net_amount"`
	VATAmount    decimal.Decimal `json:"vat_amount"`
	GrossAmount  decimal.Decimal `json:"gross_amount"`
	BaseUnitCost decimal.Decimal `json:"base_unit_cost"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	BatchNumber  string          `json:"batch_number,omitempty"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
}

// DocumentResponse represents a NIR document in API responses.
type DocumentResponse struct {
	ID              uuid.UUID       `json:"id"`
	DocumentNumber  string          `json:"document_number"`
	SupplierID      uuid.UUID       `json:"supplier_id"`
	SupplierInvoice string          `json:"supplier_invoice,omitempty"`
	WarehouseID     uuid.UUID       `json:"warehouse_id"`
	WarehouseMode   string          `json:"warehouse_mode"`
	Status          string          `json:"status"`
	Currency        string          `json:"currency"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate"`
	ReceiptDate     time.Time       `json:"receipt_date"`
	NetTotal        decimal.Decimal `json:"net_total"`
	VATTotal        decimal.Decimal `json:"vat_total"`
	GrossTotal      decimal.Decimal `json:"gross_total"`
	BaseGrossTotal  decimal.Decimal `json:"base_gross_total"`
	Lines           []LineResponse  `json:"lines"`
	Notes           string          `json:"notes,omitempty"`
	Posted          bool            `json:"posted"`
	PostedAt        *time.Time      `json:"posted_at,omitempty"`
	ApprovedBy      *uuid.UUID      `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

func ToDocumentResponse(d *receipt.Document) DocumentResponse {
	lines := make([]LineResponse, len(d.Items))
	for i, item := range d.Items {
		lines[i] = LineResponse{
			ID:           item.ID,
			ProductID:    item.ProductID,
			Description:  item.Description,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			VATRate:      item.VATRate,
			NetAmount:    item.NetAmount,
			VATAmount:    item.VATAmount,
			GrossAmount:  item.GrossAmount,
			BaseUnitCost: item.BaseUnitCost,
			SellingPrice: item.SellingPrice,
			BatchNumber:  item.BatchNumber,
			ExpiryDate:   item.ExpiryDate,
		}
	}

	return DocumentResponse{
		ID:              d.ID,
		DocumentNumber:  d.DocumentNumber,
		SupplierID:      d.SupplierID,
		SupplierInvoice: d.SupplierInvoice,
		WarehouseID:     d.WarehouseID,
		WarehouseMode:   d.WarehouseMode.String(),
		Status:          string(d.Status),
		Currency:        string(d.Currency),
		ExchangeRate:    d.ExchangeRate,
		ReceiptDate:     d.ReceiptDate,
		NetTotal:        d.NetTotal,
		VATTotal:        d.VATTotal,
		GrossTotal:      d.GrossTotal,
		BaseGrossTotal:  d.BaseGrossTotal,
		Lines:           lines,
		Notes:           d.Notes,
		Posted:          d.IsPosted(),
		PostedAt:        d.PostedAt,
		ApprovedBy:      d.ApprovedBy,
		ApprovedAt:      d.ApprovedAt,
		RejectionReason: d.RejectionReason,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
		Version:         d.Version,
	}
}

// ReceiptListFilter represents filter options for NIR lists.
type ReceiptListFilter struct {
	Status      string     `form:"status" binding:"omitempty,oneof=draft pending approved rejected"`
	WarehouseID *uuid.UUID `form:"warehouse_id"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}
