package transfer

import (
	"time"

	"github.com/contaro/backend/internal/domain/transfer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateItemRequest is one product line on a new transfer. A nil
// VATRate applies the standard rate; an explicit zero marks the line
// VAT-exempt. SellingPrice is the intended shelf price at the
// destination and can still be overridden at receive time.
type CreateItemRequest struct {
	ProductID    uuid.UUID        `json:"product_id" binding:"required"`
	Quantity     decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice    decimal.Decimal  `json:"unit_price"`
	VATRate      *decimal.Decimal `json:"vat_rate"`
	SellingPrice decimal.Decimal  `json:"selling_price"`
}

// CreateTransferRequest creates a draft transfer with its lines. An
// optional transit warehouse stages the goods between issue and
// receive.
type CreateTransferRequest struct {
	SourceWarehouseID      uuid.UUID           `json:"source_warehouse_id" binding:"required"`
	DestinationWarehouseID uuid.UUID           `json:"destination_warehouse_id" binding:"required"`
	TransitWarehouseID     *uuid.UUID          `json:"transit_warehouse_id"`
	Currency               string              `json:"currency" binding:"omitempty,len=3"`
	ExchangeRate           decimal.Decimal     `json:"exchange_rate"`
	Notes                  string              `json:"notes" binding:"omitempty,max=1000"`
	Items                  []CreateItemRequest `json:"items" binding:"required,min=1,dive"`
	ActorID                *uuid.UUID          `json:"actor_id"`
}

// ReceiveItemRequest overrides the shelf price for one product at
// receive time.
type ReceiveItemRequest struct {
	ProductID    uuid.UUID       `json:"product_id" binding:"required"`
	SellingPrice decimal.Decimal `json:"selling_price" binding:"required"`
}

// ReceiveTransferRequest completes a transfer at the destination.
type ReceiveTransferRequest struct {
	Items []ReceiveItemRequest `json:"items" binding:"omitempty,dive"`
}

// CancelRequest aborts a transfer.
type CancelRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ItemResponse represents a transfer line in API responses.
type ItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	VATRate      decimal.Decimal `json:"vat_rate"`
	NetAmount    decimal.Decimal `json:"net_amount"`
	VATAmount    decimal.Decimal `json:"vat_amount"`
	GrossAmount  decimal.Decimal `json:"gross_amount"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	SellingPrice decimal.Decimal `json:"selling_price"`
}

// DocumentResponse represents a transfer document in API responses.
type DocumentResponse struct {
	ID                     uuid.UUID       `json:"id"`
	DocumentNumber         string          `json:"document_number"`
	SourceWarehouseID      uuid.UUID       `json:"source_warehouse_id"`
	DestinationWarehouseID uuid.UUID       `json:"destination_warehouse_id"`
	TransitWarehouseID     *uuid.UUID      `json:"transit_warehouse_id,omitempty"`
	Status                 string          `json:"status"`
	Currency               string          `json:"currency"`
	ExchangeRate           decimal.Decimal `json:"exchange_rate"`
	NetTotal               decimal.Decimal `json:"net_total"`
	VATTotal               decimal.Decimal `json:"vat_total"`
	GrossTotal             decimal.Decimal `json:"gross_total"`
	Items                  []ItemResponse  `json:"items"`
	TotalQuantity          decimal.Decimal `json:"total_quantity"`
	TotalValue             decimal.Decimal `json:"total_value"`
	Notes                  string          `json:"notes,omitempty"`
	IssuedBy               *uuid.UUID      `json:"issued_by,omitempty"`
	IssuedAt               *time.Time      `json:"issued_at,omitempty"`
	ReceivedBy             *uuid.UUID      `json:"received_by,omitempty"`
	ReceivedAt             *time.Time      `json:"received_at,omitempty"`
	CancelledAt            *time.Time      `json:"cancelled_at,omitempty"`
	CancellationReason     string          `json:"cancellation_reason,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
	Version                int             `json:"version"`
}

func ToDocumentResponse(d *transfer.Document) DocumentResponse {
	items := make([]ItemResponse, len(d.Items))
	for i, item := range d.Items {
		items[i] = ItemResponse{
			ID:           item.ID,
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			VATRate:      item.VATRate,
			NetAmount:    item.NetAmount,
			VATAmount:    item.VATAmount,
			GrossAmount:  item.GrossAmount,
			UnitCost:     item.UnitCost,
			SellingPrice: item.SellingPrice,
		}
	}

	return DocumentResponse{
		ID:                     d.ID,
		DocumentNumber:         d.DocumentNumber,
		SourceWarehouseID:      d.SourceWarehouseID,
		DestinationWarehouseID: d.DestinationID,
		TransitWarehouseID:     d.TransitWarehouseID,
		Status:                 string(d.Status),
		Currency:               string(d.Currency),
		ExchangeRate:           d.ExchangeRate,
		NetTotal:               d.NetTotal,
		VATTotal:               d.VATTotal,
		GrossTotal:             d.GrossTotal,
		Items:                  items,
		TotalQuantity:          d.TotalQuantity(),
		TotalValue:             d.TotalValue(),
		Notes:                  d.Notes,
		IssuedBy:               d.IssuedBy,
		IssuedAt:               d.IssuedAt,
		ReceivedBy:             d.ReceivedBy,
		ReceivedAt:             d.ReceivedAt,
		CancelledAt:            d.CancelledAt,
		CancellationReason:     d.CancellationReason,
		CreatedAt:              d.CreatedAt,
		UpdatedAt:              d.UpdatedAt,
		Version:                d.Version,
	}
}

// TransferListFilter represents filter options for transfer lists.
type TransferListFilter struct {
	Status      string     `form:"status" binding:"omitempty,oneof=draft issued in_transit received cancelled"`
	WarehouseID *uuid.UUID `form:"warehouse_id"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}
