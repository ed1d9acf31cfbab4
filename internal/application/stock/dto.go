package stock

import (
	"time"

	"github.com/contaro/backend/internal/domain/shared"
	"github.com/contaro/backend/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceResponse represents a stock position in API responses.
type BalanceResponse struct {
	ID                uuid.UUID       `json:"id"`
	WarehouseID       uuid.UUID       `json:"warehouse_id"`
	ProductID         uuid.UUID       `json:"product_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	SellingPrice      decimal.Decimal `json:"selling_price"`
	TotalValue        decimal.Decimal `json:"total_value"`
	BatchNumber       string          `json:"batch_number,omitempty"`
	ExpiryDate        *time.Time      `json:"expiry_date,omitempty"`
	LastMovementAt    *time.Time      `json:"last_movement_at,omitempty"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// ToBalanceResponse converts a balance aggregate to its API shape.
func ToBalanceResponse(b *stock.Balance) BalanceResponse {
	return BalanceResponse{
		ID:                b.ID,
		WarehouseID:       b.WarehouseID,
		ProductID:         b.ProductID,
		Quantity:          b.Quantity,
		ReservedQuantity:  b.ReservedQuantity,
		AvailableQuantity: b.AvailableQuantity(),
		UnitCost:          b.UnitCost,
		SellingPrice:      b.SellingPrice,
		TotalValue:        b.TotalValue(),
		BatchNumber:       b.BatchNumber,
		ExpiryDate:        b.ExpiryDate,
		LastMovementAt:    b.LastMovementAt,
		UpdatedAt:         b.UpdatedAt,
		Version:           b.Version,
	}
}

// ZeroBalanceResponse is the shape returned for a pair that never moved.
func ZeroBalanceResponse(warehouseID, productID uuid.UUID) BalanceResponse {
	return BalanceResponse{
		WarehouseID:       warehouseID,
		ProductID:         productID,
		Quantity:          decimal.Zero,
		ReservedQuantity:  decimal.Zero,
		AvailableQuantity: decimal.Zero,
		UnitCost:          decimal.Zero,
		SellingPrice:      decimal.Zero,
		TotalValue:        decimal.Zero,
	}
}

// MovementResponse represents a journal row in API responses.
type MovementResponse struct {
	ID             uuid.UUID          `json:"id"`
	WarehouseID    uuid.UUID          `json:"warehouse_id"`
	ProductID      uuid.UUID          `json:"product_id"`
	Type           stock.MovementType `json:"type"`
	Direction      stock.Direction    `json:"direction"`
	Quantity       decimal.Decimal    `json:"quantity"`
	UnitCost       decimal.Decimal    `json:"unit_cost"`
	QuantityBefore decimal.Decimal    `json:"quantity_before"`
	QuantityAfter  decimal.Decimal    `json:"quantity_after"`
	UnitCostBefore decimal.Decimal    `json:"unit_cost_before"`
	UnitCostAfter  decimal.Decimal    `json:"unit_cost_after"`
	SourceType     string             `json:"source_type"`
	SourceID       uuid.UUID          `json:"source_id"`
	ActorID        *uuid.UUID         `json:"actor_id,omitempty"`
	Note           string             `json:"note,omitempty"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

func ToMovementResponse(m *stock.Movement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		WarehouseID:    m.WarehouseID,
		ProductID:      m.ProductID,
		Type:           m.Type,
		Direction:      m.Direction,
		Quantity:       m.Quantity,
		UnitCost:       m.UnitCost,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		UnitCostBefore: m.UnitCostBefore,
		UnitCostAfter:  m.UnitCostAfter,
		SourceType:     m.SourceType,
		SourceID:       m.SourceID,
		ActorID:        m.ActorID,
		Note:           m.Note,
		OccurredAt:     m.OccurredAt,
	}
}

// BalanceListFilter represents filter options for warehouse stock lists.
type BalanceListFilter struct {
	Search   string `form:"search"`
	HasStock *bool  `form:"has_stock"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f BalanceListFilter) toDomain() shared.Filter {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}
	filter.Search = f.Search
	if f.HasStock != nil {
		filter.Filters["has_stock"] = *f.HasStock
	}
	return filter
}

// MovementListFilter represents filter options for journal queries.
type MovementListFilter struct {
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ReservationRequest asks to hold or release stock for a pair.
type ReservationRequest struct {
	WarehouseID uuid.UUID       `json:"warehouse_id" binding:"required"`
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
}

// AdjustmentRequest corrects a position outside the document flows, e.g.
// after a physical inventory count.
type AdjustmentRequest struct {
	WarehouseID uuid.UUID       `json:"warehouse_id" binding:"required"`
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	Direction   string          `json:"direction" binding:"required,oneof=in out"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Reason      string          `json:"reason" binding:"required"`
	ActorID     *uuid.UUID      `json:"actor_id"`
}
