package stock

import (
	"github.com/contaro/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const AggregateTypeBalance = "StockBalance"

const (
	EventStockMoved    = "stock.moved"
	EventStockReserved = "stock.reserved"
	EventStockReleased = "stock.released"
)

// StockMovedEvent is raised whenever a ledger entry changes a position.
type StockMovedEvent struct {
	shared.BaseDomainEvent
	WarehouseID   uuid.UUID       `json:"warehouse_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	MovementType  MovementType    `json:"movement_type"`
	Direction     Direction       `json:"direction"`
	Quantity      decimal.Decimal `json:"quantity"`
	QuantityAfter decimal.Decimal `json:"quantity_after"`
	UnitCostAfter decimal.Decimal `json:"unit_cost_after"`
}

func NewStockMovedEvent(b *Balance, m *Movement) *StockMovedEvent {
	return &StockMovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventStockMoved, AggregateTypeBalance, b.ID, b.CompanyID),
		WarehouseID:     b.WarehouseID,
		ProductID:       b.ProductID,
		MovementType:    m.Type,
		Direction:       m.Direction,
		Quantity:        m.Quantity,
		QuantityAfter:   m.QuantityAfter,
		UnitCostAfter:   m.UnitCostAfter,
	}
}
