package stock

import (
	"time"

	"github.com/contaro/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType classifies what caused a stock movement.
type MovementType string

const (
	MovementReceipt     MovementType = "receipt"
	MovementTransferOut MovementType = "transfer_out"
	MovementTransferIn  MovementType = "transfer_in"
	MovementAdjustment  MovementType = "adjustment"
	MovementReversal    MovementType = "reversal"
)

func (t MovementType) IsValid() bool {
	switch t {
	case MovementReceipt, MovementTransferOut, MovementTransferIn, MovementAdjustment, MovementReversal:
		return true
	}
	return false
}

// Direction says which way stock moved relative to the warehouse.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Movement is one append-only journal row. It snapshots the balance
// before and after so the journal replays to the current position and
// any historical valuation can be audited without recomputation.
// Movements are never updated or deleted.
type Movement struct {
	shared.BaseEntity
	CompanyID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	WarehouseID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_position" json:"warehouse_id"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_position" json:"product_id"`
	Type           MovementType    `gorm:"size:20;not null" json:"type"`
	Direction      Direction       `gorm:"size:3;not null" json:"direction"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	UnitCost       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_cost"`
	QuantityBefore decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity_before"`
	QuantityAfter  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity_after"`
	UnitCostBefore decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_cost_before"`
	UnitCostAfter  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_cost_after"`
	SourceType     string          `gorm:"size:50;not null" json:"source_type"`
	SourceID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"source_id"`
	ActorID        *uuid.UUID      `gorm:"type:uuid" json:"actor_id,omitempty"`
	Note           string          `gorm:"size:500" json:"note,omitempty"`
	OccurredAt     time.Time       `gorm:"not null;index" json:"occurred_at"`
}

func (Movement) TableName() string {
	return "stock_movements"
}
