package stock

import (
	"time"

	"github.com/contaro/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Balance is the per (warehouse, product) stock position. Quantity and
// UnitCost always describe the whole position; there is one row per pair
// and every movement rewrites it under the warehouse's valuation rule.
type Balance struct {
	shared.CompanyAggregateRoot
	WarehouseID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_balance_warehouse_product" json:"warehouse_id"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_balance_warehouse_product" json:"product_id"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"quantity"`
	ReservedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"reserved_quantity"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"unit_cost"`
	SellingPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"selling_price"`
	BatchNumber      string          `gorm:"size:100" json:"batch_number,omitempty"`
	ExpiryDate       *time.Time      `json:"expiry_date,omitempty"`
	LastMovementAt   *time.Time      `json:"last_movement_at,omitempty"`
	LastMovedBy      *uuid.UUID      `gorm:"type:uuid" json:"last_moved_by,omitempty"`
}

func (Balance) TableName() string {
	return "stock_balances"
}

// NewBalance creates an empty position for a warehouse/product pair.
func NewBalance(companyID, warehouseID, productID uuid.UUID) (*Balance, error) {
	if warehouseID == uuid.Nil {
		return nil, shared.NewReferenceError("Warehouse ID is required")
	}
	if productID == uuid.Nil {
		return nil, shared.NewReferenceError("Product ID is required")
	}

	return &Balance{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		WarehouseID:          warehouseID,
		ProductID:            productID,
		Quantity:             decimal.Zero,
		ReservedQuantity:     decimal.Zero,
		UnitCost:             decimal.Zero,
		SellingPrice:         decimal.Zero,
	}, nil
}

// AvailableQuantity is the on-hand quantity not held by reservations.
func (b *Balance) AvailableQuantity() decimal.Decimal {
	return b.Quantity.Sub(b.ReservedQuantity)
}

// TotalValue is quantity times unit cost at four decimals.
func (b *Balance) TotalValue() decimal.Decimal {
	return b.Quantity.Mul(b.UnitCost).Round(CostPrecision)
}

// Reserve holds quantity against the available balance without moving stock.
func (b *Balance) Reserve(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("Reservation quantity must be positive")
	}
	if qty.GreaterThan(b.AvailableQuantity()) {
		return shared.NewCapacityError("Insufficient available stock to reserve")
	}

	b.ReservedQuantity = b.ReservedQuantity.Add(qty)
	b.Touch()
	b.IncrementVersion()
	return nil
}

// Release returns previously reserved quantity to the available pool.
func (b *Balance) Release(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("Release quantity must be positive")
	}
	if qty.GreaterThan(b.ReservedQuantity) {
		return shared.NewValidationError("Cannot release more than the reserved quantity")
	}

	b.ReservedQuantity = b.ReservedQuantity.Sub(qty)
	b.Touch()
	b.IncrementVersion()
	return nil
}

// SetBatch stamps batch tracking details on the position.
func (b *Balance) SetBatch(batchNumber string, expiryDate *time.Time) {
	b.BatchNumber = batchNumber
	b.ExpiryDate = expiryDate
	b.Touch()
}

func (b *Balance) markMoved(actorID *uuid.UUID) {
	now := time.Now()
	b.LastMovementAt = &now
	b.LastMovedBy = actorID
	b.Touch()
	b.IncrementVersion()
}
