package stock

import (
	"time"

	"github.com/contaro/backend/internal/domain/shared"
	"github.com/contaro/backend/internal/domain/warehouse"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry is one requested stock movement before it is applied.
type Entry struct {
	Type         MovementType
	Direction    Direction
	Quantity     decimal.Decimal
	UnitCost     decimal.Decimal
	SellingPrice decimal.Decimal
	SourceType   string
	SourceID     uuid.UUID
	ActorID      *uuid.UUID
	Note         string
}

// Ledger applies entries to balances under the valuation rule of the
// owning warehouse. It is pure domain logic; callers are responsible for
// loading the balance under a lock and persisting the result atomically
// with the produced movement.
type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Post applies one entry to the balance and returns the journal row
// describing the change. The balance is mutated in place; on error it is
// left untouched.
func (l *Ledger) Post(b *Balance, mode warehouse.OperatingMode, e Entry) (*Movement, error) {
	if err := l.validate(e); err != nil {
		return nil, err
	}

	before := snapshot{qty: b.Quantity, cost: b.UnitCost}

	switch e.Direction {
	case DirectionIn:
		rule, err := RuleFor(mode)
		if err != nil {
			return nil, err
		}
		if err := rule.ApplyReceipt(b, e.Quantity, e.UnitCost, e.SellingPrice); err != nil {
			return nil, err
		}
	case DirectionOut:
		if err := l.applyIssue(b, mode, e.Quantity); err != nil {
			return nil, err
		}
	default:
		return nil, shared.NewValidationError("Invalid movement direction")
	}

	b.markMoved(e.ActorID)
	now := time.Now()

	m := &Movement{
		BaseEntity:     shared.NewBaseEntity(),
		CompanyID:      b.CompanyID,
		WarehouseID:    b.WarehouseID,
		ProductID:      b.ProductID,
		Type:           e.Type,
		Direction:      e.Direction,
		Quantity:       e.Quantity,
		UnitCost:       e.UnitCost,
		QuantityBefore: before.qty,
		QuantityAfter:  b.Quantity,
		UnitCostBefore: before.cost,
		UnitCostAfter:  b.UnitCost,
		SourceType:     e.SourceType,
		SourceID:       e.SourceID,
		ActorID:        e.ActorID,
		Note:           e.Note,
		OccurredAt:     now,
	}

	b.AddDomainEvent(NewStockMovedEvent(b, m))
	return m, nil
}

// applyIssue removes quantity at the current average cost. Warehouses in
// modes that forbid negative stock refuse to go below zero available.
func (l *Ledger) applyIssue(b *Balance, mode warehouse.OperatingMode, qty decimal.Decimal) error {
	if mode.RequiresNonNegativeStock() && qty.GreaterThan(b.AvailableQuantity()) {
		return shared.NewCapacityError("Insufficient stock in warehouse")
	}

	b.Quantity = b.Quantity.Sub(qty)
	if b.Quantity.IsZero() {
		// An empty position restarts its valuation on the next receipt.
		b.UnitCost = decimal.Zero
	}
	return nil
}

func (l *Ledger) validate(e Entry) error {
	if !e.Type.IsValid() {
		return shared.NewValidationError("Invalid movement type")
	}
	if e.Quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("Movement quantity must be positive")
	}
	if e.UnitCost.IsNegative() {
		return shared.NewValidationError("Movement unit cost cannot be negative")
	}
	if e.SourceType == "" || e.SourceID == uuid.Nil {
		return shared.NewValidationError("Movement source is required")
	}
	return nil
}

type snapshot struct {
	qty  decimal.Decimal
	cost decimal.Decimal
}
