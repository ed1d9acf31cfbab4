package stock

import (
	"github.com/contaro/backend/internal/domain/shared"
	"github.com/contaro/backend/internal/domain/warehouse"
	"github.com/shopspring/decimal"
)

// CostPrecision is the number of decimal places kept on unit costs and
// stock quantities after valuation.
const CostPrecision = 4

// MoneyPrecision is the number of decimal places on document money amounts.
const MoneyPrecision = 2

// StandardVATRate is the Romanian standard VAT rate applied when a line
// carries no explicit rate.
var StandardVATRate = decimal.NewFromFloat(0.19)

// ValuationRule decides how an inbound movement changes a position's
// valuation. The rule for a position is fixed by the warehouse's operating
// mode at the time of the movement; changing the mode never revalues
// existing stock.
type ValuationRule interface {
	Name() string
	// ApplyReceipt folds an inbound quantity at the given acquisition cost
	// into the balance. sellingPrice is only meaningful to rules that track
	// it and is ignored by the others.
	ApplyReceipt(b *Balance, qty, unitCost, sellingPrice decimal.Decimal) error
}

// RuleFor returns the valuation rule for a warehouse operating mode.
// The mapping is closed; an unknown mode is a validation error, not a
// fallback to some default rule.
func RuleFor(mode warehouse.OperatingMode) (ValuationRule, error) {
	rule, ok := valuationRules[mode]
	if !ok {
		return nil, shared.NewValidationError("No valuation rule for operating mode: " + mode.String())
	}
	return rule, nil
}

var valuationRules = map[warehouse.OperatingMode]ValuationRule{
	warehouse.ModeDepozit:  weightedAverageRule{},
	warehouse.ModeMagazin:  retailRule{},
	warehouse.ModeCustodie: custodyRule{},
	warehouse.ModeTransfer: passThroughRule{},
}

// weightedAverageRule recomputes the moving average cost on every receipt:
// (oldQty*oldCost + inQty*inCost) / (oldQty + inQty), rounded to four
// decimals. The first receipt into an empty position adopts the incoming
// cost directly.
type weightedAverageRule struct{}

func (weightedAverageRule) Name() string { return "weighted_average" }

func (weightedAverageRule) ApplyReceipt(b *Balance, qty, unitCost, _ decimal.Decimal) error {
	if unitCost.IsNegative() {
		return shared.NewValidationError("Unit cost cannot be negative")
	}

	newQty := b.Quantity.Add(qty)
	if b.Quantity.IsZero() || b.Quantity.IsNegative() {
		b.UnitCost = unitCost.Round(CostPrecision)
	} else {
		oldValue := b.Quantity.Mul(b.UnitCost)
		inValue := qty.Mul(unitCost)
		b.UnitCost = oldValue.Add(inValue).Div(newQty).Round(CostPrecision)
	}
	b.Quantity = newQty
	return nil
}

// retailRule values shop stock the same way as a depot but additionally
// keeps the current selling price, which each receipt overwrites.
type retailRule struct{}

func (retailRule) Name() string { return "retail" }

func (r retailRule) ApplyReceipt(b *Balance, qty, unitCost, sellingPrice decimal.Decimal) error {
	if err := (weightedAverageRule{}).ApplyReceipt(b, qty, unitCost, decimal.Zero); err != nil {
		return err
	}
	if sellingPrice.IsNegative() {
		return shared.NewValidationError("Selling price cannot be negative")
	}
	if !sellingPrice.IsZero() {
		b.SellingPrice = sellingPrice.Round(CostPrecision)
	}
	return nil
}

// custodyRule tracks third-party goods held in custody. Quantities move
// normally but the stock carries no acquisition value of our own.
type custodyRule struct{}

func (custodyRule) Name() string { return "custody" }

func (custodyRule) ApplyReceipt(b *Balance, qty, _, _ decimal.Decimal) error {
	b.Quantity = b.Quantity.Add(qty)
	b.UnitCost = decimal.Zero
	return nil
}

// passThroughRule is used by transit warehouses. Stock keeps the cost it
// arrived with so that value is conserved across a transfer; a position
// holding mixed-cost goods averages them like a depot.
type passThroughRule struct{}

func (passThroughRule) Name() string { return "pass_through" }

func (passThroughRule) ApplyReceipt(b *Balance, qty, unitCost, _ decimal.Decimal) error {
	return weightedAverageRule{}.ApplyReceipt(b, qty, unitCost, decimal.Zero)
}

// LineTotals computes the money amounts for a document line. Net and VAT
// are rounded to two decimals independently, then the gross is their sum,
// so Gross == Net + VAT always holds exactly.
type LineTotals struct {
	Net   decimal.Decimal
	VAT   decimal.Decimal
	Gross decimal.Decimal
}

// ComputeLineTotals derives the net, VAT and gross amounts for qty units
// at unitPrice with the given VAT rate (e.g. 0.19).
func ComputeLineTotals(qty, unitPrice, vatRate decimal.Decimal) (LineTotals, error) {
	if qty.LessThanOrEqual(decimal.Zero) {
		return LineTotals{}, shared.NewValidationError("Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return LineTotals{}, shared.NewValidationError("Unit price cannot be negative")
	}
	if vatRate.IsNegative() {
		return LineTotals{}, shared.NewValidationError("VAT rate cannot be negative")
	}

	net := qty.Mul(unitPrice).Round(MoneyPrecision)
	vat := net.Mul(vatRate).Round(MoneyPrecision)
	return LineTotals{
		Net:   net,
		VAT:   vat,
		Gross: net.Add(vat),
	}, nil
}
