package stock

import (
	"testing"

	"github.com/contaro/backend/internal/domain/shared"
	"github.com/contaro/backend/internal/domain/warehouse"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBalance(t *testing.T) *Balance {
	t.Helper()
	b, err := NewBalance(uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	return b
}

func receiptEntry(qty, cost string) Entry {
	return Entry{
		Type:       MovementReceipt,
		Direction:  DirectionIn,
		Quantity:   decimal.RequireFromString(qty),
		UnitCost:   decimal.RequireFromString(cost),
		SourceType: "nir",
		SourceID:   uuid.New(),
	}
}

func issueEntry(qty string) Entry {
	return Entry{
		Type:       MovementTransferOut,
		Direction:  DirectionOut,
		Quantity:   decimal.RequireFromString(qty),
		SourceType: "transfer",
		SourceID:   uuid.New(),
	}
}

func TestLedger_Post_WeightedAverage(t *testing.T) {
	ledger := NewLedger()

	t.Run("first receipt adopts incoming cost", func(t *testing.T) {
		b := newTestBalance(t)

		m, err := ledger.Post(b, warehouse.ModeDepozit, receiptEntry("100", "10"))

		require.NoError(t, err)
		assert.True(t, b.Quantity.Equal(decimal.NewFromInt(100)))
		assert.True(t, b.UnitCost.Equal(decimal.NewFromInt(10)))
		assert.True(t, m.QuantityBefore.IsZero())
		assert.True(t, m.QuantityAfter.Equal(decimal.NewFromInt(100)))
	})

	t.Run("second receipt averages by value", func(t *testing.T) {
		b := newTestBalance(t)

		_, err := ledger.Post(b, warehouse.ModeDepozit, receiptEntry("100", "10"))
		require.NoError(t, err)
		_, err = ledger.Post(b, warehouse.ModeDepozit, receiptEntry("50", "16"))
		require.NoError(t, err)

		// (100*10 + 50*16) / 150 = 12
		assert.True(t, b.Quantity.Equal(decimal.NewFromInt(150)))
		assert.True(t, b.UnitCost.Equal(decimal.NewFromInt(12)), "got %s", b.UnitCost)
	})

	t.Run("average rounds to four decimals", func(t *testing.T) {
		b := newTestBalance(t)

		_, err := ledger.Post(b, warehouse.ModeDepozit, receiptEntry("3", "10"))
		require.NoError(t, err)
		_, err = ledger.Post(b, warehouse.ModeDepozit, receiptEntry("7", "10.01"))
		require.NoError(t, err)

		// (30 + 70.07) / 10 = 10.007
		assert.True(t, b.UnitCost.Equal(decimal.RequireFromString("10.007")), "got %s", b.UnitCost)
	})

	t.Run("average stays within the cost bounds", func(t *testing.T) {
		b := newTestBalance(t)
		costs := []string{"9.37", "14.20", "3.05", "21.99", "12.00", "7.654"}
		low := decimal.RequireFromString("3.05")
		high := decimal.RequireFromString("21.99")

		for _, c := range costs {
			_, err := ledger.Post(b, warehouse.ModeDepozit, receiptEntry("13.5", c))
			require.NoError(t, err)
			assert.True(t, b.UnitCost.GreaterThanOrEqual(low), "cost %s below floor", b.UnitCost)
			assert.True(t, b.UnitCost.LessThanOrEqual(high), "cost %s above ceiling", b.UnitCost)
		}
	})

	t.Run("receipt into drained position restarts valuation", func(t *testing.T) {
		b := newTestBalance(t)

		_, err := ledger.Post(b, warehouse.ModeDepozit, receiptEntry("10", "10"))
		require.NoError(t, err)
		_, err = ledger.Post(b, warehouse.ModeDepozit, issueEntry("10"))
		require.NoError(t, err)
		require.True(t, b.UnitCost.IsZero())

		_, err = ledger.Post(b, warehouse.ModeDepozit, receiptEntry("5", "99"))
		require.NoError(t, err)
		assert.True(t, b.UnitCost.Equal(decimal.NewFromInt(99)))
	})
}

func TestLedger_Post_ModeBehavior(t *testing.T) {
	ledger := NewLedger()

	t.Run("magazin overwrites selling price on each receipt", func(t *testing.T) {
		b := newTestBalance(t)

		e := receiptEntry("10", "10")
		e.SellingPrice = decimal.RequireFromString("15.50")
		_, err := ledger.Post(b, warehouse.ModeMagazin, e)
		require.NoError(t, err)
		assert.True(t, b.SellingPrice.Equal(decimal.RequireFromString("15.50")))

		e = receiptEntry("5", "11")
		e.SellingPrice = decimal.RequireFromString("16.90")
		_, err = ledger.Post(b, warehouse.ModeMagazin, e)
		require.NoError(t, err)
		assert.True(t, b.SellingPrice.Equal(decimal.RequireFromString("16.90")))
	})

	t.Run("magazin receipt without price keeps the last one", func(t *testing.T) {
		b := newTestBalance(t)

		e := receiptEntry("10", "10")
		e.SellingPrice = decimal.RequireFromString("12")
		_, err := ledger.Post(b, warehouse.ModeMagazin, e)
		require.NoError(t, err)

		_, err = ledger.Post(b, warehouse.ModeMagazin, receiptEntry("5", "10"))
		require.NoError(t, err)
		assert.True(t, b.SellingPrice.Equal(decimal.NewFromInt(12)))
	})

	t.Run("custodie carries no cost", func(t *testing.T) {
		b := newTestBalance(t)

		_, err := ledger.Post(b, warehouse.ModeCustodie, receiptEntry("40", "25"))

		require.NoError(t, err)
		assert.True(t, b.Quantity.Equal(decimal.NewFromInt(40)))
		assert.True(t, b.UnitCost.IsZero())
	})

	t.Run("custodie may go negative", func(t *testing.T) {
		b := newTestBalance(t)

		_, err := ledger.Post(b, warehouse.ModeCustodie, issueEntry("3"))

		require.NoError(t, err)
		assert.True(t, b.Quantity.Equal(decimal.NewFromInt(-3)))
	})

	t.Run("transfer mode conserves incoming cost", func(t *testing.T) {
		b := newTestBalance(t)

		_, err := ledger.Post(b, warehouse.ModeTransfer, receiptEntry("20", "12.3456"))

		require.NoError(t, err)
		assert.True(t, b.UnitCost.Equal(decimal.RequireFromString("12.3456")))
	})
}

func TestLedger_Post_Issue(t *testing.T) {
	ledger := NewLedger()

	t.Run("issue keeps the average cost", func(t *testing.T) {
		b := newTestBalance(t)
		_, err := ledger.Post(b, warehouse.ModeDepozit, receiptEntry("100", "12"))
		require.NoError(t, err)

		m, err := ledger.Post(b, warehouse.ModeDepozit, issueEntry("40"))

		require.NoError(t, err)
		assert.True(t, b.Quantity.Equal(decimal.NewFromInt(60)))
		assert.True(t, b.UnitCost.Equal(decimal.NewFromInt(12)))
		assert.True(t, m.UnitCostAfter.Equal(decimal.NewFromInt(12)))
	})

	t.Run("depozit refuses to go negative", func(t *testing.T) {
		b := newTestBalance(t)
		_, err := ledger.Post(b, warehouse.ModeDepozit, receiptEntry("10", "5"))
		require.NoError(t, err)

		_, err = ledger.Post(b, warehouse.ModeDepozit, issueEntry("11"))

		require.Error(t, err)
		assert.True(t, shared.HasCode(err, shared.CodeCapacity))
		assert.True(t, b.Quantity.Equal(decimal.NewFromInt(10)), "failed issue must not change the balance")
	})

	t.Run("reserved quantity is not issuable", func(t *testing.T) {
		b := newTestBalance(t)
		_, err := ledger.Post(b, warehouse.ModeDepozit, receiptEntry("10", "5"))
		require.NoError(t, err)
		require.NoError(t, b.Reserve(decimal.NewFromInt(4)))

		_, err = ledger.Post(b, warehouse.ModeDepozit, issueEntry("7"))

		require.Error(t, err)
		assert.True(t, shared.HasCode(err, shared.CodeCapacity))
	})
}

func TestLedger_Post_Validation(t *testing.T) {
	ledger := NewLedger()
	b := newTestBalance(t)

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := ledger.Post(b, warehouse.ModeDepozit, receiptEntry("0", "10"))
		require.Error(t, err)
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		_, err := ledger.Post(b, warehouse.ModeDepozit, receiptEntry("-1", "10"))
		require.Error(t, err)
	})

	t.Run("rejects negative cost", func(t *testing.T) {
		_, err := ledger.Post(b, warehouse.ModeDepozit, receiptEntry("1", "-10"))
		require.Error(t, err)
	})

	t.Run("rejects missing source", func(t *testing.T) {
		e := receiptEntry("1", "10")
		e.SourceID = uuid.Nil
		_, err := ledger.Post(b, warehouse.ModeDepozit, e)
		require.Error(t, err)
	})
}

func TestBalance_ReserveRelease(t *testing.T) {
	b := newTestBalance(t)
	b.Quantity = decimal.NewFromInt(10)

	t.Run("reserve reduces available", func(t *testing.T) {
		require.NoError(t, b.Reserve(decimal.NewFromInt(6)))
		assert.True(t, b.AvailableQuantity().Equal(decimal.NewFromInt(4)))
	})

	t.Run("cannot reserve beyond available", func(t *testing.T) {
		err := b.Reserve(decimal.NewFromInt(5))
		require.Error(t, err)
		assert.True(t, shared.HasCode(err, shared.CodeCapacity))
	})

	t.Run("release returns quantity", func(t *testing.T) {
		require.NoError(t, b.Release(decimal.NewFromInt(6)))
		assert.True(t, b.AvailableQuantity().Equal(decimal.NewFromInt(10)))
	})

	t.Run("cannot release more than reserved", func(t *testing.T) {
		require.Error(t, b.Release(decimal.NewFromInt(1)))
	})
}

func TestComputeLineTotals(t *testing.T) {
	t.Run("standard VAT line", func(t *testing.T) {
		totals, err := ComputeLineTotals(
			decimal.NewFromInt(10),
			decimal.RequireFromString("12.50"),
			StandardVATRate,
		)

		require.NoError(t, err)
		assert.True(t, totals.Net.Equal(decimal.RequireFromString("125.00")))
		assert.True(t, totals.VAT.Equal(decimal.RequireFromString("23.75")))
		assert.True(t, totals.Gross.Equal(decimal.RequireFromString("148.75")))
	})

	t.Run("gross equals net plus vat after rounding", func(t *testing.T) {
		totals, err := ComputeLineTotals(
			decimal.RequireFromString("3"),
			decimal.RequireFromString("0.333"),
			StandardVATRate,
		)

		require.NoError(t, err)
		assert.True(t, totals.Gross.Equal(totals.Net.Add(totals.VAT)))
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := ComputeLineTotals(decimal.Zero, decimal.NewFromInt(1), StandardVATRate)
		require.Error(t, err)
	})
}
