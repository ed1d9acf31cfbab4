package persistence

import (
	"context"
	"testing"

	"github.com/contaro/backend/internal/domain/stock"
	"github.com/contaro/backend/internal/domain/warehouse"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&warehouse.Warehouse{},
		&stock.Balance{},
		&stock.Movement{},
	))
	return db
}

func seedBalance(t *testing.T, repo *GormBalanceRepository, companyID, warehouseID, productID uuid.UUID, qty, cost string) *stock.Balance {
	t.Helper()

	b, err := stock.NewBalance(companyID, warehouseID, productID)
	require.NoError(t, err)
	b.Quantity = decimal.RequireFromString(qty)
	b.UnitCost = decimal.RequireFromString(cost)
	require.NoError(t, repo.Save(context.Background(), b))
	return b
}

func TestGormBalanceRepository_Find(t *testing.T) {
	repo := NewGormBalanceRepository(newTestDB(t))
	companyID, warehouseID, productID := uuid.New(), uuid.New(), uuid.New()

	t.Run("missing pair returns nil without error", func(t *testing.T) {
		balance, err := repo.Find(context.Background(), companyID, warehouseID, productID)

		require.NoError(t, err)
		assert.Nil(t, balance)
	})

	t.Run("finds seeded pair", func(t *testing.T) {
		seedBalance(t, repo, companyID, warehouseID, productID, "100", "12.5")

		balance, err := repo.Find(context.Background(), companyID, warehouseID, productID)

		require.NoError(t, err)
		require.NotNil(t, balance)
		assert.True(t, balance.Quantity.Equal(decimal.NewFromInt(100)))
		assert.True(t, balance.UnitCost.Equal(decimal.RequireFromString("12.5")))
	})

	t.Run("does not leak across companies", func(t *testing.T) {
		balance, err := repo.Find(context.Background(), uuid.New(), warehouseID, productID)

		require.NoError(t, err)
		assert.Nil(t, balance)
	})
}

func TestGormBalanceRepository_GetOrCreate(t *testing.T) {
	repo := NewGormBalanceRepository(newTestDB(t))
	companyID, warehouseID, productID := uuid.New(), uuid.New(), uuid.New()

	t.Run("creates zero position for new pair", func(t *testing.T) {
		balance, err := repo.GetOrCreate(context.Background(), companyID, warehouseID, productID)

		require.NoError(t, err)
		assert.True(t, balance.Quantity.IsZero())
		assert.Equal(t, 1, balance.Version)
	})

	t.Run("returns existing position", func(t *testing.T) {
		seeded := seedBalance(t, repo, companyID, warehouseID, productID, "7", "3")

		balance, err := repo.GetOrCreate(context.Background(), companyID, warehouseID, productID)

		require.NoError(t, err)
		assert.Equal(t, seeded.ID, balance.ID)
		assert.True(t, balance.Quantity.Equal(decimal.NewFromInt(7)))
	})
}

func TestGormBalanceRepository_SaveWithLock(t *testing.T) {
	t.Run("persists a fresh position", func(t *testing.T) {
		repo := NewGormBalanceRepository(newTestDB(t))
		b, err := stock.NewBalance(uuid.New(), uuid.New(), uuid.New())
		require.NoError(t, err)
		b.Quantity = decimal.NewFromInt(10)
		b.IncrementVersion()

		require.NoError(t, repo.SaveWithLock(context.Background(), b))

		found, err := repo.Find(context.Background(), b.CompanyID, b.WarehouseID, b.ProductID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, 2, found.Version)
	})

	t.Run("detects a concurrent update", func(t *testing.T) {
		repo := NewGormBalanceRepository(newTestDB(t))
		companyID, warehouseID, productID := uuid.New(), uuid.New(), uuid.New()
		seedBalance(t, repo, companyID, warehouseID, productID, "10", "5")

		first, err := repo.Find(context.Background(), companyID, warehouseID, productID)
		require.NoError(t, err)
		second, err := repo.Find(context.Background(), companyID, warehouseID, productID)
		require.NoError(t, err)

		first.Quantity = decimal.NewFromInt(20)
		first.IncrementVersion()
		require.NoError(t, repo.SaveWithLock(context.Background(), first))

		second.Quantity = decimal.NewFromInt(30)
		second.IncrementVersion()
		err = repo.SaveWithLock(context.Background(), second)

		require.Error(t, err)

		// The winner's write is intact.
		found, err := repo.Find(context.Background(), companyID, warehouseID, productID)
		require.NoError(t, err)
		assert.True(t, found.Quantity.Equal(decimal.NewFromInt(20)))
	})
}

func TestGormBalanceRepository_FindByWarehouse(t *testing.T) {
	repo := NewGormBalanceRepository(newTestDB(t))
	companyID, warehouseID := uuid.New(), uuid.New()

	seedBalance(t, repo, companyID, warehouseID, uuid.New(), "10", "1")
	seedBalance(t, repo, companyID, warehouseID, uuid.New(), "0", "0")
	seedBalance(t, repo, companyID, uuid.New(), uuid.New(), "5", "2")

	t.Run("lists only the warehouse's positions", func(t *testing.T) {
		page, err := repo.FindByWarehouse(context.Background(), companyID, warehouseID, testFilter())

		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
		assert.Len(t, page.Items, 2)
	})

	t.Run("has_stock filter hides empty positions", func(t *testing.T) {
		filter := testFilter()
		filter.Filters["has_stock"] = true

		page, err := repo.FindByWarehouse(context.Background(), companyID, warehouseID, filter)

		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
	})
}

func TestGormMovementRepository_Journal(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormMovementRepository(db)
	balanceRepo := NewGormBalanceRepository(db)
	ledger := stock.NewLedger()

	companyID, warehouseID, productID := uuid.New(), uuid.New(), uuid.New()
	sourceID := uuid.New()

	balance, err := stock.NewBalance(companyID, warehouseID, productID)
	require.NoError(t, err)

	for _, qty := range []string{"10", "5"} {
		movement, err := ledger.Post(balance, warehouse.ModeDepozit, stock.Entry{
			Type:       stock.MovementReceipt,
			Direction:  stock.DirectionIn,
			Quantity:   decimal.RequireFromString(qty),
			UnitCost:   decimal.NewFromInt(4),
			SourceType: "nir",
			SourceID:   sourceID,
		})
		require.NoError(t, err)
		require.NoError(t, repo.Append(context.Background(), movement))
	}
	require.NoError(t, balanceRepo.Save(context.Background(), balance))

	t.Run("journal replays by source", func(t *testing.T) {
		movements, err := repo.FindBySource(context.Background(), companyID, "nir", sourceID)

		require.NoError(t, err)
		require.Len(t, movements, 2)
		assert.True(t, movements[0].QuantityBefore.IsZero())
		assert.True(t, movements[1].QuantityAfter.Equal(decimal.NewFromInt(15)))
	})

	t.Run("position journal paginates", func(t *testing.T) {
		filter := testFilter()
		filter.PageSize = 1

		page, err := repo.FindByPosition(context.Background(), companyID, warehouseID, productID, filter)

		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
		assert.Len(t, page.Items, 1)
	})
}
