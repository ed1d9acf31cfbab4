package persistence

import (
	"context"
	"testing"

	"github.com/contaro/backend/internal/domain/shared"
	"github.com/contaro/backend/internal/domain/warehouse"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFilter() shared.Filter {
	return shared.DefaultFilter()
}

func seedWarehouse(t *testing.T, repo *GormWarehouseRepository, companyID uuid.UUID, name, code string, mode warehouse.OperatingMode) *warehouse.Warehouse {
	t.Helper()

	wh, err := warehouse.NewWarehouse(companyID, name, code, mode)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), wh))
	return wh
}

func TestGormWarehouseRepository_FindByCode(t *testing.T) {
	repo := NewGormWarehouseRepository(newTestDB(t))
	companyID := uuid.New()
	seedWarehouse(t, repo, companyID, "Depozit Central", "DEP-01", warehouse.ModeDepozit)

	t.Run("finds regardless of case", func(t *testing.T) {
		wh, err := repo.FindByCode(context.Background(), companyID, "dep-01")

		require.NoError(t, err)
		assert.Equal(t, "DEP-01", wh.Code)
	})

	t.Run("missing code is a reference error", func(t *testing.T) {
		_, err := repo.FindByCode(context.Background(), companyID, "NU-EXISTA")

		require.Error(t, err)
		assert.True(t, shared.HasCode(err, shared.CodeReference))
	})
}

func TestGormWarehouseRepository_ExistsByCode(t *testing.T) {
	repo := NewGormWarehouseRepository(newTestDB(t))
	companyID := uuid.New()
	seedWarehouse(t, repo, companyID, "Depozit Central", "DEP-01", warehouse.ModeDepozit)

	exists, err := repo.ExistsByCode(context.Background(), companyID, "DEP-01")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByCode(context.Background(), uuid.New(), "DEP-01")
	require.NoError(t, err)
	assert.False(t, exists, "codes are scoped per company")
}

func TestGormWarehouseRepository_FindAllForCompany(t *testing.T) {
	repo := NewGormWarehouseRepository(newTestDB(t))
	companyID := uuid.New()

	seedWarehouse(t, repo, companyID, "Depozit Central", "DEP-01", warehouse.ModeDepozit)
	magazin := seedWarehouse(t, repo, companyID, "Magazin Unirii", "MAG-01", warehouse.ModeMagazin)
	require.NoError(t, magazin.Deactivate())
	require.NoError(t, repo.Save(context.Background(), magazin))
	seedWarehouse(t, repo, uuid.New(), "Alt Depozit", "DEP-02", warehouse.ModeDepozit)

	t.Run("scopes to company", func(t *testing.T) {
		page, err := repo.FindAllForCompany(context.Background(), companyID, testFilter())

		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
	})

	t.Run("filters by mode", func(t *testing.T) {
		filter := testFilter()
		filter.Filters["mode"] = "magazin"

		page, err := repo.FindAllForCompany(context.Background(), companyID, filter)

		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, warehouse.ModeMagazin, page.Items[0].Mode)
	})

	t.Run("filters by active state", func(t *testing.T) {
		filter := testFilter()
		filter.Filters["is_active"] = true

		page, err := repo.FindAllForCompany(context.Background(), companyID, filter)

		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "DEP-01", page.Items[0].Code)
	})

	t.Run("searches by name", func(t *testing.T) {
		filter := testFilter()
		filter.Search = "unirii"

		page, err := repo.FindAllForCompany(context.Background(), companyID, filter)

		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "MAG-01", page.Items[0].Code)
	})
}

func TestGormWarehouseRepository_FindActive(t *testing.T) {
	repo := NewGormWarehouseRepository(newTestDB(t))
	companyID := uuid.New()

	seedWarehouse(t, repo, companyID, "Depozit Central", "DEP-01", warehouse.ModeDepozit)
	retired := seedWarehouse(t, repo, companyID, "Depozit Vechi", "DEP-99", warehouse.ModeDepozit)
	require.NoError(t, retired.Deactivate())
	require.NoError(t, repo.Save(context.Background(), retired))

	active, err := repo.FindActive(context.Background(), companyID)

	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "DEP-01", active[0].Code)
}
