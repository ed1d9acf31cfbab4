package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	warehouseapp "github.com/contaro/backend/internal/application/warehouse"
	"github.com/contaro/backend/internal/domain/shared"
	"github.com/contaro/backend/internal/domain/warehouse"
	"github.com/contaro/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testCompanyID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

// memWarehouseRepo is an in-memory warehouse.Repository for handler tests.
type memWarehouseRepo struct {
	mu         sync.Mutex
	warehouses map[uuid.UUID]*warehouse.Warehouse
}

func newMemWarehouseRepo() *memWarehouseRepo {
	return &memWarehouseRepo{warehouses: make(map[uuid.UUID]*warehouse.Warehouse)}
}

func (r *memWarehouseRepo) clone(w *warehouse.Warehouse) *warehouse.Warehouse {
	cp := *w
	cp.ClearDomainEvents()
	return &cp
}

func (r *memWarehouseRepo) FindByID(_ context.Context, id uuid.UUID) (*warehouse.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.warehouses[id]; ok {
		return r.clone(w), nil
	}
	return nil, shared.ErrNotFound
}

func (r *memWarehouseRepo) FindByIDForCompany(_ context.Context, companyID, id uuid.UUID) (*warehouse.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.warehouses[id]; ok && w.CompanyID == companyID {
		return r.clone(w), nil
	}
	return nil, shared.ErrNotFound
}

func (r *memWarehouseRepo) FindByCode(_ context.Context, companyID uuid.UUID, code string) (*warehouse.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.warehouses {
		if w.CompanyID == companyID && w.Code == code {
			return r.clone(w), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memWarehouseRepo) FindAllForCompany(_ context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[warehouse.Warehouse], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []warehouse.Warehouse
	for _, w := range r.warehouses {
		if w.CompanyID != companyID {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(w.Name), strings.ToLower(filter.Search)) {
			continue
		}
		items = append(items, *r.clone(w))
	}
	return shared.Paginated[warehouse.Warehouse]{
		Items:    items,
		Total:    int64(len(items)),
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

func (r *memWarehouseRepo) FindActive(_ context.Context, companyID uuid.UUID) ([]*warehouse.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*warehouse.Warehouse
	for _, w := range r.warehouses {
		if w.CompanyID == companyID && w.IsActive {
			out = append(out, r.clone(w))
		}
	}
	return out, nil
}

func (r *memWarehouseRepo) FindByMode(_ context.Context, companyID uuid.UUID, mode warehouse.OperatingMode) ([]*warehouse.Warehouse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*warehouse.Warehouse
	for _, w := range r.warehouses {
		if w.CompanyID == companyID && w.Mode == mode {
			out = append(out, r.clone(w))
		}
	}
	return out, nil
}

func (r *memWarehouseRepo) ExistsByCode(_ context.Context, companyID uuid.UUID, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.warehouses {
		if w.CompanyID == companyID && w.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *memWarehouseRepo) Save(_ context.Context, w *warehouse.Warehouse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warehouses[w.ID] = r.clone(w)
	return nil
}

func (r *memWarehouseRepo) CountForCompany(_ context.Context, companyID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, w := range r.warehouses {
		if w.CompanyID == companyID {
			n++
		}
	}
	return n, nil
}

func (r *memWarehouseRepo) CountByActive(_ context.Context, companyID uuid.UUID, active bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, w := range r.warehouses {
		if w.CompanyID == companyID && w.IsActive == active {
			n++
		}
	}
	return n, nil
}

func setupWarehouseHandler(t *testing.T) (*WarehouseHandler, *memWarehouseRepo) {
	t.Helper()
	repo := newMemWarehouseRepo()
	service := warehouseapp.NewService(repo)
	return NewWarehouseHandler(service), repo
}

func seedWarehouse(t *testing.T, repo *memWarehouseRepo, name, code string) *warehouse.Warehouse {
	t.Helper()
	w, err := warehouse.NewWarehouse(testCompanyID, name, code, warehouse.ModeDepozit)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), w))
	return w
}

func newTestContext(t *testing.T, method, path string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Company-ID", testCompanyID.String())
	c.Request = req
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestWarehouseHandler_Create(t *testing.T) {
	t.Run("creates warehouse", func(t *testing.T) {
		h, _ := setupWarehouseHandler(t)

		c, w := newTestContext(t, "POST", "/warehouses", map[string]any{
			"name": "Depozit Central",
			"code": "DEP-01",
			"mode": "depozit",
		})

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)

		data := resp.Data.(map[string]any)
		assert.Equal(t, "Depozit Central", data["name"])
		assert.Equal(t, "DEP-01", data["code"])
		assert.Equal(t, "depozit", data["mode"])
		assert.Equal(t, true, data["is_active"])
	})

	t.Run("rejects invalid mode", func(t *testing.T) {
		h, _ := setupWarehouseHandler(t)

		c, w := newTestContext(t, "POST", "/warehouses", map[string]any{
			"name": "Depozit Central",
			"mode": "invalid",
		})

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects duplicate code", func(t *testing.T) {
		h, repo := setupWarehouseHandler(t)
		seedWarehouse(t, repo, "Existing", "DEP-01")

		c, w := newTestContext(t, "POST", "/warehouses", map[string]any{
			"name": "Another",
			"code": "DEP-01",
			"mode": "depozit",
		})

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	})
}

func TestWarehouseHandler_GetByID(t *testing.T) {
	t.Run("returns warehouse", func(t *testing.T) {
		h, repo := setupWarehouseHandler(t)
		wh := seedWarehouse(t, repo, "Magazin Unirii", "MAG-01")

		c, w := newTestContext(t, "GET", "/warehouses/"+wh.ID.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: wh.ID.String()}}

		h.GetByID(c)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]any)
		assert.Equal(t, wh.ID.String(), data["id"])
	})

	t.Run("returns 404 for unknown warehouse", func(t *testing.T) {
		h, _ := setupWarehouseHandler(t)

		unknown := uuid.New()
		c, w := newTestContext(t, "GET", "/warehouses/"+unknown.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: unknown.String()}}

		h.GetByID(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rejects malformed id", func(t *testing.T) {
		h, _ := setupWarehouseHandler(t)

		c, w := newTestContext(t, "GET", "/warehouses/abc", nil)
		c.Params = gin.Params{{Key: "id", Value: "abc"}}

		h.GetByID(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestWarehouseHandler_List(t *testing.T) {
	h, repo := setupWarehouseHandler(t)
	seedWarehouse(t, repo, "Depozit Central", "DEP-01")
	seedWarehouse(t, repo, "Magazin Unirii", "MAG-01")

	c, w := newTestContext(t, "GET", "/warehouses?page=1&page_size=10", nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.Page)
}

func TestWarehouseHandler_Update(t *testing.T) {
	h, repo := setupWarehouseHandler(t)
	wh := seedWarehouse(t, repo, "Depozit Central", "DEP-01")

	c, w := newTestContext(t, "PUT", "/warehouses/"+wh.ID.String(), map[string]any{
		"name": "Depozit Principal",
	})
	c.Params = gin.Params{{Key: "id", Value: wh.ID.String()}}

	h.Update(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "Depozit Principal", data["name"])
}

func TestWarehouseHandler_DeactivateReactivate(t *testing.T) {
	h, repo := setupWarehouseHandler(t)
	wh := seedWarehouse(t, repo, "Depozit Central", "DEP-01")

	c, w := newTestContext(t, "POST", "/warehouses/"+wh.ID.String()+"/deactivate", nil)
	c.Params = gin.Params{{Key: "id", Value: wh.ID.String()}}
	h.Deactivate(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]any)
	assert.Equal(t, false, data["is_active"])

	c, w = newTestContext(t, "POST", "/warehouses/"+wh.ID.String()+"/reactivate", nil)
	c.Params = gin.Params{{Key: "id", Value: wh.ID.String()}}
	h.Reactivate(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp = decodeResponse(t, w)
	data = resp.Data.(map[string]any)
	assert.Equal(t, true, data["is_active"])
}
