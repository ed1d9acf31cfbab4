package handler

import (
	warehouseapp "github.com/contaro/backend/internal/application/warehouse"
	"github.com/gin-gonic/gin"
)

// WarehouseHandler handles warehouse registry API endpoints
type WarehouseHandler struct {
	BaseHandler
	warehouseService *warehouseapp.Service
}

// NewWarehouseHandler creates a new WarehouseHandler
func NewWarehouseHandler(warehouseService *warehouseapp.Service) *WarehouseHandler {
	return &WarehouseHandler{
		warehouseService: warehouseService,
	}
}

// Create registers a new warehouse
func (h *WarehouseHandler) Create(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	var req warehouseapp.CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	warehouse, err := h.warehouseService.Create(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, warehouse)
}

// GetByID retrieves a warehouse by its ID
func (h *WarehouseHandler) GetByID(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	warehouseID, ok := h.pathID(c, "id", "warehouse ID")
	if !ok {
		return
	}

	warehouse, err := h.warehouseService.GetByID(c.Request.Context(), companyID, warehouseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, warehouse)
}

// GetByCode retrieves a warehouse by its code
func (h *WarehouseHandler) GetByCode(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Warehouse code is required")
		return
	}

	warehouse, err := h.warehouseService.GetByCode(c.Request.Context(), companyID, code)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, warehouse)
}

// List retrieves a paginated list of warehouses with optional filtering
func (h *WarehouseHandler) List(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	var filter warehouseapp.WarehouseListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	warehouses, total, err := h.warehouseService.List(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, warehouses, total, filter.Page, filter.PageSize)
}

// Update modifies an existing warehouse
func (h *WarehouseHandler) Update(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	warehouseID, ok := h.pathID(c, "id", "warehouse ID")
	if !ok {
		return
	}

	var req warehouseapp.UpdateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	warehouse, err := h.warehouseService.Update(c.Request.Context(), companyID, warehouseID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, warehouse)
}

// Deactivate retires a warehouse from new documents
func (h *WarehouseHandler) Deactivate(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	warehouseID, ok := h.pathID(c, "id", "warehouse ID")
	if !ok {
		return
	}

	warehouse, err := h.warehouseService.Deactivate(c.Request.Context(), companyID, warehouseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, warehouse)
}

// Stats summarizes the company's warehouse registry
func (h *WarehouseHandler) Stats(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	stats, err := h.warehouseService.Stats(c.Request.Context(), companyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stats)
}

// Reactivate brings a retired warehouse back into service
func (h *WarehouseHandler) Reactivate(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	warehouseID, ok := h.pathID(c, "id", "warehouse ID")
	if !ok {
		return
	}

	warehouse, err := h.warehouseService.Reactivate(c.Request.Context(), companyID, warehouseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, warehouse)
}
