package handler

import (
	"time"

	stockapp "github.com/contaro/backend/internal/application/stock"
	"github.com/gin-gonic/gin"
)

// StockHandler handles stock ledger API endpoints
type StockHandler struct {
	BaseHandler
	stockService *stockapp.Service
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *stockapp.Service) *StockHandler {
	return &StockHandler{
		stockService: stockService,
	}
}

// GetBalance retrieves the stock position for a warehouse/product pair.
// A pair that never moved returns a zero-quantity balance, not a 404.
func (h *StockHandler) GetBalance(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	warehouseID, ok := h.pathID(c, "warehouse_id", "warehouse ID")
	if !ok {
		return
	}

	productID, ok := h.pathID(c, "product_id", "product ID")
	if !ok {
		return
	}

	balance, err := h.stockService.GetBalance(c.Request.Context(), companyID, warehouseID, productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, balance)
}

// ListByWarehouse retrieves the stock positions held in a warehouse
func (h *StockHandler) ListByWarehouse(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	warehouseID, ok := h.pathID(c, "warehouse_id", "warehouse ID")
	if !ok {
		return
	}

	var filter stockapp.BalanceListFilter
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

	balances, total, err := h.stockService.ListByWarehouse(c.Request.Context(), companyID, warehouseID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, balances, total, filter.Page, filter.PageSize)
}

// ListByProduct retrieves the positions of a product across all warehouses
func (h *StockHandler) ListByProduct(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	productID, ok := h.pathID(c, "product_id", "product ID")
	if !ok {
		return
	}

	balances, err := h.stockService.ListByProduct(c.Request.Context(), companyID, productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, balances)
}

// ListMovements retrieves the movement journal for a warehouse/product pair
func (h *StockHandler) ListMovements(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	warehouseID, ok := h.pathID(c, "warehouse_id", "warehouse ID")
	if !ok {
		return
	}

	productID, ok := h.pathID(c, "product_id", "product ID")
	if !ok {
		return
	}

	var filter stockapp.MovementListFilter
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

	movements, total, err := h.stockService.ListMovements(c.Request.Context(), companyID, warehouseID, productID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, movements, total, filter.Page, filter.PageSize)
}

// ListMovementsBySource retrieves the movements posted by a source document
func (h *StockHandler) ListMovementsBySource(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	sourceType := c.Param("source_type")
	if sourceType == "" {
		h.BadRequest(c, "Source type is required")
		return
	}

	sourceID, ok := h.pathID(c, "source_id", "source ID")
	if !ok {
		return
	}

	movements, err := h.stockService.ListMovementsBySource(c.Request.Context(), companyID, sourceType, sourceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, movements)
}

// ListExpiring retrieves batch-tracked positions expiring before a cutoff date
func (h *StockHandler) ListExpiring(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	cutoff := time.Now().AddDate(0, 0, 30)
	if before := c.Query("before"); before != "" {
		parsed, err := time.Parse("2006-01-02", before)
		if err != nil {
			h.BadRequest(c, "Invalid before date, expected YYYY-MM-DD")
			return
		}
		cutoff = parsed
	}

	balances, err := h.stockService.ListExpiring(c.Request.Context(), companyID, cutoff)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, balances)
}

// Reserve holds available stock for a pending order
func (h *StockHandler) Reserve(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	var req stockapp.ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	balance, err := h.stockService.Reserve(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, balance)
}

// Release returns previously reserved stock to the available pool
func (h *StockHandler) Release(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	var req stockapp.ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	balance, err := h.stockService.Release(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, balance)
}

// Adjust corrects a stock position outside the document flows
func (h *StockHandler) Adjust(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}

	var req stockapp.AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if req.ActorID == nil {
		if actorID, err := getActorID(c); err == nil {
			req.ActorID = &actorID
		}
	}

	balance, err := h.stockService.Adjust(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, balance)
}
