package warehouse

import (
	"time"

	"github.com/contaro/backend/internal/domain/warehouse"
	"github.com/google/uuid"
)

// CreateWarehouseRequest creates a new warehouse. Code is optional; one is
// generated from the name when omitted.
type CreateWarehouseRequest struct {
	Name        string     `json:"name" binding:"required,max=200"`
	Code        string     `json:"code" binding:"omitempty,max=50"`
	Mode        string     `json:"mode" binding:"required,oneof=depozit magazin custodie transfer"`
	FranchiseID *uuid.UUID `json:"franchise_id"`
	Notes       string     `json:"notes" binding:"omitempty,max=1000"`
}

// UpdateWarehouseRequest changes mutable warehouse fields. Nil fields are
// left untouched.
type UpdateWarehouseRequest struct {
	Name  *string `json:"name" binding:"omitempty,max=200"`
	Code  *string `json:"code" binding:"omitempty,max=50"`
	Mode  *string `json:"mode" binding:"omitempty,oneof=depozit magazin custodie transfer"`
	Notes *string `json:"notes" binding:"omitempty,max=1000"`
}

// WarehouseResponse represents a warehouse in API responses.
type WarehouseResponse struct {
	ID          uuid.UUID  `json:"id"`
	CompanyID   uuid.UUID  `json:"company_id"`
	FranchiseID *uuid.UUID `json:"franchise_id,omitempty"`
	Name        string     `json:"name"`
	Code        string     `json:"code"`
	Mode        string     `json:"mode"`
	IsActive    bool       `json:"is_active"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Version     int        `json:"version"`
}

func ToWarehouseResponse(w *warehouse.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:          w.ID,
		CompanyID:   w.CompanyID,
		FranchiseID: w.FranchiseID,
		Name:        w.Name,
		Code:        w.Code,
		Mode:        w.Mode.String(),
		IsActive:    w.IsActive,
		Notes:       w.Notes,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
		Version:     w.Version,
	}
}

// WarehouseStatsResponse summarizes the company's warehouse registry.
type WarehouseStatsResponse struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

// WarehouseListFilter represents filter options for warehouse lists.
type WarehouseListFilter struct {
	Search   string `form:"search"`
	Mode     string `form:"mode" binding:"omitempty,oneof=depozit magazin custodie transfer"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}
