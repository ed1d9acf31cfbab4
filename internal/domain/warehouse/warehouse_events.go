package warehouse

import (
	"github.com/contaro/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeWarehouse = "Warehouse"

// Event type constants
const (
	EventTypeWarehouseCreated     = "WarehouseCreated"
	EventTypeWarehouseUpdated     = "WarehouseUpdated"
	EventTypeWarehouseModeChanged = "WarehouseModeChanged"
	EventTypeWarehouseDeactivated = "WarehouseDeactivated"
	EventTypeWarehouseReactivated = "WarehouseReactivated"
)

// WarehouseCreatedEvent is raised when a new warehouse is registered
type WarehouseCreatedEvent struct {
	shared.BaseDomainEvent
	WarehouseID uuid.UUID     `json:"warehouse_id"`
	Name        string        `json:"name"`
	Code        string        `json:"code"`
	Mode        OperatingMode `json:"mode"`
}

// NewWarehouseCreatedEvent creates a new WarehouseCreatedEvent
func NewWarehouseCreatedEvent(w *Warehouse) *WarehouseCreatedEvent {
	return &WarehouseCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWarehouseCreated, AggregateTypeWarehouse, w.ID, w.CompanyID),
		WarehouseID:     w.ID,
		Name:            w.Name,
		Code:            w.Code,
		Mode:            w.Mode,
	}
}

// WarehouseUpdatedEvent is raised when warehouse registry fields change
type WarehouseUpdatedEvent struct {
	shared.BaseDomainEvent
	WarehouseID uuid.UUID `json:"warehouse_id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
}

// NewWarehouseUpdatedEvent creates a new WarehouseUpdatedEvent
func NewWarehouseUpdatedEvent(w *Warehouse) *WarehouseUpdatedEvent {
	return &WarehouseUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWarehouseUpdated, AggregateTypeWarehouse, w.ID, w.CompanyID),
		WarehouseID:     w.ID,
		Name:            w.Name,
		Code:            w.Code,
	}
}

// WarehouseModeChangedEvent is raised when the operating mode changes.
// Consumers must not reinterpret historical stock records; the new mode only
// applies to postings after this event.
type WarehouseModeChangedEvent struct {
	shared.BaseDomainEvent
	WarehouseID uuid.UUID     `json:"warehouse_id"`
	OldMode     OperatingMode `json:"old_mode"`
	NewMode     OperatingMode `json:"new_mode"`
}

// NewWarehouseModeChangedEvent creates a new WarehouseModeChangedEvent
func NewWarehouseModeChangedEvent(w *Warehouse, oldMode, newMode OperatingMode) *WarehouseModeChangedEvent {
	return &WarehouseModeChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWarehouseModeChanged, AggregateTypeWarehouse, w.ID, w.CompanyID),
		WarehouseID:     w.ID,
		OldMode:         oldMode,
		NewMode:         newMode,
	}
}

// WarehouseDeactivatedEvent is raised when a warehouse is deactivated
type WarehouseDeactivatedEvent struct {
	shared.BaseDomainEvent
	WarehouseID uuid.UUID `json:"warehouse_id"`
	Code        string    `json:"code"`
}

// NewWarehouseDeactivatedEvent creates a new WarehouseDeactivatedEvent
func NewWarehouseDeactivatedEvent(w *Warehouse) *WarehouseDeactivatedEvent {
	return &WarehouseDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWarehouseDeactivated, AggregateTypeWarehouse, w.ID, w.CompanyID),
		WarehouseID:     w.ID,
		Code:            w.Code,
	}
}

// WarehouseReactivatedEvent is raised when a warehouse is reactivated
type WarehouseReactivatedEvent struct {
	shared.BaseDomainEvent
	WarehouseID uuid.UUID `json:"warehouse_id"`
	Code        string    `json:"code"`
}

// NewWarehouseReactivatedEvent creates a new WarehouseReactivatedEvent
func NewWarehouseReactivatedEvent(w *Warehouse) *WarehouseReactivatedEvent {
	return &WarehouseReactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWarehouseReactivated, AggregateTypeWarehouse, w.ID, w.CompanyID),
		WarehouseID:     w.ID,
		Code:            w.Code,
	}
}
