package warehouse

import (
	"strings"
	"time"
	"unicode"

	"github.com/contaro/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OperatingMode determines how stock received into a warehouse is valued.
// The mode is snapshotted onto every posted document, so changing it later
// never reinterprets historical records.
type OperatingMode string

const (
	// ModeDepozit is a general warehouse tracking weighted-average unit cost.
	ModeDepozit OperatingMode = "depozit"
	// ModeMagazin is a retail store tracking cost plus last-known selling price.
	ModeMagazin OperatingMode = "magazin"
	// ModeCustodie holds consignment goods: quantity only, no owned cost.
	ModeCustodie OperatingMode = "custodie"
	// ModeTransfer is a virtual in-transit staging location; valuation passes
	// through unchanged.
	ModeTransfer OperatingMode = "transfer"
)

// IsValid reports whether the mode is one of the four supported variants
func (m OperatingMode) IsValid() bool {
	switch m {
	case ModeDepozit, ModeMagazin, ModeCustodie, ModeTransfer:
		return true
	}
	return false
}

// String returns the string representation of the mode
func (m OperatingMode) String() string {
	return string(m)
}

// TracksCost reports whether balances in this mode carry a cost basis
func (m OperatingMode) TracksCost() bool {
	return m == ModeDepozit || m == ModeMagazin || m == ModeTransfer
}

// TracksSellingPrice reports whether balances in this mode carry a selling price
func (m OperatingMode) TracksSellingPrice() bool {
	return m == ModeMagazin
}

// RequiresNonNegativeStock reports whether a mutation may never drive the
// balance quantity below zero. Custody and transit locations hold goods the
// company does not own and may be corrected retroactively.
func (m OperatingMode) RequiresNonNegativeStock() bool {
	return m == ModeDepozit || m == ModeMagazin
}

// Warehouse represents a stock-holding location (gestiune).
// It is the aggregate root for warehouse registry operations.
type Warehouse struct {
	shared.CompanyAggregateRoot
	FranchiseID *uuid.UUID    `gorm:"type:uuid;index"`
	Name        string        `gorm:"type:varchar(200);not null"`
	Code        string        `gorm:"type:varchar(50);not null;uniqueIndex:idx_warehouse_company_code,priority:2"`
	Mode        OperatingMode `gorm:"type:varchar(20);not null"`
	IsActive    bool          `gorm:"not null;default:true"`
	Notes       string        `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Warehouse) TableName() string {
	return "warehouses"
}

// NewWarehouse creates a new active warehouse. When code is empty one is
// generated from the name plus a random suffix; uniqueness within the company
// is the registry's responsibility.
func NewWarehouse(companyID uuid.UUID, name, code string, mode OperatingMode) (*Warehouse, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if !mode.IsValid() {
		return nil, shared.NewValidationError("Invalid warehouse operating mode")
	}
	if code == "" {
		code = GenerateCode(name)
	}
	if err := validateCode(code); err != nil {
		return nil, err
	}

	w := &Warehouse{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Name:                 name,
		Code:                 strings.ToUpper(code),
		Mode:                 mode,
		IsActive:             true,
	}

	w.AddDomainEvent(NewWarehouseCreatedEvent(w))

	return w, nil
}

// GenerateCode derives a warehouse code from the name plus a random suffix.
// The suffix keeps codes unique when several warehouses share a name prefix.
func GenerateCode(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
		if b.Len() >= 8 {
			break
		}
	}
	if b.Len() == 0 {
		b.WriteString("GEST")
	}
	suffix := strings.ToUpper(uuid.NewString()[:4])
	return b.String() + "-" + suffix
}

// Rename updates the warehouse name
func (w *Warehouse) Rename(name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	w.Name = name
	w.Touch()
	w.IncrementVersion()

	w.AddDomainEvent(NewWarehouseUpdatedEvent(w))

	return nil
}

// UpdateCode updates the warehouse code
func (w *Warehouse) UpdateCode(code string) error {
	if err := validateCode(code); err != nil {
		return err
	}

	w.Code = strings.ToUpper(code)
	w.Touch()
	w.IncrementVersion()

	w.AddDomainEvent(NewWarehouseUpdatedEvent(w))

	return nil
}

// ChangeMode changes the operating mode for future postings.
// Historical documents keep the mode snapshot taken when they were created.
func (w *Warehouse) ChangeMode(mode OperatingMode) error {
	if !mode.IsValid() {
		return shared.NewValidationError("Invalid warehouse operating mode")
	}
	if mode == w.Mode {
		return nil
	}

	old := w.Mode
	w.Mode = mode
	w.Touch()
	w.IncrementVersion()

	w.AddDomainEvent(NewWarehouseModeChangedEvent(w, old, mode))

	return nil
}

// SetFranchise links the warehouse to a franchise
func (w *Warehouse) SetFranchise(franchiseID uuid.UUID) {
	w.FranchiseID = &franchiseID
	w.Touch()
	w.IncrementVersion()
}

// SetNotes sets free-form notes
func (w *Warehouse) SetNotes(notes string) {
	w.Notes = notes
	w.Touch()
	w.IncrementVersion()
}

// Deactivate flips the warehouse inactive. Historical balances stay readable;
// new receipts and transfers must be rejected by the workflows.
func (w *Warehouse) Deactivate() error {
	if !w.IsActive {
		return shared.NewStateTransitionError("Warehouse is already inactive")
	}

	w.IsActive = false
	w.Touch()
	w.IncrementVersion()

	w.AddDomainEvent(NewWarehouseDeactivatedEvent(w))

	return nil
}

// Reactivate flips a deactivated warehouse back to active
func (w *Warehouse) Reactivate() error {
	if w.IsActive {
		return shared.NewStateTransitionError("Warehouse is already active")
	}

	w.IsActive = true
	w.Touch()
	w.IncrementVersion()

	w.AddDomainEvent(NewWarehouseReactivatedEvent(w))

	return nil
}

func validateName(name string) error {
	if name == "" {
		return shared.NewValidationError("Warehouse name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("Warehouse name cannot exceed 200 characters")
	}
	return nil
}

func validateCode(code string) error {
	if code == "" {
		return shared.NewValidationError("Warehouse code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewValidationError("Warehouse code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewValidationError("Warehouse code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

// LastTouched returns the update timestamp; convenience for responses
func (w *Warehouse) LastTouched() time.Time {
	return w.UpdatedAt
}
