package receipt

import (
	"github.com/contaro/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const AggregateTypeNIR = "NIRDocument"

const (
	EventDocumentCreated  = "nir.document.created"
	EventDocumentApproved = "nir.document.approved"
	EventDocumentRejected = "nir.document.rejected"
	EventDocumentPosted   = "nir.document.posted"
)

type DocumentCreatedEvent struct {
	shared.BaseDomainEvent
	DocumentNumber string    `json:"document_number"`
	WarehouseID    uuid.UUID `json:"warehouse_id"`
	SupplierID     uuid.UUID `json:"supplier_id"`
}

func NewDocumentCreatedEvent(d *Document) *DocumentCreatedEvent {
	return &DocumentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventDocumentCreated, AggregateTypeNIR, d.ID, d.CompanyID),
		DocumentNumber:  d.DocumentNumber,
		WarehouseID:     d.WarehouseID,
		SupplierID:      d.SupplierID,
	}
}

type DocumentApprovedEvent struct {
	shared.BaseDomainEvent
	DocumentNumber string          `json:"document_number"`
	ApprovedBy     uuid.UUID       `json:"approved_by"`
	GrossTotal     decimal.Decimal `json:"gross_total"`
}

func NewDocumentApprovedEvent(d *Document, by uuid.UUID) *DocumentApprovedEvent {
	return &DocumentApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventDocumentApproved, AggregateTypeNIR, d.ID, d.CompanyID),
		DocumentNumber:  d.DocumentNumber,
		ApprovedBy:      by,
		GrossTotal:      d.GrossTotal,
	}
}

type DocumentRejectedEvent struct {
	shared.BaseDomainEvent
	DocumentNumber string    `json:"document_number"`
	RejectedBy     uuid.UUID `json:"rejected_by"`
	Reason         string    `json:"reason"`
}

func NewDocumentRejectedEvent(d *Document, by uuid.UUID, reason string) *DocumentRejectedEvent {
	return &DocumentRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventDocumentRejected, AggregateTypeNIR, d.ID, d.CompanyID),
		DocumentNumber:  d.DocumentNumber,
		RejectedBy:      by,
		Reason:          reason,
	}
}

type DocumentPostedEvent struct {
	shared.BaseDomainEvent
	DocumentNumber string    `json:"document_number"`
	WarehouseID    uuid.UUID `json:"warehouse_id"`
	LineCount      int       `json:"line_count"`
}

func NewDocumentPostedEvent(d *Document) *DocumentPostedEvent {
	return &DocumentPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventDocumentPosted, AggregateTypeNIR, d.ID, d.CompanyID),
		DocumentNumber:  d.DocumentNumber,
		WarehouseID:     d.WarehouseID,
		LineCount:       len(d.Items),
	}
}
