package transfer

import (
	"github.com/contaro/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const AggregateTypeTransfer = "TransferDocument"

const (
	EventTransferCreated   = "transfer.created"
	EventTransferIssued    = "transfer.issued"
	EventTransferReceived  = "transfer.received"
	EventTransferCancelled = "transfer.cancelled"
)

type TransferCreatedEvent struct {
	shared.BaseDomainEvent
	DocumentNumber    string    `json:"document_number"`
	SourceWarehouseID uuid.UUID `json:"source_warehouse_id"`
	DestinationID     uuid.UUID `json:"destination_warehouse_id"`
}

func NewTransferCreatedEvent(d *Document) *TransferCreatedEvent {
	return &TransferCreatedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTransferCreated, AggregateTypeTransfer, d.ID, d.CompanyID),
		DocumentNumber:    d.DocumentNumber,
		SourceWarehouseID: d.SourceWarehouseID,
		DestinationID:     d.DestinationID,
	}
}

type TransferIssuedEvent struct {
	shared.BaseDomainEvent
	DocumentNumber string    `json:"document_number"`
	IssuedBy       uuid.UUID `json:"issued_by"`
	LineCount      int       `json:"line_count"`
}

func NewTransferIssuedEvent(d *Document, by uuid.UUID) *TransferIssuedEvent {
	return &TransferIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTransferIssued, AggregateTypeTransfer, d.ID, d.CompanyID),
		DocumentNumber:  d.DocumentNumber,
		IssuedBy:        by,
		LineCount:       len(d.Items),
	}
}

type TransferReceivedEvent struct {
	shared.BaseDomainEvent
	DocumentNumber string    `json:"document_number"`
	ReceivedBy     uuid.UUID `json:"received_by"`
}

func NewTransferReceivedEvent(d *Document, by uuid.UUID) *TransferReceivedEvent {
	return &TransferReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTransferReceived, AggregateTypeTransfer, d.ID, d.CompanyID),
		DocumentNumber:  d.DocumentNumber,
		ReceivedBy:      by,
	}
}

type TransferCancelledEvent struct {
	shared.BaseDomainEvent
	DocumentNumber string `json:"document_number"`
	Reason         string `json:"reason"`
	WasIssued      bool   `json:"was_issued"`
}

func NewTransferCancelledEvent(d *Document, reason string, wasIssued bool) *TransferCancelledEvent {
	return &TransferCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTransferCancelled, AggregateTypeTransfer, d.ID, d.CompanyID),
		DocumentNumber:  d.DocumentNumber,
		Reason:          reason,
		WasIssued:       wasIssued,
	}
}
