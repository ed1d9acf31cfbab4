package event

import (
	"context"

	"github.com/contaro/backend/internal/domain/receipt"
	"github.com/contaro/backend/internal/domain/shared"
	"github.com/contaro/backend/internal/domain/stock"
	"github.com/contaro/backend/internal/domain/transfer"
	"go.uber.org/zap"
)

// AuditLogHandler writes an audit trail entry for every inventory event.
// It subscribes to stock movements and document lifecycle events so the
// operational log shows who moved what, where and when.
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates an audit log handler
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: logger.Named("audit")}
}

// EventTypes returns the event types this handler cares about
func (h *AuditLogHandler) EventTypes() []string {
	return []string{
		stock.EventStockMoved,
		receipt.EventDocumentCreated,
		receipt.EventDocumentApproved,
		receipt.EventDocumentRejected,
		receipt.EventDocumentPosted,
		transfer.EventTransferCreated,
		transfer.EventTransferIssued,
		transfer.EventTransferReceived,
		transfer.EventTransferCancelled,
	}
}

// Handle logs the event with its identifying fields
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case *stock.StockMovedEvent:
		fields = append(fields,
			zap.String("warehouse_id", e.WarehouseID.String()),
			zap.String("product_id", e.ProductID.String()),
			zap.String("movement_type", string(e.MovementType)),
			zap.String("direction", string(e.Direction)),
			zap.String("quantity", e.Quantity.String()),
		)
	case *receipt.DocumentApprovedEvent:
		fields = append(fields,
			zap.String("document_number", e.DocumentNumber),
			zap.String("approved_by", e.ApprovedBy.String()),
		)
	case *transfer.TransferCancelledEvent:
		fields = append(fields,
			zap.String("document_number", e.DocumentNumber),
			zap.Bool("was_issued", e.WasIssued),
		)
	}

	h.logger.Info(event.EventType(), fields...)
	return nil
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
