package event

import (
	"context"

	"github.com/fabrictrade/backend/internal/domain/billing"
	"github.com/fabrictrade/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LedgerLogHandler writes one structured log line per bill movement.
// The lines form an append-only ledger trail next to the database.
type LedgerLogHandler struct {
	logger *zap.Logger
}

// NewLedgerLogHandler creates a LedgerLogHandler
func NewLedgerLogHandler(logger *zap.Logger) *LedgerLogHandler {
	return &LedgerLogHandler{logger: logger.Named("ledger")}
}

// EventTypes implements shared.EventHandler
func (h *LedgerLogHandler) EventTypes() []string {
	return []string{billing.EventBillIssued, billing.EventBillPaymentApplied}
}

// Handle implements shared.EventHandler
func (h *LedgerLogHandler) Handle(_ context.Context, ev shared.DomainEvent) error {
	switch e := ev.(type) {
	case *billing.BillIssuedEvent:
		h.logger.Info("bill issued",
			zap.String("event_id", e.EventID().String()),
			zap.String("bill_id", e.AggregateID().String()),
			zap.String("bill_number", e.BillNumber),
			zap.String("customer_id", e.CustomerID.String()),
			zap.String("total", e.TotalAmount.StringFixed(2)),
		)
	case *billing.BillPaymentAppliedEvent:
		h.logger.Info("payment applied",
			zap.String("event_id", e.EventID().String()),
			zap.String("bill_id", e.AggregateID().String()),
			zap.String("bill_number", e.BillNumber),
			zap.String("customer_id", e.CustomerID.String()),
			zap.String("applied", e.AmountApplied.StringFixed(2)),
			zap.String("balance_due", e.BalanceDue.StringFixed(2)),
			zap.String("status", string(e.Status)),
		)
	default:
		h.logger.Debug("unhandled event", zap.String("event_type", ev.EventType()))
	}
	return nil
}
