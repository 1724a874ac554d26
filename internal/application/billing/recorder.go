package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	appshared "github.com/fabrictrade/backend/internal/application/shared"
	"github.com/fabrictrade/backend/internal/domain/billing"
	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/fabrictrade/backend/internal/infrastructure/logger"
	"github.com/fabrictrade/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Payment modes
const (
	ModeBulk   = "bulk"
	ModeSingle = "single"
)

// RecorderConfig controls retry and overpayment behaviour
type RecorderConfig struct {
	MaxAttempts       int
	RetryBackoff      time.Duration
	RejectOverpayment bool
	// Events receives bill events once the payment transaction has committed. Optional.
	Events shared.EventPublisher
}

// PaymentEvent is one incoming payment from a customer.
// BillID selects single mode; without it the amount is spread FIFO over all outstanding bills.
type PaymentEvent struct {
	CustomerID       uuid.UUID
	BillID           *uuid.UUID
	Amount           decimal.Decimal
	Method           billing.PaymentMethod
	TransactionRef   string
	Notes            string
	PaymentRequestID *uuid.UUID
	RecordedBy       *uuid.UUID
}

// Mode returns ModeSingle when a target bill is set
func (e PaymentEvent) Mode() string {
	if e.BillID != nil {
		return ModeSingle
	}
	return ModeBulk
}

// BillBalance is a bill's state after a payment event
type BillBalance struct {
	BillID     uuid.UUID          `json:"bill_id"`
	BillNumber string             `json:"bill_number"`
	PaidAmount decimal.Decimal    `json:"paid_amount"`
	BalanceDue decimal.Decimal    `json:"balance_due"`
	Status     billing.BillStatus `json:"status"`
}

// RecordResult describes what one payment event did to the ledger
type RecordResult struct {
	CustomerID   uuid.UUID            `json:"customer_id"`
	Mode         string               `json:"mode"`
	Amount       decimal.Decimal      `json:"amount"`
	Allocations  []billing.Allocation `json:"allocations"`
	PaymentIDs   []uuid.UUID          `json:"payment_ids"`
	Bills        []BillBalance        `json:"bills"`
	TotalApplied decimal.Decimal      `json:"total_applied"`
	Remainder    decimal.Decimal      `json:"remainder"`
	Attempts     int                  `json:"attempts"`
}

// Recorder turns payment events into payment rows and bill updates.
// Every event is written in one transaction; bills are updated under optimistic locking
// and the whole read-allocate-write cycle is retried on a version conflict.
type Recorder struct {
	txScope appshared.TransactionScope
	cfg     RecorderConfig
	metrics *telemetry.PaymentMetrics
	logger  *zap.Logger
}

// NewRecorder creates a Recorder. metrics may be nil.
func NewRecorder(txScope appshared.TransactionScope, cfg RecorderConfig, metrics *telemetry.PaymentMetrics, log *zap.Logger) *Recorder {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{
		txScope: txScope,
		cfg:     cfg,
		metrics: metrics,
		logger:  log,
	}
}

// AfterWrite runs inside the payment transaction once every payment row and bill
// update has been written. Returning an error rolls the whole event back; returning
// shared.ErrPersistenceConflict retries it like a bill conflict.
type AfterWrite func(ctx context.Context, repos appshared.TransactionalRepositories, result *RecordResult) error

// Record applies ev to the customer's bills.
//
// When there is nothing to pay, Record returns a result with an empty allocation
// and Remainder == Amount together with shared.ErrNoOutstandingBills. Nothing is written.
func (r *Recorder) Record(ctx context.Context, ev PaymentEvent) (*RecordResult, error) {
	return r.RecordThen(ctx, ev, nil)
}

// RecordThen is Record with an extra write committed atomically with the payments
func (r *Recorder) RecordThen(ctx context.Context, ev PaymentEvent, then AfterWrite) (*RecordResult, error) {
	mode := ev.Mode()
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrCustomerID, ev.CustomerID.String(),
		telemetry.SpanAttrAmount, ev.Amount.String(),
		telemetry.SpanAttrMode, mode,
	)

	if err := validateEvent(ev); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	log := logger.FromContextOr(ctx, r.logger).With(zap.String("customer_id", ev.CustomerID.String()), zap.String("mode", mode))

	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		telemetry.SetAttributes(span, telemetry.SpanAttrAttempt, attempt)

		var (
			result *RecordResult
			events []shared.DomainEvent
			err    error
		)
		telemetry.Labeled(ctx, func(ctx context.Context) {
			result, events, err = r.attempt(ctx, ev, then)
		}, "payment_mode", mode)
		if err == nil {
			result.Attempts = attempt
			r.metrics.RecordPayment(ctx, mode, result.TotalApplied, len(result.Allocations))
			r.afterCommit(ctx, log, result, events)
			return result, nil
		}

		if errors.Is(err, shared.ErrNoOutstandingBills) {
			log.Info("Payment has no outstanding bills to settle", zap.String("amount", ev.Amount.String()))
			return &RecordResult{
				CustomerID:   ev.CustomerID,
				Mode:         mode,
				Amount:       ev.Amount,
				Allocations:  []billing.Allocation{},
				PaymentIDs:   []uuid.UUID{},
				Bills:        []BillBalance{},
				TotalApplied: decimal.Zero,
				Remainder:    ev.Amount,
				Attempts:     attempt,
			}, err
		}

		if !errors.Is(err, shared.ErrPersistenceConflict) {
			telemetry.RecordError(span, err)
			r.metrics.RecordFailure(ctx, mode, shared.CodeOf(err))
			log.Warn("Payment not recorded", zap.Error(err), zap.Int("attempt", attempt))
			return nil, err
		}

		lastErr = err
		r.metrics.RecordConflict(ctx, mode)
		telemetry.AddEvent(span, "version_conflict", telemetry.SpanAttrAttempt, attempt)
		log.Info("Bill changed during payment, retrying", zap.Int("attempt", attempt))

		if attempt < r.cfg.MaxAttempts {
			if err := r.wait(ctx, attempt); err != nil {
				telemetry.RecordError(span, err)
				return nil, err
			}
		}
	}

	telemetry.RecordError(span, lastErr)
	r.metrics.RecordFailure(ctx, mode, shared.ErrPersistenceConflict.Code)
	log.Warn("Payment gave up after repeated conflicts", zap.Int("attempts", r.cfg.MaxAttempts))
	return nil, shared.WrapDomainError(shared.ErrPersistenceConflict.Code,
		fmt.Sprintf("Bills kept changing after %d attempts, please retry", r.cfg.MaxAttempts), lastErr)
}

func validateEvent(ev PaymentEvent) error {
	if err := billing.ValidateAmount(ev.Amount); err != nil {
		return err
	}
	if ev.CustomerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !ev.Method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	return nil
}

// wait sleeps for a linearly growing backoff unless ctx ends first
func (r *Recorder) wait(ctx context.Context, attempt int) error {
	if r.cfg.RetryBackoff <= 0 {
		return nil
	}
	timer := time.NewTimer(r.cfg.RetryBackoff * time.Duration(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// attempt runs one read-allocate-write cycle in a single transaction
func (r *Recorder) attempt(ctx context.Context, ev PaymentEvent, then AfterWrite) (*RecordResult, []shared.DomainEvent, error) {
	var (
		result *RecordResult
		events []shared.DomainEvent
	)

	err := r.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		bills, err := r.loadBills(ctx, repos.BillRepo(), ev)
		if err != nil {
			return err
		}

		snapshots := make([]billing.OutstandingBill, 0, len(bills))
		for _, b := range bills {
			snapshots = append(snapshots, b.Outstanding())
		}
		allocation, err := billing.Allocate(ev.Amount, snapshots)
		if err != nil {
			return err
		}
		if len(allocation.Allocations) == 0 {
			return shared.ErrNoOutstandingBills
		}
		if r.cfg.RejectOverpayment && allocation.Remainder.IsPositive() {
			return shared.NewDomainError(shared.ErrOverpayment.Code,
				fmt.Sprintf("Payment of %s exceeds the outstanding balance by %s",
					ev.Amount.StringFixed(2), allocation.Remainder.StringFixed(2)))
		}

		byID := make(map[uuid.UUID]*billing.Bill, len(bills))
		for i := range bills {
			byID[bills[i].ID] = &bills[i]
		}

		now := time.Now()
		result = &RecordResult{
			CustomerID:   ev.CustomerID,
			Mode:         ev.Mode(),
			Amount:       ev.Amount,
			Allocations:  allocation.Allocations,
			PaymentIDs:   make([]uuid.UUID, 0, len(allocation.Allocations)),
			Bills:        make([]BillBalance, 0, len(allocation.Allocations)),
			TotalApplied: allocation.TotalApplied(),
			Remainder:    allocation.Remainder,
		}

		for _, a := range allocation.Allocations {
			bill := byID[a.BillID]

			payment, err := billing.NewPayment(bill.ID, bill.CustomerID, a.AmountApplied, ev.Method, ev.TransactionRef, ev.Notes)
			if err != nil {
				return err
			}
			payment.Stamp(now)
			payment.PaymentRequestID = ev.PaymentRequestID
			payment.RecordedBy = ev.RecordedBy

			if err := repos.PaymentRepo().Create(ctx, payment); err != nil {
				return partialFailure("insert payment", err)
			}
			if err := bill.ApplyPayment(a.AmountApplied); err != nil {
				return partialFailure("apply payment", err)
			}
			if err := repos.BillRepo().SaveWithLock(ctx, bill); err != nil {
				if errors.Is(err, shared.ErrPersistenceConflict) {
					return err
				}
				return partialFailure("update bill", err)
			}

			result.PaymentIDs = append(result.PaymentIDs, payment.ID)
			result.Bills = append(result.Bills, BillBalance{
				BillID:     bill.ID,
				BillNumber: bill.BillNumber,
				PaidAmount: bill.PaidAmount,
				BalanceDue: bill.BalanceDue,
				Status:     bill.Status,
			})
			events = append(events, bill.GetDomainEvents()...)
			bill.ClearDomainEvents()
		}
		if then != nil {
			return then(ctx, repos, result)
		}
		return nil
	})
	if err != nil {
		if shared.CodeOf(err) == "" {
			err = partialFailure("commit", err)
		}
		return nil, nil, err
	}
	return result, events, nil
}

func (r *Recorder) loadBills(ctx context.Context, repo billing.BillRepository, ev PaymentEvent) ([]billing.Bill, error) {
	if ev.BillID == nil {
		bills, err := repo.FindOutstandingByCustomer(ctx, ev.CustomerID)
		if err != nil {
			return nil, partialFailure("load outstanding bills", err)
		}
		return bills, nil
	}

	bill, err := repo.FindByID(ctx, *ev.BillID)
	if err != nil {
		return nil, partialFailure("load bill", err)
	}
	if bill == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Bill not found")
	}
	if bill.CustomerID != ev.CustomerID {
		return nil, shared.NewDomainError("BILL_CUSTOMER_MISMATCH", "Bill does not belong to this customer")
	}
	return []billing.Bill{*bill}, nil
}

func partialFailure(step string, err error) error {
	return shared.WrapDomainError(shared.ErrPersistencePartialFailure.Code,
		shared.ErrPersistencePartialFailure.Message, fmt.Errorf("%s: %w", step, err))
}

func (r *Recorder) afterCommit(ctx context.Context, log *zap.Logger, result *RecordResult, events []shared.DomainEvent) {
	log.Info("Payment recorded",
		zap.String("amount", result.Amount.String()),
		zap.String("applied", result.TotalApplied.String()),
		zap.Int("bills", len(result.Allocations)),
		zap.Int("attempts", result.Attempts),
	)
	if result.Remainder.IsPositive() {
		log.Warn("Payment exceeds outstanding balance, remainder not recorded",
			zap.String("remainder", result.Remainder.String()))
	}
	if r.cfg.Events == nil || len(events) == 0 {
		return
	}
	// the payment is already committed; a failed handler must not fail the request
	if err := r.cfg.Events.Publish(ctx, events...); err != nil {
		log.Warn("Failed to publish payment events", zap.Int("events", len(events)), zap.Error(err))
	}
}
