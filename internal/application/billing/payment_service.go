package billing

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fabrictrade/backend/internal/domain/billing"
	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentRecorder records one payment event
type PaymentRecorder interface {
	Record(ctx context.Context, ev PaymentEvent) (*RecordResult, error)
}

// IdempotencyStore remembers the outcome of client requests by key
type IdempotencyStore interface {
	// Reserve claims key for ttl on behalf of the request identified by fingerprint.
	// When the key is already held, reserved is false and heldBy is the holder's
	// fingerprint. stored is the holder's response, nil while it is still in flight.
	Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) (stored []byte, heldBy string, reserved bool, err error)
	// Complete stores the final response for key
	Complete(ctx context.Context, key, fingerprint string, response []byte, ttl time.Duration) error
	// Release drops a reservation so the key can be retried
	Release(ctx context.Context, key string) error
}

// Idempotency errors
var (
	ErrPaymentInProgress      = shared.NewDomainError("PAYMENT_IN_PROGRESS", "A payment with this idempotency key is still being processed")
	ErrIdempotencyUnavailable = shared.NewDomainError("IDEMPOTENCY_UNAVAILABLE", "Payment deduplication is unavailable, please retry")
	ErrIdempotencyKeyReused   = shared.NewDomainError("IDEMPOTENCY_KEY_MISMATCH", "This idempotency key was already used for a different payment")
)

// PaymentService records staff-entered payments, deduplicated by an optional client key
type PaymentService struct {
	recorder    PaymentRecorder
	paymentRepo billing.PaymentRepository
	idem        IdempotencyStore
	ttl         time.Duration
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService. idem may be nil, which disables deduplication.
func NewPaymentService(recorder PaymentRecorder, paymentRepo billing.PaymentRepository, idem IdempotencyStore, ttl time.Duration, logger *zap.Logger) *PaymentService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &PaymentService{
		recorder:    recorder,
		paymentRepo: paymentRepo,
		idem:        idem,
		ttl:         ttl,
		logger:      logger,
	}
}

// RecordPayment records req on behalf of staffID.
// A repeated idempotencyKey returns the first outcome without writing again;
// reusing it with a different request body is refused.
func (s *PaymentService) RecordPayment(ctx context.Context, idempotencyKey string, req RecordPaymentRequest, staffID *uuid.UUID) (*RecordResult, error) {
	ev := req.ToEvent(staffID)
	if idempotencyKey == "" || s.idem == nil {
		return s.recorder.Record(ctx, ev)
	}

	key := "payment:" + idempotencyKey
	fingerprint := req.Fingerprint()
	stored, heldBy, reserved, err := s.idem.Reserve(ctx, key, fingerprint, s.ttl)
	if err != nil {
		s.logger.Error("Idempotency store unavailable", zap.Error(err))
		return nil, shared.WrapDomainError(ErrIdempotencyUnavailable.Code, ErrIdempotencyUnavailable.Message, err)
	}
	if !reserved {
		if heldBy != "" && heldBy != fingerprint {
			s.logger.Warn("Idempotency key reused for a different payment", zap.String("idempotency_key", idempotencyKey))
			return nil, ErrIdempotencyKeyReused
		}
		if stored == nil {
			return nil, ErrPaymentInProgress
		}
		var prior RecordResult
		if err := json.Unmarshal(stored, &prior); err != nil {
			return nil, err
		}
		s.logger.Info("Replaying recorded payment", zap.String("idempotency_key", idempotencyKey))
		return &prior, nil
	}

	result, err := s.recorder.Record(ctx, ev)
	if err != nil {
		// nothing was written, the client may retry with the same key
		if relErr := s.idem.Release(ctx, key); relErr != nil {
			s.logger.Warn("Failed to release idempotency key", zap.Error(relErr))
		}
		return result, err
	}

	payload, err := json.Marshal(result)
	if err == nil {
		err = s.idem.Complete(ctx, key, fingerprint, payload, s.ttl)
	}
	if err != nil {
		s.logger.Warn("Failed to store idempotent payment result", zap.String("idempotency_key", idempotencyKey), zap.Error(err))
	}
	return result, nil
}

// PaymentListQuery holds payment list query parameters
type PaymentListQuery struct {
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	CustomerID *uuid.UUID `form:"customer_id"`
	BillID     *uuid.UUID `form:"bill_id"`
	FromDate   *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate     *time.Time `form:"to_date" time_format:"2006-01-02"`
}

// List returns payments matching q, newest first
func (s *PaymentService) List(ctx context.Context, q PaymentListQuery) ([]PaymentResponse, error) {
	filter := billing.PaymentFilter{
		Filter:     shared.Filter{Page: q.Page, PageSize: q.PageSize}.Normalize(),
		CustomerID: q.CustomerID,
		BillID:     q.BillID,
		FromDate:   q.FromDate,
		ToDate:     q.ToDate,
	}
	payments, err := s.paymentRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out, nil
}

// IsInformational reports whether err describes a payment that changed nothing but is not a failure
func IsInformational(err error) bool {
	return errors.Is(err, shared.ErrNoOutstandingBills)
}
