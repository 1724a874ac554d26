// Package payreq handles payments customers report themselves, which an
// accountant approves into real ledger payments or rejects.
package payreq

import (
	"context"

	billingapp "github.com/fabrictrade/backend/internal/application/billing"
	appshared "github.com/fabrictrade/backend/internal/application/shared"
	"github.com/fabrictrade/backend/internal/domain/billing"
	"github.com/fabrictrade/backend/internal/domain/payreq"
	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/fabrictrade/backend/internal/infrastructure/logger"
	"github.com/fabrictrade/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errRequestNotFound = shared.NewDomainError("NOT_FOUND", "Payment request not found")

// Recorder is the part of the payment recorder approval needs
type Recorder interface {
	RecordThen(ctx context.Context, ev billingapp.PaymentEvent, then billingapp.AfterWrite) (*billingapp.RecordResult, error)
}

// ApproveResult is the approved request plus what its payment did to the ledger
type ApproveResult struct {
	Request Response                 `json:"request"`
	Payment *billingapp.RecordResult `json:"payment"`
}

// Service manages payment requests
type Service struct {
	repo     payreq.Repository
	billRepo billing.BillRepository
	recorder Recorder
	logger   *zap.Logger
}

// NewService creates a new payment request Service
func NewService(repo payreq.Repository, billRepo billing.BillRepository, recorder Recorder, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		billRepo: billRepo,
		recorder: recorder,
		logger:   logger,
	}
}

// Submit files a pending request for customerID
func (s *Service) Submit(ctx context.Context, customerID uuid.UUID, req SubmitRequest) (*Response, error) {
	if req.BillID != nil {
		bill, err := s.billRepo.FindByID(ctx, *req.BillID)
		if err != nil {
			return nil, err
		}
		// another customer's bill is reported as missing
		if bill == nil || bill.CustomerID != customerID {
			return nil, shared.NewDomainError("NOT_FOUND", "Bill not found")
		}
		if !bill.IsOutstanding() {
			return nil, shared.NewDomainError("INVALID_STATE", "Bill is already paid")
		}
	}

	pr, err := payreq.NewPaymentRequest(customerID, req.BillID, req.Amount, billing.PaymentMethod(req.Method), req.TransactionRef, req.Notes)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, pr); err != nil {
		return nil, err
	}

	logger.FromContextOr(ctx, s.logger).Info("Payment request submitted",
		zap.String("request_id", pr.ID.String()),
		zap.String("customer_id", customerID.String()),
		zap.String("amount", pr.Amount.String()),
	)
	resp := ToResponse(pr)
	return &resp, nil
}

// GetByID retrieves a payment request
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Response, error) {
	pr, err := s.find(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	resp := ToResponse(pr)
	return &resp, nil
}

// List returns a page of payment requests
func (s *Service) List(ctx context.Context, q ListQuery) (*shared.Paginated[Response], error) {
	filter := payreq.Filter{
		Filter: shared.Filter{
			Page:     q.Page,
			PageSize: q.PageSize,
			OrderBy:  q.OrderBy,
			OrderDir: q.OrderDir,
		}.Normalize(),
		CustomerID: q.CustomerID,
	}
	if q.Status != "" {
		st := payreq.Status(q.Status)
		filter.Status = &st
	}

	requests, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]Response, len(requests))
	for i := range requests {
		items[i] = ToResponse(&requests[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Approve records the requested payment and marks the request approved in the
// same transaction. A request that was reviewed concurrently fails INVALID_STATE
// and nothing is recorded. With no outstanding bills the request stays pending and
// the informational NO_OUTSTANDING_BILLS result is returned.
func (s *Service) Approve(ctx context.Context, id, reviewer uuid.UUID) (*ApproveResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_request", "approve")
	defer span.End()

	pr, err := s.find(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if err := pr.CanApprove(); err != nil {
		return nil, err
	}

	ev := billingapp.PaymentEvent{
		CustomerID:       pr.CustomerID,
		BillID:           pr.BillID,
		Amount:           pr.Amount,
		Method:           pr.Method,
		TransactionRef:   pr.TransactionRef,
		Notes:            pr.Notes,
		PaymentRequestID: &pr.ID,
		RecordedBy:       &reviewer,
	}

	var approved *payreq.PaymentRequest
	result, err := s.recorder.RecordThen(ctx, ev, func(ctx context.Context, repos appshared.TransactionalRepositories, res *billingapp.RecordResult) error {
		current, err := s.find(ctx, repos.PaymentRequestRepo(), id)
		if err != nil {
			return err
		}
		if err := current.Approve(reviewer, res.PaymentIDs); err != nil {
			return err
		}
		if err := repos.PaymentRequestRepo().SaveWithLock(ctx, current); err != nil {
			return err
		}
		approved = current
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		if billingapp.IsInformational(err) {
			return &ApproveResult{Request: ToResponse(pr), Payment: result}, err
		}
		return nil, err
	}

	logger.FromContextOr(ctx, s.logger).Info("Payment request approved",
		zap.String("request_id", id.String()),
		zap.String("reviewer", reviewer.String()),
		zap.Int("payments", len(result.PaymentIDs)),
	)
	return &ApproveResult{Request: ToResponse(approved), Payment: result}, nil
}

// Reject closes a pending request without recording anything
func (s *Service) Reject(ctx context.Context, id, reviewer uuid.UUID, req RejectRequest) (*Response, error) {
	pr, err := s.find(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if err := pr.Reject(reviewer, req.Reason); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, pr); err != nil {
		return nil, err
	}
	logger.FromContextOr(ctx, s.logger).Info("Payment request rejected",
		zap.String("request_id", id.String()),
		zap.String("reviewer", reviewer.String()),
	)
	resp := ToResponse(pr)
	return &resp, nil
}

func (s *Service) find(ctx context.Context, repo payreq.Repository, id uuid.UUID) (*payreq.PaymentRequest, error) {
	pr, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pr == nil {
		return nil, errRequestNotFound
	}
	return pr, nil
}
