// Package assistant answers customer questions about their account with a hosted language model.
// The model only sees a short summary of the caller's own open bills.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fabrictrade/backend/internal/domain/billing"
	"github.com/fabrictrade/backend/internal/domain/partner"
	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/fabrictrade/backend/internal/infrastructure/logger"
	"github.com/fabrictrade/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrAssistantUnavailable is returned when no model is configured
var ErrAssistantUnavailable = shared.NewDomainError("ASSISTANT_UNAVAILABLE", "Assistant is not configured")

// Model produces a reply for a prompt
type Model interface {
	Reply(ctx context.Context, instructions, message string) (string, error)
}

// ChatRequest is the body of POST /assistant/chat
type ChatRequest struct {
	Message string `json:"message" binding:"required,max=2000"`
}

// ChatResponse carries the model's reply
type ChatResponse struct {
	Reply          string `json:"reply"`
	BillsInContext int    `json:"bills_in_context"`
}

// Service builds the account summary and forwards the question
type Service struct {
	model        Model
	billRepo     billing.BillRepository
	customerRepo partner.CustomerRepository
	maxBills     int
	logger       *zap.Logger
	now          func() time.Time
}

// NewService creates the assistant service. model may be nil when the assistant is disabled.
func NewService(model Model, billRepo billing.BillRepository, customerRepo partner.CustomerRepository, maxBills int, logger *zap.Logger) *Service {
	if maxBills <= 0 {
		maxBills = 20
	}
	return &Service{
		model:        model,
		billRepo:     billRepo,
		customerRepo: customerRepo,
		maxBills:     maxBills,
		logger:       logger,
		now:          time.Now,
	}
}

// Enabled reports whether a model is configured
func (s *Service) Enabled() bool {
	return s.model != nil
}

// Chat answers req for the given customer. Staff callers (customerID nil) get no account summary.
func (s *Service) Chat(ctx context.Context, req ChatRequest, customerID *uuid.UUID) (*ChatResponse, error) {
	if s.model == nil {
		return nil, ErrAssistantUnavailable
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Message cannot be empty")
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "assistant", "chat")
	defer span.End()
	log := logger.FromContextOr(ctx, s.logger)

	instructions, count, err := s.instructions(ctx, customerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, "assistant.bills_in_context", count)

	reply, err := s.model.Reply(ctx, instructions, message)
	if err != nil {
		telemetry.RecordError(span, err)
		log.Warn("Assistant reply failed", zap.Error(err))
		return nil, shared.WrapDomainError("ASSISTANT_UNAVAILABLE", "Assistant could not answer right now", err)
	}
	return &ChatResponse{Reply: reply, BillsInContext: count}, nil
}

func (s *Service) instructions(ctx context.Context, customerID *uuid.UUID) (string, int, error) {
	var b strings.Builder
	b.WriteString("You are the accounts assistant of a fabric wholesaler. Answer briefly and only about the ")
	b.WriteString("account data below. Bills are due within ")
	fmt.Fprintf(&b, "%d days; after that %d%% simple interest is quoted per started week. ",
		billing.GracePeriodDays, billing.WeeklyInterestPercent)
	b.WriteString("Interest figures are advisory and are not added to the bill. ")
	b.WriteString("Never invent bills or amounts.\n")

	if customerID == nil {
		b.WriteString("\nThe caller is a staff member; no customer account is attached.\n")
		return b.String(), 0, nil
	}

	customer, err := s.customerRepo.FindByID(ctx, *customerID)
	if err != nil {
		return "", 0, err
	}
	if customer == nil {
		return "", 0, shared.NewDomainError("NOT_FOUND", "Customer not found")
	}
	bills, err := s.billRepo.FindOutstandingByCustomer(ctx, *customerID)
	if err != nil {
		return "", 0, err
	}

	total := decimal.Zero
	for i := range bills {
		total = total.Add(bills[i].BalanceDue)
	}
	fmt.Fprintf(&b, "\nCustomer: %s (%s)\n", customer.Name, customer.Code)
	if customer.CreditLimit.IsPositive() {
		fmt.Fprintf(&b, "Credit limit: %s\n", customer.CreditLimit.StringFixed(2))
	} else {
		b.WriteString("Credit limit: none\n")
	}
	fmt.Fprintf(&b, "Outstanding: %s across %d bill(s)\n", total.StringFixed(2), len(bills))

	if len(bills) > s.maxBills {
		bills = bills[:s.maxBills]
	}
	if len(bills) > 0 {
		b.WriteString("Open bills, oldest first:\n")
	}
	now := s.now()
	for i := range bills {
		bill := &bills[i]
		fmt.Fprintf(&b, "- %s issued %s total %s balance %s", bill.BillNumber,
			bill.CreatedAt.Format("2006-01-02"), bill.TotalAmount.StringFixed(2), bill.BalanceDue.StringFixed(2))
		if q := bill.OverdueInterest(now); q != nil {
			if q.IsOverdue {
				fmt.Fprintf(&b, " overdue %d days, interest %d%% = %s", q.DaysOverGrace, q.InterestRatePercent, q.InterestAmount.StringFixed(2))
			} else {
				fmt.Fprintf(&b, " due in %d days", q.DaysRemainingInGrace)
			}
		}
		b.WriteString("\n")
	}
	return b.String(), len(bills), nil
}
