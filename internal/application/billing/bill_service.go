package billing

import (
	"context"
	"errors"
	"time"

	"github.com/fabrictrade/backend/internal/domain/billing"
	"github.com/fabrictrade/backend/internal/domain/partner"
	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/fabrictrade/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxNumberAttempts bounds retries when a generated bill number collides
const maxNumberAttempts = 3

var errBillNotFound = shared.NewDomainError("NOT_FOUND", "Bill not found")

// BillService handles bill queries and offline bill entry
type BillService struct {
	billRepo     billing.BillRepository
	paymentRepo  billing.PaymentRepository
	customerRepo partner.CustomerRepository
	logger       *zap.Logger
	now          func() time.Time
	events       shared.EventPublisher
}

// SetEventPublisher makes offline bill entry publish BillIssued
func (s *BillService) SetEventPublisher(p shared.EventPublisher) {
	s.events = p
}

// NewBillService creates a new BillService
func NewBillService(
	billRepo billing.BillRepository,
	paymentRepo billing.PaymentRepository,
	customerRepo partner.CustomerRepository,
	logger *zap.Logger,
) *BillService {
	return &BillService{
		billRepo:     billRepo,
		paymentRepo:  paymentRepo,
		customerRepo: customerRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// List returns a page of bills, each with its advisory interest quote
func (s *BillService) List(ctx context.Context, q BillListQuery) (*shared.Paginated[BillResponse], error) {
	filter := billing.BillFilter{
		Filter: shared.Filter{
			Page:     q.Page,
			PageSize: q.PageSize,
			OrderBy:  q.OrderBy,
			OrderDir: q.OrderDir,
			Search:   q.Search,
		}.Normalize(),
		CustomerID: q.CustomerID,
		FromDate:   q.FromDate,
		ToDate:     q.ToDate,
	}
	if q.Status != "" {
		status := billing.BillStatus(q.Status)
		filter.Status = &status
	}

	bills, err := s.billRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.billRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]BillResponse, len(bills))
	for i := range bills {
		items[i] = ToBillResponse(&bills[i], now)
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// GetBill loads the bill aggregate
func (s *BillService) GetBill(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	bill, err := s.billRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, errBillNotFound
	}
	return bill, nil
}

// Get returns one bill with its advisory interest quote
func (s *BillService) Get(ctx context.Context, id uuid.UUID) (*BillResponse, error) {
	bill, err := s.GetBill(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToBillResponse(bill, s.now())
	return &resp, nil
}

// ListPayments returns the payments recorded against a bill, oldest first
func (s *BillService) ListPayments(ctx context.Context, billID uuid.UUID) ([]PaymentResponse, error) {
	if _, err := s.GetBill(ctx, billID); err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.FindByBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out, nil
}

// Outstanding returns a customer's unpaid bills, oldest first, and their total balance
func (s *BillService) Outstanding(ctx context.Context, customerID uuid.UUID) ([]BillResponse, decimal.Decimal, error) {
	bills, err := s.billRepo.FindOutstandingByCustomer(ctx, customerID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	now := s.now()
	total := decimal.Zero
	out := make([]BillResponse, len(bills))
	for i := range bills {
		out[i] = ToBillResponse(&bills[i], now)
		total = total.Add(bills[i].BalanceDue)
	}
	return out, total, nil
}

// CreateOffline enters a bill that did not come from an online order
func (s *BillService) CreateOffline(ctx context.Context, req CreateBillRequest) (*BillResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "bill", "create_offline")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrCustomerID, req.CustomerID.String())

	customer, err := s.customerRepo.FindByID(ctx, req.CustomerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if customer == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Customer not found")
	}
	if !customer.IsActive() {
		return nil, shared.NewDomainError("INVALID_STATE", "Customer account is inactive")
	}

	var bill *billing.Bill
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		number, err := s.billRepo.GenerateBillNumber(ctx)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		bill, err = billing.NewBill(number, req.CustomerID, req.OrderID, req.Subtotal, req.TaxAmount, req.Notes)
		if err != nil {
			return nil, err
		}
		err = s.billRepo.Create(ctx, bill)
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrPersistenceConflict) || attempt == maxNumberAttempts {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	s.logger.Info("Offline bill created",
		zap.String("bill_id", bill.ID.String()),
		zap.String("bill_number", bill.BillNumber),
		zap.String("customer_id", bill.CustomerID.String()),
		zap.String("total", bill.TotalAmount.String()),
	)
	if events := bill.GetDomainEvents(); s.events != nil && len(events) > 0 {
		if err := s.events.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish bill events", zap.Error(err))
		}
	}
	bill.ClearDomainEvents()
	resp := ToBillResponse(bill, s.now())
	return &resp, nil
}
