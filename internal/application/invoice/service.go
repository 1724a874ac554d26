// Package invoice renders bills as printable invoices.
package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/fabrictrade/backend/internal/domain/billing"
	"github.com/fabrictrade/backend/internal/domain/partner"
	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/fabrictrade/backend/internal/domain/trade"
	"github.com/fabrictrade/backend/internal/infrastructure/printing"
	"github.com/fabrictrade/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Errors for optional backends that are switched off
var (
	ErrPrintingUnavailable = shared.NewDomainError("PRINTING_UNAVAILABLE", "PDF printing is not enabled")
	ErrStorageUnavailable  = shared.NewDomainError("STORAGE_UNAVAILABLE", "Invoice storage is not enabled")
)

// HTMLRenderer fills the invoice template
type HTMLRenderer interface {
	RenderInvoice(data printing.InvoiceData) (string, error)
}

// PDFRenderer prints HTML to PDF
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

// ObjectStore keeps PDFs and hands out download links
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, time.Time, error)
}

// Company is the seller block printed on every invoice
type Company struct {
	Name     string
	Address  string
	Currency string
}

// Link is a presigned download URL for a stored invoice
type Link struct {
	BillID    uuid.UUID `json:"bill_id"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service renders, prints and publishes invoices. pdf and store may be nil.
type Service struct {
	billRepo     billing.BillRepository
	paymentRepo  billing.PaymentRepository
	customerRepo partner.CustomerRepository
	orderRepo    trade.OrderRepository
	html         HTMLRenderer
	pdf          PDFRenderer
	store        ObjectStore
	company      Company
	logger       *zap.Logger
	now          func() time.Time
}

// NewService creates an invoice Service
func NewService(
	billRepo billing.BillRepository,
	paymentRepo billing.PaymentRepository,
	customerRepo partner.CustomerRepository,
	orderRepo trade.OrderRepository,
	html HTMLRenderer,
	pdf PDFRenderer,
	store ObjectStore,
	company Company,
	logger *zap.Logger,
) *Service {
	return &Service{
		billRepo:     billRepo,
		paymentRepo:  paymentRepo,
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		html:         html,
		pdf:          pdf,
		store:        store,
		company:      company,
		logger:       logger,
		now:          time.Now,
	}
}

// HTML renders the invoice for billID. A non-nil scope limits access to that customer's bills.
func (s *Service) HTML(ctx context.Context, billID uuid.UUID, scope *uuid.UUID) (string, error) {
	bill, data, err := s.load(ctx, billID, scope)
	if err != nil {
		return "", err
	}
	html, err := s.html.RenderInvoice(*data)
	if err != nil {
		s.logger.Error("Invoice template failed", zap.String("bill_number", bill.BillNumber), zap.Error(err))
		return "", err
	}
	return html, nil
}

// PDF prints the invoice and returns the document with a download file name
func (s *Service) PDF(ctx context.Context, billID uuid.UUID, scope *uuid.UUID) ([]byte, string, error) {
	bill, pdf, err := s.print(ctx, billID, scope)
	if err != nil {
		return nil, "", err
	}
	return pdf, bill.BillNumber + ".pdf", nil
}

func (s *Service) print(ctx context.Context, billID uuid.UUID, scope *uuid.UUID) (*billing.Bill, []byte, error) {
	if s.pdf == nil {
		return nil, nil, ErrPrintingUnavailable
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "print")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrBillID, billID.String())

	bill, data, err := s.load(ctx, billID, scope)
	if err != nil {
		return nil, nil, err
	}
	html, err := s.html.RenderInvoice(*data)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := s.pdf.RenderPDF(ctx, html)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Invoice printing failed", zap.String("bill_number", bill.BillNumber), zap.Error(err))
		return nil, nil, err
	}
	return bill, pdf, nil
}

// Publish prints the invoice, uploads it and returns a presigned link.
// The key includes the bill version so a later payment produces a fresh document.
func (s *Service) Publish(ctx context.Context, billID uuid.UUID, scope *uuid.UUID) (*Link, error) {
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}
	bill, pdf, err := s.print(ctx, billID, scope)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("invoices/%s/%s-v%d.pdf", bill.CustomerID, bill.BillNumber, bill.Version)
	if err := s.store.Put(ctx, key, pdf, "application/pdf"); err != nil {
		s.logger.Error("Invoice upload failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	url, expiresAt, err := s.store.PresignGet(ctx, key, 0)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Invoice published", zap.String("bill_number", bill.BillNumber), zap.String("key", key))
	return &Link{BillID: bill.ID, Key: key, URL: url, ExpiresAt: expiresAt}, nil
}

func (s *Service) findBill(ctx context.Context, billID uuid.UUID, scope *uuid.UUID) (*billing.Bill, error) {
	bill, err := s.billRepo.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil || (scope != nil && bill.CustomerID != *scope) {
		return nil, shared.NewDomainError("NOT_FOUND", "Bill not found")
	}
	return bill, nil
}

func (s *Service) load(ctx context.Context, billID uuid.UUID, scope *uuid.UUID) (*billing.Bill, *printing.InvoiceData, error) {
	bill, err := s.findBill(ctx, billID, scope)
	if err != nil {
		return nil, nil, err
	}
	customer, err := s.customerRepo.FindByID(ctx, bill.CustomerID)
	if err != nil {
		return nil, nil, err
	}
	if customer == nil {
		return nil, nil, shared.NewDomainError("NOT_FOUND", "Customer not found")
	}
	payments, err := s.paymentRepo.FindByBill(ctx, bill.ID)
	if err != nil {
		return nil, nil, err
	}

	data := &printing.InvoiceData{
		CompanyName:     s.company.Name,
		CompanyAddress:  s.company.Address,
		Currency:        s.company.Currency,
		BillNumber:      bill.BillNumber,
		IssuedAt:        bill.CreatedAt,
		Status:          string(bill.Status),
		CustomerCode:    customer.Code,
		CustomerName:    customer.Name,
		CustomerAddress: customer.Address,
		GSTIN:           customer.GSTIN,
		Notes:           bill.Notes,
		Subtotal:        bill.Subtotal,
		TaxAmount:       bill.TaxAmount,
		Total:           bill.TotalAmount,
		Paid:            bill.PaidAmount,
		BalanceDue:      bill.BalanceDue,
		Interest:        bill.OverdueInterest(s.now()),
	}

	if bill.OrderID != nil {
		order, err := s.orderRepo.FindByID(ctx, *bill.OrderID)
		if err != nil {
			return nil, nil, err
		}
		if order != nil {
			data.OrderNumber = order.OrderNumber
			for _, l := range order.Lines {
				data.Lines = append(data.Lines, printing.InvoiceLine{
					SKU:         l.SKU,
					Description: l.ProductName,
					Meters:      l.Meters,
					UnitPrice:   l.UnitPrice,
					Amount:      l.Amount,
				})
			}
		}
	}
	for _, p := range payments {
		data.Payments = append(data.Payments, printing.InvoicePayment{
			ReceivedAt: p.CreatedAt,
			Method:     string(p.Method),
			Reference:  p.TransactionRef,
			Amount:     p.Amount,
		})
	}
	return bill, data, nil
}
