package trade

import (
	"context"
	"errors"
	"fmt"

	appshared "github.com/fabrictrade/backend/internal/application/shared"
	"github.com/fabrictrade/backend/internal/domain/billing"
	"github.com/fabrictrade/backend/internal/domain/catalog"
	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/fabrictrade/backend/internal/domain/trade"
	"github.com/fabrictrade/backend/internal/infrastructure/logger"
	"github.com/fabrictrade/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// stock rows are written with optimistic locks; a concurrent order on the same
// fabric makes the whole placement start over
const maxPlaceAttempts = 3

var errOrderNotFound = shared.NewDomainError("NOT_FOUND", "Order not found")

// OrderService places and tracks customer orders
type OrderService struct {
	orderRepo trade.OrderRepository
	txScope   appshared.TransactionScope
	taxRate   decimal.Decimal
	logger    *zap.Logger
	events    shared.EventPublisher
}

// SetEventPublisher makes the service publish BillIssued after an order commits
func (s *OrderService) SetEventPublisher(p shared.EventPublisher) {
	s.events = p
}

// NewOrderService creates a new OrderService. taxRatePercent applies to every new order.
func NewOrderService(
	orderRepo trade.OrderRepository,
	txScope appshared.TransactionScope,
	taxRatePercent decimal.Decimal,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		txScope:   txScope,
		taxRate:   taxRatePercent,
		logger:    logger,
	}
}

// PlaceOrder reserves stock, checks credit, saves the order and issues its bill
// in one transaction. Nothing is written if any step fails.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest, placedBy *uuid.UUID) (*PlaceOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "place")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrCustomerID, req.CustomerID.String())

	if len(req.Lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must have at least one line")
	}

	var (
		order *trade.Order
		bill  *billing.Bill
		err   error
	)
	for attempt := 1; attempt <= maxPlaceAttempts; attempt++ {
		order, bill, err = s.place(ctx, req, placedBy)
		if err == nil || !errors.Is(err, shared.ErrPersistenceConflict) {
			break
		}
		telemetry.AddEvent(span, "order.conflict", telemetry.SpanAttrAttempt, attempt)
		s.logger.Debug("Stock changed during placement, retrying",
			zap.String("customer_id", req.CustomerID.String()),
			zap.Int("attempt", attempt),
		)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, order.ID.String(),
		telemetry.SpanAttrBillID, bill.ID.String(),
	)
	logger.FromContextOr(ctx, s.logger).Info("Order placed",
		zap.String("order_number", order.OrderNumber),
		zap.String("bill_number", bill.BillNumber),
		zap.String("customer_id", order.CustomerID.String()),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)
	publishBillEvents(ctx, s.events, s.logger, bill)
	return &PlaceOrderResponse{Order: ToOrderResponse(order), BillNumber: bill.BillNumber}, nil
}

func (s *OrderService) place(ctx context.Context, req PlaceOrderRequest, placedBy *uuid.UUID) (*trade.Order, *billing.Bill, error) {
	var (
		order *trade.Order
		bill  *billing.Bill
	)
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		customer, err := repos.CustomerRepo().FindByID(ctx, req.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return shared.NewDomainError("NOT_FOUND", "Customer not found")
		}
		if !customer.IsActive() {
			return shared.NewDomainError("INVALID_STATE", "Customer account is inactive")
		}

		number, err := repos.OrderRepo().GenerateOrderNumber(ctx)
		if err != nil {
			return err
		}
		order, err = trade.NewOrder(number, customer.ID, s.taxRate, req.Notes)
		if err != nil {
			return err
		}
		order.PlacedBy = placedBy

		products := make([]*catalog.Product, 0, len(req.Lines))
		for _, line := range req.Lines {
			p, err := reserve(ctx, repos.ProductRepo(), order, line)
			if err != nil {
				return err
			}
			products = append(products, p)
		}
		if err := order.Validate(); err != nil {
			return err
		}

		outstanding, err := repos.BillRepo().SumOutstandingByCustomer(ctx, customer.ID)
		if err != nil {
			return err
		}
		if err := customer.CheckCredit(outstanding, order.TotalAmount); err != nil {
			return err
		}

		for _, p := range products {
			if err := repos.ProductRepo().SaveWithLock(ctx, p); err != nil {
				return err
			}
		}

		billNumber, err := repos.BillRepo().GenerateBillNumber(ctx)
		if err != nil {
			return err
		}
		bill, err = billing.NewBill(billNumber, customer.ID, &order.ID, order.Subtotal, order.TaxAmount,
			fmt.Sprintf("Order %s", order.OrderNumber))
		if err != nil {
			return err
		}
		order.AttachBill(bill.ID)

		if err := repos.OrderRepo().Create(ctx, order); err != nil {
			return err
		}
		return repos.BillRepo().Create(ctx, bill)
	})
	if err != nil {
		return nil, nil, err
	}
	return order, bill, nil
}

// reserve adds the line at the product's current price and takes the meters out of stock
func reserve(ctx context.Context, products catalog.ProductRepository, order *trade.Order, line OrderLineRequest) (*catalog.Product, error) {
	p, err := products.FindByID(ctx, line.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Product %s not found", line.ProductID))
	}
	if !p.IsActive() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Product %s is not available", p.SKU))
	}
	if err := order.AddLine(p.ID, p.SKU, p.Name, line.Meters, p.PricePerMeter); err != nil {
		return nil, err
	}
	if err := p.AdjustStock(line.Meters.Neg()); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByID retrieves an order
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// List returns a page of orders
func (s *OrderService) List(ctx context.Context, q OrderListQuery) (*shared.Paginated[OrderResponse], error) {
	filter := trade.OrderFilter{
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
		st := trade.OrderStatus(q.Status)
		filter.Status = &st
	}

	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]OrderResponse, len(orders))
	for i := range orders {
		items[i] = ToOrderResponse(&orders[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Advance moves an order to its next fulfilment status
func (s *OrderService) Advance(ctx context.Context, id uuid.UUID, req AdvanceOrderRequest) (*OrderResponse, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	from := o.Status
	if err := o.Advance(trade.OrderStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	logger.FromContextOr(ctx, s.logger).Info("Order status changed",
		zap.String("order_number", o.OrderNumber),
		zap.String("from", string(from)),
		zap.String("to", string(o.Status)),
	)
	resp := ToOrderResponse(o)
	return &resp, nil
}

func (s *OrderService) find(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, errOrderNotFound
	}
	return o, nil
}

func publishBillEvents(ctx context.Context, p shared.EventPublisher, log *zap.Logger, bill *billing.Bill) {
	events := bill.GetDomainEvents()
	bill.ClearDomainEvents()
	if p == nil || len(events) == 0 {
		return
	}
	if err := p.Publish(ctx, events...); err != nil {
		log.Warn("Failed to publish bill events", zap.String("bill_id", bill.ID.String()), zap.Error(err))
	}
}
