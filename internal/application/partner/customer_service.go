package partner

import (
	"context"

	appshared "github.com/fabrictrade/backend/internal/application/shared"
	"github.com/fabrictrade/backend/internal/domain/billing"
	"github.com/fabrictrade/backend/internal/domain/identity"
	"github.com/fabrictrade/backend/internal/domain/partner"
	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/fabrictrade/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errCustomerNotFound = shared.NewDomainError("NOT_FOUND", "Customer not found")

// CustomerService manages customer accounts and credit limits
type CustomerService struct {
	customerRepo partner.CustomerRepository
	billRepo     billing.BillRepository
	txScope      appshared.TransactionScope
	logger       *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(
	customerRepo partner.CustomerRepository,
	billRepo billing.BillRepository,
	txScope appshared.TransactionScope,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		billRepo:     billRepo,
		txScope:      txScope,
		logger:       logger,
	}
}

// CreateAccount creates the login and the customer in one transaction
func (s *CustomerService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*CustomerResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "create_account")
	defer span.End()

	if req.CreditLimit != nil && req.CreditLimit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_CREDIT_LIMIT", "Credit limit cannot be negative")
	}

	user, err := identity.NewUser(req.Username, req.Email, req.Password, identity.RoleCustomer)
	if err != nil {
		return nil, err
	}
	customer, err := partner.NewCustomer(req.Code, req.Name, partner.ContactInfo{
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		GSTIN:       req.GSTIN,
	})
	if err != nil {
		return nil, err
	}
	if req.CreditLimit != nil {
		customer.CreditLimit = *req.CreditLimit
	}
	customer.LinkUser(user.ID)

	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		exists, err := repos.UserRepo().ExistsByUsername(ctx, user.Username)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError("ALREADY_EXISTS", "Username is already taken")
		}
		existing, err := repos.CustomerRepo().FindByCode(ctx, customer.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			return shared.NewDomainError("ALREADY_EXISTS", "Customer code is already in use")
		}
		if err := repos.UserRepo().Create(ctx, user); err != nil {
			return err
		}
		return repos.CustomerRepo().Create(ctx, customer)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Customer account created",
		zap.String("customer_id", customer.ID.String()),
		zap.String("code", customer.Code),
		zap.String("username", user.Username),
	)
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// GetByID retrieves a customer
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(c)
	return &resp, nil
}

// List returns a page of customers
func (s *CustomerService) List(ctx context.Context, q CustomerListQuery) (*shared.Paginated[CustomerResponse], error) {
	filter := shared.Filter{
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  q.OrderBy,
		OrderDir: q.OrderDir,
		Search:   q.Search,
	}.Normalize()

	customers, err := s.customerRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.customerRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]CustomerResponse, len(customers))
	for i := range customers {
		items[i] = ToCustomerResponse(&customers[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update replaces a customer's contact details
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Update(req.Name, req.contact()); err != nil {
		return nil, err
	}
	if err := s.customerRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(c)
	return &resp, nil
}

// SetCreditLimit changes the credit limit. Lowering it below the current
// outstanding balance is allowed; it only blocks new orders.
func (s *CustomerService) SetCreditLimit(ctx context.Context, id uuid.UUID, req SetCreditLimitRequest) (*CustomerResponse, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := c.CreditLimit
	if err := c.SetCreditLimit(req.CreditLimit); err != nil {
		return nil, err
	}
	if err := s.customerRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("Credit limit changed",
		zap.String("customer_id", c.ID.String()),
		zap.String("from", previous.String()),
		zap.String("to", c.CreditLimit.String()),
	)
	resp := ToCustomerResponse(c)
	return &resp, nil
}

// Credit returns the customer's limit, outstanding balance and available credit
func (s *CustomerService) Credit(ctx context.Context, id uuid.UUID) (*CreditResponse, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	outstanding, err := s.billRepo.SumOutstandingByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CreditResponse{CustomerID: c.ID, CreditStatus: c.Credit(outstanding)}, nil
}

func (s *CustomerService) find(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errCustomerNotFound
	}
	return c, nil
}
