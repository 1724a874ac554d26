// Package shared holds contracts used by more than one application service.
package shared

import (
	"context"

	"github.com/fabrictrade/backend/internal/domain/billing"
	"github.com/fabrictrade/backend/internal/domain/catalog"
	"github.com/fabrictrade/backend/internal/domain/identity"
	"github.com/fabrictrade/backend/internal/domain/partner"
	"github.com/fabrictrade/backend/internal/domain/payreq"
	"github.com/fabrictrade/backend/internal/domain/trade"
)

// TransactionalRepositories exposes repositories bound to one open transaction.
// Repositories obtained here must not be used after Execute returns.
type TransactionalRepositories interface {
	BillRepo() billing.BillRepository
	PaymentRepo() billing.PaymentRepository
	ProductRepo() catalog.ProductRepository
	CustomerRepo() partner.CustomerRepository
	OrderRepo() trade.OrderRepository
	UserRepo() identity.UserRepository
	PaymentRequestRepo() payreq.Repository
}

// TransactionScope runs fn in a single database transaction.
// A non-nil error from fn rolls back every write made through repos.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}
