package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fabrictrade/backend/internal/domain/billing"
	"github.com/fabrictrade/backend/internal/domain/partner"
	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/fabrictrade/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockModel struct{ mock.Mock }

func (m *mockModel) Reply(ctx context.Context, instructions, message string) (string, error) {
	args := m.Called(ctx, instructions, message)
	return args.String(0), args.Error(1)
}

var now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func openBill(t *testing.T, number string, customerID uuid.UUID, amount int64, age time.Duration) billing.Bill {
	t.Helper()
	b, err := billing.NewBill(number, customerID, nil, decimal.NewFromInt(amount), decimal.Zero, "")
	require.NoError(t, err)
	b.CreatedAt = now.Add(-age)
	return *b
}

func TestService_Disabled(t *testing.T) {
	svc := NewService(nil, nil, nil, 0, zap.NewNop())
	assert.False(t, svc.Enabled())

	_, err := svc.Chat(context.Background(), ChatRequest{Message: "hi"}, nil)
	assert.ErrorIs(t, err, ErrAssistantUnavailable)
}

func TestService_Chat(t *testing.T) {
	const day = 24 * time.Hour

	t.Run("summarizes the caller's bills", func(t *testing.T) {
		repos := testutil.NewMockRepositories()
		model := new(mockModel)
		customer, err := partner.NewCustomer("ST-001", "Shree Textiles", partner.ContactInfo{})
		require.NoError(t, err)
		bills := []billing.Bill{
			openBill(t, "BILL-1", customer.ID, 1000, 115*day),
			openBill(t, "BILL-2", customer.ID, 400, 10*day),
			openBill(t, "BILL-3", customer.ID, 50, day),
		}

		repos.Customers.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
		repos.Bills.On("FindOutstandingByCustomer", mock.Anything, customer.ID).Return(bills, nil)
		model.On("Reply", mock.Anything, mock.MatchedBy(func(s string) bool {
			return assert.Contains(t, s, "Shree Textiles") &&
				assert.Contains(t, s, "Outstanding: 1450.00 across 3 bill(s)") &&
				assert.Contains(t, s, "BILL-1") &&
				assert.Contains(t, s, "overdue 15 days, interest 3% = 30.00") &&
				assert.Contains(t, s, "BILL-2") &&
				assert.Contains(t, s, "due in 90 days") &&
				assert.NotContains(t, s, "BILL-3") &&
				assert.Contains(t, s, "Credit limit: none")
		}), "what do I owe?").Return("You owe 1,450.00.", nil)

		svc := NewService(model, repos.Bills, repos.Customers, 2, zap.NewNop())
		svc.now = func() time.Time { return now }

		resp, err := svc.Chat(context.Background(), ChatRequest{Message: "  what do I owe?  "}, &customer.ID)
		require.NoError(t, err)
		assert.Equal(t, "You owe 1,450.00.", resp.Reply)
		assert.Equal(t, 2, resp.BillsInContext)
		model.AssertExpectations(t)
	})

	t.Run("staff get no account data", func(t *testing.T) {
		repos := testutil.NewMockRepositories()
		model := new(mockModel)
		model.On("Reply", mock.Anything, mock.MatchedBy(func(s string) bool {
			return assert.Contains(t, s, "staff member")
		}), "hello").Return("Hi.", nil)

		svc := NewService(model, repos.Bills, repos.Customers, 0, zap.NewNop())
		resp, err := svc.Chat(context.Background(), ChatRequest{Message: "hello"}, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, resp.BillsInContext)
		repos.Bills.AssertNotCalled(t, "FindOutstandingByCustomer", mock.Anything, mock.Anything)
	})

	t.Run("blank message", func(t *testing.T) {
		svc := NewService(new(mockModel), nil, nil, 0, zap.NewNop())
		_, err := svc.Chat(context.Background(), ChatRequest{Message: "   "}, nil)
		assert.Equal(t, "INVALID_MESSAGE", shared.CodeOf(err))
	})

	t.Run("unknown customer", func(t *testing.T) {
		repos := testutil.NewMockRepositories()
		id := uuid.New()
		repos.Customers.On("FindByID", mock.Anything, id).Return(nil, nil)

		svc := NewService(new(mockModel), repos.Bills, repos.Customers, 0, zap.NewNop())
		_, err := svc.Chat(context.Background(), ChatRequest{Message: "hi"}, &id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("model failure maps to unavailable", func(t *testing.T) {
		model := new(mockModel)
		model.On("Reply", mock.Anything, mock.Anything, "hi").Return("", errors.New("429 rate limited"))

		svc := NewService(model, nil, nil, 0, zap.NewNop())
		_, err := svc.Chat(context.Background(), ChatRequest{Message: "hi"}, nil)
		assert.ErrorIs(t, err, ErrAssistantUnavailable)
	})
}
